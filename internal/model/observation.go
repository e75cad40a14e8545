package model

import "github.com/shopspring/decimal"

// 统一口径列名（用户输入文件表头与组合视图共用）
const (
	ColumnSource    = "Sumber"
	ColumnCommodity = "Komoditi"
	ColumnTier      = "Tingkat"
	ColumnProvince  = "Provinsi"
	ColumnDate      = "Tanggal"
	ColumnPrice     = "Harga"
)

// CanonicalColumns 统一口径列顺序
var CanonicalColumns = []string{
	ColumnSource,
	ColumnCommodity,
	ColumnTier,
	ColumnProvince,
	ColumnDate,
	ColumnPrice,
}

// Observation 一条价格观测（历史数据与用户录入共用）
type Observation struct {
	Source    string          `json:"sumber" csv:"Sumber"`
	Commodity string          `json:"komoditi" csv:"Komoditi"`
	Tier      string          `json:"tingkat" csv:"Tingkat"`
	Province  string          `json:"provinsi" csv:"Provinsi"`
	Date      Date            `json:"tanggal" csv:"Tanggal"`
	Price     decimal.Decimal `json:"harga" csv:"Harga"`
}

// ReferenceSet 可选分类值（下拉框与过滤条件的取值范围）
type ReferenceSet struct {
	Commodities []string `json:"komoditi"`
	Tiers       []string `json:"tingkatan"`
	Provinces   []string `json:"provinsi"`
}
