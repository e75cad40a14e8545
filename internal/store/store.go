// Package store 保存用户录入的价格观测
package store

import (
	"strings"

	"github.com/rotisserie/eris"

	"pantauharga/internal/model"
)

// ErrInvalidObservation 录入数据缺少必需字段
var ErrInvalidObservation = eris.New("invalid observation")

// 存储后端
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Store 用户录入数据存储：只追加，按写入顺序读取
type Store interface {
	// Read 读取全部录入数据；尚无数据时返回空切片
	Read() ([]model.Observation, error)
	// Append 在末尾追加一行
	Append(o model.Observation) error
	// Close 释放资源
	Close() error
}

// Validate 校验录入数据：商品、等级、省份、日期必填，价格不能为负
// 数据来源为自由文本，允许为空
func Validate(o model.Observation) error {
	var missing []string
	if strings.TrimSpace(o.Commodity) == "" {
		missing = append(missing, model.ColumnCommodity)
	}
	if strings.TrimSpace(o.Tier) == "" {
		missing = append(missing, model.ColumnTier)
	}
	if strings.TrimSpace(o.Province) == "" {
		missing = append(missing, model.ColumnProvince)
	}
	if o.Date.IsZero() {
		missing = append(missing, model.ColumnDate)
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrInvalidObservation, "missing %s", strings.Join(missing, ", "))
	}
	if o.Price.IsNegative() {
		return eris.Wrapf(ErrInvalidObservation, "negative %s %s", model.ColumnPrice, o.Price)
	}
	return nil
}

// Normalize 去除文本字段首尾空白
func Normalize(o model.Observation) model.Observation {
	o.Source = strings.TrimSpace(o.Source)
	o.Commodity = strings.TrimSpace(o.Commodity)
	o.Tier = strings.TrimSpace(o.Tier)
	o.Province = strings.TrimSpace(o.Province)
	return o
}

// Open 按后端类型打开存储
// csvPath 为 CSV 文件路径；sqlite 后端使用 dbPath，首次创建时从 csvPath 导入已有数据
func Open(backend, csvPath, dbPath string) (Store, error) {
	switch backend {
	case "", BackendCSV:
		return NewCSVStore(csvPath), nil
	case BackendSQLite:
		s, err := NewSQLiteStore(dbPath)
		if err != nil {
			return nil, err
		}
		if err := s.seedFromCSV(csvPath); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("unknown store backend %q", backend)
	}
}
