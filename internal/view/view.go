// Package view 合并历史数据与录入数据，并按分类和日期过滤
package view

import (
	"slices"
	"sort"

	"github.com/rotisserie/eris"

	"pantauharga/internal/model"
)

// ErrNoData 过滤结果为空（不是错误，用于提示“无数据”）
var ErrNoData = eris.New("no data for the selected filter")

// Filter 过滤条件：各维度之间为“且”关系
// 分类集合为空时不匹配任何行；Start/End 为空表示不限，非空时两端均包含
type Filter struct {
	Commodities []string    `json:"komoditi"`
	Tiers       []string    `json:"tingkat"`
	Provinces   []string    `json:"provinsi"`
	Start       *model.Date `json:"start,omitempty"`
	End         *model.Date `json:"end,omitempty"`
}

// Combine 拼接历史数据与录入数据，保留全部行，不去重
// 返回新切片，不修改入参
func Combine(historical, user []model.Observation) []model.Observation {
	out := make([]model.Observation, 0, len(historical)+len(user))
	out = append(out, historical...)
	out = append(out, user...)
	return out
}

// Match 单行是否满足过滤条件
func (f Filter) Match(o model.Observation) bool {
	if !slices.Contains(f.Commodities, o.Commodity) ||
		!slices.Contains(f.Tiers, o.Tier) ||
		!slices.Contains(f.Provinces, o.Province) {
		return false
	}
	if f.Start != nil && o.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && o.Date.After(*f.End) {
		return false
	}
	return true
}

// Apply 按过滤条件筛选，保持原有顺序
func Apply(rows []model.Observation, f Filter) []model.Observation {
	out := make([]model.Observation, 0)
	for _, o := range rows {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

// SortByDate 按日期升序稳定排序（同一日期保持拼接顺序），原地修改
func SortByDate(rows []model.Observation) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}

// Query 过滤并排序，用于表格和图表
func Query(rows []model.Observation, f Filter) []model.Observation {
	out := Apply(rows, f)
	SortByDate(out)
	return out
}

// DateBounds 返回最早与最晚日期；没有数据时两者均为今天
func DateBounds(rows []model.Observation) (first, last model.Date) {
	if len(rows) == 0 {
		today := model.Today()
		return today, today
	}
	first, last = rows[0].Date, rows[0].Date
	for _, o := range rows[1:] {
		if o.Date.Before(first) {
			first = o.Date
		}
		if o.Date.After(last) {
			last = o.Date
		}
	}
	return first, last
}

// DefaultFilter 页面首次打开时的默认选择：前 n 个商品、第一个等级、第一个省份，不限日期
func DefaultFilter(ref model.ReferenceSet, commodities int) Filter {
	return Filter{
		Commodities: head(ref.Commodities, commodities),
		Tiers:       head(ref.Tiers, 1),
		Provinces:   head(ref.Provinces, 1),
	}
}

func head(values []string, n int) []string {
	if n > len(values) {
		n = len(values)
	}
	return append([]string{}, values[:n]...)
}
