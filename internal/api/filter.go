package api

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"pantauharga/internal/model"
	"pantauharga/internal/view"
)

// 过滤参数名
const (
	ParamCommodity = "komoditi"
	ParamTier      = "tingkat"
	ParamProvince  = "provinsi"
	ParamStart     = "start"
	ParamEnd       = "end"
	// ParamApplied 表单已提交：即使三个分类参数都缺失也按空选择处理
	ParamApplied = "applied"
)

// ParseFilter 从查询参数解析过滤条件
// 三个分类参数都未出现且没有 applied 时使用 defaults；否则缺失的维度视为空选择
func ParseFilter(q url.Values, defaults view.Filter) (view.Filter, error) {
	_, applied := q[ParamApplied]
	_, hasCommodity := q[ParamCommodity]
	_, hasTier := q[ParamTier]
	_, hasProvince := q[ParamProvince]

	f := defaults
	if applied || hasCommodity || hasTier || hasProvince {
		f.Commodities = values(q, ParamCommodity)
		f.Tiers = values(q, ParamTier)
		f.Provinces = values(q, ParamProvince)
	}

	var err error
	if f.Start, err = dateParam(q, ParamStart, defaults.Start); err != nil {
		return view.Filter{}, err
	}
	if f.End, err = dateParam(q, ParamEnd, defaults.End); err != nil {
		return view.Filter{}, err
	}
	return f, nil
}

// FilterQuery 把过滤条件编码为查询参数（ParseFilter 的逆操作）
func FilterQuery(f view.Filter) url.Values {
	q := url.Values{}
	q.Set(ParamApplied, "1")
	for _, v := range f.Commodities {
		q.Add(ParamCommodity, v)
	}
	for _, v := range f.Tiers {
		q.Add(ParamTier, v)
	}
	for _, v := range f.Provinces {
		q.Add(ParamProvince, v)
	}
	if f.Start != nil {
		q.Set(ParamStart, f.Start.String())
	}
	if f.End != nil {
		q.Set(ParamEnd, f.End.String())
	}
	return q
}

func values(q url.Values, key string) []string {
	out := []string{}
	for _, v := range q[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func dateParam(q url.Values, key string, def *model.Date) (*model.Date, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, eris.Wrapf(ErrBadRequest, "%s: %v", key, err)
	}
	return &d, nil
}
