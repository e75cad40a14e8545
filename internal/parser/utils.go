package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"pantauharga/internal/model"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	numericRe = regexp.MustCompile(`^[\d.,\s]+$`)
)

// NormalizeColumnName 规范化列名：去除首尾空白，压缩内部空白，忽略大小写
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = spaceRe.ReplaceAllString(name, " ")
	return strings.ToLower(name)
}

// DefaultAliases 月度价格表表头 → 统一口径列名
func DefaultAliases() ColumnAliases {
	return ColumnAliases{
		HeaderCommodity:      model.ColumnCommodity,
		HeaderTier:           model.ColumnTier,
		HeaderRegion:         model.ColumnProvince,
		model.ColumnSource:   model.ColumnSource,
		model.ColumnProvince: model.ColumnProvince,
	}
}

// CanonicalColumn 返回表头对应的统一口径列名，无法识别时返回空串
func (a ColumnAliases) CanonicalColumn(header string) string {
	norm := NormalizeColumnName(header)
	if norm == "" {
		return ""
	}
	for alias, canonical := range a {
		if NormalizeColumnName(alias) == norm {
			return canonical
		}
	}
	return ""
}

// 日期序列号合理范围：1900-01-01 ~ 9999-12-31
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// 文本表头允许的日期写法（除 model.ParseDate 支持的写法外）
// 纯数字写法一律按 月/日 顺序，与 excelize 渲染内置日期格式的结果一致
var headerDateLayouts = []string{
	"01-02-06",
	"1/2/06",
	"1/2/06 15:04",
	"2-Jan-06",
}

// 内置日期/时间格式编号
var builtinDateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	45: true, 46: true, 47: true,
}

var (
	numFmtLiteralRe = regexp.MustCompile(`"[^"]*"|\\.|\[[^\]]*\]`)
	numFmtTimeRe    = regexp.MustCompile(`[hHsS]`)
)

// IsDateNumFmt 判断单元格数字格式是否为日期格式
// numFmt 为内置格式编号，custom 为自定义格式代码（没有时为空）
func IsDateNumFmt(numFmt int, custom string) bool {
	if builtinDateNumFmts[numFmt] {
		return true
	}
	code := strings.ToLower(numFmtLiteralRe.ReplaceAllString(custom, ""))
	if code == "" {
		return false
	}
	if strings.ContainsAny(code, "dy") {
		return true
	}
	// 只有 m 时需排除 h:mm / mm:ss 这类纯时间格式
	return strings.Contains(code, "m") && !numFmtTimeRe.MatchString(code)
}

// ParseHeaderDate 判断表头单元格是否为日期
// raw 为单元格原始值，formatted 为按单元格格式渲染后的文本，dateStyled 表示单元格使用日期格式
// 日期格式的数值单元格一律视为日期（即使只显示为 "1" 这样的日）；
// 其余数值单元格渲染后仍是纯数字时不是日期；文本表头按常见日期写法解析
func ParseHeaderDate(raw, formatted string, dateStyled bool) (model.Date, bool) {
	raw = strings.TrimSpace(raw)
	formatted = strings.TrimSpace(formatted)
	if raw == "" && formatted == "" {
		return model.Date{}, false
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < minExcelSerial || serial > maxExcelSerial {
			return model.Date{}, false
		}
		if !dateStyled && (formatted == raw || numericRe.MatchString(formatted)) {
			return model.Date{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return model.Date{}, false
		}
		return model.DateOf(t), true
	}

	text := formatted
	if text == "" {
		text = raw
	}
	if d, err := model.ParseDate(text); err == nil {
		return d, true
	}
	for _, layout := range headerDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return model.DateOf(t), true
		}
	}
	return model.Date{}, false
}

// ParsePrice 将单元格强制转换为价格
// 空值、非数字以及负数返回 false，调用方应直接丢弃该行
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// ClassifyHeader 识别月度价格表表头
// 位于 Komoditi 列之前的第一个空表头列视为数据来源列（Sumber）
func ClassifyHeader(header HeaderRow, aliases ColumnAliases) HeaderLayout {
	rawHeader, formattedHeader := header.Raw, header.Formatted
	n := len(rawHeader)
	if len(formattedHeader) > n {
		n = len(formattedHeader)
	}
	at := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	commodityIdx := -1
	for i := 0; i < n; i++ {
		if aliases.CanonicalColumn(at(formattedHeader, i)) == model.ColumnCommodity {
			commodityIdx = i
			break
		}
	}

	var layout HeaderLayout
	sourceSeen := false
	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		raw := at(rawHeader, i)
		formatted := at(formattedHeader, i)
		col := Column{Index: i, Raw: formatted}

		if d, ok := ParseHeaderDate(raw, formatted, header.dateStyled(i)); ok {
			col.Role = RoleDate
			col.Canonical = d.String()
			layout.Dates = append(layout.Dates, col)
			continue
		}

		if strings.TrimSpace(formatted) == "" && strings.TrimSpace(raw) == "" {
			if !sourceSeen && !seen[model.ColumnSource] && commodityIdx >= 0 && i < commodityIdx {
				sourceSeen = true
				seen[model.ColumnSource] = true
				col.Role = RoleMetadata
				col.Canonical = model.ColumnSource
				layout.Metadata = append(layout.Metadata, col)
				continue
			}
			layout.Ignored = append(layout.Ignored, col)
			continue
		}

		// 同名元数据列只取第一列
		if canonical := aliases.CanonicalColumn(formatted); canonical != "" && !seen[canonical] {
			seen[canonical] = true
			col.Role = RoleMetadata
			col.Canonical = canonical
			layout.Metadata = append(layout.Metadata, col)
			continue
		}

		layout.Ignored = append(layout.Ignored, col)
	}
	return layout
}

// UniqueNonEmpty 去除空值并去重，保留首次出现顺序
func UniqueNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
