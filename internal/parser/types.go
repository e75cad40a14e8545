package parser

// 月度价格表中的元数据列（原始表头）
const (
	HeaderCommodity = "Komoditi"
	HeaderTier      = "Tingkat"
	HeaderRegion    = "Prov/Kab/Kota"
)

// 参考数据表 choice 中的列（原始表头）
const (
	ChoiceCommodity = "komoditi"
	ChoiceTier      = "tingkatan"
	ChoiceProvince  = "Provinsi"
)

// ColumnRole 表头列的角色
type ColumnRole int

const (
	RoleIgnored  ColumnRole = iota // 与价格无关的列（序号、单位、平均值等）
	RoleMetadata                   // 实体元数据列
	RoleDate                       // 日期列（值为当日价格）
)

// Column 单个表头列的识别结果
type Column struct {
	Index     int        `json:"index"`     // Excel 列索引（从 0 开始）
	Raw       string     `json:"raw"`       // 原始表头
	Canonical string     `json:"canonical"` // 统一口径列名，日期列为 ISO 日期
	Role      ColumnRole `json:"role"`
}

// HeaderRow 表头行：原始值、渲染值与单元格是否使用日期格式，三者按列对齐
type HeaderRow struct {
	Raw        []string
	Formatted  []string
	DateStyled []bool
}

func (h HeaderRow) dateStyled(i int) bool {
	return i < len(h.DateStyled) && h.DateStyled[i]
}

// HeaderLayout 一张月度价格表的表头识别结果
type HeaderLayout struct {
	Metadata []Column `json:"metadata"`
	Dates    []Column `json:"dates"`
	Ignored  []Column `json:"ignored"`
}

// MissingMetadata 返回缺失的必需元数据列（统一口径名）
func (l HeaderLayout) MissingMetadata(required []string) []string {
	have := make(map[string]bool, len(l.Metadata))
	for _, c := range l.Metadata {
		have[c.Canonical] = true
	}
	var missing []string
	for _, r := range required {
		if !have[r] {
			missing = append(missing, r)
		}
	}
	return missing
}

// ColumnAliases 表头别名 → 统一口径列名，可由 config.toml 的 [source.column_aliases] 扩展
type ColumnAliases map[string]string
