package importer

import "time"

// SheetReport 单个月度 Sheet 的加载统计
type SheetReport struct {
	SheetName       string        `json:"sheetName"`
	EntityRows      int           `json:"entityRows"`      // 实体行数（不含表头）
	DateColumns     int           `json:"dateColumns"`     // 识别出的日期列数
	RawRows         int           `json:"rawRows"`         // 展开后的行数 = 实体行 × 日期列
	ImportedRows    int           `json:"importedRows"`    // 通过校验的行数
	DroppedPrice    int           `json:"droppedPrice"`    // 价格为空或非数字而丢弃
	DroppedMetadata int           `json:"droppedMetadata"` // 商品/等级/地区为空而丢弃
	IgnoredColumns  []string      `json:"ignoredColumns,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// LoadReport 历史数据加载报告
type LoadReport struct {
	Filename     string        `json:"filename"`
	TotalSheets  int           `json:"totalSheets"`
	RawRows      int           `json:"rawRows"`
	ImportedRows int           `json:"importedRows"`
	DroppedRows  int           `json:"droppedRows"`
	Duration     time.Duration `json:"duration"`
	Sheets       []SheetReport `json:"sheets"`
}

func (r *LoadReport) add(s SheetReport) {
	r.TotalSheets++
	r.RawRows += s.RawRows
	r.ImportedRows += s.ImportedRows
	r.DroppedRows += s.DroppedPrice + s.DroppedMetadata
	r.Sheets = append(r.Sheets, s)
}
