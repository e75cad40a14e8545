package importer

import "github.com/rotisserie/eris"

var (
	// ErrSourceNotFound 数据源 Excel 文件不存在
	ErrSourceNotFound = eris.New("source workbook not found")
	// ErrDataNotFound 缺少预期的 Sheet 或列
	ErrDataNotFound = eris.New("data not found")
)
