// Package table 提供与具体表格库无关的有序记录序列以及宽表转长表（melt）操作。
package table

// Table 有序记录序列：一行表头 + 若干数据行，单元格均为文本
type Table struct {
	Header []string
	Rows   [][]string
}

// Index 返回列名所在位置，不存在时返回 -1
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Len 数据行数
func (t *Table) Len() int { return len(t.Rows) }

// Value 读取指定行列的值，越界时返回空串
func (t *Table) Value(row int, column string) string {
	idx := t.Index(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}
