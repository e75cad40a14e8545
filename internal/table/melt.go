package table

import "github.com/rotisserie/eris"

// MeltSpec 宽表转长表的列定义
type MeltSpec struct {
	IDColumns    []string // 保留的实体列
	ValueColumns []string // 被展开的列（例如每日价格列）
	VarName      string   // 新的变量列名，取值为原列名
	ValueName    string   // 新的值列名，取值为原单元格
}

// Melt 宽表转长表
// 每个实体行 × 每个值列产出一行，顺序为：先按值列，再按实体行
// 结果行数恒等于 len(Rows) × len(ValueColumns)，不做任何过滤
func Melt(t *Table, spec MeltSpec) (*Table, error) {
	if spec.VarName == "" || spec.ValueName == "" {
		return nil, eris.New("table: melt requires VarName and ValueName")
	}

	// 同名列按出现顺序依次对应
	used := make(map[int]bool, len(t.Header))
	resolve := func(column string) int {
		for i, h := range t.Header {
			if h == column && !used[i] {
				used[i] = true
				return i
			}
		}
		return -1
	}

	idIdx := make([]int, len(spec.IDColumns))
	for i, c := range spec.IDColumns {
		if idIdx[i] = resolve(c); idIdx[i] < 0 {
			return nil, eris.Errorf("table: id column %q not found", c)
		}
	}
	valIdx := make([]int, len(spec.ValueColumns))
	for i, c := range spec.ValueColumns {
		if valIdx[i] = resolve(c); valIdx[i] < 0 {
			return nil, eris.Errorf("table: value column %q not found", c)
		}
	}

	header := append(append([]string(nil), spec.IDColumns...), spec.VarName, spec.ValueName)
	out := &Table{
		Header: header,
		Rows:   make([][]string, 0, len(t.Rows)*len(spec.ValueColumns)),
	}

	for vi, vcol := range spec.ValueColumns {
		for _, row := range t.Rows {
			r := make([]string, 0, len(header))
			for _, idx := range idIdx {
				r = append(r, cell(row, idx))
			}
			r = append(r, vcol, cell(row, valIdx[vi]))
			out.Rows = append(out.Rows, r)
		}
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
