// Package chart 把过滤后的价格数据绘制成 PNG 折线图
package chart

import (
	"io"
	"math"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"pantauharga/internal/model"
	"pantauharga/internal/view"
)

// Options 图表参数
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions 默认尺寸与标题
func DefaultOptions() Options {
	return Options{
		Title:  "Tren Harga Harian",
		Width:  10 * vg.Inch,
		Height: 5 * vg.Inch,
	}
}

// Series 一条折线：同一商品、同一省份
type Series struct {
	Commodity string
	Province  string
	Points    plotter.XYs
}

// Group 按 (商品, 省份) 分组，保持首次出现的顺序
// 调用方负责预先按日期排序
func Group(rows []model.Observation) []Series {
	type key struct{ commodity, province string }

	index := make(map[key]int)
	var out []Series
	for _, o := range rows {
		k := key{o.Commodity, o.Province}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Series{Commodity: o.Commodity, Province: o.Province})
		}
		price, _ := o.Price.Float64()
		out[i].Points = append(out[i].Points, plotter.XY{
			X: float64(o.Date.Time().Unix()),
			Y: price,
		})
	}
	return out
}

// Build 构建图表：x 为日期，y 为价格，颜色区分商品，每个 (商品, 省份) 一条带标记的折线
func Build(rows []model.Observation, opts Options) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, view.ErrNoData
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = model.ColumnDate
	p.Y.Label.Text = model.ColumnPrice
	p.X.Tick.Marker = plot.TimeTicks{Format: "02 Jan"}
	p.Y.Tick.Marker = priceTicks{printer: message.NewPrinter(language.Indonesian)}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	colors := make(map[string]int)
	for _, s := range Group(rows) {
		ci, seen := colors[s.Commodity]
		if !seen {
			ci = len(colors)
			colors[s.Commodity] = ci
		}

		line, points, err := plotter.NewLinePoints(s.Points)
		if err != nil {
			return nil, eris.Wrapf(err, "series %s/%s", s.Commodity, s.Province)
		}
		c := plotutil.Color(ci)
		line.Color = c
		line.Width = vg.Points(1.5)
		points.Color = c
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(2.5)
		p.Add(line, points)

		// 图例每个商品只出现一次
		if !seen {
			p.Legend.Add(s.Commodity, line, points)
		}
	}
	return p, nil
}

// Render 把图表以 PNG 写入 w；没有数据时返回 view.ErrNoData
func Render(w io.Writer, rows []model.Observation, opts Options) error {
	p, err := Build(rows, opts)
	if err != nil {
		return err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return eris.Wrap(err, "create png writer")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return eris.Wrap(err, "write png")
	}
	return nil
}

// priceTicks 使用印尼语千分位（15.000）标注价格刻度
type priceTicks struct {
	printer *message.Printer
}

func (t priceTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label == "" {
			continue
		}
		ticks[i].Label = t.printer.Sprintf("%d", int64(math.Round(ticks[i].Value)))
	}
	return ticks
}
