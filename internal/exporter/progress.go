package exporter

// 导出阶段
const (
	StageStart   = "mulai"
	StageRecap   = "rekapan"
	StageSummary = "ringkasan"
	StageDone    = "selesai"
)

// ProgressEvent 导出进度事件（CLI 与接口日志使用）
// Rows / Total 只在写明细阶段有值
type ProgressEvent struct {
	Percent int
	Stage   string
	Rows    int
	Total   int
}

// 明细阶段占总进度的区间
const (
	recapFrom = 5
	recapTo   = 75
)

// progressTracker 按明细行数换算进度，每写完约 10% 的行报告一次
type progressTracker struct {
	fn    func(ProgressEvent)
	total int
	step  int
}

func newProgressTracker(fn func(ProgressEvent), total int) *progressTracker {
	return &progressTracker{fn: fn, total: total, step: total/10 + 1}
}

func (p *progressTracker) stage(stage string, percent int) {
	p.emit(ProgressEvent{Percent: percent, Stage: stage})
}

// row 第 done 行写完（从 1 开始）
func (p *progressTracker) row(done int) {
	if done%p.step != 0 && done != p.total {
		return
	}
	p.emit(ProgressEvent{
		Percent: recapFrom + (recapTo-recapFrom)*done/p.total,
		Stage:   StageRecap,
		Rows:    done,
		Total:   p.total,
	})
}

func (p *progressTracker) emit(e ProgressEvent) {
	if p == nil || p.fn == nil {
		return
	}
	e.Percent = min(max(e.Percent, 0), 100)
	p.fn(e)
}
