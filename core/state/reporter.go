package state

import (
	"go.uber.org/zap"

	"github.com/GenesisAN/gbk2utf8/core/converter"
)

// Recorder 把处理结果写入日志的 Reporter，写入失败只记录警告
type Recorder struct {
	manager *Manager
	run     *Run
}

// NewRecorder 为一次运行创建 Recorder
func NewRecorder(manager *Manager, run *Run) *Recorder {
	return &Recorder{manager: manager, run: run}
}

// Run 返回当前运行
func (r *Recorder) Run() *Run {
	return r.run
}

// FileDone 实现 output.Reporter
func (r *Recorder) FileDone(result converter.FileResult) {
	r.run.Visited++
	switch result.State {
	case converter.StateConverted:
		r.run.Converted++
	case converter.StateConvertible:
		r.run.Convertible++
	case converter.StateSkipped:
		r.run.Skipped++
	case converter.StateFailed:
		r.run.Failed++
	}
	r.record(NewFileRecord(result))
}

// DirFailed 实现 output.Reporter
func (r *Recorder) DirFailed(path string, err error) {
	r.record(&FileRecord{Path: path, State: StateDirFailed, Error: err.Error()})
}

// Finish 保存最终统计
func (r *Recorder) Finish() error {
	return r.manager.FinishRun(r.run)
}

func (r *Recorder) record(record *FileRecord) {
	if err := r.manager.Record(r.run.ID, record); err != nil {
		r.manager.logger.Warn("写入运行日志失败", zap.String("path", record.Path), zap.Error(err))
	}
}
