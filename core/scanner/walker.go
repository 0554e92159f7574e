package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"go.uber.org/zap"

	"github.com/GenesisAN/gbk2utf8/core/converter"
	"github.com/GenesisAN/gbk2utf8/core/output"
)

// FileHandler 处理单个文件
type FileHandler interface {
	Handle(path string) converter.FileResult
}

// Summary 一次遍历的统计
type Summary struct {
	Visited     int
	Converted   int
	Convertible int
	Skipped     int
	Failed      int
	Ledger      *ErrorLedger
}

// add 累计单个文件结果
func (s *Summary) add(result converter.FileResult) {
	s.Visited++
	switch result.State {
	case converter.StateConverted:
		s.Converted++
	case converter.StateConvertible:
		s.Convertible++
	case converter.StateSkipped:
		s.Skipped++
	case converter.StateFailed:
		s.Failed++
		s.Ledger.Record(result.Path, result.Err)
	}
}

// Walker 深度优先遍历目录，用显式栈代替递归
type Walker struct {
	extensions map[string]bool
	handler    FileHandler
	reporter   output.Reporter
	logger     *zap.Logger
}

// NewWalker 创建遍历器
func NewWalker(extensions []string, handler FileHandler, reporter output.Reporter, logger *zap.Logger) *Walker {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	if reporter == nil {
		reporter = output.Discard
	}
	return &Walker{
		extensions: set,
		handler:    handler,
		reporter:   reporter,
		logger:     logger.Named("walker"),
	}
}

// Matches 判断文件扩展名是否在处理范围内（不区分大小写）
func (w *Walker) Matches(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && w.extensions[ext]
}

// Walk 遍历 root 下所有目录
//
// 根目录无法读取时返回错误；子目录读取失败记入账本并跳过该子树，
// 其余目录照常处理。ctx 仅在文件之间检查。
func (w *Walker) Walk(ctx context.Context, root string) (*Summary, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &DirError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &DirError{Path: root, Err: ErrNotDir}
	}

	summary := &Summary{Ledger: NewErrorLedger()}
	scratch := make([]byte, godirwalk.MinimumScratchBufferSize)
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dirents, err := godirwalk.ReadDirents(dir, scratch)
		if err != nil {
			derr := &DirError{Path: dir, Err: err}
			if dir == root {
				return nil, derr
			}
			w.logger.Warn("读取目录失败", zap.String("path", dir), zap.Error(err))
			summary.Ledger.Record(dir, derr)
			w.reporter.DirFailed(dir, derr)
			continue
		}
		sort.Sort(dirents)

		var subdirs []string
		for _, de := range dirents {
			path := filepath.Join(dir, de.Name())
			switch {
			case de.IsSymlink():
				w.logger.Debug("跳过符号链接", zap.String("path", path))
			case de.IsDir():
				subdirs = append(subdirs, path)
			case de.IsRegular() && w.Matches(de.Name()):
				if err := ctx.Err(); err != nil {
					return summary, err
				}
				result := w.handler.Handle(path)
				summary.add(result)
				w.reporter.FileDone(result)
			}
		}

		// 逆序入栈，保证按名称顺序深入
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	return summary, nil
}
