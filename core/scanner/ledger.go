package scanner

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotDir 遍历的根路径不是目录
var ErrNotDir = errors.New("不是目录")

// ErrorLedger 记录一次遍历中每个路径的错误，只追加，不会中断遍历
type ErrorLedger struct {
	entries map[string]error
}

// LedgerEntry 账本中的一条记录
type LedgerEntry struct {
	Path string
	Err  error
}

// NewErrorLedger 创建空账本
func NewErrorLedger() *ErrorLedger {
	return &ErrorLedger{entries: make(map[string]error)}
}

// Record 记录路径对应的错误，同一路径以最后一次为准
func (l *ErrorLedger) Record(path string, err error) {
	if err == nil {
		return
	}
	l.entries[path] = err
}

// Get 返回路径对应的错误
func (l *ErrorLedger) Get(path string) (error, bool) {
	err, ok := l.entries[path]
	return err, ok
}

// Len 返回记录数
func (l *ErrorLedger) Len() int {
	return len(l.entries)
}

// Entries 按路径排序返回所有记录
func (l *ErrorLedger) Entries() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l.entries))
	for path, err := range l.entries {
		out = append(out, LedgerEntry{Path: path, Err: err})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// DirError 目录读取失败
type DirError struct {
	Path string
	Err  error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("读取目录 %s 失败: %v", e.Path, e.Err)
}

// Unwrap 支持错误链
func (e *DirError) Unwrap() error {
	return e.Err
}
