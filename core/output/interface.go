package output

import "github.com/GenesisAN/gbk2utf8/core/converter"

// Reporter 接收每个文件的处理结果，核心逻辑不直接写控制台
type Reporter interface {
	// FileDone 单个文件处理结束
	FileDone(result converter.FileResult)
	// DirFailed 子目录读取失败，该目录不再深入
	DirFailed(path string, err error)
}

// Discard 丢弃所有结果
var Discard Reporter = discard{}

type discard struct{}

func (discard) FileDone(converter.FileResult) {}
func (discard) DirFailed(string, error)       {}

// Multi 将结果依次转发给多个 Reporter
type Multi []Reporter

// FileDone 实现 Reporter 接口
func (m Multi) FileDone(result converter.FileResult) {
	for _, r := range m {
		r.FileDone(result)
	}
}

// DirFailed 实现 Reporter 接口
func (m Multi) DirFailed(path string, err error) {
	for _, r := range m {
		r.DirFailed(path, err)
	}
}
