package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrNotInteractive 标准输入不是终端，无法询问
var ErrNotInteractive = errors.New("标准输入不是终端，无法确认")

// Manager 交互确认
type Manager struct {
	stdin       io.ReadCloser
	stdout      io.WriteCloser
	interactive func() bool
}

// NewManager 创建基于当前终端的确认器
func NewManager() *Manager {
	return &Manager{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// NewManagerWithIO 使用给定的输入输出创建确认器，总是视为交互式
func NewManagerWithIO(stdin io.ReadCloser, stdout io.WriteCloser) *Manager {
	return &Manager{
		stdin:       stdin,
		stdout:      stdout,
		interactive: func() bool { return true },
	}
}

// IsInteractive 是否可以询问用户
func (m *Manager) IsInteractive() bool {
	return m.interactive()
}

// Confirm 询问是/否，默认否
func (m *Manager) Confirm(label string) (bool, error) {
	if !m.IsInteractive() {
		return false, ErrNotInteractive
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     m.stdin,
		Stdout:    m.stdout,
	}

	answer, err := prompt.Run()
	if err != nil {
		// 选择 N 时 promptui 返回 ErrAbort
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return false, nil
		}
		return false, fmt.Errorf("确认失败: %w", err)
	}

	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}

// WaitForEnter 打印提示并等待回车，非交互时直接返回
func (m *Manager) WaitForEnter(message string) {
	if !m.IsInteractive() {
		return
	}
	fmt.Fprint(m.stdout, message)
	buf := make([]byte, 1)
	for {
		n, err := m.stdin.Read(buf)
		if err != nil || (n == 1 && buf[0] == '\n') {
			return
		}
	}
}
