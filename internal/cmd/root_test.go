package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenesisAN/gbk2utf8/core/charset"
	"github.com/GenesisAN/gbk2utf8/internal/output"
)

const gbkSource = "// 你好世界\nint main() { return 0; }\n"

func init() {
	output.DisableColor()
}

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	data, err := charset.EncodeGBK([]byte(s))
	require.NoError(t, err)
	return data
}

// run 在隔离的 HOME 下执行一次命令
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", t.TempDir())

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootConvertsWithBackup(t *testing.T) {
	dir := t.TempDir()
	original := gbk(t, gbkSource)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.c"), original, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.h"), []byte(gbkSource), 0644))

	out, err := run(t, "-d", dir, "-b", "-i")
	require.NoError(t, err, out)

	got, err := os.ReadFile(filepath.Join(dir, "a.c"))
	require.NoError(t, err)
	assert.Equal(t, gbkSource, string(got))

	backup, err := os.ReadFile(filepath.Join(dir, "a.c.bak"))
	require.NoError(t, err)
	assert.Equal(t, original, backup)

	assert.Contains(t, out, "已转换")
	assert.Contains(t, out, "明确是 UTF-8，跳过")
	assert.Contains(t, out, "✅ 所有文件处理完成")
}

func TestRootScanOnly(t *testing.T) {
	dir := t.TempDir()
	original := gbk(t, gbkSource)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.C"), original, 0644))

	out, err := run(t, "-d", dir, "-s", "-i")
	require.NoError(t, err, out)
	assert.Contains(t, out, "可转换")

	got, err := os.ReadFile(filepath.Join(dir, "a.C"))
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestRootMissingDir(t *testing.T) {
	out, err := run(t, "-d", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, out, "扫描目录失败")
}

func TestRootFailuresExitNonZero(t *testing.T) {
	dir := t.TempDir()
	bad := append(gbk(t, gbkSource), 0xFF)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.c"), bad, 0644))

	out, err := run(t, "-d", dir)
	require.Error(t, err)
	assert.Contains(t, out, "以下文件转换失败：")
}

func TestRootInvalidConfig(t *testing.T) {
	_, err := run(t, "-d", t.TempDir(), "-m", "1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detection.min_confidence")
}

func TestJournalAndHistory(t *testing.T) {
	dir := t.TempDir()
	journal := filepath.Join(t.TempDir(), "runs.db")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.c"), gbk(t, gbkSource), 0644))

	out, err := run(t, "-d", dir, "--journal", journal)
	require.NoError(t, err, out)
	m := regexp.MustCompile(`运行记录 ID：(\w{26})`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)

	out, err = run(t, "history", "--journal", journal)
	require.NoError(t, err, out)
	assert.Contains(t, out, dir)
	assert.Contains(t, out, m[1])
	assert.Contains(t, out, "转换")

	out, err = run(t, "history", "--journal", journal, "--run", m[1])
	require.NoError(t, err, out)
	assert.Contains(t, out, "a.c")
}

func TestHistoryRequiresJournal(t *testing.T) {
	_, err := run(t, "history")
	assert.ErrorIs(t, err, errNoJournal)
}

func TestAnalyzeNeverMutates(t *testing.T) {
	dir := t.TempDir()
	original := gbk(t, gbkSource)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.c"), original, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.c"), []byte("int x;\n"), 0644))
	report := filepath.Join(t.TempDir(), "report.txt")

	out, err := run(t, "analyze", "--report", report, dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "汉字对 = 4")

	got, err := os.ReadFile(filepath.Join(dir, "a.c"))
	require.NoError(t, err)
	assert.Equal(t, original, got)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "文件总数: 2")
	assert.Contains(t, text, "convertible")
	assert.Contains(t, text, "skipped:utf8")
	assert.NotContains(t, text, "\x1b[")
	assert.NotContains(t, text, "{")
}

func TestConfigCommandPrintsTOML(t *testing.T) {
	out, err := run(t, "config", "-e", "c,h,cpp", "--strategy", "statistical")
	require.NoError(t, err)
	assert.Contains(t, out, "[detection]")
	assert.Contains(t, out, "statistical")
	assert.Contains(t, out, "cpp")
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "gbk2utf8")
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "版本 v1.2.0")
}

func TestRootStatisticalStrategy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.c"), gbk(t, gbkSource), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.c"), gbk(t, "中文测试文件"), 0644))

	out, err := run(t, "-d", dir, "--strategy", "statistical", "-i")
	require.NoError(t, err, out)

	got, err := os.ReadFile(filepath.Join(dir, "a.c"))
	require.NoError(t, err)
	assert.Equal(t, gbkSource, string(got))

	got, err = os.ReadFile(filepath.Join(dir, "b.c"))
	require.NoError(t, err)
	assert.Equal(t, "中文测试文件", string(got))
}
