package exiftool

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/John-Robertt/timestamper/internal/exif"
)

// DefaultCommand 假定 exiftool 在 PATH 上；配置文件可指定绝对路径。
const DefaultCommand = "exiftool"

// stderrMarkPrefix 是每条命令结尾通过 -echo4 回显到 stderr 的同步标记前缀。
// stdout 与 stderr 是两条独立管道，之间没有先后保证；只有读到本条命令的
// 标记，才能确定它的 warning 已经全部到达。
const stderrMarkPrefix = "{stderr-sync-"

// NotFoundError 表示宿主机上找不到可用的 exiftool。
// 上层映射为致命错误（error_code=exiftool_missing），批处理开始前失败。
type NotFoundError struct {
	Command string
	Err     error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("找不到 exiftool（command=%q）；请安装 ExifTool 并确保其在 PATH 上：%v", e.Command, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Tool 维护一个 -stay_open 模式的常驻 exiftool 进程，避免逐文件冷启动。
//
// 协议：参数逐行写入 stdin，"-execute" 触发执行，stdout 读到 "{ready}"
// 为一条命令的边界。stderr 由后台 goroutine 收集；每条命令以 -echo4
// 标记收尾，读到标记后才取走 stderr 用于错误归类。
// 调用方必须串行使用（run 层本身就是严格串行的）。
type Tool struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner

	seq int64

	mu        sync.Mutex
	stderr    []string
	marks     chan struct{}
	drainDone chan struct{}
}

var _ exif.Editor = (*Tool)(nil)

// New 启动 stay_open 进程。command 为空时用 DefaultCommand。
func New(command string) (*Tool, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	if _, err := exec.LookPath(command); err != nil {
		return nil, &NotFoundError{Command: command, Err: err}
	}

	cmd := exec.Command(command, "-stay_open", "True", "-@", "-")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe：%w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe：%w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe：%w", err)
	}

	t := &Tool{
		cmd:       cmd,
		stdin:     stdin,
		stdout:    bufio.NewScanner(stdout),
		marks:     make(chan struct{}, 1),
		drainDone: make(chan struct{}),
	}

	go func() {
		defer close(t.drainDone)
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			line := sc.Text()
			if strings.HasPrefix(line, stderrMarkPrefix) {
				t.marks <- struct{}{}
				continue
			}
			t.mu.Lock()
			t.stderr = append(t.stderr, line)
			t.mu.Unlock()
		}
	}()

	if err := cmd.Start(); err != nil {
		return nil, &NotFoundError{Command: command, Err: err}
	}
	return t, nil
}

// Close 优雅关闭常驻进程（-stay_open False）。
func (t *Tool) Close() error {
	if _, err := fmt.Fprintln(t.stdin, "-stay_open"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(t.stdin, "False"); err != nil {
		return err
	}
	if err := t.stdin.Close(); err != nil {
		return err
	}
	return t.cmd.Wait()
}

// ReadMeta 读取 DateTimeOriginal 与 UserComment。
//
// 用 -j（JSON）输出而不是逐行的 "Tag: value"：JSON 会转义值里的换行，
// 已有的多行 UserComment 不会在行边界上被截断（截断会让下一次写入
// 毁掉第一行之后的全部内容）。
func (t *Tool) ReadMeta(ctx context.Context, path string) (exif.Meta, error) {
	out, errText, err := t.execute(ctx, "-j", "-DateTimeOriginal", "-UserComment", path)
	if err != nil {
		return exif.Meta{}, &exif.ReadError{Path: path, Err: err}
	}
	if hasError(errText) {
		if isUnsupported(errText) {
			return exif.Meta{}, &exif.UnsupportedError{Path: path, Err: fmt.Errorf("%s", errText)}
		}
		return exif.Meta{}, &exif.ReadError{Path: path, Err: fmt.Errorf("%s", errText)}
	}

	meta, err := parseMeta(out)
	if err != nil {
		return exif.Meta{}, &exif.ReadError{Path: path, Err: err}
	}
	return meta, nil
}

// parseMeta 解析 -j 的 JSON 输出（单文件，数组长度为 1）。
func parseMeta(out string) (exif.Meta, error) {
	var recs []struct {
		DateTimeOriginal string `json:"DateTimeOriginal"`
		UserComment      string `json:"UserComment"`
	}
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		return exif.Meta{}, fmt.Errorf("解析 JSON 输出：%w", err)
	}
	if len(recs) == 0 {
		return exif.Meta{}, fmt.Errorf("JSON 输出为空")
	}
	return exif.Meta{
		DateTimeOriginal: strings.TrimSpace(recs[0].DateTimeOriginal),
		UserComment:      recs[0].UserComment,
	}, nil
}

// Write 在一次 exiftool 往返里同时设置时间戳与注释。
//
// exiftool 对单个文件的改写是整体替换，正常情况下两个字段要么都写入
// 要么都不写；但当其中一个 tag 对该格式不可写时，exiftool 会更新文件
// 并对该 tag 给出 warning；这正是“部分写入”状态，必须与干净失败区分。
func (t *Tool) Write(ctx context.Context, path, dateTime, comment string) error {
	out, errText, err := t.execute(ctx,
		"-m",
		"-overwrite_original_in_place",
		"-DateTimeOriginal="+dateTime,
		"-UserComment="+comment,
		path,
	)
	if err != nil {
		return &exif.WriteError{Path: path, Err: err}
	}

	updated := updatedCount(out)
	if updated < 1 {
		msg := strings.TrimSpace(errText)
		if msg == "" {
			msg = strings.TrimSpace(out)
		}
		if isUnsupported(errText) {
			return &exif.UnsupportedError{Path: path, Err: fmt.Errorf("%s", msg)}
		}
		return &exif.WriteError{Path: path, Err: fmt.Errorf("%s", msg)}
	}

	// 文件已更新：检查是否有 tag 级别的拒绝。
	for _, tag := range []string{"DateTimeOriginal", "UserComment"} {
		if tagRejected(errText, tag) {
			return &exif.PartialWriteError{
				Path:            path,
				AppliedDateTime: tag != "DateTimeOriginal",
				Err:             fmt.Errorf("%s", strings.TrimSpace(errText)),
			}
		}
	}
	return nil
}

// execute 发送一条命令并读取到 {ready} 边界；返回 stdout 文本与这条命令
// 期间收集到的 stderr 文本。
//
// 每条命令都以 "-echo4 <标记>" 收尾：exiftool 在处理完成后把标记回显到
// stderr，排在它为这条命令产生的所有 warning 之后。等到标记再快照
// stderr，tag 拒绝的 warning 就不可能漏在快照之外。
func (t *Tool) execute(ctx context.Context, args ...string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	// 丢弃上一条命令的残留（包括未被等待的同步标记）。
	select {
	case <-t.marks:
	default:
	}
	t.takeStderr()

	t.seq++
	mark := fmt.Sprintf("%s%d}", stderrMarkPrefix, t.seq)

	for _, arg := range args {
		if _, err := fmt.Fprintln(t.stdin, arg); err != nil {
			return "", "", fmt.Errorf("写入参数 %q：%w", arg, err)
		}
	}
	for _, arg := range []string{"-echo4", mark, "-execute"} {
		if _, err := fmt.Fprintln(t.stdin, arg); err != nil {
			return "", "", fmt.Errorf("写入 %q：%w", arg, err)
		}
	}

	var out strings.Builder
	for t.stdout.Scan() {
		line := t.stdout.Text()
		if strings.HasPrefix(line, "{ready}") {
			break
		}
		out.WriteString(line)
		out.WriteString("\n")
	}
	if err := t.stdout.Err(); err != nil {
		return "", "", fmt.Errorf("读取输出：%w", err)
	}

	// 等待 stderr 同步标记；进程退出（管道关闭）时放弃等待。
	select {
	case <-t.marks:
	case <-t.drainDone:
	}

	return out.String(), t.takeStderr(), nil
}

func (t *Tool) takeStderr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.stderr) == 0 {
		return ""
	}
	s := strings.Join(t.stderr, "\n")
	t.stderr = t.stderr[:0]
	return s
}

func hasError(errText string) bool {
	return strings.Contains(errText, "Error:")
}

func isUnsupported(errText string) bool {
	low := strings.ToLower(errText)
	return strings.Contains(low, "unknown file type") ||
		strings.Contains(low, "file format error") ||
		strings.Contains(low, "not yet supported")
}

// updatedCount 解析 "    1 image files updated" 这类汇总行。
func updatedCount(out string) int {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasSuffix(line, "files updated") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if n, err := strconv.Atoi(fields[0]); err == nil {
			return n
		}
	}
	return 0
}

// tagRejected 判断 stderr 里是否有针对某个 tag 的写入拒绝。
func tagRejected(errText, tag string) bool {
	for _, line := range strings.Split(errText, "\n") {
		if !strings.Contains(line, "Warning") && !strings.Contains(line, "Error") {
			continue
		}
		if strings.Contains(line, tag) && strings.Contains(strings.ToLower(line), "not") {
			return true
		}
	}
	return false
}
