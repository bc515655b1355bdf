package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/timestamper/internal/app/run"
	"github.com/John-Robertt/timestamper/internal/config"
	"github.com/John-Robertt/timestamper/internal/domain"
	"github.com/John-Robertt/timestamper/internal/scan"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端的进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - 处理严格串行，事件来自单一 goroutine，无需加锁
type progressUI struct {
	w       io.Writer
	verbose bool
}

func newProgressUI(w io.Writer, verbose bool) *progressUI {
	return &progressUI{w: w, verbose: verbose}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig, runID string) {
	now := time.Now()

	mode := "apply"
	modeHint := ""
	if eff.DryRun {
		mode = "dry-run"
		modeHint = " (不写入任何文件)"
	}

	fmt.Fprintf(p.w, "[%s] timestamper run (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  dir: %s\n", eff.Dir)
	fmt.Fprintf(p.w, "  mode: %s%s\n", mode, modeHint)
	fmt.Fprintf(p.w, "  start_time: %s\n", eff.StartTime.Format(domain.TimeLayout))
	fmt.Fprintf(p.w, "  interval: %s 分钟\n", eff.Interval)
	if eff.Interval.IsZero() {
		fmt.Fprintln(p.w, "  (interval=0：所有文件将共享同一时刻)")
	}
	fmt.Fprintf(p.w, "  sort_by: %s\n", eff.SortBy)
	fmt.Fprintf(p.w, "  run_id: %s\n", runID)
	if p.verbose {
		fmt.Fprintf(p.w, "  exiftool: %s\n", exiftoolLabel(eff.ExiftoolPath))
		fmt.Fprintf(p.w, "  extensions: %s\n", formatStringListJSON(eff.Extensions))
	}
	if !eff.DryRun {
		fmt.Fprintln(p.w, "输出:")
		fmt.Fprintf(p.w, "  report: %s\n", filepath.Join(eff.Dir, scan.ReportDirName, "report.json"))
	}
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	switch name {
	case "scan":
		fmt.Fprintf(p.w, "枚举: files=%d (%s)\n", intField(fields, "files"), formatShortDuration(dur))
	case "order":
		if p.verbose {
			fmt.Fprintf(p.w, "排序: files=%d sort_by=%v (%s)\n",
				intField(fields, "files"), fields["sort_by"], formatShortDuration(dur))
		}
	case "plan":
		fmt.Fprintf(p.w, "计划: planned=%d bad=%d (%s)\n\n",
			intField(fields, "planned"), intField(fields, "bad"), formatShortDuration(dur))
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnFileDone(idx, total int, res domain.FileResult, dur time.Duration) {
	status := strings.ToUpper(res.Status)
	switch res.Status {
	case domain.StatusWritten:
		status = "OK"
	case domain.StatusWouldWrite:
		status = "WOULD"
	case domain.StatusSkipped:
		status = "SKIP"
	case domain.StatusFailed:
		status = "FAIL"
	}

	switch res.Status {
	case domain.StatusFailed:
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s: %s (%s)\n",
			idx, total, res.Name, status, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	case domain.StatusSkipped:
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s (%s)\n",
			idx, total, res.Name, status, res.ErrorCode, formatShortDuration(dur),
		)
	default:
		old := strings.TrimSpace(res.OldDateTime)
		if old == "" {
			old = "unset"
		}
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s -> %s (%s)\n",
			idx, total, res.Name, status, old, res.NewDateTime, formatShortDuration(dur),
		)
		if p.verbose {
			fmt.Fprintf(p.w, "        note: %s\n", truncate(res.Note, 200))
		}
	}
}

func exiftoolLabel(path string) string {
	if strings.TrimSpace(path) == "" {
		return "exiftool (PATH)"
	}
	return path
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	default:
		return 0
	}
}
