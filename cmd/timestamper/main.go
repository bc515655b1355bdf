package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/timestamper/internal/app/run"
	"github.com/John-Robertt/timestamper/internal/config"
	"github.com/John-Robertt/timestamper/internal/domain"
	"github.com/John-Robertt/timestamper/internal/exif/exiftool"
	"github.com/John-Robertt/timestamper/internal/infra/fsx"
	"github.com/John-Robertt/timestamper/internal/scan"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Dir:       ra.Dir,
		StartTime: ra.StartTime,
		Interval:  ra.Interval,
		SortBy:    ra.SortBy,
		SortBySet: ra.SortBySet,
		DryRun:    ra.DryRun,
		DryRunSet: ra.DryRunSet,
		Verbose:   ra.Verbose,
	})
	if err != nil {
		rr := reportForFatal(ra, config.Code(err), err)
		emitReport(rr)
		return 1
	}

	ed, err := exiftool.New(eff.ExiftoolPath)
	if err != nil {
		rr := reportForFatal(ra, domain.ErrCodeExiftoolMissing, err)
		rr.Dir = eff.Dir
		emitReport(rr)
		return 1
	}
	defer func() { _ = ed.Close() }()

	// 中断（Ctrl-C）只在文件之间生效：run 层保证不会把单个文件停在半路。
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW, eff.Verbose)
	}

	rr := run.ExecuteWithObserver(ctx, eff, ed, obs)

	// apply：写入 <dir>/.timestamper/report.json；dry-run 禁止落盘。
	if !eff.DryRun {
		if err := writeReportFile(eff.Dir, rr); err != nil {
			fmt.Fprintf(os.Stderr, "写入 report.json 失败：%v\n", err)
			emitReport(rr)
			return 1
		}
	}

	emitReport(rr)
	if interactive && !eff.DryRun {
		fmt.Fprintf(progressW, "report: %s\n", filepath.Join(eff.Dir, scan.ReportDirName, "report.json"))
	}
	if rr.Summary.Failed == 0 {
		return 0
	}
	return 1
}

type runArgs struct {
	Dir       string
	StartTime string
	Interval  string

	SortBy    string
	SortBySet bool

	DryRun    bool
	DryRunSet bool

	Verbose bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}
	positional := make([]string, 0, 3)

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--sort-by":
			if i+1 >= len(args) {
				return runArgs{}, fmt.Errorf("--sort-by 需要一个值")
			}
			i++
			ra.SortBy = args[i]
			ra.SortBySet = true
		case strings.HasPrefix(a, "--sort-by="):
			ra.SortBy = strings.TrimPrefix(a, "--sort-by=")
			ra.SortBySet = true
		case a == "--dry-run":
			ra.DryRun = true
			ra.DryRunSet = true
		case strings.HasPrefix(a, "--dry-run="):
			v := strings.TrimPrefix(a, "--dry-run=")
			switch v {
			case "true":
				ra.DryRun = true
			case "false":
				ra.DryRun = false
			default:
				return runArgs{}, fmt.Errorf("--dry-run 只能是 true 或 false，实际是 %q", v)
			}
			ra.DryRunSet = true
		case a == "--verbose" || a == "-v":
			ra.Verbose = true
		case strings.HasPrefix(a, "--"):
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		case strings.HasPrefix(a, "-") && len(a) > 1 && !isNumberLike(a):
			// 负数 interval（如 -5、-1.5）是合法的位置参数，不能当成未知 flag。
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			positional = append(positional, a)
		}
	}

	if len(positional) < 3 {
		return runArgs{}, fmt.Errorf("需要三个位置参数：<directory> <start_time> <interval>，实际只有 %d 个", len(positional))
	}
	if len(positional) > 3 {
		return runArgs{}, fmt.Errorf("多余的位置参数：%q", positional[3])
	}
	ra.Dir = positional[0]
	ra.StartTime = positional[1]
	ra.Interval = positional[2]

	if ra.SortBySet {
		if _, ok := domain.ParseSortCriterion(ra.SortBy); !ok {
			return runArgs{}, fmt.Errorf("--sort-by 只能是 name、created 或 modified，实际是 %q", ra.SortBy)
		}
	}

	return ra, nil
}

func isNumberLike(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	c := s[1]
	return (c >= '0' && c <= '9') || c == '.'
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  timestamper run <directory> <start_time> <interval> [--sort-by name|created|modified] [--dry-run[=true|false]] [--verbose|-v]

命令：
  run    按顺序为目录内的照片写入等间隔的拍摄时间戳（并在 UserComment 追加审计注释）

使用 "timestamper run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  timestamper run <directory> <start_time> <interval> [--sort-by name|created|modified] [--dry-run[=true|false]] [--verbose|-v]

参数：
  directory    照片所在目录（非递归）
  start_time   起始时间戳，格式 "YYYY:MM:DD HH:MM:SS"
  interval     相邻两张照片之间的分钟数（可为负、零或小数，如 1.5）
  --sort-by    排序方式：name（默认）|created|modified（未指定则读配置文件）
  --dry-run    只汇报将要做的修改，不写任何文件；支持 --dry-run=false 覆盖配置
  -v, --verbose  输出每个文件的详细过程
  -h, --help   显示帮助

依赖：宿主机需安装 ExifTool（可通过 <directory>/timestamper.toml 的 exiftool 字段指定路径）。
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：written=%d would_write=%d skipped=%d failed=%d\n",
			rr.Summary.Written, rr.Summary.WouldWrite, rr.Summary.Skipped, rr.Summary.Failed,
		)
		if rr.Summary.Failed > 0 {
			for _, f := range rr.Files {
				if f.Status != domain.StatusFailed {
					continue
				}
				name := f.Name
				if name == "" {
					name = "<run>"
				}
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", name, f.ErrorCode, f.ErrorMsg)
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：written=%d would_write=%d skipped=%d failed=%d\n",
		rr.Summary.Written, rr.Summary.WouldWrite, rr.Summary.Skipped, rr.Summary.Failed,
	)
}

func reportForFatal(ra runArgs, code string, err error) domain.RunReport {
	now := time.Now()
	rr := domain.RunReport{
		Dir:        ra.Dir,
		DryRun:     ra.DryRunSet && ra.DryRun,
		SortBy:     ra.SortBy,
		StartedAt:  now,
		FinishedAt: now,
		Files: []domain.FileResult{{
			Name:      "",
			Status:    domain.StatusFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func writeReportFile(dir string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Join(dir, scan.ReportDirName), "report.json", b)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
