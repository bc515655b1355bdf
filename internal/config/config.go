package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/John-Robertt/timestamper/internal/app/schedule"
	"github.com/John-Robertt/timestamper/internal/domain"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeDirNotFound 表示目标目录不存在或不是目录。
	ErrCodeDirNotFound = "dir_not_found"
	// ErrCodeBadStartTime 表示 start_time 不是 "YYYY:MM:DD HH:MM:SS"。
	ErrCodeBadStartTime = "bad_start_time"
	// ErrCodeBadInterval 表示 interval 不是合法的十进制分钟数。
	ErrCodeBadInterval = "bad_interval"
	// ErrCodeBadSortBy 表示 sort-by 不是 name/created/modified 之一。
	ErrCodeBadSortBy = "bad_sort_by"
)

// DefaultSortBy 是排序方式的最终默认值（当 CLI 与配置文件都未指定时）。
const DefaultSortBy = domain.SortByName

// ConfigFileName 是目标目录下的可选配置文件。
const ConfigFileName = "timestamper.toml"

// StartTimeLayout 即 CLI 要求的 start_time 格式。
const StartTimeLayout = domain.TimeLayout

// CLIArgs 保存 CLI 暴露的入口，并对可被配置文件覆盖的项保留
// “是否显式指定”的信息，保证覆盖优先级可实现
// （例如 --dry-run=false 必须能覆盖配置里的 dry_run=true）。
type CLIArgs struct {
	Dir       string
	StartTime string
	Interval  string

	SortBy    string
	SortBySet bool

	DryRun    bool
	DryRunSet bool

	Verbose bool
}

// FileConfig 对应 timestamper.toml 的解析结构（全部可选）。
type FileConfig struct {
	SortBy     string   `toml:"sort_by"`
	DryRun     *bool    `toml:"dry_run"`
	Exiftool   string   `toml:"exiftool"`
	Extensions []string `toml:"extensions"`
}

// EffectiveConfig 是合并并校验后的最终配置（实现层直接消费，
// 不再做二次默认/优先级判断）。一次运行期间不可变。
type EffectiveConfig struct {
	Dir string

	StartTime time.Time
	Interval  schedule.Interval

	SortBy  domain.SortCriterion
	DryRun  bool
	Verbose bool

	// ExiftoolPath 允许在 exiftool 不在 PATH 上时指定绝对路径（仅配置文件）。
	ExiftoolPath string
	// Extensions 为空时用 scan.DefaultExtensions。
	Extensions []string
}

// Error 是配置阶段的结构化错误（带 error_code）。所有配置错误都是致命的：
// 批处理开始前失败，不触碰任何文件。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeDirNotFound:
		return fmt.Sprintf("%s：目录不存在或不是目录：%q", e.Code, e.Path)
	case ErrCodeBadStartTime:
		return fmt.Sprintf("%s：start_time %q 不符合 %q 格式：%v", e.Code, e.Path, "YYYY:MM:DD HH:MM:SS", e.Err)
	case ErrCodeBadInterval:
		return fmt.Sprintf("%s：interval %q 无效：%v", e.Code, e.Path, e.Err)
	case ErrCodeBadSortBy:
		return fmt.Sprintf("%s：sort-by 只能是 name、created 或 modified，实际是 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 校验目录、解析 start_time/interval，读取目录下可选的
// timestamper.toml，并与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：
// - sort-by：CLI > config > 默认 name
// - dry-run：CLI --dry-run/--dry-run=false > config > 默认 false
// - exiftool / extensions：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	dir := absCleanFrom(cwd, cli.Dir)
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return EffectiveConfig{}, &Error{Code: ErrCodeDirNotFound, Path: dir, Err: err}
	}

	start, err := time.Parse(StartTimeLayout, strings.TrimSpace(cli.StartTime))
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeBadStartTime, Path: cli.StartTime, Err: err}
	}

	interval, err := schedule.ParseInterval(cli.Interval)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeBadInterval, Path: cli.Interval, Err: err}
	}

	cfgPath := filepath.Join(dir, ConfigFileName)
	fc, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// sort-by：CLI > config > 默认
	sortRaw := string(DefaultSortBy)
	if cli.SortBySet {
		sortRaw = cli.SortBy
	} else if strings.TrimSpace(fc.SortBy) != "" {
		sortRaw = fc.SortBy
	}
	sortBy, ok := domain.ParseSortCriterion(sortRaw)
	if !ok {
		return EffectiveConfig{}, &Error{Code: ErrCodeBadSortBy, Path: sortRaw}
	}

	// dry-run：CLI > config > 默认 false
	dryRun := false
	if cli.DryRunSet {
		dryRun = cli.DryRun
	} else if fc.DryRun != nil {
		dryRun = *fc.DryRun
	}

	return EffectiveConfig{
		Dir:          dir,
		StartTime:    start,
		Interval:     interval,
		SortBy:       sortBy,
		DryRun:       dryRun,
		Verbose:      cli.Verbose,
		ExiftoolPath: strings.TrimSpace(fc.Exiftool),
		Extensions:   append([]string(nil), fc.Extensions...),
	}, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件（不存在不算错误）。
func readFileConfig(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, err
	}
	var fc FileConfig
	if err := toml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, err
	}
	return fc, nil
}
