package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusWritten    = "written"
	StatusWouldWrite = "would_write"
	StatusSkipped    = "skipped"
	StatusFailed     = "failed"
)

const (
	ErrCodeReadFailed        = "read_failed"
	ErrCodeWriteFailed       = "write_failed"
	ErrCodePartialWrite      = "partial_write"
	ErrCodeUnsupportedFormat = "unsupported_format"
	ErrCodeBadTimestamp      = "bad_timestamp"
	ErrCodeCancelled         = "cancelled"
	ErrCodeDirNotFound       = "dir_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeBadStartTime      = "bad_start_time"
	ErrCodeBadInterval       = "bad_interval"
	ErrCodeBadSortBy         = "bad_sort_by"
	ErrCodeExiftoolMissing   = "exiftool_missing"
)

// RunReport 是对外稳定输出（report.json / stdout JSON）的结构。
type RunReport struct {
	Dir    string `json:"dir"`
	DryRun bool   `json:"dry_run"`
	SortBy string `json:"sort_by"`

	// RunID 在每条审计注释中出现，用于把一次运行与它写下的所有痕迹对应起来。
	RunID string `json:"run_id"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Files   []FileResult  `json:"files"`
}

type ReportSummary struct {
	Written    int `json:"written"`
	WouldWrite int `json:"would_write"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// FileResult 是单个文件的处理结论。Files 的顺序就是处理顺序
// （排序引擎的输出顺序），Finalize 不重排。
type FileResult struct {
	Name string `json:"name"`

	OldDateTime string `json:"old_datetime"` // 写入前的 DateTimeOriginal；无则空串
	NewDateTime string `json:"new_datetime"` // 计划/已写入的值
	Note        string `json:"note"`         // 本次追加后的完整 UserComment

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 files 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	var s ReportSummary
	for _, f := range r.Files {
		switch f.Status {
		case StatusWritten:
			s.Written++
		case StatusWouldWrite:
			s.WouldWrite++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
