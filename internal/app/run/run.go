package run

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/John-Robertt/timestamper/internal/app/order"
	"github.com/John-Robertt/timestamper/internal/app/schedule"
	"github.com/John-Robertt/timestamper/internal/config"
	"github.com/John-Robertt/timestamper/internal/domain"
	"github.com/John-Robertt/timestamper/internal/exif"
	"github.com/John-Robertt/timestamper/internal/scan"
)

// Execute 执行一次 run（dry-run/apply），并返回对外稳定的 RunReport。
// 该函数尽量把错误“降级”为单文件失败（一个文件失败不影响其他文件）。
func Execute(ctx context.Context, eff config.EffectiveConfig, ed exif.Editor) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, ed, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出
// 进度/阶段信息（由上层决定是否启用）。
//
// 处理是严格串行的（设计约束，不是实现偷懒）：审计注释是
// 读-改-写追加，且外部元数据工具对同一文件不保证并发安全。
// 取消只在文件之间检查：一个文件一旦开始处理就会做完，
// 不会因取消而停在“只写了一半”的状态。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, ed exif.Editor, obs Observer) domain.RunReport {
	started := time.Now()
	runID := strconv.FormatInt(started.Unix(), 10)

	if obs != nil {
		obs.OnStart(eff, runID)
	}

	rr := domain.RunReport{
		Dir:       eff.Dir,
		DryRun:    eff.DryRun,
		SortBy:    string(eff.SortBy),
		RunID:     runID,
		StartedAt: started,
		Files:     make([]domain.FileResult, 0, 64),
	}

	scanStarted := time.Now()
	files, err := scan.ScanPhotos(eff.Dir, eff.Extensions)
	if err != nil {
		code := domain.ErrCodeReadFailed
		var dnf *scan.DirNotFoundError
		if errors.As(err, &dnf) {
			code = domain.ErrCodeDirNotFound
		}
		rr.Files = append(rr.Files, syntheticFailed(code, err.Error()))
		rr.FinishedAt = time.Now()
		rr.Finalize()
		return rr
	}
	scanDur := time.Since(scanStarted)

	orderStarted := time.Now()
	order.Sort(files, eff.SortBy)
	orderDur := time.Since(orderStarted)

	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{"files": len(files)}, scanDur)
		obs.OnPhaseDone("order", map[string]any{
			"files":   len(files),
			"sort_by": string(eff.SortBy),
		}, orderDur)
	}

	// 计划阶段：逐下标闭式计算目标时刻（纯函数，无 I/O）。
	// 不可表示的时刻在这里就定格为该文件的失败，不影响其余下标。
	planStarted := time.Now()
	plans := schedule.Plan(eff.StartTime, eff.Interval, files)
	bad := 0
	for _, p := range plans {
		if p.Err != nil {
			bad++
		}
	}
	planDur := time.Since(planStarted)

	if obs != nil {
		obs.OnPhaseDone("plan", map[string]any{
			"planned": len(plans) - bad,
			"bad":     bad,
		}, planDur)
	}

	cancelled := false
	for i, p := range plans {
		// 取消只在文件之间生效：已开始的文件总是做完。
		if !cancelled && ctx.Err() != nil {
			cancelled = true
		}

		oneStarted := time.Now()
		var res domain.FileResult
		switch {
		case cancelled:
			res = domain.FileResult{
				Name:      p.File.Name,
				Status:    domain.StatusSkipped,
				ErrorCode: domain.ErrCodeCancelled,
				ErrorMsg:  ctx.Err().Error(),
			}
		case p.Err != nil:
			res = domain.FileResult{
				Name:      p.File.Name,
				Status:    domain.StatusFailed,
				ErrorCode: domain.ErrCodeBadTimestamp,
				ErrorMsg:  p.Err.Error(),
			}
		default:
			res = stepOne(ctx, eff, ed, p.File, p.Formatted, runID)
		}

		rr.Files = append(rr.Files, res)
		if obs != nil {
			obs.OnFileDone(i+1, len(plans), res, time.Since(oneStarted))
		}
	}

	rr.FinishedAt = time.Now()
	rr.Finalize()
	return rr
}

// stepOne 对一个文件做完整的读-改-写（或 dry-run 汇报），返回单文件结论。
// 任何错误都折叠进 FileResult，不向外冒。
func stepOne(ctx context.Context, eff config.EffectiveConfig, ed exif.Editor, f domain.PhotoFile, formatted, runID string) domain.FileResult {
	res := domain.FileResult{
		Name:        f.Name,
		NewDateTime: formatted,
	}

	meta, err := ed.ReadMeta(ctx, f.AbsPath)
	if err != nil {
		if exif.IsUnsupported(err) {
			res.Status = domain.StatusSkipped
			res.ErrorCode = domain.ErrCodeUnsupportedFormat
			res.ErrorMsg = err.Error()
			return res
		}
		res.Status = domain.StatusFailed
		res.ErrorCode = domain.ErrCodeReadFailed
		res.ErrorMsg = err.Error()
		return res
	}

	res.OldDateTime = meta.DateTimeOriginal
	res.Note = exif.ComposeNote(meta.UserComment, meta.DateTimeOriginal, formatted, string(eff.SortBy), runID)

	if eff.DryRun {
		res.Status = domain.StatusWouldWrite
		return res
	}

	if err := ed.Write(ctx, f.AbsPath, formatted, res.Note); err != nil {
		res.Status = domain.StatusFailed
		switch {
		case exif.IsPartialWrite(err):
			res.ErrorCode = domain.ErrCodePartialWrite
		case exif.IsUnsupported(err):
			res.Status = domain.StatusSkipped
			res.ErrorCode = domain.ErrCodeUnsupportedFormat
		default:
			res.ErrorCode = domain.ErrCodeWriteFailed
		}
		res.ErrorMsg = err.Error()
		return res
	}

	res.Status = domain.StatusWritten
	return res
}

func syntheticFailed(code, msg string) domain.FileResult {
	return domain.FileResult{
		Name:      "",
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}
