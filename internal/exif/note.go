package exif

import (
	"fmt"
	"strings"
)

// ComposeNote 在现有 UserComment 后追加一条审计片段，返回追加后的完整注释。
//
// 约束（硬）：只追加，永不覆盖已有内容；对同一文件运行两次，
// 注释里应当能看到两条片段。旧值为空时记为 "unset"。
func ComposeNote(existing, oldDateTime, newDateTime string, criterion, runID string) string {
	old := strings.TrimSpace(oldDateTime)
	if old == "" {
		old = "unset"
	}
	fragment := fmt.Sprintf("[Timestamper] %s set to %s (was %s), sort=%s",
		runID, newDateTime, old, criterion)

	existing = strings.TrimSpace(existing)
	if existing == "" {
		return fragment
	}
	return existing + " " + fragment
}
