//go:build !windows

package scan

import (
	"os"
	"syscall"
	"time"
)

// createdTime 返回“创建时间”排序键。
//
// Unix 并不普遍暴露文件出生时间，这里取 st_ctime（inode 变更时间）
// 作为可移植的近似。取不到时回退到 mtime。
func createdTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
	}
	return info.ModTime()
}
