//go:build windows

package scan

import (
	"os"
	"syscall"
	"time"
)

// createdTime 返回“创建时间”排序键（Windows 上是真实的创建时间）。
func createdTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, stat.CreationTime.Nanoseconds())
	}
	return info.ModTime()
}
