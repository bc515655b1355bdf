package domain

import "time"

// TimeLayout 是 EXIF DateTimeOriginal 的字符串格式（naive 本地时间，不做时区换算）。
const TimeLayout = "2006:01:02 15:04:05"

// StampPlan 规划对一个文件的一次时间戳写入（只描述目标值；真正执行在 run 层）。
type StampPlan struct {
	File PhotoFile

	// When 是计算得到的目标时刻；Formatted 是它的 EXIF 字符串形态。
	// 两者由 schedule 一次性生成，执行层不再重新格式化。
	When      time.Time
	Formatted string

	// Err 非 nil 表示该下标的目标时刻不可表示（此时 When/Formatted 为零值）。
	Err error
}
