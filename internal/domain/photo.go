package domain

import "time"

// PhotoFile 描述枚举阶段得到的一张照片文件（只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - 所有字段在枚举时一次性快照，之后不再回查文件系统
//   （运行中途目录被外部修改时，排序与计划不受影响；写入失败按单文件错误处理）
type PhotoFile struct {
	AbsPath string
	Name    string // 含扩展名的文件名
	Ext     string // ".jpg"（小写）
	Size    int64

	ModTime     time.Time
	CreatedTime time.Time
}
