package exif

import "context"

// Meta 是核心流程关心的两个元数据字段（空串表示未设置）。
// 字段如何编码进文件格式对核心是不透明的，由具体 Editor 实现决定。
type Meta struct {
	DateTimeOriginal string
	UserComment      string
}

// Editor 把“外部元数据工具”的变化限制在实现内部；核心流程只依赖统一接口。
//
// 约束：
// - ReadMeta/Write 都是同步调用；超时由实现自带（核心不管理）
// - Write 必须把 dateTime 与 comment 一并应用；只应用了其中之一时
//   必须返回 *PartialWriteError（调用方要知道文件已处于不一致状态）
// - 同一实现不要求支持并发调用：run 层严格串行使用
type Editor interface {
	ReadMeta(ctx context.Context, path string) (Meta, error)
	Write(ctx context.Context, path, dateTime, comment string) error
}
