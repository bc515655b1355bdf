package exif

import (
	"errors"
	"fmt"
)

// ReadError 表示读取元数据失败。上层映射为 error_code=read_failed。
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("读取元数据失败：%q：%v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError 表示写入失败且两个字段都未改变（干净失败）。
// 上层映射为 error_code=write_failed。
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("写入元数据失败：%q：%v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// PartialWriteError 表示两个字段只应用了一个：文件已处于不一致状态。
// 必须与干净失败区分开（error_code=partial_write，醒目提示用户）。
type PartialWriteError struct {
	Path string
	// AppliedDateTime 为 true 表示时间戳已写入而注释没有；false 表示相反。
	AppliedDateTime bool
	Err             error
}

func (e *PartialWriteError) Error() string {
	applied, missing := "DateTimeOriginal", "UserComment"
	if !e.AppliedDateTime {
		applied, missing = missing, applied
	}
	return fmt.Sprintf("部分写入：%q 的 %s 已更新但 %s 未更新，文件处于不一致状态：%v",
		e.Path, applied, missing, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// UnsupportedError 表示该文件格式不受外部工具支持。
// 上层把它当作 skipped（不是 failed）。
type UnsupportedError struct {
	Path string
	Err  error
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("不支持的文件格式：%q：%v", e.Path, e.Err)
}

func (e *UnsupportedError) Unwrap() error { return e.Err }

func IsUnsupported(err error) bool {
	var e *UnsupportedError
	return errors.As(err, &e)
}

func IsPartialWrite(err error) bool {
	var e *PartialWriteError
	return errors.As(err, &e)
}
