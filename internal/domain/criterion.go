package domain

import "strings"

// SortCriterion 选择排序主键。主键相等时一律回退到文件名的字节序比较，
// 保证两次运行同一目录得到完全相同的处理顺序。
type SortCriterion string

const (
	SortByName     SortCriterion = "name"
	SortByCreated  SortCriterion = "created"
	SortByModified SortCriterion = "modified"
)

// ParseSortCriterion 校验并解析排序方式字符串。
func ParseSortCriterion(s string) (SortCriterion, bool) {
	switch SortCriterion(strings.ToLower(strings.TrimSpace(s))) {
	case SortByName:
		return SortByName, true
	case SortByCreated:
		return SortByCreated, true
	case SortByModified:
		return SortByModified, true
	default:
		return "", false
	}
}
