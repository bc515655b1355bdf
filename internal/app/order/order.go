package order

import (
	"sort"

	"github.com/John-Robertt/timestamper/internal/domain"
)

// Sort 按给定排序方式对文件就地排序，产出一个全序：
//
// - name：按文件名字节序（区分大小写，跨平台可复现）
// - created/modified：按对应时间戳升序
// - 主键相等时一律回退到文件名字节序
//
// 回退比较保证无论底层排序算法是否稳定，两次运行同一目录都得到相同顺序。
// 排序是幂等的：对已排序序列再排一次，结果不变。
func Sort(files []domain.PhotoFile, criterion domain.SortCriterion) {
	sort.SliceStable(files, func(i, j int) bool {
		return less(files[i], files[j], criterion)
	})
}

func less(a, b domain.PhotoFile, criterion domain.SortCriterion) bool {
	switch criterion {
	case domain.SortByCreated:
		if !a.CreatedTime.Equal(b.CreatedTime) {
			return a.CreatedTime.Before(b.CreatedTime)
		}
	case domain.SortByModified:
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.Before(b.ModTime)
		}
	}
	return a.Name < b.Name
}
