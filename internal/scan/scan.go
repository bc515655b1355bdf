package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/timestamper/internal/domain"
)

// ReportDirName 是 apply 模式下 report.json 的落盘目录名；枚举永久排除它。
const ReportDirName = ".timestamper"

// DefaultExtensions 是内置的图片扩展名集合（配置文件可覆盖）。
var DefaultExtensions = []string{
	".jpg", ".jpeg", ".png", ".tif", ".tiff", ".heic", ".webp",
	".cr2", ".cr3", ".nef", ".arw", ".orf", ".rw2", ".dng",
}

// DirNotFoundError 表示目标目录不存在或不是目录。
// 上层把它映射为 error_code=dir_not_found（致命，批处理开始前失败）。
type DirNotFoundError struct {
	Dir string
	Err error
}

func (e *DirNotFoundError) Error() string {
	return fmt.Sprintf("目录不存在或不是目录：%q", e.Dir)
}

func (e *DirNotFoundError) Unwrap() error { return e.Err }

// ScanPhotos 枚举 dir 下（非递归）的图片文件。
//
// 规则（硬约束）：
// - 只看 dir 的直接子项；不进入子目录
// - 只收普通文件，且扩展名（不区分大小写）命中 extensions
// - 每个文件只做一次 stat，把 name/mtime/ctime 一次性快照进 PhotoFile
//
// 产出顺序未定义（ReadDir 顺序）；确定性排序是 order 包的职责。
func ScanPhotos(dir string, extensions []string) ([]domain.PhotoFile, error) {
	dir = filepath.Clean(dir)

	fi, err := os.Stat(dir)
	if err != nil {
		return nil, &DirNotFoundError{Dir: dir, Err: err}
	}
	if !fi.IsDir() {
		return nil, &DirNotFoundError{Dir: dir}
	}

	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		allowed[e] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]domain.PhotoFile, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if name == ReportDirName {
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := allowed[ext]; !ok {
			continue
		}

		info, err := ent.Info()
		if err != nil {
			// 枚举与处理之间文件被删除：当它从未存在过。
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if !info.Mode().IsRegular() {
			continue
		}

		abs, err := filepath.Abs(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}

		files = append(files, domain.PhotoFile{
			AbsPath:     abs,
			Name:        name,
			Ext:         ext,
			Size:        info.Size(),
			ModTime:     info.ModTime(),
			CreatedTime: createdTime(info),
		})
	}
	return files, nil
}
