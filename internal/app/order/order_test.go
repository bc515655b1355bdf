package order

import (
	"testing"
	"time"

	"github.com/John-Robertt/timestamper/internal/domain"
)

func TestSort_ByName(t *testing.T) {
	files := []domain.PhotoFile{
		{Name: "c.jpg"}, {Name: "a.jpg"}, {Name: "b.jpg"},
	}
	Sort(files, domain.SortByName)

	want := []string{"a.jpg", "b.jpg", "c.jpg"}
	for i, w := range want {
		if files[i].Name != w {
			t.Fatalf("位置 %d 期望 %q，实际 %q", i, w, files[i].Name)
		}
	}
}

func TestSort_NameIsCaseSensitiveBytewise(t *testing.T) {
	// 大写字母的字节值小于小写：'B' < 'a'，跨平台可复现。
	files := []domain.PhotoFile{
		{Name: "a.jpg"}, {Name: "B.jpg"},
	}
	Sort(files, domain.SortByName)
	if files[0].Name != "B.jpg" {
		t.Fatalf("期望字节序排序（B.jpg 在前），实际 %q 在前", files[0].Name)
	}
}

func TestSort_ByModified_TieBreaksByName(t *testing.T) {
	// 文件系统时间戳粒度有限，主键相等很常见：回退必须确定。
	ts := time.Date(2023, 10, 26, 10, 0, 0, 0, time.Local)
	files := []domain.PhotoFile{
		{Name: "z.jpg", ModTime: ts},
		{Name: "a.jpg", ModTime: ts},
		{Name: "m.jpg", ModTime: ts.Add(-time.Hour)},
	}
	Sort(files, domain.SortByModified)

	want := []string{"m.jpg", "a.jpg", "z.jpg"}
	for i, w := range want {
		if files[i].Name != w {
			t.Fatalf("位置 %d 期望 %q，实际 %q", i, w, files[i].Name)
		}
	}
}

func TestSort_ByCreated(t *testing.T) {
	base := time.Date(2023, 10, 26, 10, 0, 0, 0, time.Local)
	files := []domain.PhotoFile{
		{Name: "a.jpg", CreatedTime: base.Add(2 * time.Hour)},
		{Name: "b.jpg", CreatedTime: base},
		{Name: "c.jpg", CreatedTime: base.Add(time.Hour)},
	}
	Sort(files, domain.SortByCreated)

	want := []string{"b.jpg", "c.jpg", "a.jpg"}
	for i, w := range want {
		if files[i].Name != w {
			t.Fatalf("位置 %d 期望 %q，实际 %q", i, w, files[i].Name)
		}
	}
}

func TestSort_Idempotent(t *testing.T) {
	ts := time.Date(2023, 10, 26, 10, 0, 0, 0, time.Local)
	files := []domain.PhotoFile{
		{Name: "b.jpg", ModTime: ts},
		{Name: "a.jpg", ModTime: ts},
		{Name: "c.jpg", ModTime: ts.Add(time.Minute)},
	}

	Sort(files, domain.SortByModified)
	first := make([]string, len(files))
	for i := range files {
		first[i] = files[i].Name
	}

	Sort(files, domain.SortByModified)
	for i := range files {
		if files[i].Name != first[i] {
			t.Fatalf("再排一次后顺序变了：位置 %d %q -> %q", i, first[i], files[i].Name)
		}
	}
}

func TestSort_DeterministicAcrossInputOrders(t *testing.T) {
	ts := time.Date(2023, 10, 26, 10, 0, 0, 0, time.Local)
	mk := func(names ...string) []domain.PhotoFile {
		out := make([]domain.PhotoFile, 0, len(names))
		for _, n := range names {
			out = append(out, domain.PhotoFile{Name: n, CreatedTime: ts})
		}
		return out
	}

	a := mk("x.jpg", "y.jpg", "z.jpg")
	b := mk("z.jpg", "x.jpg", "y.jpg")
	Sort(a, domain.SortByCreated)
	Sort(b, domain.SortByCreated)

	for i := range a {
		if a[i].Name != b[i].Name {
			t.Fatalf("不同输入顺序得到不同结果：位置 %d %q vs %q", i, a[i].Name, b[i].Name)
		}
	}
}
