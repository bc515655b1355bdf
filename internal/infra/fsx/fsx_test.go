package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicReplace_CreatesAndReplaces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "report")

	if err := WriteFileAtomicReplace(dir, "report.json", []byte("v1")); err != nil {
		t.Fatalf("首次写入失败：%v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil || string(b) != "v1" {
		t.Fatalf("读回内容有误：%q err=%v", b, err)
	}

	if err := WriteFileAtomicReplace(dir, "report.json", []byte("v2")); err != nil {
		t.Fatalf("覆盖写入失败：%v", err)
	}
	b, err = os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil || string(b) != "v2" {
		t.Fatalf("覆盖后内容有误：%q err=%v", b, err)
	}
}

func TestWriteFileAtomicReplace_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomicReplace(dir, "report.json", []byte("x")); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读目录失败：%v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("遗留了临时文件：%q", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Fatalf("期望目录里只有 report.json，实际 %d 项", len(entries))
	}
}
