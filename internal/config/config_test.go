package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/timestamper/internal/domain"
)

func validArgs(dir string) CLIArgs {
	return CLIArgs{
		Dir:       dir,
		StartTime: "2023:10:26 10:00:00",
		Interval:  "30",
	}
}

func TestLoadEffective_Defaults(t *testing.T) {
	dir := t.TempDir()

	eff, err := LoadEffective(dir, validArgs(dir))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.SortBy != domain.SortByName {
		t.Fatalf("期望默认 sort_by=name，实际 %q", eff.SortBy)
	}
	if eff.DryRun {
		t.Fatalf("期望默认 dry_run=false")
	}
	if eff.StartTime.Format(StartTimeLayout) != "2023:10:26 10:00:00" {
		t.Fatalf("start_time 解析有误：%v", eff.StartTime)
	}
}

func TestLoadEffective_DirNotFound(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	_, err := LoadEffective(t.TempDir(), validArgs(dir))
	if Code(err) != ErrCodeDirNotFound {
		t.Fatalf("期望 %s，实际 %v", ErrCodeDirNotFound, err)
	}
}

func TestLoadEffective_BadStartTime(t *testing.T) {
	dir := t.TempDir()
	args := validArgs(dir)
	args.StartTime = "2023-10-26 10:00:00" // 错误分隔符

	_, err := LoadEffective(dir, args)
	if Code(err) != ErrCodeBadStartTime {
		t.Fatalf("期望 %s，实际 %v", ErrCodeBadStartTime, err)
	}
}

func TestLoadEffective_BadInterval(t *testing.T) {
	dir := t.TempDir()
	args := validArgs(dir)
	args.Interval = "abc"

	_, err := LoadEffective(dir, args)
	if Code(err) != ErrCodeBadInterval {
		t.Fatalf("期望 %s，实际 %v", ErrCodeBadInterval, err)
	}
}

func TestLoadEffective_BadSortBy(t *testing.T) {
	dir := t.TempDir()
	args := validArgs(dir)
	args.SortBy = "size"
	args.SortBySet = true

	_, err := LoadEffective(dir, args)
	if Code(err) != ErrCodeBadSortBy {
		t.Fatalf("期望 %s，实际 %v", ErrCodeBadSortBy, err)
	}
}

func TestLoadEffective_FileConfigMerge(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
sort_by = "modified"
dry_run = true
exiftool = "/opt/exiftool/exiftool"
extensions = [".jpg", ".heic"]
`)

	eff, err := LoadEffective(dir, validArgs(dir))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.SortBy != domain.SortByModified {
		t.Fatalf("期望 config 的 sort_by=modified 生效，实际 %q", eff.SortBy)
	}
	if !eff.DryRun {
		t.Fatalf("期望 config 的 dry_run=true 生效")
	}
	if eff.ExiftoolPath != "/opt/exiftool/exiftool" {
		t.Fatalf("exiftool 路径未生效：%q", eff.ExiftoolPath)
	}
	if len(eff.Extensions) != 2 {
		t.Fatalf("extensions 未生效：%+v", eff.Extensions)
	}
}

func TestLoadEffective_CLIOverridesFileConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
sort_by = "modified"
dry_run = true
`)

	args := validArgs(dir)
	args.SortBy = "created"
	args.SortBySet = true
	args.DryRun = false
	args.DryRunSet = true // --dry-run=false 必须能覆盖 config 的 dry_run=true

	eff, err := LoadEffective(dir, args)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.SortBy != domain.SortByCreated {
		t.Fatalf("期望 CLI 的 sort_by=created 覆盖 config，实际 %q", eff.SortBy)
	}
	if eff.DryRun {
		t.Fatalf("期望 CLI 的 --dry-run=false 覆盖 config")
	}
}

func TestLoadEffective_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `sort_by = [broken`)

	_, err := LoadEffective(dir, validArgs(dir))
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %s，实际 %v", ErrCodeInvalid, err)
	}
}

func TestLoadEffective_RelativeDir(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "photos"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	eff, err := LoadEffective(base, validArgs("photos"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Dir != filepath.Join(base, "photos") {
		t.Fatalf("期望相对路径以 cwd 为基准解析，实际 %q", eff.Dir)
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("写入配置失败：%v", err)
	}
}
