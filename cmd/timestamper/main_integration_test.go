package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/timestamper/internal/domain"
)

func TestCLI_NoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	// 这个测试锁定对外契约：stdout 非 TTY 时只能输出一个 RunReport JSON
	// （进度/配置必须走 stderr 或直接禁用）。用不存在的目录触发致命错误，
	// 行为与宿主机上是否安装 exiftool 无关。
	missing := filepath.Join(t.TempDir(), "missing")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("读取 cwd 失败：%v", err)
	}
	repoRoot := filepath.Clean(filepath.Join(wd, "..", ".."))

	cmd := exec.Command("go", "run", "./cmd/timestamper", "run", missing, "2023:10:26 10:00:00", "30")
	cmd.Dir = repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err == nil {
		t.Fatalf("目录不存在时期望非零退出码\nstdout=%s", stdout.String())
	}

	// stdout 必须是单个 JSON。
	var rr domain.RunReport
	if e := json.Unmarshal(stdout.Bytes(), &rr); e != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", e, stdout.String())
	}
	if rr.Summary.Failed != 1 || len(rr.Files) != 1 || rr.Files[0].ErrorCode != domain.ErrCodeDirNotFound {
		t.Fatalf("期望一条 dir_not_found 失败，实际 %+v", rr)
	}

	// 进度/配置不应出现在 stdout。
	if strings.Contains(stdout.String(), "配置（生效）") {
		t.Fatalf("stdout 不应包含进度/配置输出：%q", stdout.String())
	}

	// stderr 至少应包含最终摘要行。
	if !strings.Contains(stderr.String(), "完成：written=") {
		t.Fatalf("stderr 缺少完成摘要：%q", stderr.String())
	}
}
