package main

import (
	"testing"
)

func TestParseRunArgs_Positionals(t *testing.T) {
	ra, err := parseRunArgs([]string{"./photos", "2023:10:26 10:00:00", "30"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ra.Dir != "./photos" || ra.StartTime != "2023:10:26 10:00:00" || ra.Interval != "30" {
		t.Fatalf("位置参数解析有误：%+v", ra)
	}
	if ra.SortBySet || ra.DryRunSet || ra.Verbose {
		t.Fatalf("未指定的 flag 不应置位：%+v", ra)
	}
}

func TestParseRunArgs_NegativeIntervalIsPositional(t *testing.T) {
	ra, err := parseRunArgs([]string{"./photos", "2023:10:26 10:00:00", "-5"})
	if err != nil {
		t.Fatalf("负数 interval 不应被当成未知 flag：%v", err)
	}
	if ra.Interval != "-5" {
		t.Fatalf("期望 interval=-5，实际 %q", ra.Interval)
	}

	ra, err = parseRunArgs([]string{"./photos", "2023:10:26 10:00:00", "-1.5"})
	if err != nil {
		t.Fatalf("负小数 interval 不应被当成未知 flag：%v", err)
	}
	if ra.Interval != "-1.5" {
		t.Fatalf("期望 interval=-1.5，实际 %q", ra.Interval)
	}
}

func TestParseRunArgs_Flags(t *testing.T) {
	ra, err := parseRunArgs([]string{"d", "t", "1", "--sort-by", "created", "--dry-run", "-v"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ra.SortBySet || ra.SortBy != "created" {
		t.Fatalf("--sort-by 解析有误：%+v", ra)
	}
	if !ra.DryRunSet || !ra.DryRun {
		t.Fatalf("--dry-run 解析有误：%+v", ra)
	}
	if !ra.Verbose {
		t.Fatalf("-v 解析有误：%+v", ra)
	}
}

func TestParseRunArgs_DryRunFalseOverride(t *testing.T) {
	ra, err := parseRunArgs([]string{"d", "t", "1", "--dry-run=false"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ra.DryRunSet || ra.DryRun {
		t.Fatalf("--dry-run=false 必须显式置位且值为 false：%+v", ra)
	}
}

func TestParseRunArgs_Errors(t *testing.T) {
	cases := [][]string{
		{},
		{"d"},
		{"d", "t"},
		{"d", "t", "1", "extra"},
		{"d", "t", "1", "--sort-by"},
		{"d", "t", "1", "--sort-by", "size"},
		{"d", "t", "1", "--dry-run=maybe"},
		{"d", "t", "1", "--unknown"},
		{"d", "t", "1", "-x"},
	}
	for _, args := range cases {
		if _, err := parseRunArgs(args); err == nil {
			t.Fatalf("期望错误：args=%q", args)
		}
	}
}
