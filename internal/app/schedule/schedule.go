package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/John-Robertt/timestamper/internal/domain"
)

// MaxFractionDigits 是间隔小数位数上限。EXIF 时间戳只有秒级精度，
// 百万分之一分钟以下的间隔没有可观测意义，直接拒绝。
const MaxFractionDigits = 6

// Interval 是以“分钟”为单位的带符号间隔，内部用十进制定标整数保存：
// 值 = units / denom 分钟。解析自始至终不经过 float64，"1.5" 是精确的。
type Interval struct {
	units int64 // 定标后的值（带符号）
	denom int64 // 10^小数位数
	raw   string
}

// ParseInterval 解析十进制分钟数（可为负、零或带小数）。
// 接受形如 "30"、"-5"、"1.5"、"+0.25"、".5" 的输入。
func ParseInterval(s string) (Interval, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Interval{}, fmt.Errorf("interval 不能为空")
	}

	rest := raw
	neg := false
	switch rest[0] {
	case '+':
		rest = rest[1:]
	case '-':
		neg = true
		rest = rest[1:]
	}

	intPart, fracPart, hasDot := strings.Cut(rest, ".")
	if !allDigits(intPart) || !allDigits(fracPart) {
		return Interval{}, fmt.Errorf("interval 不是十进制数：%q", raw)
	}
	if intPart == "" && fracPart == "" {
		return Interval{}, fmt.Errorf("interval 缺少数字：%q", raw)
	}
	if hasDot && len(fracPart) > MaxFractionDigits {
		return Interval{}, fmt.Errorf("interval 小数位最多 %d 位：%q", MaxFractionDigits, raw)
	}

	denom := int64(1)
	var units int64
	for _, c := range intPart + fracPart {
		d := int64(c - '0')
		if units > (1<<62)/10 {
			return Interval{}, fmt.Errorf("interval 超出可表示范围：%q", raw)
		}
		units = units*10 + d
	}
	for range fracPart {
		denom *= 10
	}
	if neg {
		units = -units
	}

	return Interval{units: units, denom: denom, raw: raw}, nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// IsZero 报告间隔是否恰好为零（此时所有文件共享同一时间戳，属合法输入）。
func (iv Interval) IsZero() bool { return iv.units == 0 }

func (iv Interval) String() string { return iv.raw }

// OffsetSeconds 返回第 i 个文件相对起始时刻的偏移秒数，闭式计算
// round(i·Δ·60)，不做逐项累加，因此不存在漂移。
//
// 取整策略（固定且有测试约束）：四舍五入，.5 远离零方向
// （-2.5 → -3）。对称性保证负间隔与正间隔的序列互为镜像。
func (iv Interval) OffsetSeconds(i int) (int64, error) {
	n, ok := mul64(int64(i), iv.units)
	if !ok {
		return 0, fmt.Errorf("偏移计算溢出：i=%d interval=%s", i, iv.raw)
	}
	n, ok = mul64(n, 60)
	if !ok {
		return 0, fmt.Errorf("偏移计算溢出：i=%d interval=%s", i, iv.raw)
	}
	return divRoundHalfAway(n, iv.denom), nil
}

// At 返回第 i 个文件的目标时刻。超出 EXIF 可表示窗口（4 位年份）时
// 返回 BadTimestampError；这是单文件错误，不是全局中止。
func (iv Interval) At(start time.Time, i int) (time.Time, error) {
	off, err := iv.OffsetSeconds(i)
	if err != nil {
		return time.Time{}, &BadTimestampError{Index: i, Err: err}
	}
	when := start.Add(time.Duration(off) * time.Second)
	if y := when.Year(); y < 1 || y > 9999 {
		return time.Time{}, &BadTimestampError{
			Index: i,
			Err:   fmt.Errorf("目标时刻 %v 超出 EXIF 可表示的年份范围 [1, 9999]", when),
		}
	}
	return when, nil
}

// Plan 为有序文件序列逐下标生成写入计划（纯函数，无 I/O）。
// 某个下标的目标时刻不可表示时，错误记录在对应条目的 Err 上，
// 不影响其余下标，也不中止整体。
func Plan(start time.Time, iv Interval, files []domain.PhotoFile) []domain.StampPlan {
	plans := make([]domain.StampPlan, 0, len(files))
	for i := range files {
		when, err := iv.At(start, i)
		if err != nil {
			plans = append(plans, domain.StampPlan{File: files[i], Err: err})
			continue
		}
		plans = append(plans, domain.StampPlan{
			File:      files[i],
			When:      when,
			Formatted: when.Format(domain.TimeLayout),
		})
	}
	return plans
}

// BadTimestampError 表示某个下标的目标时刻无法表示。
// 上层把它映射为 error_code=bad_timestamp。
type BadTimestampError struct {
	Index int
	Err   error
}

func (e *BadTimestampError) Error() string {
	return fmt.Sprintf("第 %d 个文件的目标时刻不可表示：%v", e.Index, e.Err)
}

func (e *BadTimestampError) Unwrap() error { return e.Err }

func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	n := a * b
	if n/b != a {
		return 0, false
	}
	return n, true
}

// divRoundHalfAway 计算 n/denom 并按 .5 远离零取整。denom > 0。
func divRoundHalfAway(n, denom int64) int64 {
	q := n / denom
	r := n % denom
	if r == 0 {
		return q
	}
	if 2*abs64(r) >= denom {
		if n < 0 {
			return q - 1
		}
		return q + 1
	}
	return q
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
