// Package model 定义值班排班引擎的核心数据模型
package model

import "time"

// MonthContext 排班月份上下文：日期序列与周末/周四/节假日的派生视图
type MonthContext struct {
	Year  int
	Month time.Month

	Dates     []time.Time        // 当月全部日期（升序）
	Weekends  map[time.Time]bool // 周六/周日
	Thursdays []time.Time        // 当月全部周四
	Holidays  map[time.Time]bool // 外部提供的节假日
}

// Date 构造当月某一天（UTC 零点，作为 map 键使用）
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NewMonthContext 创建月份上下文
func NewMonthContext(year int, month time.Month, holidays map[time.Time]bool) *MonthContext {
	if holidays == nil {
		holidays = make(map[time.Time]bool)
	}

	mc := &MonthContext{
		Year:     year,
		Month:    month,
		Weekends: make(map[time.Time]bool),
		Holidays: holidays,
	}

	first := Date(year, month, 1)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		mc.Dates = append(mc.Dates, d)
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			mc.Weekends[d] = true
		case time.Thursday:
			mc.Thursdays = append(mc.Thursdays, d)
		}
	}

	return mc
}

// NumDays 当月天数
func (mc *MonthContext) NumDays() int {
	return len(mc.Dates)
}

// IsWeekend 检查是否周末
func (mc *MonthContext) IsWeekend(d time.Time) bool {
	return mc.Weekends[d]
}

// IsHoliday 检查是否节假日
func (mc *MonthContext) IsHoliday(d time.Time) bool {
	return mc.Holidays[d]
}

// WeekendPair 返回同一周末的另一天（周六<->周日），非周末返回零值
func (mc *MonthContext) WeekendPair(d time.Time) (time.Time, bool) {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 1), true
	case time.Sunday:
		return d.AddDate(0, 0, -1), true
	}
	return time.Time{}, false
}

// ThursdayBefore 返回周末日期对应的本周周四，非周末返回零值
func (mc *MonthContext) ThursdayBefore(d time.Time) (time.Time, bool) {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -2), true
	case time.Sunday:
		return d.AddDate(0, 0, -3), true
	}
	return time.Time{}, false
}

// DaysBetween 两个日期间隔的绝对天数
func DaysBetween(a, b time.Time) int {
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// DaysForward 从 a 到 b 的有向天数（b 在 a 之后为正）
func DaysForward(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
