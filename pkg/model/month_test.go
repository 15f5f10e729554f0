package model

import (
	"testing"
	"time"
)

func TestNewMonthContext(t *testing.T) {
	mc := NewMonthContext(2026, time.October, nil)

	if mc.NumDays() != 31 {
		t.Errorf("2026年10月应有31天, got %d", mc.NumDays())
	}

	// 2026-10-01 是周四
	if len(mc.Thursdays) != 5 {
		t.Errorf("2026年10月应有5个周四, got %d", len(mc.Thursdays))
	}
	if !mc.Thursdays[0].Equal(Date(2026, time.October, 1)) {
		t.Errorf("第一个周四应为10月1日, got %v", mc.Thursdays[0])
	}

	// 周六 3,10,17,24,31 + 周日 4,11,18,25
	if len(mc.Weekends) != 9 {
		t.Errorf("2026年10月应有9个周末日, got %d", len(mc.Weekends))
	}
	if !mc.IsWeekend(Date(2026, time.October, 3)) {
		t.Error("10月3日应为周六")
	}
	if mc.IsWeekend(Date(2026, time.October, 5)) {
		t.Error("10月5日不是周末")
	}
}

func TestMonthContext_Holidays(t *testing.T) {
	holidays := map[time.Time]bool{Date(2026, time.October, 1): true}
	mc := NewMonthContext(2026, time.October, holidays)

	if !mc.IsHoliday(Date(2026, time.October, 1)) {
		t.Error("10月1日应为节假日")
	}
	if mc.IsHoliday(Date(2026, time.October, 2)) {
		t.Error("10月2日不是节假日")
	}
}

func TestWeekendPair(t *testing.T) {
	mc := NewMonthContext(2026, time.October, nil)

	sat := Date(2026, time.October, 3)
	sun := Date(2026, time.October, 4)

	if other, ok := mc.WeekendPair(sat); !ok || !other.Equal(sun) {
		t.Errorf("周六配对应为周日, got %v ok=%v", other, ok)
	}
	if other, ok := mc.WeekendPair(sun); !ok || !other.Equal(sat) {
		t.Errorf("周日配对应为周六, got %v ok=%v", other, ok)
	}
	if _, ok := mc.WeekendPair(Date(2026, time.October, 5)); ok {
		t.Error("周一不应有周末配对")
	}
}

func TestThursdayBefore(t *testing.T) {
	mc := NewMonthContext(2026, time.October, nil)

	thursday := Date(2026, time.October, 1)
	if got, ok := mc.ThursdayBefore(Date(2026, time.October, 3)); !ok || !got.Equal(thursday) {
		t.Errorf("周六对应的周四应为10月1日, got %v", got)
	}
	if got, ok := mc.ThursdayBefore(Date(2026, time.October, 4)); !ok || !got.Equal(thursday) {
		t.Errorf("周日对应的周四应为10月1日, got %v", got)
	}
	if _, ok := mc.ThursdayBefore(Date(2026, time.October, 6)); ok {
		t.Error("周二不应有对应周四")
	}
}

func TestDaysBetween(t *testing.T) {
	a := Date(2026, time.October, 5)
	b := Date(2026, time.October, 10)

	if got := DaysBetween(a, b); got != 5 {
		t.Errorf("DaysBetween = %d, want 5", got)
	}
	if got := DaysBetween(b, a); got != 5 {
		t.Errorf("DaysBetween 应取绝对值, got %d", got)
	}
	if got := DaysForward(a, b); got != 5 {
		t.Errorf("DaysForward = %d, want 5", got)
	}
	if got := DaysForward(b, a); got != -5 {
		t.Errorf("DaysForward 反向应为负, got %d", got)
	}
}
