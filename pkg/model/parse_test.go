package model

import (
	"testing"
	"time"
)

func TestParseDayList_SingleDays(t *testing.T) {
	dates, err := ParseDayList("1,2,3", 2026, time.October)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(dates) != 3 {
		t.Fatalf("应解析出3个日期, got %d", len(dates))
	}
	if !dates[Date(2026, time.October, 2)] {
		t.Error("应包含10月2日")
	}
}

func TestParseDayList_Range(t *testing.T) {
	dates, err := ParseDayList("17-20", 2026, time.October)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(dates) != 4 {
		t.Fatalf("区间应解析出4个日期, got %d", len(dates))
	}
	for day := 17; day <= 20; day++ {
		if !dates[Date(2026, time.October, day)] {
			t.Errorf("应包含10月%d日", day)
		}
	}
}

func TestParseDayList_ISODate(t *testing.T) {
	dates, err := ParseDayList("2026-10-05", 2026, time.October)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if !dates[Date(2026, time.October, 5)] {
		t.Error("应包含10月5日")
	}
}

func TestParseDayList_ChineseSeparators(t *testing.T) {
	dates, err := ParseDayList("1，2；3", 2026, time.October)
	if err != nil {
		t.Fatalf("中文分隔符解析失败: %v", err)
	}
	if len(dates) != 3 {
		t.Errorf("应解析出3个日期, got %d", len(dates))
	}
}

func TestParseDayList_Empty(t *testing.T) {
	dates, err := ParseDayList("  ", 2026, time.October)
	if err != nil {
		t.Fatalf("空串不应报错: %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("空串应得到空集合, got %d", len(dates))
	}
}

func TestParseDayList_Invalid(t *testing.T) {
	if _, err := ParseDayList("abc", 2026, time.October); err == nil {
		t.Error("无效输入应报错")
	}
}

func TestParseFixedOn(t *testing.T) {
	fixed := ParseFixedOn("1:Day,5:Night,2026-10-09:24h", 2026, time.October)

	if len(fixed) != 3 {
		t.Fatalf("应解析出3条预定值班, got %d", len(fixed))
	}
	if fixed[Date(2026, time.October, 1)] != ShiftDay {
		t.Error("10月1日应为白班")
	}
	if fixed[Date(2026, time.October, 5)] != ShiftNight {
		t.Error("10月5日应为夜班")
	}
	if fixed[Date(2026, time.October, 9)] != ShiftFull24 {
		t.Error("10月9日应为24小时班")
	}
}

func TestParseFixedOn_SkipsInvalid(t *testing.T) {
	// 无效片段跳过，有效片段保留
	fixed := ParseFixedOn("bad,5:Night,7:Unknown", 2026, time.October)

	if len(fixed) != 1 {
		t.Fatalf("仅应保留1条有效记录, got %d", len(fixed))
	}
	if fixed[Date(2026, time.October, 5)] != ShiftNight {
		t.Error("10月5日应为夜班")
	}
}
