package stats

import (
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

func TestCoverage_FullMonth(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	a := &model.StaffMember{Name: "甲", CanNight: true, Can24h: true}
	r := model.NewRoster(month, []*model.StaffMember{a})
	ms := r.Member("甲")

	for _, d := range month.Dates {
		r.Assign(ms, d, model.ShiftFull24)
	}

	m := NewCoverageAnalyzer().Analyze(month, r)
	if m.TotalDays != 31 {
		t.Errorf("2026年10月应有31天, got %d", m.TotalDays)
	}
	if m.CoveredDays != 31 {
		t.Errorf("全月覆盖天数应为31, got %d", m.CoveredDays)
	}
	if len(m.UncoveredDays) != 0 {
		t.Errorf("不应有覆盖缺口: %v", m.UncoveredDays)
	}

	// 24小时班同时出现在白班与夜班名单
	day := m.DailyCoverage[0]
	if len(day.DayStaff) != 1 || len(day.NightStaff) != 1 {
		t.Errorf("24小时班应同时计入白班和夜班名单: %+v", day)
	}
}

func TestCoverage_Gap(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	a := &model.StaffMember{Name: "甲", CanNight: true}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r := model.NewRoster(month, []*model.StaffMember{a, b})

	// 10月6日只有白班没有夜班
	r.Assign(r.Member("甲"), oct(6), model.ShiftDay)

	m := NewCoverageAnalyzer().Analyze(month, r)
	found := false
	for _, d := range m.UncoveredDays {
		if d == "2026-10-06" {
			found = true
		}
	}
	if !found {
		t.Error("缺夜班的10月6日应计入覆盖缺口")
	}

	dc := m.DailyCoverage[5] // 10月6日
	if dc.Covered() {
		t.Error("只有白班的日期不算覆盖完整")
	}
	if len(dc.DayStaff) != 1 || dc.DayStaff[0] != "甲" {
		t.Errorf("白班名单错误: %v", dc.DayStaff)
	}
}

func TestCoverage_HolidayExempt(t *testing.T) {
	holidays := map[time.Time]bool{oct(1): true}
	month := model.NewMonthContext(2026, time.October, holidays)
	a := &model.StaffMember{Name: "甲", CanNight: true}
	r := model.NewRoster(month, []*model.StaffMember{a})

	m := NewCoverageAnalyzer().Analyze(month, r)
	for _, d := range m.UncoveredDays {
		if d == "2026-10-01" {
			t.Error("节假日无人值班不应计入覆盖缺口")
		}
	}
	if !m.DailyCoverage[0].IsHoliday {
		t.Error("10月1日应标记为节假日")
	}
}

func TestCoverage_WeekendFlag(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	r := model.NewRoster(month, nil)

	m := NewCoverageAnalyzer().Analyze(month, r)
	if !m.DailyCoverage[2].IsWeekend { // 10月3日周六
		t.Error("10月3日应标记为周末")
	}
	if m.DailyCoverage[4].IsWeekend { // 10月5日周一
		t.Error("10月5日不应标记为周末")
	}
}
