package stats

import (
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

func oct(day int) time.Time {
	return model.Date(2026, time.October, day)
}

func TestFairness_EmptyRoster(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	r := model.NewRoster(month, nil)

	m := NewFairnessAnalyzer().Analyze(r)
	if m.OverallFairnessScore != 100 {
		t.Errorf("空排班表综合评分应为100, got %f", m.OverallFairnessScore)
	}
}

func TestFairness_PerfectBalance(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	a := &model.StaffMember{Name: "甲", CanNight: true}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r := model.NewRoster(month, []*model.StaffMember{a, b})

	r.Assign(r.Member("甲"), oct(5), model.ShiftDay)
	r.Assign(r.Member("乙"), oct(6), model.ShiftDay)
	r.Assign(r.Member("甲"), oct(12), model.ShiftNight)
	r.Assign(r.Member("乙"), oct(13), model.ShiftNight)

	m := NewFairnessAnalyzer().Analyze(r)
	if m.WorkloadGini != 0 {
		t.Errorf("完全均衡的基尼系数应为0, got %f", m.WorkloadGini)
	}
	if m.ShiftsRange != 0 {
		t.Errorf("完全均衡的极差应为0, got %f", m.ShiftsRange)
	}
	if m.OverallFairnessScore != 100 {
		t.Errorf("完全均衡的综合评分应为100, got %f", m.OverallFairnessScore)
	}
	if len(m.StaffStats) != 2 {
		t.Fatalf("应有2条成员统计, got %d", len(m.StaffStats))
	}
	for _, s := range m.StaffStats {
		if s.Deviation != 0 {
			t.Errorf("%s 的偏差应为0, got %f", s.Name, s.Deviation)
		}
	}
}

func TestFairness_Imbalance(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	a := &model.StaffMember{Name: "甲", CanNight: true}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r := model.NewRoster(month, []*model.StaffMember{a, b})

	r.Assign(r.Member("甲"), oct(5), model.ShiftDay)
	r.Assign(r.Member("甲"), oct(12), model.ShiftDay)
	r.Assign(r.Member("甲"), oct(19), model.ShiftNight)
	r.Assign(r.Member("乙"), oct(6), model.ShiftDay)

	m := NewFairnessAnalyzer().Analyze(r)
	if m.WorkloadGini <= 0 || m.WorkloadGini > 1 {
		t.Errorf("不均衡的基尼系数应落在(0,1], got %f", m.WorkloadGini)
	}
	if m.ShiftsRange != 2 {
		t.Errorf("极差应为2, got %f", m.ShiftsRange)
	}
	if m.MaxShifts != 3 || m.MinShifts != 1 {
		t.Errorf("极值应为3/1, got %f/%f", m.MaxShifts, m.MinShifts)
	}
	if m.OverallFairnessScore >= 100 {
		t.Errorf("不均衡的综合评分应低于100, got %f", m.OverallFairnessScore)
	}

	// 成员统计按总班次降序
	if m.StaffStats[0].Name != "甲" || m.StaffStats[0].TotalShifts != 3 {
		t.Errorf("成员统计应按总班次降序: %+v", m.StaffStats[0])
	}
}

func TestFairness_HalfMonthNormalization(t *testing.T) {
	fixedOff := make(map[time.Time]bool)
	for day := 1; day <= model.HalfMonthThreshold; day++ {
		fixedOff[oct(day)] = true
	}

	month := model.NewMonthContext(2026, time.October, nil)
	a := &model.StaffMember{Name: "甲", CanNight: true}
	b := &model.StaffMember{Name: "乙", CanNight: true, FixedOff: fixedOff}
	r := model.NewRoster(month, []*model.StaffMember{a, b})

	// 甲2个班，半月制的乙1个班，折算后负担相同
	r.Assign(r.Member("甲"), oct(20), model.ShiftDay)
	r.Assign(r.Member("甲"), oct(26), model.ShiftDay)
	r.Assign(r.Member("乙"), oct(21), model.ShiftDay)

	m := NewFairnessAnalyzer().Analyze(r)
	if m.WorkloadGini != 0 {
		t.Errorf("归一化后应视为均衡, got gini=%f", m.WorkloadGini)
	}
	if m.ShiftsRange != 0 {
		t.Errorf("归一化后极差应为0, got %f", m.ShiftsRange)
	}
}

func TestFairness_CategoryAggregates(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	a := &model.StaffMember{Name: "甲", CanNight: true, Can24h: true}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r := model.NewRoster(month, []*model.StaffMember{a, b})

	// 甲：1个24小时班+1个夜班（夜班2，加权3），乙：1个周六白班（加权1）
	r.Assign(r.Member("甲"), oct(6), model.ShiftFull24)
	r.Assign(r.Member("甲"), oct(13), model.ShiftNight)
	r.Assign(r.Member("乙"), oct(10), model.ShiftDay)

	m := NewFairnessAnalyzer().Analyze(r)

	// 夜班: {2, 0} -> 均值1, 标准差1
	if m.NightAvg != 1 || m.NightStdDev != 1 {
		t.Errorf("夜班均值/标准差应为1/1, got %f/%f", m.NightAvg, m.NightStdDev)
	}
	// 周末班: {0, 1} -> 均值0.5, 标准差0.5
	if m.WeekendAvg != 0.5 || m.WeekendStdDev != 0.5 {
		t.Errorf("周末均值/标准差应为0.5/0.5, got %f/%f", m.WeekendAvg, m.WeekendStdDev)
	}
	// 加权负荷: {3, 1} -> 均值2, 标准差1
	if m.WeightedAvg != 2 || m.WeightedStdDev != 1 {
		t.Errorf("加权均值/标准差应为2/1, got %f/%f", m.WeightedAvg, m.WeightedStdDev)
	}
}

func TestFairness_StaffStatCounters(t *testing.T) {
	holidays := map[time.Time]bool{oct(1): true}
	month := model.NewMonthContext(2026, time.October, holidays)
	a := &model.StaffMember{Name: "甲", CanNight: true, Can24h: true,
		FixedOn: map[time.Time]model.ShiftKind{oct(1): model.ShiftDay}}
	r := model.NewRoster(month, []*model.StaffMember{a})
	ms := r.Member("甲")

	r.Assign(ms, oct(1), model.ShiftDay)     // 节假日
	r.Assign(ms, oct(10), model.ShiftNight)  // 周六
	r.Assign(ms, oct(20), model.ShiftFull24) // 24小时班

	m := NewFairnessAnalyzer().Analyze(r)
	s := m.StaffStats[0]
	if s.TotalShifts != 3 || s.DayShifts != 2 || s.NightShifts != 2 {
		t.Errorf("总/白/夜计数错误: %+v", s)
	}
	if s.Full24Shifts != 1 || s.WeekendShifts != 1 || s.HolidayShifts != 1 {
		t.Errorf("24小时/周末/节假日计数错误: %+v", s)
	}
	if s.WeightedLoad != 4 {
		t.Errorf("加权负荷应为4, got %f", s.WeightedLoad)
	}
}
