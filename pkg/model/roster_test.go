package model

import (
	"testing"
	"time"
)

func makeFixedOff(days ...int) map[time.Time]bool {
	off := make(map[time.Time]bool)
	for _, d := range days {
		off[Date(2026, time.October, d)] = true
	}
	return off
}

func TestTargetRatio(t *testing.T) {
	full := &StaffMember{Name: "甲", FixedOff: makeFixedOff(1, 2, 3)}
	if full.TargetRatio() != 1.0 {
		t.Errorf("少量休假目标系数应为1.0, got %f", full.TargetRatio())
	}

	half := &StaffMember{Name: "乙", FixedOff: makeFixedOff(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14)}
	if half.TargetRatio() != 0.5 {
		t.Errorf("休假达到14天目标系数应为0.5, got %f", half.TargetRatio())
	}
}

func TestMemberState_Normalization(t *testing.T) {
	month := NewMonthContext(2026, time.October, nil)
	half := &StaffMember{Name: "乙", CanNight: true,
		FixedOff: makeFixedOff(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14)}
	r := NewRoster(month, []*StaffMember{half})

	ms := r.Member("乙")
	r.Assign(ms, Date(2026, time.October, 20), ShiftNight)

	// 半月工作制计数翻倍参与公平性比较
	if ms.NormNight() != 2 {
		t.Errorf("半月制1个夜班归一化后应为2, got %f", ms.NormNight())
	}
	if ms.NormTotal() != 2 {
		t.Errorf("半月制1个班归一化后应为2, got %f", ms.NormTotal())
	}
}

func TestRoster_AssignAndRemove(t *testing.T) {
	holidays := map[time.Time]bool{Date(2026, time.October, 1): true}
	month := NewMonthContext(2026, time.October, holidays)
	staff := []*StaffMember{{Name: "甲", CanNight: true, Can24h: true}}
	r := NewRoster(month, staff)
	ms := r.Member("甲")

	weekday := Date(2026, time.October, 5)
	saturday := Date(2026, time.October, 3)
	holiday := Date(2026, time.October, 1)

	r.Assign(ms, weekday, ShiftDay)
	r.Assign(ms, saturday, ShiftNight)
	r.Assign(ms, holiday, ShiftFull24)

	if ms.Total != 3 || ms.Day != 2 || ms.Night != 2 || ms.Full24 != 1 {
		t.Errorf("计数错误: total=%d day=%d night=%d full24=%d",
			ms.Total, ms.Day, ms.Night, ms.Full24)
	}
	if ms.Weekend != 1 {
		t.Errorf("周末计数应为1, got %d", ms.Weekend)
	}
	if ms.Holiday != 1 {
		t.Errorf("节假日计数应为1, got %d", ms.Holiday)
	}
	// 24小时班权重为2
	if ms.Weighted != 4 {
		t.Errorf("加权负荷应为4, got %f", ms.Weighted)
	}

	if kind, ok := r.KindAt("甲", saturday); !ok || kind != ShiftNight {
		t.Errorf("10月3日应为夜班, got %v ok=%v", kind, ok)
	}

	// 撤销24小时班应同时回退白班和夜班计数
	if kind, ok := r.Remove(ms, holiday); !ok || kind != ShiftFull24 {
		t.Fatalf("撤销失败: kind=%v ok=%v", kind, ok)
	}
	if ms.Total != 2 || ms.Day != 1 || ms.Night != 1 || ms.Full24 != 0 || ms.Holiday != 0 {
		t.Errorf("撤销后计数错误: total=%d day=%d night=%d full24=%d holiday=%d",
			ms.Total, ms.Day, ms.Night, ms.Full24, ms.Holiday)
	}

	// 撤销不存在的班次
	if _, ok := r.Remove(ms, Date(2026, time.October, 30)); ok {
		t.Error("撤销未占用日期应返回false")
	}
}

func TestRoster_HolidayWorkers(t *testing.T) {
	holidays := map[time.Time]bool{Date(2026, time.October, 1): true}
	month := NewMonthContext(2026, time.October, holidays)

	staff := []*StaffMember{
		{Name: "甲", FixedOn: map[time.Time]ShiftKind{Date(2026, time.October, 1): ShiftDay}},
		{Name: "乙", FixedOn: map[time.Time]ShiftKind{Date(2026, time.October, 9): ShiftDay}},
		{Name: "丙"},
	}
	r := NewRoster(month, staff)

	// 集合在创建时即闭合，不依赖任何分配
	if !r.IsHolidayWorker("甲") {
		t.Error("甲预定了节假日值班，应为节假日值班人")
	}
	if r.IsHolidayWorker("乙") {
		t.Error("乙的预定值班不在节假日，不应为节假日值班人")
	}
	if r.IsHolidayWorker("丙") {
		t.Error("丙没有预定值班，不应为节假日值班人")
	}
}

func TestRoster_ApplyFixedOn(t *testing.T) {
	month := NewMonthContext(2026, time.October, nil)
	staff := []*StaffMember{
		{Name: "甲", CanNight: true, FixedOn: map[time.Time]ShiftKind{
			Date(2026, time.October, 5): ShiftNight,
			Date(2026, time.November, 3): ShiftDay, // 非当月，应忽略
		}},
	}
	r := NewRoster(month, staff)
	r.ApplyFixedOn()

	ms := r.Member("甲")
	if ms.Total != 1 {
		t.Errorf("仅当月预定值班应落位, got total=%d", ms.Total)
	}
	if kind, ok := r.KindAt("甲", Date(2026, time.October, 5)); !ok || kind != ShiftNight {
		t.Errorf("10月5日应为夜班, got %v ok=%v", kind, ok)
	}
}

func TestRoster_MembersOrder(t *testing.T) {
	month := NewMonthContext(2026, time.October, nil)
	staff := []*StaffMember{{Name: "丙"}, {Name: "甲"}, {Name: "乙"}}
	r := NewRoster(month, staff)

	members := r.Members()
	if len(members) != 3 {
		t.Fatalf("应有3名成员, got %d", len(members))
	}
	// 保持花名册输入顺序
	if members[0].Name() != "丙" || members[1].Name() != "甲" || members[2].Name() != "乙" {
		t.Errorf("成员顺序应与花名册一致: %s %s %s",
			members[0].Name(), members[1].Name(), members[2].Name())
	}
}
