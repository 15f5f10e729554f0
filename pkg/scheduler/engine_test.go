package scheduler

import (
	"math"
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
)

func oct(day int) time.Time {
	return model.Date(2026, time.October, day)
}

// halfMonthOff 构造一份达到半月工作制门槛的固定休息表
func halfMonthOff(days int) map[time.Time]bool {
	off := make(map[time.Time]bool, days)
	for day := 1; day <= days; day++ {
		off[oct(day)] = true
	}
	return off
}

func TestAvgShiftsPerPerson_EffectiveStaff(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)

	// 12人，其中2人半月工作制：有效人数 10 + 2×0.5 = 11
	var staff []*model.StaffMember
	for _, name := range []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"} {
		staff = append(staff, &model.StaffMember{Name: name, CanNight: true})
	}
	staff = append(staff,
		&model.StaffMember{Name: "子", CanNight: true, FixedOff: halfMonthOff(16)},
		&model.StaffMember{Name: "丑", CanNight: true, FixedOff: halfMonthOff(16)})

	engine, err := NewEngine(month, staff, DefaultOptions())
	if err != nil {
		t.Fatalf("创建引擎失败: %v", err)
	}

	// 31天×2个名额 / 11个有效人数
	want := 62.0 / 11.0
	if got := engine.avgShiftsPerPerson(1, 1); math.Abs(got-want) > 1e-9 {
		t.Errorf("人均班次应按有效人数折算: got %f, want %f", got, want)
	}
}

func TestAvgShiftsPerPerson_ExcludesHolidays(t *testing.T) {
	holidays := map[time.Time]bool{oct(1): true, oct(2): true}
	month := model.NewMonthContext(2026, time.October, holidays)

	var staff []*model.StaffMember
	for _, name := range []string{"甲", "乙", "丙", "丁", "戊"} {
		staff = append(staff, &model.StaffMember{Name: name, CanNight: true})
	}

	engine, err := NewEngine(month, staff, DefaultOptions())
	if err != nil {
		t.Fatalf("创建引擎失败: %v", err)
	}

	// 节假日不产生常规名额：29天×2 / 5人
	want := 58.0 / 5.0
	if got := engine.avgShiftsPerPerson(1, 1); math.Abs(got-want) > 1e-9 {
		t.Errorf("节假日不应计入名额: got %f, want %f", got, want)
	}
}

func TestNewEngine_RejectsZeroNightShifts(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	staff := []*model.StaffMember{{Name: "甲", CanNight: true}}

	_, err := NewEngine(month, staff, Options{DayShiftsPerDay: 1, NightShiftsPerDay: 0})
	if err == nil {
		t.Fatal("每日夜班数为0的配置应被拒绝")
	}
	if !errors.Is(err, errors.CodeInvalidRoster) {
		t.Errorf("错误码应为INVALID_ROSTER, got %s", errors.GetCode(err))
	}
}
