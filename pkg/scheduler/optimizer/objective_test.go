package optimizer

import (
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

func oct(day int) time.Time {
	return model.Date(2026, time.October, day)
}

func TestAttemptScore_PerfectBalance(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	a := &model.StaffMember{Name: "甲", CanNight: true}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r := model.NewRoster(month, []*model.StaffMember{a, b})

	// 完全对称的分配
	r.Assign(r.Member("甲"), oct(5), model.ShiftNight)
	r.Assign(r.Member("乙"), oct(6), model.ShiftNight)
	r.Assign(r.Member("甲"), oct(12), model.ShiftDay)
	r.Assign(r.Member("乙"), oct(13), model.ShiftDay)

	if score := AttemptScore(r); score != 0 {
		t.Errorf("完全均衡的尝试得分应为0, got %f", score)
	}
}

func TestAttemptScore_WeekendImbalance(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	a := &model.StaffMember{Name: "甲", CanNight: true}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r := model.NewRoster(month, []*model.StaffMember{a, b})

	r.Assign(r.Member("甲"), oct(3), model.ShiftDay)  // 周六
	r.Assign(r.Member("甲"), oct(10), model.ShiftDay) // 周六

	score := AttemptScore(r)
	if score <= 0 {
		t.Fatal("周末不均衡应产生正分")
	}

	// 差值2触发平方放大项
	balanced := model.NewRoster(month, []*model.StaffMember{a, b})
	balanced.Assign(balanced.Member("甲"), oct(3), model.ShiftDay)
	balanced.Assign(balanced.Member("乙"), oct(10), model.ShiftDay)
	if AttemptScore(balanced) >= score {
		t.Error("均衡分配的得分应低于不均衡分配")
	}
}

func TestAttemptScore_HolidayWorkerWeekendPenalty(t *testing.T) {
	holidays := map[time.Time]bool{oct(1): true}
	month := model.NewMonthContext(2026, time.October, holidays)
	a := &model.StaffMember{Name: "甲", CanNight: true,
		FixedOn: map[time.Time]model.ShiftKind{oct(1): model.ShiftDay}}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r := model.NewRoster(month, []*model.StaffMember{a, b})

	r.Assign(r.Member("甲"), oct(1), model.ShiftDay)
	r.Assign(r.Member("甲"), oct(10), model.ShiftDay) // 节假日值班人被排周末

	if score := AttemptScore(r); score < 10000 {
		t.Errorf("节假日值班人周末班应触发重罚, got %f", score)
	}
}

func TestAttemptScore_Extra24hPenalty(t *testing.T) {
	month := model.NewMonthContext(2026, time.October, nil)
	a := &model.StaffMember{Name: "甲", CanNight: true, Can24h: true}
	r := model.NewRoster(month, []*model.StaffMember{a})

	r.Assign(r.Member("甲"), oct(5), model.ShiftFull24)
	single := AttemptScore(r)

	r.Assign(r.Member("甲"), oct(15), model.ShiftFull24)
	double := AttemptScore(r)

	if double-single < 100 {
		t.Errorf("同一人第二个24小时班应追加惩罚: single=%f double=%f", single, double)
	}
}

func TestValueRangeAndVariance(t *testing.T) {
	if got := valueRange([]float64{1, 4, 2}); got != 3 {
		t.Errorf("极差应为3, got %f", got)
	}
	if got := valueRange(nil); got != 0 {
		t.Errorf("空输入极差应为0, got %f", got)
	}

	// 样本方差: {1,3} 均值2, 方差 ((1)^2+(1)^2)/(2-1)=2
	if got := sampleVariance([]float64{1, 3}); got != 2 {
		t.Errorf("样本方差应为2, got %f", got)
	}
	if got := sampleVariance([]float64{5}); got != 0 {
		t.Errorf("单样本方差应为0, got %f", got)
	}
}

func TestWeekendSpreadFor(t *testing.T) {
	cases := []struct{ idx, want int }{
		{0, 1}, {4, 1}, {5, 2}, {10, 3}, {25, 3},
	}
	for _, c := range cases {
		if got := weekendSpreadFor(c.idx); got != c.want {
			t.Errorf("weekendSpreadFor(%d) = %d, want %d", c.idx, got, c.want)
		}
	}
}
