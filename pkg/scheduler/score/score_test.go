package score

import (
	"math/rand"
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

func oct(day int) time.Time {
	return model.Date(2026, time.October, day)
}

func newTestScorer(staff ...*model.StaffMember) (*model.Roster, *Scorer) {
	month := model.NewMonthContext(2026, time.October, nil)
	r := model.NewRoster(month, staff)
	checker := constraint.NewChecker(month, 100)
	return r, NewScorer(month, checker, rand.New(rand.NewSource(1)))
}

func TestScore_PrefersLowestTotal(t *testing.T) {
	a := &model.StaffMember{Name: "甲", CanNight: true}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r, s := newTestScorer(a, b)

	msA, msB := r.Member("甲"), r.Member("乙")
	r.Assign(msA, oct(5), model.ShiftDay)
	r.Assign(msA, oct(12), model.ShiftDay)

	// 乙总班次更少，同一名额应得更高分
	scoreA := s.Score(r, msA, oct(20), model.ShiftDay)
	scoreB := s.Score(r, msB, oct(20), model.ShiftDay)
	if scoreB <= scoreA {
		t.Errorf("总班次少者应得分更高: 甲=%f 乙=%f", scoreA, scoreB)
	}
}

func TestScore_NonNightCapableDayBonus(t *testing.T) {
	a := &model.StaffMember{Name: "甲", CanNight: false}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r, s := newTestScorer(a, b)

	msA, msB := r.Member("甲"), r.Member("乙")

	// 不能值夜班的人白班名额强烈优先
	scoreA := s.Score(r, msA, oct(6), model.ShiftDay)
	scoreB := s.Score(r, msB, oct(6), model.ShiftDay)
	if scoreA-scoreB < 40 {
		t.Errorf("不能值夜班者的白班加成不足: 甲=%f 乙=%f", scoreA, scoreB)
	}
}

func TestScore_WeekendStanding(t *testing.T) {
	a := &model.StaffMember{Name: "甲", CanNight: true}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r, s := newTestScorer(a, b)

	msA, msB := r.Member("甲"), r.Member("乙")
	r.Assign(msA, oct(3), model.ShiftDay) // 周六

	// 周末班多者在后续周末名额上大幅失分
	scoreA := s.Score(r, msA, oct(10), model.ShiftDay)
	scoreB := s.Score(r, msB, oct(10), model.ShiftDay)
	if scoreB-scoreA < 300 {
		t.Errorf("周末负担重者应显著失分: 甲=%f 乙=%f", scoreA, scoreB)
	}
}

func TestScore_Extra24hPenalty(t *testing.T) {
	a := &model.StaffMember{Name: "甲", CanNight: true, Can24h: true}
	b := &model.StaffMember{Name: "乙", CanNight: true, Can24h: true}
	r, s := newTestScorer(a, b)

	msA := r.Member("甲")
	r.Assign(msA, oct(5), model.ShiftFull24)

	// 已有24小时班的人再排一次会受双重重罚
	scoreA := s.Score(r, msA, oct(20), model.ShiftFull24)
	scoreB := s.Score(r, r.Member("乙"), oct(20), model.ShiftFull24)
	if scoreB-scoreA < 400 {
		t.Errorf("重复24小时班的惩罚不足: 甲=%f 乙=%f", scoreA, scoreB)
	}
}

func TestScore_ThursdayNightBonus(t *testing.T) {
	a := &model.StaffMember{Name: "甲", CanNight: true}
	b := &model.StaffMember{Name: "乙", CanNight: true}
	r, s := newTestScorer(a, b)

	msA := r.Member("甲")
	r.Assign(msA, oct(3), model.ShiftDay)  // 周末班
	r.Assign(msA, oct(8), model.ShiftNight)

	// 夜班负担重且有周末班的人值周四夜班有加成
	scoreThursday := s.Score(r, msA, oct(22), model.ShiftNight)
	scoreMonday := s.Score(r, msA, oct(26), model.ShiftNight)
	if scoreThursday-scoreMonday < 50 {
		t.Errorf("周四夜班加成不足: 周四=%f 周一=%f", scoreThursday, scoreMonday)
	}
}
