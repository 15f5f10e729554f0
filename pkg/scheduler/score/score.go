// Package score 提供候选人偏好评分
package score

import (
	"math/rand"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// Scorer 候选人评分器。
// 对一个已通过约束检查的候选分配给出实数偏好分，分数越高越优先。
// 各分量叠加，最后加 0~0.5 的随机扰动打破并列并带来尝试间多样性。
type Scorer struct {
	month   *model.MonthContext
	checker *constraint.Checker
	rng     *rand.Rand
}

// NewScorer 创建评分器（每次尝试持有独立的随机源）
func NewScorer(month *model.MonthContext, checker *constraint.Checker, rng *rand.Rand) *Scorer {
	return &Scorer{month: month, checker: checker, rng: rng}
}

// Score 计算把 (日期, 班次) 分配给某成员的偏好分
func (s *Scorer) Score(r *model.Roster, ms *model.MemberState, d time.Time, kind model.ShiftKind) float64 {
	var sc float64

	members := r.Members()

	// 归一化总班次的全员最小/最大值
	minTotal, maxTotal := normRange(members, func(p *model.MemberState) float64 { return p.NormTotal() })

	// 总量公平：处于最低档加分，已是最高档且有差距时减分
	if ms.NormTotal() <= minTotal {
		sc += 50
	} else if ms.NormTotal() >= maxTotal && maxTotal-minTotal >= 1 {
		sc -= 50
	}

	// 白班公平：不能值夜班的人只有白班可值，强烈优先；
	// 夜班可值者之间再按白班档位比较
	if kind.CountsAsDay() {
		if !ms.Member.CanNight {
			sc += 80
		} else {
			minDay, maxDay := normRangeFiltered(members,
				func(p *model.MemberState) bool { return p.Member.CanNight },
				func(p *model.MemberState) float64 { return p.NormDay() })
			if ms.NormDay() <= minDay {
				sc += 30
			} else if ms.NormDay() >= maxDay && maxDay-minDay >= 1 {
				sc -= 30
			}
		}
	}

	// 夜班公平与间隔奖励
	if kind.CountsAsNight() {
		minNight, maxNight := normRange(members, func(p *model.MemberState) float64 { return p.NormNight() })
		if ms.NormNight() <= minNight {
			sc += 30
		} else if ms.NormNight() >= maxNight && maxNight-minNight >= 1 {
			sc -= 30
		}

		if !ms.LastNight.IsZero() {
			gap := model.DaysForward(ms.LastNight, d)
			if gap >= constraint.MinNightToNightGap {
				sc += 5
			} else if gap >= constraint.EmergencyNightToNightGap {
				sc += 2
			}
		}
	}

	if s.month.IsWeekend(d) {
		sc += s.weekendScore(r, ms, d, kind)
	}

	// 24小时班公平：尽量每人最多一次
	if kind == model.ShiftFull24 {
		min24 := -1
		for _, p := range members {
			if !p.Member.Can24h {
				continue
			}
			if min24 < 0 || p.Full24 < min24 {
				min24 = p.Full24
			}
		}
		if min24 >= 0 && ms.Full24 > min24 {
			sc -= 300
		}
		if ms.Full24 >= 1 {
			sc -= 200
		}
	}

	// 周四夜班补偿：夜班负担重的人值周四夜班，随后周末双休
	if kind == model.ShiftNight && d.Weekday() == time.Thursday {
		_, maxNight := normRange(members, func(p *model.MemberState) float64 { return p.NormNight() })
		if ms.NormNight() >= maxNight-1 {
			sc += 50
		}
		if ms.Weekend > 0 {
			sc += 30
		}
	}

	// 随机扰动
	sc += s.rng.Float64() * 0.5

	return sc
}

// weekendScore 周末分量
func (s *Scorer) weekendScore(r *model.Roster, ms *model.MemberState, d time.Time, kind model.ShiftKind) float64 {
	var sc float64

	// 节假日值班的人不应再排周末：有替代者时近乎硬拦截
	if ms.Holiday > 0 {
		for _, p := range r.Members() {
			if p == ms || p.Holiday > 0 {
				continue
			}
			if s.checker.BasicAvailable(r, p, d, kind) {
				sc -= 1000
				break
			}
		}
	}

	// 周末公平只在无节假日负担者之间比较
	if ms.Holiday == 0 {
		minWeekend := -1
		for _, p := range r.Members() {
			if p.Holiday > 0 {
				continue
			}
			if minWeekend < 0 || p.Weekend < minWeekend {
				minWeekend = p.Weekend
			}
		}
		if minWeekend >= 0 {
			if ms.Weekend <= minWeekend {
				sc += 100
			} else {
				sc -= 100
			}
			if ms.Weekend >= minWeekend+1 {
				sc -= 200
			}
		}
	}

	// 本周周四已值夜班者周末必须双休
	if thursday, ok := s.month.ThursdayBefore(d); ok {
		if tk, taken := ms.Assigned[thursday]; taken && tk.CountsAsNight() {
			sc -= 500
		}
	}

	return sc
}

// normRange 求全员某指标的最小/最大值
func normRange(members []*model.MemberState, get func(*model.MemberState) float64) (float64, float64) {
	return normRangeFiltered(members, func(*model.MemberState) bool { return true }, get)
}

// normRangeFiltered 求满足条件成员某指标的最小/最大值
func normRangeFiltered(members []*model.MemberState, keep func(*model.MemberState) bool, get func(*model.MemberState) float64) (float64, float64) {
	first := true
	var lo, hi float64
	for _, p := range members {
		if !keep(p) {
			continue
		}
		v := get(p)
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
