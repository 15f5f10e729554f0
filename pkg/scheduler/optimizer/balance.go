// Package optimizer 提供尝试评价与平衡优化
package optimizer

import (
	"sort"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// maxBalanceIterations 平衡迭代上限
const maxBalanceIterations = 50

// Balancer 尝试后平衡优化器：在不破坏硬约束的前提下，
// 把周末/夜班/总量负担从最重的人换给最轻的人，直到收敛或达上限。
type Balancer struct {
	month   *model.MonthContext
	checker *constraint.Checker
}

// NewBalancer 创建平衡优化器
func NewBalancer(month *model.MonthContext, checker *constraint.Checker) *Balancer {
	return &Balancer{month: month, checker: checker}
}

// Optimize 对一次有效尝试做换班平衡
func (b *Balancer) Optimize(r *model.Roster) {
	for i := 0; i < maxBalanceIterations; i++ {
		improved := false
		if b.balanceWeekends(r) {
			improved = true
		}
		if b.balanceNights(r) {
			improved = true
		}
		if b.balanceHighTotalBurden(r) {
			improved = true
		}
		if b.balanceTotals(r) {
			improved = true
		}
		if !improved {
			return
		}
	}
}

// memberShifts 某成员的全部班次（按日期升序，可按条件过滤）
func memberShifts(ms *model.MemberState, keep func(time.Time, model.ShiftKind) bool) []time.Time {
	var dates []time.Time
	for d, kind := range ms.Assigned {
		if keep(d, kind) {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// swap 执行一次换班
func (b *Balancer) swap(r *model.Roster, from, to *model.MemberState, d time.Time) {
	kind, ok := r.Remove(from, d)
	if !ok {
		return
	}
	r.Assign(to, d, kind)
}

// balanceWeekends 周末班差值超过 1 时从最多者换给最少者
func (b *Balancer) balanceWeekends(r *model.Roster) bool {
	members := r.Members()

	maxW, minW := members[0].Weekend, members[0].Weekend
	for _, p := range members[1:] {
		if p.Weekend > maxW {
			maxW = p.Weekend
		}
		if p.Weekend < minW {
			minW = p.Weekend
		}
	}
	if maxW-minW <= 1 {
		return false
	}

	for _, high := range members {
		if high.Weekend != maxW {
			continue
		}
		dates := memberShifts(high, func(d time.Time, _ model.ShiftKind) bool {
			return b.month.IsWeekend(d)
		})
		for _, d := range dates {
			kind := high.Assigned[d]
			for _, low := range members {
				if low.Weekend != minW || low == high {
					continue
				}
				if b.checker.CanSwap(r, low, d, kind) {
					b.swap(r, high, low, d)
					return true
				}
			}
		}
	}
	return false
}

// balanceNights 归一化夜班差值超过 1 时换班（24 小时班不参与）
func (b *Balancer) balanceNights(r *model.Roster) bool {
	var capable []*model.MemberState
	for _, p := range r.Members() {
		if p.Member.CanNight {
			capable = append(capable, p)
		}
	}
	if len(capable) == 0 {
		return false
	}

	maxN, minN := capable[0].NormNight(), capable[0].NormNight()
	for _, p := range capable[1:] {
		if p.NormNight() > maxN {
			maxN = p.NormNight()
		}
		if p.NormNight() < minN {
			minN = p.NormNight()
		}
	}
	if maxN-minN <= 1 {
		return false
	}

	for _, high := range capable {
		if high.NormNight() != maxN {
			continue
		}
		dates := memberShifts(high, func(_ time.Time, kind model.ShiftKind) bool {
			return kind.CountsAsNight() && kind != model.ShiftFull24
		})
		for _, d := range dates {
			for _, low := range capable {
				if low.NormNight() != minN || low == high {
					continue
				}
				if b.checker.CanSwap(r, low, d, model.ShiftNight) {
					b.swap(r, high, low, d)
					return true
				}
			}
		}
	}
	return false
}

// balanceHighTotalBurden 总量最高者若同时背着最多周末或夜班，
// 优先把这部分负担换出去
func (b *Balancer) balanceHighTotalBurden(r *model.Roster) bool {
	members := r.Members()

	maxTotal := members[0].NormTotal()
	for _, p := range members[1:] {
		if p.NormTotal() > maxTotal {
			maxTotal = p.NormTotal()
		}
	}

	for _, high := range members {
		if high.NormTotal() != maxTotal {
			continue
		}

		if b.shedWeekendBurden(r, high, maxTotal) {
			return true
		}
		if b.shedNightBurden(r, high, maxTotal) {
			return true
		}
	}
	return false
}

// shedWeekendBurden 把总量最高者的一个周末班换给周末和总量都更少的人
func (b *Balancer) shedWeekendBurden(r *model.Roster, high *model.MemberState, maxTotal float64) bool {
	if high.Holiday > 0 {
		return false
	}

	maxWeekend := -1
	for _, p := range r.Members() {
		if p.Holiday > 0 {
			continue
		}
		if p.Weekend > maxWeekend {
			maxWeekend = p.Weekend
		}
	}
	if maxWeekend <= 0 || high.Weekend != maxWeekend {
		return false
	}

	dates := memberShifts(high, func(d time.Time, _ model.ShiftKind) bool {
		return b.month.IsWeekend(d)
	})
	for _, d := range dates {
		kind := high.Assigned[d]
		for _, other := range r.Members() {
			if other == high || other.Holiday > 0 {
				continue
			}
			if other.Weekend >= high.Weekend || other.NormTotal() >= maxTotal {
				continue
			}
			if b.checker.CanSwap(r, other, d, kind) {
				b.swap(r, high, other, d)
				return true
			}
		}
	}
	return false
}

// shedNightBurden 把总量最高者的一个工作日夜班换给夜班和总量都更少的人
func (b *Balancer) shedNightBurden(r *model.Roster, high *model.MemberState, maxTotal float64) bool {
	if !high.Member.CanNight || high.Night == 0 {
		return false
	}

	maxNight := -1.0
	for _, p := range r.Members() {
		if !p.Member.CanNight {
			continue
		}
		if p.NormNight() > maxNight {
			maxNight = p.NormNight()
		}
	}
	if high.NormNight() != maxNight {
		return false
	}

	dates := memberShifts(high, func(d time.Time, kind model.ShiftKind) bool {
		return kind == model.ShiftNight && !b.month.IsWeekend(d)
	})
	for _, d := range dates {
		for _, other := range r.Members() {
			if other == high || !other.Member.CanNight {
				continue
			}
			if other.NormNight() >= high.NormNight() || other.NormTotal() >= maxTotal {
				continue
			}
			if b.checker.CanSwap(r, other, d, model.ShiftNight) {
				b.swap(r, high, other, d)
				return true
			}
		}
	}
	return false
}

// balanceTotals 归一化总量差值超过 1 时换班，且只在换班确实
// 改善或维持平衡时执行
func (b *Balancer) balanceTotals(r *model.Roster) bool {
	members := r.Members()

	maxT, minT := members[0].NormTotal(), members[0].NormTotal()
	for _, p := range members[1:] {
		if p.NormTotal() > maxT {
			maxT = p.NormTotal()
		}
		if p.NormTotal() < minT {
			minT = p.NormTotal()
		}
	}
	if maxT-minT <= 1 {
		return false
	}

	unit := func(p *model.MemberState) float64 {
		if p.Member.TargetRatio() == 0.5 {
			return 2
		}
		return 1
	}

	for _, high := range members {
		if high.NormTotal() != maxT {
			continue
		}
		dates := memberShifts(high, func(time.Time, model.ShiftKind) bool { return true })
		for _, d := range dates {
			kind := high.Assigned[d]
			for _, low := range members {
				if low.NormTotal() != minT || low == high {
					continue
				}
				if !b.checker.CanSwap(r, low, d, kind) {
					continue
				}
				newHigh := high.NormTotal() - unit(high)
				newLow := low.NormTotal() + unit(low)
				if newHigh >= newLow-1 {
					b.swap(r, high, low, d)
					return true
				}
			}
		}
	}
	return false
}
