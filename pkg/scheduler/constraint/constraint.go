// Package constraint 提供分级的值班约束检查
package constraint

import (
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

// 间隔规则（单位：日历天数差）
const (
	// MinNightToNightGap 常规模式下两个夜班之间的最小间隔
	MinNightToNightGap = 5
	// EmergencyNightToNightGap 紧急模式下放宽后的夜班最小间隔
	EmergencyNightToNightGap = 3
	// MinDayToDayGap 两个白班之间的最小间隔
	MinDayToDayGap = 3
	// MinNightToDayGap 夜班之后禁止白班的天数（双向检查）
	MinNightToDayGap = 3
)

// Level 约束严格程度，逐级放宽
type Level int

const (
	// LevelNormal 常规：全部间隔规则 + 公平性拦截
	LevelNormal Level = iota
	// LevelEmergency 紧急：夜班间隔放宽到 3 天，取消公平性拦截
	LevelEmergency
	// LevelForce 强制（仅请假补位使用）：忽略固定休息日和周末规则，
	// 但紧急夜班间隔、白班间隔和节假日值班人周末排除永不放宽
	LevelForce
	// LevelAbsoluteForce 绝对强制：检查内容与 LevelForce 相同，
	// 仅在补位优先级上承担更大的惩罚
	LevelAbsoluteForce
)

// nightGap 返回该级别生效的夜班间隔
func (l Level) nightGap() int {
	if l == LevelNormal {
		return MinNightToNightGap
	}
	return EmergencyNightToNightGap
}

// Reason 拒绝原因
type Reason string

const (
	ReasonOK                   Reason = "ok"
	ReasonFixedOff             Reason = "fixed_off"
	ReasonAlreadyAssigned      Reason = "already_assigned"
	ReasonNoNightCapability    Reason = "no_night_capability"
	ReasonNo24hCapability      Reason = "no_24h_capability"
	ReasonNightGap             Reason = "night_gap_too_short"
	ReasonDayAfterNight        Reason = "day_too_close_after_night"
	ReasonDayGap               Reason = "day_gap_too_short"
	ReasonWeekendPair          Reason = "weekend_pair_taken"
	ReasonThursdayNightComp    Reason = "thursday_night_compensation"
	ReasonHolidayWorkerWeekend Reason = "holiday_worker_weekend"
	ReasonNightFairness        Reason = "night_fairness"
	ReasonWeekendFairness      Reason = "weekend_fairness"
	ReasonTargetReached        Reason = "target_reached"
)

// Decision 约束判定结果：允许，或带原因的拒绝
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true, Reason: ReasonOK}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Checker 分级约束检查器。
// 单一参数化谓词，各级别只改变生效的间隔阈值和公平性拦截开关。
type Checker struct {
	month *model.MonthContext

	// 人均目标班次（用于超目标拦截）
	avgShiftsPerPerson float64
}

// NewChecker 创建约束检查器
func NewChecker(month *model.MonthContext, avgShiftsPerPerson float64) *Checker {
	return &Checker{month: month, avgShiftsPerPerson: avgShiftsPerPerson}
}

// Check 判定能否把 (日期, 班次) 分配给某成员
func (c *Checker) Check(r *model.Roster, ms *model.MemberState, d time.Time, kind model.ShiftKind, level Level) Decision {
	relaxed := level >= LevelForce

	// 固定休息日：强制级别下为保证覆盖允许占用
	if !relaxed {
		if !ms.Member.AvailableOn(d) {
			return deny(ReasonFixedOff)
		}
	}

	// 同日不可重复占用（任何级别）
	if _, taken := ms.Assigned[d]; taken {
		return deny(ReasonAlreadyAssigned)
	}

	// 能力检查（任何级别）
	if kind.CountsAsNight() && !ms.Member.CanNight {
		return deny(ReasonNoNightCapability)
	}
	if kind == model.ShiftFull24 && !ms.Member.Can24h {
		return deny(ReasonNo24hCapability)
	}

	// 间隔规则：逐一对照该成员的全部既有班次，而不只是最近一次
	if dec := c.checkGaps(ms, d, kind, level.nightGap()); !dec.Allowed {
		return dec
	}

	// 节假日值班人整月禁排周末：任何级别都不放宽
	if c.month.IsWeekend(d) && r.IsHolidayWorker(ms.Name()) {
		return deny(ReasonHolidayWorkerWeekend)
	}

	// 周末规则：强制级别下放弃（补位时周末配对可被打破）
	if !relaxed && c.month.IsWeekend(d) {
		if dec := c.checkWeekendRules(r, ms, d); !dec.Allowed {
			return dec
		}
	}

	// 公平性拦截：仅常规级别
	if level == LevelNormal {
		if dec := c.checkFairnessBlocks(r, ms, d, kind); !dec.Allowed {
			return dec
		}
	}

	return allow()
}

// checkGaps 间隔规则检查
func (c *Checker) checkGaps(ms *model.MemberState, d time.Time, kind model.ShiftKind, nightGap int) Decision {
	if kind.CountsAsNight() {
		// 夜班对夜班
		for _, existing := range ms.NightDates() {
			gap := model.DaysBetween(existing, d)
			if gap > 0 && gap < nightGap {
				return deny(ReasonNightGap)
			}
		}
		// 反向检查：既有白班不能紧跟在这个夜班之后
		for _, existing := range ms.DayDates() {
			gap := model.DaysForward(d, existing)
			if gap > 0 && gap < MinNightToDayGap {
				return deny(ReasonDayAfterNight)
			}
		}
	}

	if kind.CountsAsDay() {
		// 夜班之后禁止白班
		for _, existing := range ms.NightDates() {
			gap := model.DaysForward(existing, d)
			if gap > 0 && gap < MinNightToDayGap {
				return deny(ReasonDayAfterNight)
			}
		}
		// 白班对白班
		for _, existing := range ms.DayDates() {
			gap := model.DaysBetween(existing, d)
			if gap > 0 && gap < MinDayToDayGap {
				return deny(ReasonDayGap)
			}
		}
	}

	return allow()
}

// checkWeekendRules 周末配对与周四夜班补偿规则
func (c *Checker) checkWeekendRules(r *model.Roster, ms *model.MemberState, d time.Time) Decision {
	// 同一个周末最多一个班
	if other, ok := c.month.WeekendPair(d); ok {
		if _, taken := ms.Assigned[other]; taken {
			return deny(ReasonWeekendPair)
		}
	}

	// 周四夜班者本周末双休作为补偿
	if c.hasThursdayNightThisWeek(ms, d) {
		return deny(ReasonThursdayNightComp)
	}

	return allow()
}

// hasThursdayNightThisWeek 检查某成员本周周四是否值夜班（含24小时班）
func (c *Checker) hasThursdayNightThisWeek(ms *model.MemberState, weekendDate time.Time) bool {
	thursday, ok := c.month.ThursdayBefore(weekendDate)
	if !ok {
		return false
	}
	kind, taken := ms.Assigned[thursday]
	return taken && kind.CountsAsNight()
}

// basicCheck 不含公平性拦截的可用性判定，
// 用于公平性比较时确认其他候选人确实可以顶班。
func (c *Checker) basicCheck(r *model.Roster, ms *model.MemberState, d time.Time, kind model.ShiftKind) bool {
	if !ms.Member.AvailableOn(d) {
		return false
	}
	if _, taken := ms.Assigned[d]; taken {
		return false
	}
	if kind.CountsAsNight() && !ms.Member.CanNight {
		return false
	}
	if kind == model.ShiftFull24 && !ms.Member.Can24h {
		return false
	}
	if dec := c.checkGaps(ms, d, kind, MinNightToNightGap); !dec.Allowed {
		return false
	}
	if c.month.IsWeekend(d) {
		if dec := c.checkWeekendRules(r, ms, d); !dec.Allowed {
			return false
		}
	}
	return true
}

// BasicAvailable 对外暴露的无公平性可用判定（评分器比较候选余量时使用）
func (c *Checker) BasicAvailable(r *model.Roster, ms *model.MemberState, d time.Time, kind model.ShiftKind) bool {
	return c.basicCheck(r, ms, d, kind)
}

// checkFairnessBlocks 常规级别的"软规则硬化"公平性拦截
func (c *Checker) checkFairnessBlocks(r *model.Roster, ms *model.MemberState, d time.Time, kind model.ShiftKind) Decision {
	// 夜班公平：归一化夜班数高于当前最小值、且存在可顶班的最小值候选时拒绝
	if kind.CountsAsNight() {
		minNorm := -1.0
		for _, p := range r.Members() {
			if !p.Member.CanNight {
				continue
			}
			if minNorm < 0 || p.NormNight() < minNorm {
				minNorm = p.NormNight()
			}
		}
		if minNorm >= 0 && ms.NormNight() > minNorm {
			for _, p := range r.Members() {
				if p == ms || !p.Member.CanNight {
					continue
				}
				if p.NormNight() <= minNorm && c.basicCheck(r, p, d, kind) {
					return deny(ReasonNightFairness)
				}
			}
		}
	}

	if c.month.IsWeekend(d) {
		// 节假日值班人的运行期计数也用于周末排除
		// （与预定值班推导的集合并存，两套检查都保留）
		if ms.Holiday > 0 {
			for _, p := range r.Members() {
				if p == ms || p.Holiday > 0 {
					continue
				}
				if c.basicCheck(r, p, d, kind) {
					return deny(ReasonHolidayWorkerWeekend)
				}
			}
		}

		// 周末公平：只在无节假日负担的成员之间比较
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
			if minWeekend >= 0 && ms.Weekend > minWeekend {
				for _, p := range r.Members() {
					if p == ms || p.Holiday > 0 {
						continue
					}
					if p.Weekend <= minWeekend && c.basicCheck(r, p, d, kind) {
						return deny(ReasonWeekendFairness)
					}
				}
			}
			if minWeekend >= 0 && ms.Weekend >= minWeekend+1 {
				for _, p := range r.Members() {
					if p == ms || p.Holiday > 0 {
						continue
					}
					if p.Weekend < ms.Weekend && c.basicCheck(r, p, d, kind) {
						return deny(ReasonWeekendFairness)
					}
				}
			}
		}
	}

	// 超目标拦截：个人已超出目标 1 班以上而仍有人未达标时拒绝
	target := c.avgShiftsPerPerson * ms.Member.TargetRatio()
	if float64(ms.Total) >= target+1 {
		for _, p := range r.Members() {
			if p == ms {
				continue
			}
			pTarget := c.avgShiftsPerPerson * p.Member.TargetRatio()
			if float64(p.Total) < pTarget && c.basicCheck(r, p, d, kind) {
				return deny(ReasonTargetReached)
			}
		}
	}

	return allow()
}

// CanSwap 判定某班次能否换给另一成员（尝试后平衡优化使用）。
// 接收方按常规间隔与周末规则检查，另有两条换班专属限制：
// 周末班不换给节假日值班负担者；周四夜班不换给本周末已有班的人。
func (c *Checker) CanSwap(r *model.Roster, to *model.MemberState, d time.Time, kind model.ShiftKind) bool {
	if kind.CountsAsNight() && !to.Member.CanNight {
		return false
	}
	if kind == model.ShiftFull24 && !to.Member.Can24h {
		return false
	}
	if !to.Member.AvailableOn(d) {
		return false
	}
	if _, taken := to.Assigned[d]; taken {
		return false
	}
	if dec := c.checkGaps(to, d, kind, MinNightToNightGap); !dec.Allowed {
		return false
	}
	if c.month.IsWeekend(d) {
		if to.Holiday > 0 || r.IsHolidayWorker(to.Name()) {
			return false
		}
		if dec := c.checkWeekendRules(r, to, d); !dec.Allowed {
			return false
		}
	}
	// 周四夜班接收方的周末必须空闲
	if d.Weekday() == time.Thursday && kind.CountsAsNight() {
		if _, taken := to.Assigned[d.AddDate(0, 0, 2)]; taken {
			return false
		}
		if _, taken := to.Assigned[d.AddDate(0, 0, 3)]; taken {
			return false
		}
	}
	return true
}
