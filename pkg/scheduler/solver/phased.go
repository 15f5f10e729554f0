// Package solver 提供按阶段填充的月度排班求解器
package solver

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
	"github.com/zhiban/zhiban/pkg/scheduler/score"
	"github.com/zhiban/zhiban/pkg/validator"
)

// Config 单次尝试的求解配置
type Config struct {
	DayShiftsPerDay   int
	NightShiftsPerDay int

	// WeekendSpread 周末阶段允许的周末班数最大差值，
	// 由搜索控制器在连续失败后逐步放宽（1 起步，上限 3）
	WeekendSpread int

	// Full24Probability 工作日白班转 24 小时班的考察概率
	Full24Probability float64
}

// DefaultConfig 返回默认求解配置
func DefaultConfig(dayPerDay, nightPerDay int) Config {
	return Config{
		DayShiftsPerDay:   dayPerDay,
		NightShiftsPerDay: nightPerDay,
		WeekendSpread:     1,
		Full24Probability: 0.15,
	}
}

// PhasedSolver 按固定阶段顺序填满一个月的班次：
// 预定落位 -> 周末 -> 周四夜班补偿 -> 剩余工作日 -> 校验。
// 任一阶段失败即整个尝试作废，由搜索控制器换随机种子重试。
type PhasedSolver struct {
	month   *model.MonthContext
	checker *constraint.Checker
	scorer  *score.Scorer
	rng     *rand.Rand
	cfg     Config
	log     *logger.SchedulerLogger
}

// New 创建求解器（每次尝试使用独立的随机源）
func New(month *model.MonthContext, checker *constraint.Checker, scorer *score.Scorer, rng *rand.Rand, cfg Config) *PhasedSolver {
	return &PhasedSolver{
		month:   month,
		checker: checker,
		scorer:  scorer,
		rng:     rng,
		cfg:     cfg,
		log:     logger.NewSchedulerLogger(),
	}
}

// Run 执行一次完整的排班尝试，直接在 roster 上落位
func (s *PhasedSolver) Run(r *model.Roster) error {
	// 阶段 0：预定值班直接落位（节假日值班人集合在 roster 创建时已闭合）
	r.ApplyFixedOn()

	if err := s.fillWeekends(r); err != nil {
		return err
	}

	s.fillThursdayNights(r)

	if err := s.fillWeekdays(r); err != nil {
		return err
	}

	if violations := validator.Validate(s.month, r); len(violations) > 0 {
		s.log.PhaseFailed("validate", violations[0].Message)
		return errors.New(errors.CodeInfeasibleAttempt,
			fmt.Sprintf("校验失败: %s", violations[0].Message))
	}

	return nil
}

// openSlots 计算某日期扣除既有分配后的剩余白班/夜班名额
func (s *PhasedSolver) openSlots(r *model.Roster, d time.Time) (dayNeed, nightNeed int) {
	dayNeed = s.cfg.DayShiftsPerDay
	nightNeed = s.cfg.NightShiftsPerDay
	for _, kind := range r.DateAssignments(d) {
		if kind.CountsAsDay() {
			dayNeed--
		}
		if kind.CountsAsNight() {
			nightNeed--
		}
	}
	if dayNeed < 0 {
		dayNeed = 0
	}
	if nightNeed < 0 {
		nightNeed = 0
	}
	return dayNeed, nightNeed
}

// fillWeekends 阶段 1：周末优先填充。
// 候选池限定为非节假日值班人，按周末班数最低优先（并列比总班次，再随机），
// 且不允许超出当前最小周末班数 + 允许差值。
func (s *PhasedSolver) fillWeekends(r *model.Roster) error {
	for _, d := range s.month.Dates {
		if !s.month.IsWeekend(d) || s.month.IsHoliday(d) {
			continue
		}

		dayNeed, nightNeed := s.openSlots(r, d)
		for i := 0; i < dayNeed; i++ {
			if !s.fillWeekendSlot(r, d, model.ShiftDay) {
				s.log.PhaseFailed("weekend", fmt.Sprintf("%s 白班无人可排", d.Format("2006-01-02")))
				return errors.New(errors.CodeInfeasibleAttempt,
					fmt.Sprintf("周末 %s 白班无人可排", d.Format("2006-01-02")))
			}
		}
		for i := 0; i < nightNeed; i++ {
			if !s.fillWeekendSlot(r, d, model.ShiftNight) {
				s.log.PhaseFailed("weekend", fmt.Sprintf("%s 夜班无人可排", d.Format("2006-01-02")))
				return errors.New(errors.CodeInfeasibleAttempt,
					fmt.Sprintf("周末 %s 夜班无人可排", d.Format("2006-01-02")))
			}
		}
	}
	return nil
}

// fillWeekendSlot 填充一个周末名额
func (s *PhasedSolver) fillWeekendSlot(r *model.Roster, d time.Time, kind model.ShiftKind) bool {
	candidate := s.pickWeekendCandidate(r, d, kind, constraint.LevelNormal)
	if candidate == nil {
		candidate = s.pickWeekendCandidate(r, d, kind, constraint.LevelEmergency)
	}
	if candidate == nil {
		return false
	}
	r.Assign(candidate, d, kind)
	return true
}

// pickWeekendCandidate 在允许的周末差值带内选周末班数最低的合法候选
func (s *PhasedSolver) pickWeekendCandidate(r *model.Roster, d time.Time, kind model.ShiftKind, level constraint.Level) *model.MemberState {
	minWeekend := -1
	for _, p := range r.Members() {
		if r.IsHolidayWorker(p.Name()) {
			continue
		}
		if minWeekend < 0 || p.Weekend < minWeekend {
			minWeekend = p.Weekend
		}
	}

	type weekendCandidate struct {
		ms     *model.MemberState
		jitter float64
	}
	var candidates []weekendCandidate

	for _, p := range r.Members() {
		if r.IsHolidayWorker(p.Name()) {
			continue
		}
		if minWeekend >= 0 && p.Weekend >= minWeekend+s.cfg.WeekendSpread+1 {
			continue
		}
		if dec := s.checker.Check(r, p, d, kind, level); !dec.Allowed {
			continue
		}
		candidates = append(candidates, weekendCandidate{ms: p, jitter: s.rng.Float64()})
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.ms.Weekend != b.ms.Weekend {
			return a.ms.Weekend < b.ms.Weekend
		}
		if a.ms.Total != b.ms.Total {
			return a.ms.Total < b.ms.Total
		}
		return a.jitter < b.jitter
	})
	return candidates[0].ms
}

// fillThursdayNights 阶段 2：周四夜班补偿。
// 只考虑随后的周六/周日都空闲的候选，夜班负担最重者优先；
// 填不满不算失败，剩余名额留给阶段 3。
func (s *PhasedSolver) fillThursdayNights(r *model.Roster) {
	for _, d := range s.month.Thursdays {
		if s.month.IsHoliday(d) {
			continue
		}

		_, nightNeed := s.openSlots(r, d)
		for i := 0; i < nightNeed; i++ {
			var best *model.MemberState
			bestKey := -1.0
			for _, p := range r.Members() {
				if _, taken := p.Assigned[d.AddDate(0, 0, 2)]; taken {
					continue
				}
				if _, taken := p.Assigned[d.AddDate(0, 0, 3)]; taken {
					continue
				}
				if dec := s.checker.Check(r, p, d, model.ShiftNight, constraint.LevelNormal); !dec.Allowed {
					continue
				}
				key := p.NormNight() + s.rng.Float64()*0.5
				if key > bestKey {
					best = p
					bestKey = key
				}
			}
			if best == nil {
				break
			}
			r.Assign(best, d, model.ShiftNight)
		}
	}
}

// fillWeekdays 阶段 3：剩余工作日填充。
// 先白班后夜班，常规约束优先、紧急约束兜底；
// 白班有一定概率转为 24 小时班（仅限尚无 24 小时班的候选）。
// 任一名额填不上即覆盖不变量被破坏，整个尝试失败。
func (s *PhasedSolver) fillWeekdays(r *model.Roster) error {
	for _, d := range s.month.Dates {
		if s.month.IsHoliday(d) || s.month.IsWeekend(d) {
			continue
		}

		dayNeed, nightNeed := s.openSlots(r, d)

		for i := 0; i < dayNeed; i++ {
			candidate := s.selectBest(r, d, model.ShiftDay)
			if candidate == nil {
				s.log.PhaseFailed("weekday", fmt.Sprintf("%s 白班无人可排", d.Format("2006-01-02")))
				return errors.New(errors.CodeInfeasibleAttempt,
					fmt.Sprintf("工作日 %s 白班无人可排", d.Format("2006-01-02")))
			}

			// 随机考察 24 小时班转换：夜班名额尚有空缺时，
			// 一次分配同时占掉一个白班和一个夜班
			if nightNeed > 0 && s.rng.Float64() < s.cfg.Full24Probability {
				if full24 := s.selectBest(r, d, model.ShiftFull24); full24 != nil && full24.Full24 == 0 {
					r.Assign(full24, d, model.ShiftFull24)
					nightNeed--
					continue
				}
			}

			r.Assign(candidate, d, model.ShiftDay)
		}

		for i := 0; i < nightNeed; i++ {
			candidate := s.selectBest(r, d, model.ShiftNight)
			if candidate == nil {
				s.log.PhaseFailed("weekday", fmt.Sprintf("%s 夜班无人可排", d.Format("2006-01-02")))
				return errors.New(errors.CodeInfeasibleAttempt,
					fmt.Sprintf("工作日 %s 夜班无人可排", d.Format("2006-01-02")))
			}
			r.Assign(candidate, d, model.ShiftNight)
		}
	}
	return nil
}

// selectBest 按评分选出某 (日期, 班次) 的最佳候选。
// 常规级别无人可用时退到紧急级别，并对破坏间隔规则施以重罚。
func (s *PhasedSolver) selectBest(r *model.Roster, d time.Time, kind model.ShiftKind) *model.MemberState {
	var best *model.MemberState
	bestScore := 0.0

	consider := func(p *model.MemberState, penalty float64) {
		sc := s.scorer.Score(r, p, d, kind) - penalty
		if best == nil || sc > bestScore {
			best = p
			bestScore = sc
		}
	}

	for _, p := range r.Members() {
		if dec := s.checker.Check(r, p, d, kind, constraint.LevelNormal); dec.Allowed {
			consider(p, 0)
		}
	}
	if best != nil {
		return best
	}

	for _, p := range r.Members() {
		if dec := s.checker.Check(r, p, d, kind, constraint.LevelEmergency); dec.Allowed {
			consider(p, 500)
		}
	}
	return best
}
