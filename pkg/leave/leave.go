// Package leave 提供请假改班引擎：撤下请假人的班次并按优先级补位
package leave

import (
	"fmt"
	"sort"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// 各约束级别的补位惩罚，保证低级别候选整体优先于高级别候选
const (
	emergencyPenalty     = 500
	forcePenalty         = 1000
	absoluteForcePenalty = 2000
)

// Change 一次改班记录
type Change struct {
	Date    time.Time       `json:"date"`
	Shift   model.ShiftKind `json:"shift"`
	From    string          `json:"from"`
	To      string          `json:"to,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

// Replaced 是否成功找到了补位人
func (c Change) Replaced() bool {
	return c.To != ""
}

// Engine 请假改班引擎。直接在既有 roster 上操作，
// 同一排班表的改班由调用方保证串行。
type Engine struct {
	month   *model.MonthContext
	checker *constraint.Checker
	log     *logger.SchedulerLogger
}

// New 创建请假改班引擎
func New(month *model.MonthContext, checker *constraint.Checker) *Engine {
	return &Engine{
		month:   month,
		checker: checker,
		log:     logger.NewSchedulerLogger(),
	}
}

// Reschedule 处理某成员在若干日期的请假。
// 请假人当天没有班次时直接跳过（重复提交等价于一次提交）；
// 有班次时撤下并逐级放宽约束寻找补位人，各级别都无人可用时
// 恢复原班并附警告，由值班室线下协调。
func (e *Engine) Reschedule(r *model.Roster, memberName string, dates []time.Time) ([]Change, error) {
	ms := r.Member(memberName)
	if ms == nil {
		return nil, errors.NotFound("成员", memberName)
	}

	sorted := append([]time.Time(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var changes []Change
	for _, d := range sorted {
		kind, held := r.KindAt(memberName, d)
		if !held {
			continue
		}

		r.Remove(ms, d)
		change := Change{Date: d, Shift: kind, From: memberName}

		if replacement := e.findReplacement(r, ms, d, kind); replacement != nil {
			r.Assign(replacement, d, kind)
			change.To = replacement.Name()
		} else {
			// 无人可补，恢复原班并告警
			r.Assign(ms, d, kind)
			change.Warning = fmt.Sprintf("%s %s 无人可补位，%s 的班次保留，请线下协调",
				d.Format("2006-01-02"), kind, memberName)
			e.log.ReplacementWarning(memberName, d.Format("2006-01-02"), string(kind))
		}
		changes = append(changes, change)
	}

	return changes, nil
}

// replacementCandidate 候选补位人及其优先级得分
type replacementCandidate struct {
	ms    *model.MemberState
	score float64
}

// findReplacement 按约束级别从严到宽寻找补位人。
// 同一级别内总班次少者优先，对应班种（白/夜）的负担和周末负担次之。
func (e *Engine) findReplacement(r *model.Roster, leaving *model.MemberState, d time.Time, kind model.ShiftKind) *model.MemberState {
	levels := []struct {
		level   constraint.Level
		penalty float64
	}{
		{constraint.LevelNormal, 0},
		{constraint.LevelEmergency, emergencyPenalty},
		{constraint.LevelForce, forcePenalty},
		{constraint.LevelAbsoluteForce, absoluteForcePenalty},
	}

	for _, tier := range levels {
		var candidates []replacementCandidate
		for _, p := range r.Members() {
			if p == leaving {
				continue
			}
			if dec := e.checker.Check(r, p, d, kind, tier.level); !dec.Allowed {
				continue
			}
			candidates = append(candidates, replacementCandidate{
				ms:    p,
				score: e.priority(p, d, kind) - tier.penalty,
			})
		}
		if len(candidates) == 0 {
			continue
		}
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})
		return candidates[0].ms
	}
	return nil
}

// priority 补位优先级：负担越轻得分越高
func (e *Engine) priority(p *model.MemberState, d time.Time, kind model.ShiftKind) float64 {
	score := -p.NormTotal() * 100

	if kind.CountsAsNight() {
		score -= p.NormNight() * 10
	}
	if kind.CountsAsDay() {
		score -= p.NormDay() * 10
	}
	if e.month.IsWeekend(d) {
		score -= float64(p.Weekend) * 50
	}
	return score
}
