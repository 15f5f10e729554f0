// Package validator 提供排班结果的硬性不变量校验
package validator

import (
	"fmt"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

// ViolationType 违规类型
type ViolationType string

const (
	ViolationCoverage             ViolationType = "coverage"               // 覆盖缺口
	ViolationHolidayWorkerWeekend ViolationType = "holiday_worker_weekend" // 节假日值班人被排周末
	ViolationWeekendPair          ViolationType = "weekend_pair"           // 同一周末两天都有班
	ViolationThursdayComp         ViolationType = "thursday_compensation"  // 周四夜班者周末未双休
)

// Violation 违规信息
type Violation struct {
	Type    ViolationType `json:"type"`
	Member  string        `json:"member,omitempty"`
	Date    string        `json:"date"`
	Message string        `json:"message"`
}

// Validate 对一次完整尝试做月度校验，返回全部违规。
// 空结果即尝试有效。
func Validate(month *model.MonthContext, r *model.Roster) []Violation {
	var violations []Violation

	violations = append(violations, checkCoverage(month, r)...)

	for _, ms := range r.Members() {
		violations = append(violations, checkMemberInvariants(month, r, ms)...)
	}

	return violations
}

// checkCoverage 每个非节假日都要有至少一个白班和一个夜班占位
// （24小时班同时计入两者）
func checkCoverage(month *model.MonthContext, r *model.Roster) []Violation {
	var violations []Violation

	for _, d := range month.Dates {
		if month.IsHoliday(d) {
			continue
		}

		dayCount, nightCount := 0, 0
		for _, kind := range r.DateAssignments(d) {
			if kind.CountsAsDay() {
				dayCount++
			}
			if kind.CountsAsNight() {
				nightCount++
			}
		}

		if dayCount < 1 || nightCount < 1 {
			violations = append(violations, Violation{
				Type: ViolationCoverage,
				Date: d.Format("2006-01-02"),
				Message: fmt.Sprintf("覆盖不足: 白班 %d, 夜班 %d",
					dayCount, nightCount),
			})
		}
	}

	return violations
}

// checkMemberInvariants 单成员不变量：节假日值班人禁排周末、
// 周末配对最多一班、周四夜班者周末双休
func checkMemberInvariants(month *model.MonthContext, r *model.Roster, ms *model.MemberState) []Violation {
	var violations []Violation

	for d, kind := range ms.Assigned {
		if !month.IsWeekend(d) {
			// 周四夜班者随后的周六/周日必须空闲
			if d.Weekday() == time.Thursday && kind.CountsAsNight() {
				for _, off := range []time.Time{d.AddDate(0, 0, 2), d.AddDate(0, 0, 3)} {
					if _, taken := ms.Assigned[off]; taken {
						violations = append(violations, Violation{
							Type:    ViolationThursdayComp,
							Member:  ms.Name(),
							Date:    off.Format("2006-01-02"),
							Message: fmt.Sprintf("成员 %s 周四夜班后仍被排周末", ms.Name()),
						})
					}
				}
			}
			continue
		}

		if r.IsHolidayWorker(ms.Name()) {
			violations = append(violations, Violation{
				Type:    ViolationHolidayWorkerWeekend,
				Member:  ms.Name(),
				Date:    d.Format("2006-01-02"),
				Message: fmt.Sprintf("节假日值班人 %s 被排周末班", ms.Name()),
			})
		}

		// 周末配对只报周六侧，避免同一对重复计两次
		if d.Weekday() == time.Saturday {
			if other, ok := month.WeekendPair(d); ok {
				if _, taken := ms.Assigned[other]; taken {
					violations = append(violations, Violation{
						Type:    ViolationWeekendPair,
						Member:  ms.Name(),
						Date:    d.Format("2006-01-02"),
						Message: fmt.Sprintf("成员 %s 同一周末两天都有班", ms.Name()),
					})
				}
			}
		}
	}

	return violations
}
