// Package stats 提供排班统计分析功能
package stats

import (
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
)

// CoverageMetrics 覆盖情况汇总
type CoverageMetrics struct {
	TotalDays     int           `json:"total_days"`     // 本月天数
	CoveredDays   int           `json:"covered_days"`   // 白夜班都有人的天数
	UncoveredDays []string      `json:"uncovered_days"` // 覆盖不足的日期
	DailyCoverage []DayCoverage `json:"daily_coverage"` // 逐日覆盖
}

// DayCoverage 单日覆盖情况
type DayCoverage struct {
	Date       string   `json:"date"`
	Weekday    string   `json:"weekday"`
	IsWeekend  bool     `json:"is_weekend"`
	IsHoliday  bool     `json:"is_holiday"`
	DayStaff   []string `json:"day_staff"`   // 当日白班人员（含 24 小时班）
	NightStaff []string `json:"night_staff"` // 当日夜班人员（含 24 小时班）
}

// Covered 当日白夜班是否都有人
func (d DayCoverage) Covered() bool {
	return len(d.DayStaff) > 0 && len(d.NightStaff) > 0
}

// CoverageAnalyzer 覆盖情况分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖情况分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 汇总一份排班结果的逐日覆盖情况。
// 节假日不要求覆盖，但预定值班仍会体现在当日名单里。
func (c *CoverageAnalyzer) Analyze(month *model.MonthContext, r *model.Roster) *CoverageMetrics {
	metrics := &CoverageMetrics{
		TotalDays:     month.NumDays(),
		DailyCoverage: make([]DayCoverage, 0, month.NumDays()),
	}

	for _, d := range month.Dates {
		day := DayCoverage{
			Date:      d.Format("2006-01-02"),
			Weekday:   d.Weekday().String(),
			IsWeekend: month.IsWeekend(d),
			IsHoliday: month.IsHoliday(d),
		}

		for name, kind := range r.DateAssignments(d) {
			if kind.CountsAsDay() {
				day.DayStaff = append(day.DayStaff, name)
			}
			if kind.CountsAsNight() {
				day.NightStaff = append(day.NightStaff, name)
			}
		}
		sort.Strings(day.DayStaff)
		sort.Strings(day.NightStaff)

		if day.Covered() {
			metrics.CoveredDays++
		} else if !day.IsHoliday {
			metrics.UncoveredDays = append(metrics.UncoveredDays, day.Date)
		}

		metrics.DailyCoverage = append(metrics.DailyCoverage, day)
	}

	return metrics
}
