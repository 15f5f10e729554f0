// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 总量公平性
	WorkloadGini     float64 `json:"workload_gini"`     // 班次总量基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance float64 `json:"workload_variance"` // 总量方差
	WorkloadStdDev   float64 `json:"workload_std_dev"`  // 总量标准差
	AvgShifts        float64 `json:"avg_shifts"`        // 人均班次（归一化）
	MaxShifts        float64 `json:"max_shifts"`        // 最多班次
	MinShifts        float64 `json:"min_shifts"`        // 最少班次
	ShiftsRange      float64 `json:"shifts_range"`      // 班次极差

	// 班种公平性
	NightShiftGini   float64 `json:"night_shift_gini"`   // 夜班分配基尼系数
	WeekendShiftGini float64 `json:"weekend_shift_gini"` // 周末班分配基尼系数

	// 各类计数的均值与标准差（夜班为归一化口径，加权负荷计24小时班为2）
	NightAvg       float64 `json:"night_avg"`
	NightStdDev    float64 `json:"night_std_dev"`
	WeekendAvg     float64 `json:"weekend_avg"`
	WeekendStdDev  float64 `json:"weekend_std_dev"`
	WeightedAvg    float64 `json:"weighted_avg"`
	WeightedStdDev float64 `json:"weighted_std_dev"`

	// 成员级别统计
	StaffStats []StaffStat `json:"staff_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 综合公平性评分 (0-100)
}

// StaffStat 成员统计
type StaffStat struct {
	Name          string  `json:"name"`
	Target        float64 `json:"target"`         // 目标班次数
	TotalShifts   int     `json:"total_shifts"`   // 总班次数
	DayShifts     int     `json:"day_shifts"`     // 白班数（含 24 小时班）
	NightShifts   int     `json:"night_shifts"`   // 夜班数（含 24 小时班）
	Full24Shifts  int     `json:"full24_shifts"`  // 24 小时班数
	WeekendShifts int     `json:"weekend_shifts"` // 周末班数
	HolidayShifts int     `json:"holiday_shifts"` // 节假日班数
	WeightedLoad  float64 `json:"weighted_load"`  // 加权负荷（24 小时班计 2）
	Deviation     float64 `json:"deviation"`      // 与平均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析一份排班结果的公平性。
// 总量比较使用归一化口径：休假过半者的班次按两倍折算。
func (f *FairnessAnalyzer) Analyze(r *model.Roster) *FairnessMetrics {
	members := r.Members()
	if len(members) == 0 {
		return &FairnessMetrics{OverallFairnessScore: 100}
	}

	staffStats := make([]StaffStat, 0, len(members))
	totals := make([]float64, 0, len(members))
	nights := make([]float64, 0, len(members))
	weekends := make([]float64, 0, len(members))
	weighteds := make([]float64, 0, len(members))

	for _, p := range members {
		staffStats = append(staffStats, StaffStat{
			Name:          p.Name(),
			Target:        p.Target,
			TotalShifts:   p.Total,
			DayShifts:     p.Day,
			NightShifts:   p.Night,
			Full24Shifts:  p.Full24,
			WeekendShifts: p.Weekend,
			HolidayShifts: p.Holiday,
			WeightedLoad:  p.Weighted,
		})
		totals = append(totals, p.NormTotal())
		nights = append(nights, p.NormNight())
		weekends = append(weekends, float64(p.Weekend))
		weighteds = append(weighteds, p.Weighted)
	}

	avg := f.calculateMean(totals)
	variance := f.calculateVariance(totals, avg)
	stdDev := math.Sqrt(variance)
	maxShifts, minShifts := f.calculateRange(totals)

	for i := range staffStats {
		if avg > 0 {
			staffStats[i].Deviation = (totals[i] - avg) / avg * 100
		}
	}

	sort.Slice(staffStats, func(i, j int) bool {
		return staffStats[i].TotalShifts > staffStats[j].TotalShifts
	})

	workloadGini := f.calculateGini(totals)
	nightGini := f.calculateGini(nights)
	weekendGini := f.calculateGini(weekends)

	nightAvg := f.calculateMean(nights)
	weekendAvg := f.calculateMean(weekends)
	weightedAvg := f.calculateMean(weighteds)

	return &FairnessMetrics{
		WorkloadGini:         workloadGini,
		WorkloadVariance:     variance,
		WorkloadStdDev:       stdDev,
		AvgShifts:            avg,
		MaxShifts:            maxShifts,
		MinShifts:            minShifts,
		ShiftsRange:          maxShifts - minShifts,
		NightShiftGini:       nightGini,
		WeekendShiftGini:     weekendGini,
		NightAvg:             nightAvg,
		NightStdDev:          math.Sqrt(f.calculateVariance(nights, nightAvg)),
		WeekendAvg:           weekendAvg,
		WeekendStdDev:        math.Sqrt(f.calculateVariance(weekends, weekendAvg)),
		WeightedAvg:          weightedAvg,
		WeightedStdDev:       math.Sqrt(f.calculateVariance(weighteds, weightedAvg)),
		StaffStats:           staffStats,
		OverallFairnessScore: f.calculateOverallScore(workloadGini, nightGini, weekendGini, stdDev, avg),
	}
}

// calculateMean 计算平均值
func (f *FairnessAnalyzer) calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance 计算方差
func (f *FairnessAnalyzer) calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// calculateRange 计算极值
func (f *FairnessAnalyzer) calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// calculateGini 计算基尼系数
func (f *FairnessAnalyzer) calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// calculateOverallScore 计算综合公平性评分
func (f *FairnessAnalyzer) calculateOverallScore(workloadGini, nightGini, weekendGini, stdDev, avg float64) float64 {
	const (
		workloadWeight = 0.4
		nightWeight    = 0.25
		weekendWeight  = 0.25
		stdDevWeight   = 0.1
	)

	workloadScore := (1 - workloadGini) * 100
	nightScore := (1 - nightGini) * 100
	weekendScore := (1 - weekendGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avg > 0 {
		cv := stdDev / avg
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*workloadScore +
		nightWeight*nightScore +
		weekendWeight*weekendScore +
		stdDevWeight*cvScore

	return math.Max(0, math.Min(100, score))
}
