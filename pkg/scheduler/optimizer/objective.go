// Package optimizer 提供尝试评价与平衡优化
package optimizer

import (
	"github.com/zhiban/zhiban/pkg/model"
)

// 公平性目标的权重
const (
	weekendRangeWeight = 100
	nightRangeWeight   = 80
	dayRangeWeight     = 60
	totalRangeWeight   = 40

	weekendVarianceWeight = 10
	nightVarianceWeight   = 8
	dayVarianceWeight     = 6

	// 节假日值班人出现周末班的防御性重罚
	// （阶段设计上不可能发生，出现即说明尝试已坏）
	holidayWorkerWeekendPenalty = 10000

	// 同一人多个 24 小时班的追加惩罚
	extraFull24Penalty = 100
)

// AttemptScore 计算一次有效尝试的公平性得分，越低越公平。
// 周末差值权重最高，超过 1 后按平方放大；夜班/白班只在可比较
// 群体内（夜班可值者）比较，周末只在无节假日负担者之间比较。
func AttemptScore(r *model.Roster) float64 {
	var weekendCounts, nightCounts, dayCounts, totalCounts []float64

	for _, p := range r.Members() {
		totalCounts = append(totalCounts, p.NormTotal())
		if p.Holiday == 0 {
			weekendCounts = append(weekendCounts, float64(p.Weekend))
		}
		if p.Member.CanNight {
			nightCounts = append(nightCounts, p.NormNight())
			dayCounts = append(dayCounts, p.NormDay())
		}
	}

	weekendRange := valueRange(weekendCounts)
	nightRange := valueRange(nightCounts)
	dayRange := valueRange(dayCounts)
	totalRange := valueRange(totalCounts)

	var score float64
	score += weekendRange * weekendRangeWeight
	if weekendRange > 1 {
		score += weekendRange * weekendRange * 50
	}
	score += nightRange * nightRangeWeight
	if nightRange > 1 {
		score += 40
	}
	score += dayRange * dayRangeWeight
	if dayRange > 1 {
		score += 30
	}
	score += totalRange * totalRangeWeight

	score += sampleVariance(weekendCounts) * weekendVarianceWeight
	score += sampleVariance(nightCounts) * nightVarianceWeight
	score += sampleVariance(dayCounts) * dayVarianceWeight

	for _, p := range r.Members() {
		if p.Weekend > 0 && (p.Holiday > 0 || r.IsHolidayWorker(p.Name())) {
			score += holidayWorkerWeekendPenalty
		}
		if p.Full24 > 1 {
			score += extraFull24Penalty * float64(p.Full24-1)
		}
	}

	return score
}

// valueRange 极差
func valueRange(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

// sampleVariance 样本方差（少于两个样本返回 0）
func sampleVariance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return ss / float64(n-1)
}
