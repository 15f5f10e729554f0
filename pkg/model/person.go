// Package model 定义值班排班引擎的核心数据模型
package model

import "time"

// HalfMonthThreshold 固定休息天数达到该值即视为半月工作制（目标系数 0.5）
const HalfMonthThreshold = 14

// StaffMember 值班人员配置（不可变输入，运行期计数放在 MemberState）
type StaffMember struct {
	Name     string `json:"name"`
	CanNight bool   `json:"can_night"`
	Can24h   bool   `json:"can_24h"`

	// 固定休息日（硬性不可用）
	FixedOff map[time.Time]bool `json:"-"`

	// 预定值班日 -> 班次类型（搜索前直接落位，不经约束检查）
	FixedOn map[time.Time]ShiftKind `json:"-"`
}

// TargetRatio 返回目标班次系数：
// 固定休息 >= 14 天（半月）为 0.5，否则为 1.0
func (s *StaffMember) TargetRatio() float64 {
	if len(s.FixedOff) >= HalfMonthThreshold {
		return 0.5
	}
	return 1.0
}

// AvailableOn 检查某日期是否可用（不在固定休息日内）
func (s *StaffMember) AvailableOn(d time.Time) bool {
	return !s.FixedOff[d]
}
