// Package model 定义值班排班引擎的核心数据模型
package model

import "fmt"

// ShiftKind 班次类型
type ShiftKind string

const (
	ShiftDay    ShiftKind = "Day"   // 白班
	ShiftNight  ShiftKind = "Night" // 夜班
	ShiftFull24 ShiftKind = "24h"   // 24小时班（同时占用白班和夜班名额）
)

// Weight 返回班次的负担权重（Day=1, Night=1, 24h=2）
func (k ShiftKind) Weight() float64 {
	if k == ShiftFull24 {
		return 2
	}
	return 1
}

// CountsAsDay 是否计入白班覆盖
func (k ShiftKind) CountsAsDay() bool {
	return k == ShiftDay || k == ShiftFull24
}

// CountsAsNight 是否计入夜班覆盖
func (k ShiftKind) CountsAsNight() bool {
	return k == ShiftNight || k == ShiftFull24
}

// ParseShiftKind 解析班次类型字符串
func ParseShiftKind(s string) (ShiftKind, error) {
	switch s {
	case string(ShiftDay):
		return ShiftDay, nil
	case string(ShiftNight):
		return ShiftNight, nil
	case string(ShiftFull24):
		return ShiftFull24, nil
	}
	return "", fmt.Errorf("未知的班次类型: %q", s)
}
