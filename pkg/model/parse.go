// Package model 定义值班排班引擎的核心数据模型
package model

import (
	"strconv"
	"strings"
	"time"
)

// normalizeSeparators 将中文逗号/分号/冒号统一为英文符号
func normalizeSeparators(s string) string {
	replacer := strings.NewReplacer("，", ",", "；", ",", ";", ",", "：", ":")
	return replacer.Replace(s)
}

// ParseDayList 解析日期列表字符串，返回当月日期集合。
// 支持的格式：
//   - "1,2,3"        单日列表
//   - "17-20"        日期区间（17、18、19、20 日）
//   - "2026-01-05"   完整 ISO 日期
//
// 同时接受中文逗号和分号作为分隔符。
func ParseDayList(s string, year int, month time.Month) (map[time.Time]bool, error) {
	dates := make(map[time.Time]bool)

	s = strings.TrimSpace(s)
	if s == "" {
		return dates, nil
	}

	for _, part := range strings.Split(normalizeSeparators(s), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			pieces := strings.SplitN(part, "-", 2)
			lo, errLo := strconv.Atoi(strings.TrimSpace(pieces[0]))
			hi, errHi := strconv.Atoi(strings.TrimSpace(pieces[1]))
			if errLo == nil && errHi == nil {
				// 形如 "17-20" 的日区间
				for day := lo; day <= hi; day++ {
					dates[Date(year, month, day)] = true
				}
				continue
			}

			// 否则按完整日期解析
			t, err := time.Parse("2006-01-02", part)
			if err != nil {
				return nil, err
			}
			dates[Date(t.Year(), t.Month(), t.Day())] = true
			continue
		}

		day, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		dates[Date(year, month, day)] = true
	}

	return dates, nil
}

// ParseFixedOn 解析预定值班字符串，格式 "1:Day,5:Night"，
// 日期部分支持单日序号或完整 ISO 日期，接受中文冒号/逗号。
// 无法识别的片段直接跳过，不报错。
func ParseFixedOn(s string, year int, month time.Month) map[time.Time]ShiftKind {
	fixed := make(map[time.Time]ShiftKind)

	s = strings.TrimSpace(s)
	if s == "" {
		return fixed
	}

	for _, part := range strings.Split(normalizeSeparators(s), ",") {
		part = strings.TrimSpace(part)
		if !strings.Contains(part, ":") {
			continue
		}

		pieces := strings.SplitN(part, ":", 2)
		datePart := strings.TrimSpace(pieces[0])
		kindPart := strings.TrimSpace(pieces[1])

		var d time.Time
		if strings.Contains(datePart, "-") {
			t, err := time.Parse("2006-01-02", datePart)
			if err != nil {
				continue
			}
			d = Date(t.Year(), t.Month(), t.Day())
		} else {
			day, err := strconv.Atoi(datePart)
			if err != nil {
				continue
			}
			d = Date(year, month, day)
		}

		kind, err := ParseShiftKind(kindPart)
		if err != nil {
			continue
		}
		fixed[d] = kind
	}

	return fixed
}
