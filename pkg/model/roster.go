// Package model 定义值班排班引擎的核心数据模型
package model

import "time"

// MemberState 单次排班尝试中某成员的可变状态。
// 每次尝试独立重建（arena-per-attempt），从不跨尝试共享。
type MemberState struct {
	Member *StaffMember

	// 目标班次数（由引擎按平均负荷和目标系数计算）
	Target float64

	// 运行期计数
	Total    int
	Day      int
	Night    int
	Full24   int
	Weekend  int
	Holiday  int
	Weighted float64

	// 最近一次白班/夜班日期（零值表示没有）
	LastDay   time.Time
	LastNight time.Time

	// 本次尝试已占用的日期 -> 班次类型
	Assigned map[time.Time]ShiftKind
}

// Name 成员姓名（排班内唯一标识）
func (ms *MemberState) Name() string {
	return ms.Member.Name
}

// norm 按目标系数归一化计数：半月工作制计数翻倍后再参与公平性比较
func (ms *MemberState) norm(v int) float64 {
	if ms.Member.TargetRatio() == 0.5 {
		return float64(v) * 2
	}
	return float64(v)
}

// NormTotal 归一化总班次数
func (ms *MemberState) NormTotal() float64 { return ms.norm(ms.Total) }

// NormDay 归一化白班数
func (ms *MemberState) NormDay() float64 { return ms.norm(ms.Day) }

// NormNight 归一化夜班数
func (ms *MemberState) NormNight() float64 { return ms.norm(ms.Night) }

// NightDates 该成员当前全部夜班日期（含24小时班）
func (ms *MemberState) NightDates() []time.Time {
	var dates []time.Time
	for d, kind := range ms.Assigned {
		if kind.CountsAsNight() {
			dates = append(dates, d)
		}
	}
	return dates
}

// DayDates 该成员当前全部白班日期（含24小时班）
func (ms *MemberState) DayDates() []time.Time {
	var dates []time.Time
	for d, kind := range ms.Assigned {
		if kind.CountsAsDay() {
			dates = append(dates, d)
		}
	}
	return dates
}

// Roster 一次排班尝试的完整可变状态：
// 成员计数、(成员, 日期) -> 班次映射、按日期索引和节假日值班人集合。
type Roster struct {
	month   *MonthContext
	members map[string]*MemberState
	order   []string

	byDate map[time.Time]map[string]ShiftKind

	// 节假日值班人（由预定值班 ∩ 节假日一次性算出，整个尝试期间不变）
	holidayWorkers map[string]bool
}

// NewRoster 创建一次尝试的全新状态
func NewRoster(month *MonthContext, staff []*StaffMember) *Roster {
	r := &Roster{
		month:          month,
		members:        make(map[string]*MemberState, len(staff)),
		byDate:         make(map[time.Time]map[string]ShiftKind),
		holidayWorkers: make(map[string]bool),
	}
	for _, s := range staff {
		r.members[s.Name] = &MemberState{
			Member:   s,
			Assigned: make(map[time.Time]ShiftKind),
		}
		r.order = append(r.order, s.Name)
	}
	r.computeHolidayWorkers()
	return r
}

// computeHolidayWorkers 在任何分配发生之前固定节假日值班人集合。
// 该集合只来自预定值班，排班过程中不会再有人加入，
// 保证周末阶段开始时排除名单已经闭合。
func (r *Roster) computeHolidayWorkers() {
	for name, ms := range r.members {
		for d := range ms.Member.FixedOn {
			if r.month.IsHoliday(d) {
				r.holidayWorkers[name] = true
				break
			}
		}
	}
}

// Month 返回月份上下文
func (r *Roster) Month() *MonthContext {
	return r.month
}

// Member 按姓名取成员状态
func (r *Roster) Member(name string) *MemberState {
	return r.members[name]
}

// Members 按花名册顺序返回全部成员状态
func (r *Roster) Members() []*MemberState {
	result := make([]*MemberState, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.members[name])
	}
	return result
}

// IsHolidayWorker 检查某成员是否节假日值班人（预定值班含节假日）
func (r *Roster) IsHolidayWorker(name string) bool {
	return r.holidayWorkers[name]
}

// KindAt 查询 (成员, 日期) 的班次，不存在返回 false
func (r *Roster) KindAt(name string, d time.Time) (ShiftKind, bool) {
	kind, ok := r.byDate[d][name]
	return kind, ok
}

// DateAssignments 某日期的全部分配（成员名 -> 班次）
func (r *Roster) DateAssignments(d time.Time) map[string]ShiftKind {
	return r.byDate[d]
}

// Assign 落位一个班次并更新成员计数
func (r *Roster) Assign(ms *MemberState, d time.Time, kind ShiftKind) {
	if r.byDate[d] == nil {
		r.byDate[d] = make(map[string]ShiftKind)
	}
	r.byDate[d][ms.Name()] = kind
	ms.Assigned[d] = kind

	ms.Total++
	ms.Weighted += kind.Weight()

	switch kind {
	case ShiftDay:
		ms.Day++
		ms.LastDay = d
	case ShiftNight:
		ms.Night++
		ms.LastNight = d
	case ShiftFull24:
		ms.Full24++
		ms.Day++
		ms.Night++
		ms.LastDay = d
		ms.LastNight = d
	}

	if r.month.IsWeekend(d) {
		ms.Weekend++
	}
	if r.month.IsHoliday(d) {
		ms.Holiday++
	}
}

// Remove 撤销一个班次并回退成员计数。
// LastDay/LastNight 不回滚：它们只作为评分提示使用，不参与硬约束判定。
func (r *Roster) Remove(ms *MemberState, d time.Time) (ShiftKind, bool) {
	kind, ok := ms.Assigned[d]
	if !ok {
		return "", false
	}
	delete(ms.Assigned, d)
	delete(r.byDate[d], ms.Name())

	ms.Total--
	ms.Weighted -= kind.Weight()

	switch kind {
	case ShiftDay:
		ms.Day--
	case ShiftNight:
		ms.Night--
	case ShiftFull24:
		ms.Full24--
		ms.Day--
		ms.Night--
	}

	if r.month.IsWeekend(d) {
		ms.Weekend--
	}
	if r.month.IsHoliday(d) {
		ms.Holiday--
	}
	return kind, true
}

// ApplyFixedOn 落位全部预定值班（绕过约束检查，视为已承诺）
func (r *Roster) ApplyFixedOn() {
	for _, ms := range r.Members() {
		for d, kind := range ms.Member.FixedOn {
			if d.Year() == r.month.Year && d.Month() == r.month.Month {
				r.Assign(ms, d, kind)
			}
		}
	}
}
