// Package scheduler 提供排班引擎门面
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/leave"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
	"github.com/zhiban/zhiban/pkg/scheduler/optimizer"
)

// Options 一次排班任务的配置
type Options struct {
	DayShiftsPerDay   int
	NightShiftsPerDay int
	Attempts          int
	Workers           int
	Seed              int64
}

// DefaultOptions 返回默认任务配置
func DefaultOptions() Options {
	search := optimizer.DefaultSearchConfig()
	return Options{
		DayShiftsPerDay:   1,
		NightShiftsPerDay: 1,
		Attempts:          search.Attempts,
		Workers:           search.Workers,
	}
}

// Schedule 一次排班任务的产出。改班操作持有互斥锁，
// 同一排班表的并发改班请求串行执行。
type Schedule struct {
	ID    string
	Month *model.MonthContext
	Score float64

	// AvgShiftsPerPerson 人均班次（目标计算与公平阻断的基准）
	AvgShiftsPerPerson float64

	mu      sync.Mutex
	roster  *model.Roster
	checker *constraint.Checker
}

// Roster 返回排班结果
func (s *Schedule) Roster() *model.Roster {
	return s.roster
}

// RescheduleLeave 处理请假改班，串行执行
func (s *Schedule) RescheduleLeave(memberName string, dates []time.Time) ([]leave.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return leave.New(s.Month, s.checker).Reschedule(s.roster, memberName, dates)
}

// Engine 排班引擎门面：校验配置、计算目标、驱动并行搜索
type Engine struct {
	month *model.MonthContext
	staff []*model.StaffMember
	opts  Options
	log   *logger.SchedulerLogger
}

// NewEngine 创建排班引擎并校验前提条件
func NewEngine(month *model.MonthContext, staff []*model.StaffMember, opts Options) (*Engine, error) {
	if len(staff) == 0 {
		return nil, errors.InvalidRoster("至少需要一名值班人员")
	}
	if opts.DayShiftsPerDay < 1 {
		return nil, errors.InvalidRoster("每日白班数必须至少为 1")
	}
	// 覆盖不变量要求每个非节假日都有夜班占位，夜班数为 0 的配置必然失败
	if opts.NightShiftsPerDay < 1 {
		return nil, errors.InvalidRoster("每日夜班数必须至少为 1")
	}
	hasNight := false
	for _, m := range staff {
		if m.CanNight {
			hasNight = true
			break
		}
	}
	if !hasNight {
		return nil, errors.InvalidRoster("无人可值夜班")
	}

	names := make(map[string]bool, len(staff))
	for _, m := range staff {
		if m.Name == "" {
			return nil, errors.InvalidRoster("存在未命名的值班人员")
		}
		if names[m.Name] {
			return nil, errors.InvalidRoster("值班人员姓名重复: " + m.Name)
		}
		names[m.Name] = true
	}

	return &Engine{
		month: month,
		staff: staff,
		opts:  opts,
		log:   logger.NewSchedulerLogger(),
	}, nil
}

// Generate 执行并行搜索，返回最公平的有效排班。
// 人均班次低于 4 且每日仅 1 个白班时，自动加到 2 个白班
// 并重算人均，避免班次过于稀疏难以均衡。
func (e *Engine) Generate(ctx context.Context) (*Schedule, error) {
	id := uuid.New().String()
	start := time.Now()
	e.log.StartSchedule(id, len(e.staff), e.month.NumDays())

	opts := e.opts
	avg := e.avgShiftsPerPerson(opts.DayShiftsPerDay, opts.NightShiftsPerDay)
	if avg < 4 && opts.DayShiftsPerDay == 1 {
		opts.DayShiftsPerDay = 2
		avg = e.avgShiftsPerPerson(opts.DayShiftsPerDay, opts.NightShiftsPerDay)
	}

	roster, score, err := optimizer.Search(ctx, optimizer.Input{
		Month:              e.month,
		Staff:              e.staff,
		AvgShiftsPerPerson: avg,
		DayShiftsPerDay:    opts.DayShiftsPerDay,
		NightShiftsPerDay:  opts.NightShiftsPerDay,
	}, optimizer.SearchConfig{
		Attempts: opts.Attempts,
		Workers:  opts.Workers,
		Seed:     opts.Seed,
	})
	if err != nil {
		return nil, err
	}

	e.log.ScheduleComplete(id, time.Since(start), score)

	return &Schedule{
		ID:                 id,
		Month:              e.month,
		Score:              score,
		AvgShiftsPerPerson: avg,
		roster:             roster,
		checker:            constraint.NewChecker(e.month, avg),
	}, nil
}

// avgShiftsPerPerson 人均班次：非节假日名额总数除以有效人数。
// 节假日不产生常规名额，半月工作制成员按 0.5 人计。
func (e *Engine) avgShiftsPerPerson(dayPerDay, nightPerDay int) float64 {
	workingDays := 0
	for _, d := range e.month.Dates {
		if !e.month.IsHoliday(d) {
			workingDays++
		}
	}

	effective := 0.0
	for _, m := range e.staff {
		effective += m.TargetRatio()
	}

	slots := float64(workingDays * (dayPerDay + nightPerDay))
	return slots / effective
}
