// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
)

// Store 内存中的排班表存储，按排班表ID索引
type Store struct {
	mu        sync.RWMutex
	schedules map[string]*scheduler.Schedule
}

// NewStore 创建排班表存储
func NewStore() *Store {
	return &Store{schedules: make(map[string]*scheduler.Schedule)}
}

// Put 保存排班表
func (s *Store) Put(sched *scheduler.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sched.ID] = sched
}

// Get 按ID取排班表
func (s *Store) Get(id string) (*scheduler.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[id]
	return sched, ok
}

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	cfg   config.SchedulerConfig
	store *Store
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(cfg config.SchedulerConfig, store *Store) *ScheduleHandler {
	return &ScheduleHandler{cfg: cfg, store: store}
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	Year              int          `json:"year"`
	Month             int          `json:"month"`
	Holidays          string       `json:"holidays,omitempty"` // 节假日，如 "1,2,3" 或 "2026-10-01"
	DayShiftsPerDay   int          `json:"day_shifts_per_day,omitempty"`
	NightShiftsPerDay int          `json:"night_shifts_per_day,omitempty"`
	Attempts          int          `json:"attempts,omitempty"`
	Seed              int64        `json:"seed,omitempty"`
	Staff             []StaffInput `json:"staff"`
}

// StaffInput 值班人员输入
type StaffInput struct {
	Name     string `json:"name"`
	CanNight *bool  `json:"can_night,omitempty"` // 缺省为可值夜班
	Can24h   bool   `json:"can_24h,omitempty"`
	FixedOff string `json:"fixed_off,omitempty"` // 预定休息，如 "1,2,17-20"
	FixedOn  string `json:"fixed_on,omitempty"`  // 预定值班，如 "1:Day,5:Night"
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Success     bool               `json:"success"`
	ScheduleID  string             `json:"schedule_id,omitempty"`
	Score       float64            `json:"score"`
	Duration    string             `json:"duration"`
	Assignments []AssignmentOutput `json:"assignments"`
}

// AssignmentOutput 单条排班输出
type AssignmentOutput struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Shift   string `json:"shift"`
	Member  string `json:"member"`
}

// Generate 生成排班
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if err := validateGenerateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	holidays, err := model.ParseDayList(req.Holidays, req.Year, time.Month(req.Month))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "节假日格式无效"))
		return
	}
	month := model.NewMonthContext(req.Year, time.Month(req.Month), holidays)

	staff, appErr := buildStaff(req.Staff, req.Year, time.Month(req.Month))
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	opts := scheduler.DefaultOptions()
	opts.DayShiftsPerDay = h.cfg.DayShiftsPerDay
	opts.NightShiftsPerDay = h.cfg.NightShiftsPerDay
	opts.Attempts = h.cfg.Attempts
	opts.Workers = h.cfg.Workers
	if req.DayShiftsPerDay > 0 {
		opts.DayShiftsPerDay = req.DayShiftsPerDay
	}
	if req.NightShiftsPerDay > 0 {
		opts.NightShiftsPerDay = req.NightShiftsPerDay
	}
	if req.Attempts > 0 {
		opts.Attempts = req.Attempts
	}
	opts.Seed = req.Seed

	engine, engineErr := scheduler.NewEngine(month, staff, opts)
	if engineErr != nil {
		respondAnyError(w, engineErr)
		return
	}

	timeout := h.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	genCtx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	start := time.Now()
	sched, genErr := engine.Generate(genCtx)
	duration := time.Since(start)
	metrics.RecordScheduleGeneration(genErr == nil, duration)
	if genErr != nil {
		respondAnyError(w, genErr)
		return
	}

	h.store.Put(sched)
	metrics.SetSolutionScore(sched.ID, sched.Score)

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:     true,
		ScheduleID:  sched.ID,
		Score:       sched.Score,
		Duration:    duration.String(),
		Assignments: assignmentOutputs(sched),
	})
}

// LeaveRequest 请假改班请求
type LeaveRequest struct {
	ScheduleID string `json:"schedule_id"`
	Member     string `json:"member"`
	Dates      string `json:"dates"` // 请假日期，如 "12,13" 或 "17-20"
}

// ChangeOutput 单条改班输出
type ChangeOutput struct {
	Date    string `json:"date"`
	Shift   string `json:"shift"`
	From    string `json:"from"`
	To      string `json:"to,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// LeaveResponse 请假改班响应
type LeaveResponse struct {
	Success     bool               `json:"success"`
	Changes     []ChangeOutput     `json:"changes"`
	Assignments []AssignmentOutput `json:"assignments"`
}

// Leave 处理请假改班
func (h *ScheduleHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	ve := &errors.ValidationErrors{}
	if req.ScheduleID == "" {
		ve.Add("schedule_id", "排班表ID不能为空")
	}
	if req.Member == "" {
		ve.Add("member", "请假人不能为空")
	}
	if req.Dates == "" {
		ve.Add("dates", "请假日期不能为空")
	}
	if ve.HasErrors() {
		respondError(w, ve.ToAppError())
		return
	}

	sched, ok := h.store.Get(req.ScheduleID)
	if !ok {
		respondError(w, errors.NotFound("排班表", req.ScheduleID))
		return
	}

	dateSet, err := model.ParseDayList(req.Dates, sched.Month.Year, sched.Month.Month)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请假日期格式无效"))
		return
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}

	changes, leaveErr := sched.RescheduleLeave(req.Member, dates)
	if leaveErr != nil {
		respondAnyError(w, leaveErr)
		return
	}

	outputs := make([]ChangeOutput, 0, len(changes))
	for _, c := range changes {
		metrics.RecordLeaveReplacement(c.Replaced())
		outputs = append(outputs, ChangeOutput{
			Date:    c.Date.Format("2006-01-02"),
			Shift:   string(c.Shift),
			From:    c.From,
			To:      c.To,
			Warning: c.Warning,
		})
	}

	respondJSON(w, http.StatusOK, LeaveResponse{
		Success:     true,
		Changes:     outputs,
		Assignments: assignmentOutputs(sched),
	})
}

// Get 查询排班表
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, errors.InvalidInput("id", "排班表ID不能为空"))
		return
	}

	sched, ok := h.store.Get(id)
	if !ok {
		respondError(w, errors.NotFound("排班表", id))
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:     true,
		ScheduleID:  sched.ID,
		Score:       sched.Score,
		Assignments: assignmentOutputs(sched),
	})
}

// validateGenerateRequest 验证请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.Year < 2000 || req.Year > 2100 {
		ve.Add("year", "年份无效")
	}
	if req.Month < 1 || req.Month > 12 {
		ve.Add("month", "月份必须在1到12之间")
	}
	if len(req.Staff) == 0 {
		ve.Add("staff", "值班人员列表不能为空")
	}
	for _, s := range req.Staff {
		if s.Name == "" {
			ve.Add("staff", "存在未命名的值班人员")
			break
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// buildStaff 把请求里的人员输入转换为领域模型
func buildStaff(inputs []StaffInput, year int, month time.Month) ([]*model.StaffMember, *errors.AppError) {
	staff := make([]*model.StaffMember, 0, len(inputs))
	for _, in := range inputs {
		fixedOff, err := model.ParseDayList(in.FixedOff, year, month)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "预定休息格式无效: "+in.Name)
		}

		canNight := true
		if in.CanNight != nil {
			canNight = *in.CanNight
		}

		staff = append(staff, &model.StaffMember{
			Name:     in.Name,
			CanNight: canNight,
			Can24h:   in.Can24h,
			FixedOff: fixedOff,
			FixedOn:  model.ParseFixedOn(in.FixedOn, year, month),
		})
	}
	return staff, nil
}

// assignmentOutputs 把排班结果展开为按日期、姓名排序的输出
func assignmentOutputs(sched *scheduler.Schedule) []AssignmentOutput {
	var out []AssignmentOutput
	for _, d := range sched.Month.Dates {
		assignments := sched.Roster().DateAssignments(d)
		names := make([]string, 0, len(assignments))
		for name := range assignments {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, AssignmentOutput{
				Date:    d.Format("2006-01-02"),
				Weekday: d.Weekday().String(),
				Shift:   string(assignments[name]),
				Member:  name,
			})
		}
	}
	return out
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}

// respondAnyError 返回任意错误，超时单独映射
func respondAnyError(w http.ResponseWriter, err error) {
	if err == context.DeadlineExceeded {
		respondError(w, errors.New(errors.CodeTimeout, "排班计算超时，请减少尝试次数或放宽配置"))
		return
	}
	if appErr, ok := err.(*errors.AppError); ok {
		respondError(w, appErr)
		return
	}
	respondError(w, errors.Wrap(err, errors.CodeInternal, "内部错误"))
}
