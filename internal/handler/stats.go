// Package handler 提供HTTP请求处理器
package handler

import (
	"net/http"

	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/scheduler"
	"github.com/zhiban/zhiban/pkg/stats"
)

// StatsHandler 统计分析处理器
type StatsHandler struct {
	store *Store
}

// NewStatsHandler 创建统计分析处理器
func NewStatsHandler(store *Store) *StatsHandler {
	return &StatsHandler{store: store}
}

// FairnessResponse 公平性响应
type FairnessResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.FairnessMetrics `json:"data,omitempty"`
}

// CoverageResponse 覆盖情况响应
type CoverageResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.CoverageMetrics `json:"data,omitempty"`
}

// Fairness 公平性分析API
func (h *StatsHandler) Fairness(w http.ResponseWriter, r *http.Request) {
	sched, appErr := h.lookup(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	analyzer := stats.NewFairnessAnalyzer()
	data := analyzer.Analyze(sched.Roster())

	metrics.SetFairnessGini(sched.ID, "workload", data.WorkloadGini)
	metrics.SetFairnessGini(sched.ID, "night", data.NightShiftGini)
	metrics.SetFairnessGini(sched.ID, "weekend", data.WeekendShiftGini)

	respondJSON(w, http.StatusOK, FairnessResponse{Success: true, Data: data})
}

// Coverage 覆盖情况API
func (h *StatsHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	sched, appErr := h.lookup(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	analyzer := stats.NewCoverageAnalyzer()
	data := analyzer.Analyze(sched.Month, sched.Roster())

	respondJSON(w, http.StatusOK, CoverageResponse{Success: true, Data: data})
}

// lookup 从查询参数取排班表
func (h *StatsHandler) lookup(r *http.Request) (*scheduler.Schedule, *errors.AppError) {
	if r.Method != http.MethodGet {
		return nil, errors.New(errors.CodeInvalidInput, "仅支持GET方法")
	}

	id := r.URL.Query().Get("schedule_id")
	if id == "" {
		return nil, errors.InvalidInput("schedule_id", "排班表ID不能为空")
	}

	sched, ok := h.store.Get(id)
	if !ok {
		return nil, errors.NotFound("排班表", id)
	}
	return sched, nil
}
