// Package optimizer 提供尝试评价与平衡优化
package optimizer

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
	"github.com/zhiban/zhiban/pkg/scheduler/score"
	"github.com/zhiban/zhiban/pkg/scheduler/solver"
)

// SearchConfig 多次随机尝试搜索的配置
type SearchConfig struct {
	Attempts int   // 尝试次数
	Workers  int   // 并行工作协程数
	Seed     int64 // 基准随机种子（每次尝试在其上偏移）
}

// DefaultSearchConfig 返回默认搜索配置
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Attempts: 20,
		Workers:  runtime.NumCPU(),
	}
}

// Input 一次搜索的输入（跨尝试只读共享）
type Input struct {
	Month              *model.MonthContext
	Staff              []*model.StaffMember
	AvgShiftsPerPerson float64
	DayShiftsPerDay    int
	NightShiftsPerDay  int
}

// attemptResult 单次尝试的产出
type attemptResult struct {
	index  int
	roster *model.Roster
	score  float64
	valid  bool
}

// Search 并行执行多次独立的排班尝试，保留公平性得分最低的有效结果。
// 尝试之间状态完全独立（每次全新 Roster 与计数），发现零分结果提前收敛；
// 上下文超时后以已找到的最优结果兜底。
func Search(ctx context.Context, in Input, cfg SearchConfig) (*model.Roster, float64, error) {
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultSearchConfig().Attempts
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultSearchConfig().Workers
	}

	log := logger.NewSchedulerLogger()
	log.StartSearch(cfg.Attempts, cfg.Workers)

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	checker := constraint.NewChecker(in.Month, in.AvgShiftsPerPerson)

	jobChan := make(chan int, cfg.Attempts)
	resultChan := make(chan attemptResult, cfg.Attempts)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				select {
				case <-searchCtx.Done():
					return
				default:
				}
				resultChan <- runAttempt(in, checker, cfg.Seed, idx, log)
			}
		}()
	}

	for i := 0; i < cfg.Attempts; i++ {
		jobChan <- i
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var best *model.Roster
	bestScore := math.Inf(1)

	for result := range resultChan {
		metrics.RecordSearchAttempt(result.valid)
		if !result.valid {
			continue
		}
		if result.score < bestScore {
			best = result.roster
			bestScore = result.score
		}
		if result.score == 0 {
			// 已达完全公平，后续尝试不会更好
			cancel()
		}
	}

	if best == nil {
		log.SearchComplete(false, 0)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, errors.Wrap(ctxErr, errors.CodeTimeout, "排班搜索被超时中断，未找到有效结果")
		}
		return nil, 0, errors.NoFeasibleSchedule("所有尝试均无法满足覆盖要求，人力或配置不足")
	}

	log.SearchComplete(true, bestScore)
	return best, bestScore, nil
}

// runAttempt 执行一次独立尝试：全新状态、独立随机源、
// 周末差值随失败批次逐步放宽（上限 3）
func runAttempt(in Input, checker *constraint.Checker, seed int64, idx int, log *logger.SchedulerLogger) attemptResult {
	rng := rand.New(rand.NewSource(seed + int64(idx)*7919))

	roster := model.NewRoster(in.Month, in.Staff)
	for _, ms := range roster.Members() {
		ms.Target = math.Round(in.AvgShiftsPerPerson * ms.Member.TargetRatio())
	}

	cfg := solver.DefaultConfig(in.DayShiftsPerDay, in.NightShiftsPerDay)
	cfg.WeekendSpread = weekendSpreadFor(idx)

	scorer := score.NewScorer(in.Month, checker, rng)
	s := solver.New(in.Month, checker, scorer, rng, cfg)

	if err := s.Run(roster); err != nil {
		log.AttemptFailed(idx, err.Error())
		return attemptResult{index: idx}
	}

	NewBalancer(in.Month, checker).Optimize(roster)

	sc := AttemptScore(roster)
	log.AttemptScored(idx, sc)
	return attemptResult{index: idx, roster: roster, score: sc, valid: true}
}

// weekendSpreadFor 周末差值放宽节奏：每 5 次尝试放宽 1，上限 3
func weekendSpreadFor(attemptIndex int) int {
	spread := 1 + attemptIndex/5
	if spread > 3 {
		spread = 3
	}
	return spread
}
