// Package theatre provides constraint-based scheduling for operating theatres.
// This file implements the Solver, the entry point that ties the domain
// builder, forward checking, and the backtracking controller together.
//
// # Architecture Overview
//
// A solve invocation separates the immutable instance from the mutable
// search state:
//
//	Problem (immutable, shared):
//	  - Validated surgery and staff records
//	  - The slot horizon and precomputed availability bitsets
//	  - Safe to share across goroutines and invocations
//
//	searchState (mutable, per invocation):
//	  - Candidate tables built once per invocation
//	  - Live domains as in-place bitsets over candidate indices
//	  - The change trail recording every propagation removal
//	  - Discarded when the Result is produced
//
// # How a Solve Runs
//
//  1. The domain builder enumerates each surgery's candidate values under
//     the static checks. A surgery with no candidates is structurally
//     infeasible and reported without searching.
//  2. The controller repeatedly picks the unassigned surgery with the
//     smallest domain, orders its values by least propagation impact, and
//     commits one.
//  3. Forward checking prunes the other domains, logging removals on the
//     trail. A wipeout rolls the trail back to the frame's mark and tries
//     the next value; an exhausted frame backtracks.
//  4. When every surgery is assigned the result assembler emits the
//     schedule; when the root frame exhausts, the instance is infeasible.
//
// Cancellation is polled at every controller iteration, so deadlines unwind
// the traversal promptly and report a distinct cancelled outcome. Repeated
// invocations are fully independent; nothing persists between calls.
package theatre

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Solver runs searches against one Problem. The Problem and configuration
// are read-only during solving and every invocation owns its entire mutable
// state, so a single Solver may run concurrent Solve calls; for batch work
// prefer one Solver per request (see SolveBatch).
type Solver struct {
	problem *Problem
	config  *Config
	log     *zap.Logger
}

// NewSolver creates a solver with the default configuration.
func NewSolver(p *Problem) *Solver {
	return NewSolverWithConfig(p, nil)
}

// NewSolverWithConfig creates a solver with a custom configuration.
// A nil config behaves like DefaultConfig.
func NewSolverWithConfig(p *Problem, config *Config) *Solver {
	cfg := config.normalize()
	return &Solver{
		problem: p,
		config:  cfg,
		log:     cfg.Logger,
	}
}

// Solve searches for a schedule and always returns a terminal Result:
// scheduled with a complete schedule, infeasible with per-surgery reasons,
// or cancelled when ctx expires first. An already-expired context yields a
// cancelled result before any candidate is built or node expanded.
func (s *Solver) Solve(ctx context.Context) *Result {
	start := time.Now()

	if ctx.Err() != nil {
		return s.finish(start, &Result{Status: StatusCancelled})
	}

	cands := buildCandidates(s.problem, s.config.MaxTeamSize)
	st := newSearchState(s.problem, cands, s.config.Monitor)
	if s.config.Monitor != nil {
		s.config.Monitor.RecordCandidates(st.stats.CandidatesBuilt)
	}
	if s.log.Core().Enabled(zap.DebugLevel) {
		for i := range s.problem.surgeries {
			s.log.Debug("surgery domain",
				zap.String("surgery", s.problem.surgeries[i].ID),
				zap.Int("candidates", len(cands[i])))
		}
	}

	if reasons := structuralReasons(s.problem, cands); len(reasons) > 0 {
		st.stats.SearchTime = time.Since(start)
		return s.finish(start, &Result{
			Status:  StatusInfeasible,
			Reasons: reasons,
			Stats:   st.stats,
		})
	}

	outcome := st.runSearch(ctx)
	st.stats.SearchTime = time.Since(start)

	switch outcome {
	case outcomeSolved:
		return s.finish(start, &Result{
			Status:   StatusScheduled,
			Schedule: assembleSchedule(st),
			Stats:    st.stats,
		})
	case outcomeCancelled:
		return s.finish(start, &Result{Status: StatusCancelled, Stats: st.stats})
	default:
		return s.finish(start, &Result{
			Status:  StatusInfeasible,
			Reasons: combinatorialReasons(s.problem),
			Stats:   st.stats,
		})
	}
}

// finish logs the outcome and reports timing to the monitor.
func (s *Solver) finish(start time.Time, res *Result) *Result {
	elapsed := time.Since(start)
	if s.config.Monitor != nil {
		s.config.Monitor.FinishInvocation(elapsed)
	}
	s.log.Info("solve finished",
		zap.String("status", string(res.Status)),
		zap.Int("nodes", res.Stats.NodesExplored),
		zap.Int("backtracks", res.Stats.Backtracks),
		zap.Duration("elapsed", elapsed))
	return res
}

// Solve validates the instance and runs a search in one call. It returns an
// error only for malformed input (see ErrInvalidInput); feasibility and
// cancellation are expressed through the Result's Status.
func Solve(ctx context.Context, surgeries []Surgery, staff []StaffMember, totalSlots int) (*Result, error) {
	p, err := NewProblem(surgeries, staff, totalSlots)
	if err != nil {
		return nil, err
	}
	return NewSolver(p).Solve(ctx), nil
}
