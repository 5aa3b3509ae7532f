// Package theatre provides constraint-based scheduling for operating theatres.
// This file implements request-level parallelism: independent instances
// solved concurrently on a bounded worker pool. Solves share no mutable
// state, so the only coordination is capping the number in flight.
package theatre

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apoorvpandey048/theatre-scheduler/internal/parallel"
)

// BatchRequest is one scheduling instance in a batch run. An empty ID is
// replaced by a generated one so log lines and outcomes stay correlatable.
type BatchRequest struct {
	ID         string
	Surgeries  []Surgery
	Staff      []StaffMember
	TotalSlots int
}

// BatchOutcome pairs a request with its result. Err is non-nil only for
// malformed input; feasibility and cancellation are carried by the Result.
type BatchOutcome struct {
	ID     string
	Result *Result
	Err    error
}

// BatchOptions tunes a batch run.
type BatchOptions struct {
	// Workers caps concurrent solves; zero or negative means one per CPU.
	Workers int
	// Config is applied to every solver in the batch. A shared
	// Config.Monitor aggregates statistics across the whole run.
	Config *Config
	// Logger receives one info line per request. Nil disables logging.
	Logger *zap.Logger
}

// SolveBatch solves independent requests concurrently and returns one
// outcome per request, in input order. Cancelling ctx stops submission and
// makes in-flight solves return cancelled results; outcomes for requests
// that were never submitted carry the context error.
func SolveBatch(ctx context.Context, requests []BatchRequest, opts *BatchOptions) []BatchOutcome {
	o := BatchOptions{}
	if opts != nil {
		o = *opts
	}
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}

	pool := parallel.NewWorkerPool(o.Workers)
	defer pool.Shutdown()

	outcomes := make([]BatchOutcome, len(requests))
	var wg sync.WaitGroup
	for i := range requests {
		req := requests[i]
		id := req.ID
		if id == "" {
			id = uuid.NewString()
		}
		outcomes[i].ID = id

		idx := i
		wg.Add(1)
		err := pool.Submit(ctx, func() {
			defer wg.Done()
			outcomes[idx] = solveOne(ctx, id, req, o.Config, log)
		})
		if err != nil {
			wg.Done()
			outcomes[i].Err = err
		}
	}
	wg.Wait()

	return outcomes
}

// solveOne runs a single batch request through its own solver.
func solveOne(ctx context.Context, id string, req BatchRequest, cfg *Config, log *zap.Logger) BatchOutcome {
	p, err := NewProblem(req.Surgeries, req.Staff, req.TotalSlots)
	if err != nil {
		log.Warn("batch request rejected",
			zap.String("request_id", id),
			zap.Error(err))
		return BatchOutcome{ID: id, Err: err}
	}
	res := NewSolverWithConfig(p, cfg).Solve(ctx)
	log.Info("batch request finished",
		zap.String("request_id", id),
		zap.String("status", string(res.Status)),
		zap.Int("surgeries", len(req.Surgeries)),
		zap.Int("nodes", res.Stats.NodesExplored))
	return BatchOutcome{ID: id, Result: res}
}
