package executor

import (
	"context"

	"github.com/JoowonYun/CasperLabs/core/effect"
	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/execution/args"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/core/key"
	"github.com/JoowonYun/CasperLabs/core/state"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/xerrors"
)

// Code is the session code of a phase. A phase with no name is skipped.
type Code struct {
	Name string
	Args args.List
}

// Deploy is a unit of work executed in up to three phases.
type Deploy struct {
	Hash    execution.DeployHash
	Account key.Key

	// GasLimit is the limit of each phase.
	GasLimit gas.Gas

	Payment  Code
	Session  Code
	Finalize Code
}

func (d Deploy) code(phase execution.Phase) Code {
	switch phase {
	case execution.Payment:
		return d.Payment
	case execution.Session:
		return d.Session
	case execution.FinalizePayment:
		return d.Finalize
	default:
		return Code{}
	}
}

// PhaseResult is the result of one phase.
type PhaseResult struct {
	Phase  execution.Phase
	Result execution.Result
}

// DeployResult is the outcome of a deploy.
type DeployResult struct {
	Phases []PhaseResult

	// Effect is the merge of the effects of the successful phases that ran
	// before the first failure. It is what a commit applies.
	Effect effect.Effect

	// Cost is the sum of the costs of the phases that ran.
	Cost gas.Gas

	// Err is the error of the first failed phase.
	Err error
}

// ExecuteDeploy runs the phases of the deploy in order. Each phase has its own
// generator and sees the effects of the phases before it. The deploy stops at
// the first failure.
func ExecuteDeploy(svc execution.Service, reader execution.Reader, d Deploy) DeployResult {
	res := DeployResult{Effect: effect.New()}

	for _, phase := range execution.Phases {
		code := d.code(phase)
		if code.Name == "" {
			continue
		}

		req := execution.Request{
			DeployHash: d.Hash,
			Phase:      phase,
			GasLimit:   d.GasLimit,
			Account:    d.Account,
			Code:       code.Name,
			Args:       code.Args,
		}

		result := svc.Exec(state.NewOverlay(reader, res.Effect), req)
		res.Phases = append(res.Phases, PhaseResult{Phase: phase, Result: result})

		cost, err := res.Cost.Add(result.Cost)
		if err != nil {
			cost = gas.Max
		}
		res.Cost = cost

		if !result.IsSuccess() {
			res.Err = xerrors.Errorf("%s phase: %w", phase, result.Err)
			return res
		}

		merged, err := res.Effect.Merge(result.Effect)
		if err != nil {
			res.Err = xerrors.Errorf("%s phase: %w", phase, err)
			return res
		}

		res.Effect = merged
	}

	return res
}

// ExecuteBatch runs the independent deploys in parallel, using at most the
// number of workers, and returns the results in the order of the deploys.
func ExecuteBatch(ctx context.Context, svc execution.Service, reader execution.Reader,
	deploys []Deploy, workers int) ([]DeployResult, error) {

	if workers <= 0 {
		workers = 1
	}

	results := make([]DeployResult, len(deploys))
	sem := semaphore.NewWeighted(int64(workers))

	g, gctx := errgroup.WithContext(ctx)

	for i := range deploys {
		err := sem.Acquire(gctx, 1)
		if err != nil {
			break
		}

		index := i

		g.Go(func() error {
			defer sem.Release(1)

			results[index] = ExecuteDeploy(svc, reader, deploys[index])

			return gctx.Err()
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, xerrors.Errorf("batch interrupted: %v", err)
	}

	err = ctx.Err()
	if err != nil {
		return nil, xerrors.Errorf("batch interrupted: %v", err)
	}

	return results, nil
}

// Commit applies the effects of the results to the store in the order of the
// results.
func Commit(store state.Store, results []DeployResult) error {
	for i, res := range results {
		err := store.Commit(res.Effect)
		if err != nil {
			return xerrors.Errorf("failed to commit deploy %d: %w", i, err)
		}
	}

	return nil
}
