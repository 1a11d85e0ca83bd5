package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/pipelineerr"
)

// Runner drives Order through Registry against a single RunContext,
// implementing the five runtime steps of §4.4.
type Runner struct {
	Registry *Registry
	Order    []string
	// Force disables the completion-marker resume check (§4.4 step 5):
	// every workflow runs regardless of prior output.
	Force bool
}

// NewRunner returns a Runner over registry, using the declared built-in
// order.
func NewRunner(registry *Registry) *Runner {
	return &Runner{Registry: registry, Order: BuiltinOrder}
}

// Run executes every workflow in run.Order against rc, in order,
// stopping at the first error. Resume is implemented via completion
// markers on rc.Cache rather than raw output-table presence: several
// built-in workflows share an output table name with their predecessor
// (heuristic_maintenance rewrites the same "text_units" table
// create_base_text_units wrote), so table presence alone cannot tell
// "this workflow's own output exists" from "an earlier workflow's
// output exists" — a per-workflow marker resolves the ambiguity while
// still satisfying §4.4 step 5's resumability requirement.
func (run *Runner) Run(ctx context.Context, cfg *config.GraphRagConfig, rc *RunContext) error {
	if rc.Callbacks == nil {
		rc.Callbacks = NoopCallbacks{}
	}
	if rc.Stats == nil {
		rc.Stats = NewStats()
	}
	if rc.RunID == "" {
		rc.RunID = uuid.NewString()
	}
	if rc.Logger == nil {
		rc.Logger = slog.Default()
	}
	log := rc.Logger.With("run_id", rc.RunID)

	for _, name := range run.Order {
		if err := ctx.Err(); err != nil {
			return pipelineerr.Cancelled(fmt.Sprintf("run cancelled before workflow %q: %v", name, err))
		}

		if !run.Force {
			done, err := run.isMarkedComplete(ctx, rc, name)
			if err != nil {
				return err
			}
			if done {
				log.Debug("workflow skipped, already complete", "workflow", name)
				continue
			}
		}

		wf, ok := run.Registry.Get(name)
		if !ok {
			return pipelineerr.Configuration(fmt.Sprintf("no workflow registered for %q", name))
		}

		log.Info("workflow started", "workflow", name)
		rc.Callbacks.WorkflowStarted(name)
		start := time.Now()
		result, err := wf(ctx, cfg, rc)
		rc.Stats.Durations[name] = time.Since(start)
		if result.TokensUsed > 0 {
			rc.Stats.TokenCost[name] += result.TokensUsed
		}
		rc.Callbacks.WorkflowCompleted(name, err)
		if err != nil {
			log.Error("workflow failed", "workflow", name, "error", err)
			return fmt.Errorf("workflow %q: %w", name, err)
		}
		log.Info("workflow completed", "workflow", name, "duration", rc.Stats.Durations[name])

		if err := run.markComplete(ctx, rc, name); err != nil {
			return err
		}
	}
	return nil
}

func markerKey(name string) string {
	return "pipeline/" + strings.ReplaceAll(name, "/", "_") + ".done"
}

func (run *Runner) isMarkedComplete(ctx context.Context, rc *RunContext, name string) (bool, error) {
	if rc.Cache == nil {
		return false, nil
	}
	return rc.Cache.Has(ctx, markerKey(name))
}

func (run *Runner) markComplete(ctx context.Context, rc *RunContext, name string) error {
	if rc.Cache == nil {
		return nil
	}
	return rc.Cache.Set(ctx, markerKey(name), strings.NewReader(time.Now().UTC().Format(time.RFC3339)))
}
