// Package job orchestrates scheduled invocations of the telemetry
// pipeline: provision credentials, connect, generate, insert.
package job

import (
	"context"
	"fmt"
	"log"
	"time"

	aqerrors "github.com/aquatel/aquatel/internal/errors"
	"github.com/aquatel/aquatel/internal/generator"
	"github.com/aquatel/aquatel/internal/observability"
	"github.com/aquatel/aquatel/pkg/types"
	"github.com/google/uuid"
)

// State identifies where a run is in its lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateProvisioning State = "provisioning"
	StateConnecting   State = "connecting"
	StateGenerating   State = "generating"
	StateInserting    State = "inserting"
	StateDone         State = "done"
	StateAborted      State = "aborted"
)

// Trigger describes the scheduler event that started a run.
type Trigger struct {
	// ScheduledFor is when the run was meant to start.
	ScheduledFor time.Time

	// FiredAt is when the trigger actually fired.
	FiredAt time.Time

	// PastDue is set when FiredAt lagged ScheduledFor beyond the
	// configured tolerance.
	PastDue bool
}

// Result is the terminal outcome of a single run.
type Result struct {
	RunID string

	// State is StateDone or StateAborted.
	State State

	// FailedAt is the stage that aborted the run, empty on success.
	FailedAt State

	// Rows is the number of records committed.
	Rows int

	Err      error
	Duration time.Duration
}

// Provisioner stages credential artifacts ahead of a connection attempt.
type Provisioner interface {
	Provision(ctx context.Context) error
}

// Conn is a database session scoped to one run.
type Conn interface {
	// Insert writes the batch atomically: all records or none.
	Insert(ctx context.Context, records []types.Observation) error
	Close() error
}

// Gateway opens database sessions.
type Gateway interface {
	Connect(ctx context.Context) (Conn, error)
}

// Runner executes the pipeline once per trigger. It owns the connection's
// lifetime: opened after provisioning, released on every exit path.
type Runner struct {
	provisioner Provisioner
	gateway     Gateway
	generator   *generator.Generator
	batchSize   int
	stats       *observability.RunStats
}

// NewRunner creates a runner. stats may be nil.
func NewRunner(provisioner Provisioner, gw Gateway, gen *generator.Generator, batchSize int, stats *observability.RunStats) *Runner {
	return &Runner{
		provisioner: provisioner,
		gateway:     gw,
		generator:   gen,
		batchSize:   batchSize,
		stats:       stats,
	}
}

// Run executes one invocation end to end. It never panics out: any
// failure, including an unexpected panic in a dependency, ends the run
// as Aborted and leaves the process ready for the next trigger.
func (r *Runner) Run(ctx context.Context, trigger Trigger) (res Result) {
	runID := uuid.NewString()
	start := time.Now()
	stage := StateIdle

	defer func() {
		if p := recover(); p != nil {
			res = Result{
				State:    StateAborted,
				FailedAt: stage,
				Err:      aqerrors.NewInternalError(fmt.Sprintf("run panicked: %v", p), nil),
			}
		}
		res.RunID = runID
		res.Duration = time.Since(start)
		if r.stats != nil {
			r.stats.Record(string(res.State), string(res.FailedAt), res.Rows, res.Duration, res.Err)
		}
		if res.State == StateDone {
			log.Printf("job: run %s done, inserted %d rows in %s", runID, res.Rows, res.Duration)
		} else {
			log.Printf("job: run %s aborted at %s: %v", runID, res.FailedAt, res.Err)
		}
	}()

	if trigger.PastDue {
		log.Printf("job: run %s triggered late (scheduled %s, fired %s)",
			runID, trigger.ScheduledFor.Format(time.RFC3339), trigger.FiredAt.Format(time.RFC3339))
		if r.stats != nil {
			r.stats.RecordLateTrigger()
		}
	}

	return r.run(ctx, &stage)
}

// run walks the state machine, recording the current stage so a panic
// recovered in Run is attributed to the stage that was in flight. Abort
// paths from provisioning and connecting skip generation entirely; an
// insert failure still releases the connection.
func (r *Runner) run(ctx context.Context, stage *State) Result {
	*stage = StateProvisioning
	if err := r.provisioner.Provision(ctx); err != nil {
		return Result{State: StateAborted, FailedAt: StateProvisioning, Err: err}
	}

	*stage = StateConnecting
	conn, err := r.gateway.Connect(ctx)
	if err != nil {
		return Result{State: StateAborted, FailedAt: StateConnecting, Err: err}
	}
	defer conn.Close()

	// Pure generation; no failure mode by contract
	*stage = StateGenerating
	records := r.generator.Generate(r.batchSize)

	*stage = StateInserting
	if err := conn.Insert(ctx, records); err != nil {
		return Result{State: StateAborted, FailedAt: StateInserting, Err: err}
	}

	return Result{State: StateDone, Rows: len(records)}
}
