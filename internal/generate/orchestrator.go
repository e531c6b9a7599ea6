// Package generate hosts the generation orchestrator and its completion
// tracker: the state machine that takes a request from admission through
// submission to a deterministic terminal outcome.
package generate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AJ-Gazin/IdenticAI-API/internal/comfy"
	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
	"github.com/AJ-Gazin/IdenticAI-API/internal/infra"
	"github.com/AJ-Gazin/IdenticAI-API/internal/ratelimit"
	"github.com/AJ-Gazin/IdenticAI-API/internal/workflow"
)

const (
	// DefaultTimeout bounds one generation from submission to terminal state.
	DefaultTimeout = 5 * time.Minute
	// DefaultPollInterval paces history fallback polls.
	DefaultPollInterval = time.Second
)

// GraphLoader loads a named workflow template.
type GraphLoader interface {
	Load(variant domain.ModelVariant) (workflow.Graph, error)
}

// GraphBinder injects request parameters into a loaded graph.
type GraphBinder interface {
	Bind(g workflow.Graph, req domain.GenerationRequest) error
}

// WorkerClient is the submission/history/reachability slice of the worker
// transport. *comfy.Client implements it.
type WorkerClient interface {
	SubmitJob(ctx context.Context, graph workflow.Graph, clientID string) (string, error)
	History(ctx context.Context, jobID string) (*comfy.HistoryEntry, bool, error)
	Ping(ctx context.Context) bool
}

// StreamDialer opens the push-event connection for one job.
type StreamDialer interface {
	Dial(ctx context.Context, clientID string) (EventStream, error)
}

// AdapterLister enumerates available adapters for the status surface.
type AdapterLister interface {
	List() []string
	Count() int
}

// Options wires an Orchestrator. Limiter, Workflows, Binder, Worker and Dial
// are required; zero Timeout/PollInterval take the defaults.
type Options struct {
	Limiter      *ratelimit.Bucket
	Workflows    GraphLoader
	Binder       GraphBinder
	Worker       WorkerClient
	Dialer       StreamDialer
	Adapters     AdapterLister
	Logger       infra.Logger
	Timeout      time.Duration
	PollInterval time.Duration
}

// Orchestrator coordinates admission, binding, submission and completion
// tracking for generation requests. One instance serves all callers; the
// only shared mutable state is the rate limiter.
type Orchestrator struct {
	limiter      *ratelimit.Bucket
	workflows    GraphLoader
	binder       GraphBinder
	worker       WorkerClient
	dialer       StreamDialer
	adapters     AdapterLister
	logger       infra.Logger
	timeout      time.Duration
	pollInterval time.Duration
}

// NewOrchestrator builds the orchestrator from its collaborators.
func NewOrchestrator(opts Options) *Orchestrator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Orchestrator{
		limiter:      opts.Limiter,
		workflows:    opts.Workflows,
		binder:       opts.Binder,
		worker:       opts.Worker,
		dialer:       opts.Dialer,
		adapters:     opts.Adapters,
		logger:       opts.Logger,
		timeout:      timeout,
		pollInterval: pollInterval,
	}
}

// Generate runs one request to a terminal outcome. It never panics and never
// returns an unlabeled failure; every error is one of the typed kinds.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest) domain.Outcome {
	requestID := uuid.NewString()
	logger := o.logger.With().Str("request_id", requestID).Logger()
	logger.Info().Str("variant", string(req.Variant)).Msg("generation started")

	outcome := o.generate(ctx, logger, req)

	if outcome.OK() {
		logger.Info().Str("artifact", outcome.ArtifactRef).Msg("generation completed")
	} else {
		logger.Error().
			Str("error_kind", string(outcome.Err.Kind)).
			Str("error", outcome.Err.Message).
			Msg("generation failed")
	}
	return outcome
}

func (o *Orchestrator) generate(ctx context.Context, logger infra.Logger, req domain.GenerationRequest) domain.Outcome {
	if err := req.Validate(); err != nil {
		return domain.Failed(err)
	}
	if !o.limiter.TryAdmit() {
		return domain.Failed(domain.E(domain.KindRateLimited, "rate limit exceeded"))
	}

	graph, err := o.workflows.Load(req.Variant)
	if err != nil {
		return domain.Failed(err)
	}
	if err := o.binder.Bind(graph, req); err != nil {
		return domain.Failed(err)
	}

	clientID := uuid.NewString()
	jobID, err := o.worker.SubmitJob(ctx, graph, clientID)
	if err != nil {
		return domain.Failed(domain.WrapE(domain.KindConnectionError, "failed to submit job to worker", err))
	}
	logger.Debug().Str("job_id", jobID).Msg("job submitted")

	stream, err := o.dialer.Dial(ctx, clientID)
	if err != nil {
		return domain.Failed(err)
	}
	handle := JobHandle{JobID: jobID, ClientID: clientID}
	tr := newTracker(handle, stream, o.worker, o.timeout, o.pollInterval, logger)
	artifact, err := tr.track(ctx)
	if err != nil {
		return domain.Failed(err)
	}
	return domain.Succeeded(artifact)
}

// StatusSummary is the read exposed to the request-handling layer.
type StatusSummary struct {
	WorkerAvailable bool
	AdapterCount    int
	RateCapacity    int
	RateWindow      time.Duration
	RateRemaining   float64
}

// Status reports worker reachability, adapter inventory and rate-limit state.
func (o *Orchestrator) Status(ctx context.Context) StatusSummary {
	return StatusSummary{
		WorkerAvailable: o.worker.Ping(ctx),
		AdapterCount:    o.adapters.Count(),
		RateCapacity:    o.limiter.Capacity(),
		RateWindow:      o.limiter.Window(),
		RateRemaining:   o.limiter.Remaining(),
	}
}

// Adapters enumerates the adapter names currently available.
func (o *Orchestrator) Adapters() []string {
	return o.adapters.List()
}
