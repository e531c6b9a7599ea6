package generate

import (
	"context"
	"errors"
	"time"

	"github.com/AJ-Gazin/IdenticAI-API/internal/comfy"
	"github.com/AJ-Gazin/IdenticAI-API/internal/domain"
	"github.com/AJ-Gazin/IdenticAI-API/internal/infra"
)

// EventStream is the open push-event connection the tracker consumes.
// *comfy.Conn implements it.
type EventStream interface {
	Next(wait time.Duration) (comfy.Event, error)
	Close() error
}

// HistoryQuerier is the pollable completion store. *comfy.Client implements it.
type HistoryQuerier interface {
	History(ctx context.Context, jobID string) (*comfy.HistoryEntry, bool, error)
}

// JobHandle correlates push events and history lookups to one submitted job.
type JobHandle struct {
	JobID    string
	ClientID string
}

// tracker resolves one submitted job to a terminal outcome by reconciling
// push events with history polls. Push delivery is not guaranteed even once,
// so a quiet or dead stream must never hang the job past the deadline.
type tracker struct {
	handle       JobHandle
	events       EventStream
	history      HistoryQuerier
	timeout      time.Duration
	pollInterval time.Duration
	logger       infra.Logger
	now          func() time.Time
}

func newTracker(handle JobHandle, events EventStream, history HistoryQuerier, timeout, pollInterval time.Duration, logger infra.Logger) *tracker {
	return &tracker{
		handle:       handle,
		events:       events,
		history:      history,
		timeout:      timeout,
		pollInterval: pollInterval,
		logger:       logger,
		now:          time.Now,
	}
}

// track drives the job to SUCCEEDED or FAILED. The connection is released on
// every exit path, exactly once.
func (t *tracker) track(ctx context.Context) (string, error) {
	defer t.events.Close()

	deadline := t.now().Add(t.timeout)
	var candidate string

	for {
		if ctx.Err() != nil {
			// Caller gave up; a last history check keeps a finished job from
			// being reported as failed.
			return t.reconcile()
		}
		remaining := deadline.Sub(t.now())
		if remaining <= 0 {
			return "", domain.E(domain.KindTimeout, "generation timed out after %s", t.timeout)
		}
		wait := t.pollInterval
		if remaining < wait {
			wait = remaining
		}

		ev, err := t.events.Next(wait)
		if err != nil {
			if errors.Is(err, comfy.ErrStreamTimeout) {
				// Stream is quiet; fall back to polling the history store.
				artifact, terminal, perr := t.checkHistory(ctx)
				if !terminal {
					continue
				}
				return artifact, perr
			}
			// Stream closed or failed without a terminal event.
			t.logger.Warn().Err(err).Str("job_id", t.handle.JobID).Msg("event stream lost, reconciling from history")
			return t.reconcile()
		}

		if ev.JobID != "" && ev.JobID != t.handle.JobID {
			continue
		}
		switch ev.Type {
		case comfy.EventNodeStarted:
			t.logger.Debug().Str("job_id", t.handle.JobID).Str("node_id", ev.NodeID).Msg("node executing")
		case comfy.EventNodeProduced:
			// Last writer wins; only the sink node is expected to emit images.
			if len(ev.Artifacts) > 0 {
				candidate = ev.Artifacts[len(ev.Artifacts)-1]
			}
		case comfy.EventJobDone:
			if candidate != "" {
				return candidate, nil
			}
			return t.reconcile()
		case comfy.EventJobErrored:
			return "", domain.E(domain.KindGenerationFailed, "worker reported error: %s", ev.Detail)
		}
	}
}

// checkHistory is one poll tick. terminal=false means the job is still
// unknown to the store and the tracker keeps waiting; query errors are
// treated the same way and retried on the next tick.
func (t *tracker) checkHistory(ctx context.Context) (artifact string, terminal bool, err error) {
	entry, ok, qerr := t.history.History(ctx, t.handle.JobID)
	if qerr != nil {
		t.logger.Warn().Err(qerr).Str("job_id", t.handle.JobID).Msg("history poll failed")
		return "", false, nil
	}
	if !ok {
		return "", false, nil
	}
	if art, found := entry.FirstArtifact(); found {
		return art, true, nil
	}
	return "", true, domain.E(domain.KindGenerationFailed, "no output image generated")
}

// reconcile consults the history store once after the event path ended
// ambiguously. An independent short-lived context is used so the check still
// runs when the caller's context is already dead.
func (t *tracker) reconcile() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry, ok, err := t.history.History(ctx, t.handle.JobID)
	if err != nil {
		return "", domain.WrapE(domain.KindGenerationFailed, "no output image generated", err)
	}
	if ok {
		if art, found := entry.FirstArtifact(); found {
			return art, nil
		}
	}
	return "", domain.E(domain.KindGenerationFailed, "no output image generated")
}
