// Package redaction keeps a standing banned-phrase list applied against
// the engine's stores on a cron schedule. Sweeps run the same purge as the
// admin endpoint, so a phrase added to the config is scrubbed from records
// that arrived after the previous sweep.
package redaction

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"parley/pkg/brain"
	"parley/pkg/config"
	"parley/pkg/logger"
	"parley/pkg/state"
)

var (
	mu         sync.Mutex
	target     *brain.Brain
	phrases    []string
	sweepOwner string
)

// Register stores the brain and phrase list so sweeps (scheduled or
// on-demand via RunImmediate) know what to purge.
func Register(b *brain.Brain, banned []string) {
	mu.Lock()
	defer mu.Unlock()
	target = b
	phrases = phrases[:0]
	for _, p := range banned {
		if strings.TrimSpace(p) == "" {
			logger.Warn("redaction_phrase_skipped", "reason", "empty")
			continue
		}
		phrases = append(phrases, p)
	}
}

// RunImmediate triggers a single sweep using the registered brain and
// phrase list. Returns an error if nothing was registered.
func RunImmediate() (brain.PurgeResult, error) {
	mu.Lock()
	b, ps := target, append([]string(nil), phrases...)
	mu.Unlock()
	if b == nil {
		return brain.PurgeResult{}, fmt.Errorf("no brain registered for redaction run")
	}
	if state.PathsVar.Redaction == "" {
		return brain.PurgeResult{}, fmt.Errorf("state paths not initialized")
	}
	return runOnce(b, ps, state.PathsVar.Redaction)
}

// Start starts the sweep scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, b *brain.Brain, cfg *config.Config) (context.CancelFunc, error) {
	Register(b, cfg.Redaction.Phrases)

	if !cfg.Redaction.Enabled {
		logger.Info("redaction_disabled")
		return func() {}, nil
	}

	sweepPath := state.PathsVar.Redaction
	if err := os.MkdirAll(sweepPath, 0o700); err != nil {
		logger.Error("redaction_path_create_failed", "path", sweepPath, "error", err)
		return nil, err
	}

	// map empty cron to default daily @02:00
	cronExpr := cfg.Redaction.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("redaction_invalid_cron", "cron", cfg.Redaction.Cron)
		return nil, fmt.Errorf("invalid redaction cron expression: %s", cfg.Redaction.Cron)
	}

	logger.Info("redaction_enabled", "cron", cronExpr, "phrases", len(cfg.Redaction.Phrases), "path", sweepPath)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, b, sweepPath, cronExpr)
	logger.Info("redaction_scheduler_started", "path", sweepPath)
	return cancel, nil
}

// runScheduler computes the next cron tick with gronx and sleeps until
// then, supporting full cron syntax.
func runScheduler(ctx context.Context, b *brain.Brain, sweepPath, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("redaction_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("redaction_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("redaction_scheduler_stopping")
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
			mu.Lock()
			ps := append([]string(nil), phrases...)
			mu.Unlock()
			if _, err := runOnce(b, ps, sweepPath); err != nil {
				logger.Error("redaction_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("redaction_scheduler_stopping")
			return
		}
	}
}

// runOnce applies every configured phrase under a file lease so two
// processes pointed at the same storage never sweep (and save)
// concurrently.
func runOnce(b *brain.Brain, ps []string, sweepPath string) (brain.PurgeResult, error) {
	if len(ps) == 0 {
		logger.Debug("redaction_sweep_noop")
		return brain.PurgeResult{}, nil
	}

	lease := NewFileLease(sweepPath)
	mu.Lock()
	if sweepOwner == "" {
		sweepOwner = fmt.Sprintf("parley-%d", os.Getpid())
	}
	owner := sweepOwner
	mu.Unlock()

	acquired, err := lease.Acquire(owner, 2*time.Minute)
	if err != nil {
		return brain.PurgeResult{}, fmt.Errorf("lease acquire failed: %w", err)
	}
	if !acquired {
		return brain.PurgeResult{}, fmt.Errorf("redaction lease held by another owner")
	}
	defer func() {
		if rerr := lease.Release(owner); rerr != nil {
			logger.Warn("redaction_lease_release_failed", "error", rerr)
		}
	}()

	var total brain.PurgeResult
	for _, p := range ps {
		res, err := b.Purge(p)
		if err != nil {
			logger.Error("redaction_purge_failed", "error", err)
			return total, err
		}
		total.Messages += res.Messages
		total.Pairs += res.Pairs
		total.Feedback += res.Feedback
		total.ModelKeys += res.ModelKeys
		total.ModelSuccessors += res.ModelSuccessors
	}
	logger.Info("redaction_sweep_done",
		"phrases", len(ps),
		"messages", total.Messages,
		"pairs", total.Pairs,
		"feedback", total.Feedback,
		"model_keys", total.ModelKeys,
	)
	return total, nil
}
