// Package sync drives one import run end to end: preflight against the
// helpdesk, filtering and threading the archive, dedup against the
// progress store, and the sequential push loop with graceful
// interruption.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nhle/helpdesk-import/internal/filter"
	"github.com/nhle/helpdesk-import/internal/helpdesk"
	"github.com/nhle/helpdesk-import/internal/model"
	"github.com/nhle/helpdesk-import/internal/progress"
	"github.com/nhle/helpdesk-import/internal/thread"
	"github.com/nhle/helpdesk-import/internal/ui"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	// OutcomeCompleted: every pending thread was pushed and the
	// progress store was discarded.
	OutcomeCompleted Outcome = iota

	// OutcomeNothingNew: after dedup no threads remained to import.
	OutcomeNothingNew

	// OutcomeInterrupted: the operator stopped the run; recorded
	// progress was kept for a later resume.
	OutcomeInterrupted
)

// PreflightError is a precondition on the helpdesk that could not be
// satisfied. The run aborts before any ticket is created.
type PreflightError struct {
	// Reason describes the failed precondition.
	Reason string

	// Remediation tells the operator what to create or configure.
	Remediation string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("preflight failed: %s (%s)", e.Reason, e.Remediation)
}

// Source streams the messages of the mailbox archive.
type Source interface {
	Each(fn func(model.RawMessage) error) error
}

// Store is the durable set of already-imported thread keys.
type Store interface {
	Contains(ctx context.Context, key string) (bool, error)
	Add(ctx context.Context, key string) error
	Count(ctx context.Context) (int, error)
	Close() error
	Discard() error
}

// API is the slice of the helpdesk client the preflight needs.
type API interface {
	TicketFields(ctx context.Context) ([]helpdesk.TicketField, error)
	Groups(ctx context.Context) ([]helpdesk.Group, error)
}

// TicketPusher submits one ticket, retrying transient failures.
type TicketPusher interface {
	Push(ctx context.Context, payload model.TicketPayload) error
}

// StoreOpener opens the progress store; injected so tests can observe
// the store across simulated runs.
type StoreOpener func(path string, purge bool) (Store, error)

// Runner coordinates one import run. All collaborators are injected;
// zero-value optional fields fall back to sensible defaults.
type Runner struct {
	Config   *model.Config
	Source   Source
	API      API
	Pusher   TicketPusher
	Prompter ui.Prompter
	Logger   *slog.Logger

	// Purge predetermines the purge decision; nil means ask the
	// Prompter (or keep existing progress when non-interactive).
	Purge *bool

	// OpenStore defaults to the SQLite progress store.
	OpenStore StoreOpener

	// Sleep implements the inter-ticket rate delay. Defaults to
	// time.Sleep.
	Sleep func(time.Duration)

	// Out receives user-facing status lines. Defaults to os.Stdout.
	Out io.Writer
}

// Run executes the whole pipeline and reports how it ended. An
// interrupted run is not an error: the outcome is OutcomeInterrupted
// and recorded progress stays on disk.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	openStore := r.OpenStore
	if openStore == nil {
		openStore = func(path string, purge bool) (Store, error) {
			return progress.Open(path, purge)
		}
	}

	purge, err := r.purgeDecision()
	if err != nil {
		return 0, fmt.Errorf("deciding purge: %w", err)
	}

	store, err := openStore(r.Config.ProgressDB, purge)
	if err != nil {
		return 0, fmt.Errorf("opening progress store: %w", err)
	}

	if done, _ := store.Count(ctx); done > 0 {
		logger.Info("resuming previous run", "already_imported", done)
	}

	groupID, err := r.preflight(ctx)
	if err != nil {
		store.Close()
		return 0, err
	}

	threads, err := r.collectThreads(logger)
	if err != nil {
		store.Close()
		return 0, err
	}

	pending, err := r.dedup(ctx, store, threads)
	if err != nil {
		store.Close()
		return 0, err
	}

	if len(pending) == 0 {
		store.Close()
		fmt.Fprintln(out, ui.SuccessStyle.Render("Nothing new to import"))
		return OutcomeNothingNew, nil
	}

	opts := thread.BuildOptions{
		DateField: r.Config.DateField,
		GroupID:   groupID,
	}

	total := len(pending)
	for i, th := range pending {
		if interrupted(ctx) {
			return r.finishInterrupted(out, store)
		}

		payload := thread.BuildTicket(th, opts)
		fmt.Fprintln(out, ui.ProgressStyle.Render(
			fmt.Sprintf("[%d/%d] %s", i+1, total, payload.Subject)))

		if err := r.Pusher.Push(ctx, payload); err != nil {
			if interrupted(ctx) || errors.Is(err, context.Canceled) {
				return r.finishInterrupted(out, store)
			}
			store.Close()
			return 0, fmt.Errorf("pushing thread %s: %w", th.Key, err)
		}

		// Record only after the push confirmed success, and before
		// anything else can go wrong.
		if err := store.Add(ctx, th.Key); err != nil {
			store.Close()
			return 0, err
		}

		logger.Debug("thread imported", "key", th.Key, "messages", len(th.Messages))
		sleep(r.Config.RateDelay)
	}

	if err := store.Discard(); err != nil {
		return 0, fmt.Errorf("discarding progress store: %w", err)
	}
	fmt.Fprintln(out, ui.SuccessStyle.Render(
		fmt.Sprintf("Import complete: %d thread(s), no duplicates", total)))
	return OutcomeCompleted, nil
}

// purgeDecision resolves whether to discard prior progress: explicit
// flag, else non-interactive default (keep), else ask.
func (r *Runner) purgeDecision() (bool, error) {
	if r.Purge != nil {
		return *r.Purge, nil
	}
	if r.Config.NonInteractive {
		return false, nil
	}
	return r.Prompter.Confirm(
		"Purge progress database?",
		"Discards the record of previously imported threads; they would be imported again.",
	)
}

// preflight verifies the helpdesk has the custom date field and
// resolves the import group id, prompting once for its creation when
// it is missing.
func (r *Runner) preflight(ctx context.Context) (int64, error) {
	fields, err := r.API.TicketFields(ctx)
	if err != nil {
		return 0, fmt.Errorf("verifying ticket fields: %w", err)
	}
	if !hasField(fields, r.Config.DateField) {
		return 0, &PreflightError{
			Reason: fmt.Sprintf("custom field %q does not exist", r.Config.DateField),
			Remediation: fmt.Sprintf(
				"create a Date custom field named %q in the helpdesk admin",
				r.Config.DateField),
		}
	}

	id, ok, err := r.resolveGroup(ctx)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	ackErr := r.Prompter.Acknowledge(
		fmt.Sprintf("Group %q not found", r.Config.GroupName),
		"Create it under Admin → Groups, then continue.",
	)
	if ackErr == nil {
		id, ok, err = r.resolveGroup(ctx)
		if err != nil {
			return 0, err
		}
		if ok {
			return id, nil
		}
	}

	return 0, &PreflightError{
		Reason: fmt.Sprintf("group %q does not exist", r.Config.GroupName),
		Remediation: fmt.Sprintf(
			"create a group named %q in the helpdesk admin, or point group_name at an existing one",
			r.Config.GroupName),
	}
}

// resolveGroup looks up the configured import group id.
func (r *Runner) resolveGroup(ctx context.Context) (int64, bool, error) {
	groups, err := r.API.Groups(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("resolving import group: %w", err)
	}
	for _, g := range groups {
		if g.Name == r.Config.GroupName {
			return g.ID, true, nil
		}
	}
	return 0, false, nil
}

// collectThreads streams the archive, drops noise, and groups the
// survivors into threads in first-seen order.
func (r *Runner) collectThreads(logger *slog.Logger) ([]thread.Thread, error) {
	var kept []model.RawMessage
	dropped := 0

	err := r.Source.Each(func(m model.RawMessage) error {
		if filter.IsNoise(m.Header) {
			dropped++
			return nil
		}
		kept = append(kept, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	threads := thread.Group(kept)
	logger.Info("archive scanned",
		"messages", len(kept)+dropped,
		"noise", dropped,
		"threads", len(threads))
	return threads, nil
}

// dedup drops threads whose key is already recorded.
func (r *Runner) dedup(ctx context.Context, store Store, threads []thread.Thread) ([]thread.Thread, error) {
	pending := make([]thread.Thread, 0, len(threads))
	for _, th := range threads {
		done, err := store.Contains(ctx, th.Key)
		if err != nil {
			return nil, err
		}
		if !done {
			pending = append(pending, th)
		}
	}
	return pending, nil
}

// finishInterrupted keeps the recorded progress and tells the operator
// how to resume.
func (r *Runner) finishInterrupted(out io.Writer, store Store) (Outcome, error) {
	if err := store.Close(); err != nil {
		return OutcomeInterrupted, fmt.Errorf("closing progress store: %w", err)
	}
	fmt.Fprintln(out, ui.WarnStyle.Render("Interrupted — progress saved. Re-run to resume."))
	return OutcomeInterrupted, nil
}

// interrupted reports whether the run's context has been canceled.
func interrupted(ctx context.Context) bool {
	return ctx.Err() != nil
}

// hasField reports whether a ticket field with the given name exists.
func hasField(fields []helpdesk.TicketField, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
