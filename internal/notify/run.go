// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package notify runs one notification pass: fetch, select, render, deliver.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ManuGH/epgnotify/internal/epg"
	"github.com/ManuGH/epgnotify/internal/epgstation"
	"github.com/ManuGH/epgnotify/internal/fsutil"
	"github.com/ManuGH/epgnotify/internal/log"
	"github.com/ManuGH/epgnotify/internal/metrics"
	"github.com/ManuGH/epgnotify/internal/report"
	"github.com/ManuGH/epgnotify/internal/selection"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Run outcomes used as the metrics label.
const (
	OutcomeSent        = "sent"
	OutcomePrinted     = "printed"
	OutcomeEmpty       = "empty"
	OutcomeFetchError  = "fetch_error"
	OutcomeRenderError = "render_error"
	OutcomeOutputError = "output_error"
	OutcomeSendError   = "send_error"
)

// ProgramSource is the EPG provider.
type ProgramSource interface {
	Services(ctx context.Context) ([]epg.Service, error)
	Programs(ctx context.Context) ([]epg.Program, error)
}

// ReserveSource is the recorder.
type ReserveSource interface {
	Reserves(ctx context.Context) (epgstation.Reserves, error)
}

// Sender delivers a rendered report.
type Sender interface {
	Send(ctx context.Context, out report.Output) error
}

// Deps are the collaborators of a Runner.
type Deps struct {
	Programs ProgramSource
	Reserves ReserveSource
	Sender   Sender // may be nil when NoSend is set
	Renderer *report.Renderer
}

// Options tune a run. The zero value selects first-run programs on no
// channel at all, so ChannelTypes must be set.
type Options struct {
	ChannelTypes []epg.ChannelType
	OnlyNew      bool
	Exclude      *regexp.Regexp
	Location     *time.Location

	NoSend bool
	Stdout io.Writer // receives the report when NoSend is set

	Output          string // optional report file
	XMLTV           string // optional XMLTV file
	MetricsTextfile string // optional node_exporter textfile

	Now func() time.Time
}

// Result summarizes a finished run.
type Result struct {
	RunID    string
	Services int
	Fetched  int
	Selected int
	Reserved int
	Sent     bool
}

// Runner executes notification passes.
type Runner struct {
	deps Deps
	opts Options
}

// NewRunner validates deps and returns a Runner.
func NewRunner(deps Deps, opts Options) (*Runner, error) {
	if deps.Programs == nil || deps.Reserves == nil {
		return nil, errors.New("notify: program and reserve sources are required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("notify: renderer is required")
	}
	if !opts.NoSend && deps.Sender == nil {
		return nil, errors.New("notify: sender is required unless NoSend is set")
	}
	if opts.NoSend && opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{deps: deps, opts: opts}, nil
}

type snapshot struct {
	services []epg.Service
	programs []epg.Program
	reserves epgstation.Reserves
}

// fetch queries both upstreams concurrently. The first failure cancels
// the remaining requests.
func (r *Runner) fetch(ctx context.Context) (snapshot, error) {
	var s snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s.services, err = r.deps.Programs.Services(gctx)
		if err != nil {
			return fmt.Errorf("fetch services: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		s.programs, err = r.deps.Programs.Programs(gctx)
		if err != nil {
			return fmt.Errorf("fetch programs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		s.reserves, err = r.deps.Reserves.Reserves(gctx)
		if err != nil {
			return fmt.Errorf("fetch reserves: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return s, nil
}

// Run performs one pass. An empty selection is not an error: nothing is
// rendered, written or sent.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result
	res.RunID = uuid.NewString()
	ctx = log.ContextWithRunID(ctx, res.RunID)
	logger := log.WithComponentFromContext(ctx, "notify")
	start := time.Now()

	var outcome string
	defer func() {
		metrics.IncRun(outcome)
		if r.opts.MetricsTextfile != "" {
			if werr := metrics.WriteTextfile(r.opts.MetricsTextfile); werr != nil {
				logger.Warn().Err(werr).Str(log.FieldPath, r.opts.MetricsTextfile).Msg("metrics textfile not written")
			}
		}
	}()

	logger.Info().Str(log.FieldEvent, "run.start").Msg("notification run started")

	snap, err := r.fetch(ctx)
	if err != nil {
		outcome = OutcomeFetchError
		logger.Error().Err(err).Str(log.FieldEvent, "run.fetch_failed").Msg("upstream fetch failed")
		return res, err
	}
	res.Services = len(snap.services)
	res.Fetched = len(snap.programs)
	metrics.RecordFetch(res.Services, res.Fetched)

	now := r.opts.Now()
	criteria := &selection.Criteria{
		Now:          now,
		Services:     snap.services,
		ChannelTypes: r.opts.ChannelTypes,
		Exclude:      r.opts.Exclude,
		OnlyNew:      r.opts.OnlyNew,
	}
	selected, drops := selection.Explain(criteria, snap.programs)
	for _, d := range drops {
		metrics.IncDropped(strings.TrimSuffix(d.Reason, " mismatch"))
		logger.Debug().
			Int64(log.FieldProgramID, d.Program.ID).
			Str(log.FieldProgramName, d.Program.Name).
			Str(log.FieldReason, d.Reason).
			Msg("program dropped")
	}
	res.Selected = len(selected)

	if len(selected) == 0 {
		metrics.RecordSelection(0, 0)
		outcome = OutcomeEmpty
		logger.Info().
			Str(log.FieldEvent, "run.empty").
			Int("fetched", res.Fetched).
			Msg("no programs found")
		if r.opts.NoSend {
			if _, err := io.WriteString(r.opts.Stdout, "No programs found\n"); err != nil {
				outcome = OutcomeOutputError
				return res, fmt.Errorf("print report: %w", err)
			}
		}
		return res, nil
	}

	pairs := report.PrepareRenderPairs(selected, snap.reserves, snap.services, r.opts.Location)
	res.Reserved = report.CountReserved(pairs)
	metrics.RecordSelection(res.Selected, res.Reserved)

	out, err := r.deps.Renderer.Render(pairs, now)
	if err != nil {
		outcome = OutcomeRenderError
		return res, fmt.Errorf("render report: %w", err)
	}

	if err := r.writeOutputs(ctx, out, selected, snap.services); err != nil {
		outcome = OutcomeOutputError
		return res, err
	}

	if r.opts.NoSend {
		if _, err := io.WriteString(r.opts.Stdout, out.Text); err != nil {
			outcome = OutcomeOutputError
			return res, fmt.Errorf("print report: %w", err)
		}
		outcome = OutcomePrinted
	} else {
		if err := r.deps.Sender.Send(ctx, out); err != nil {
			outcome = OutcomeSendError
			logger.Error().Err(err).Str(log.FieldEvent, "run.send_failed").Msg("report not delivered")
			return res, fmt.Errorf("send report: %w", err)
		}
		res.Sent = true
		outcome = OutcomeSent
	}

	logger.Info().
		Str(log.FieldEvent, "run.complete").
		Int("fetched", res.Fetched).
		Int("selected", res.Selected).
		Int("reserved", res.Reserved).
		Bool("sent", res.Sent).
		Dur("duration", time.Since(start)).
		Msg("notification run complete")
	return res, nil
}

func (r *Runner) writeOutputs(ctx context.Context, out report.Output, selected []epg.Program, services []epg.Service) error {
	logger := log.WithComponentFromContext(ctx, "notify")
	if r.opts.Output != "" {
		if err := fsutil.WriteFileAtomic(ctx, r.opts.Output, []byte(out.Text)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info().Str(log.FieldPath, r.opts.Output).Msg("report written")
	}
	if r.opts.XMLTV != "" {
		tv := epg.BuildXMLTV(selected, services, r.opts.Location)
		err := fsutil.WriteAtomic(ctx, r.opts.XMLTV, func(w io.Writer) error {
			return epg.WriteXMLTV(w, tv)
		})
		if err != nil {
			return fmt.Errorf("write xmltv: %w", err)
		}
		logger.Info().Str(log.FieldPath, r.opts.XMLTV).Int("programmes", len(tv.Programs)).Msg("xmltv written")
	}
	return nil
}
