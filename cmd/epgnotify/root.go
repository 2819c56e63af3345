// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/ManuGH/epgnotify/internal/config"
	"github.com/ManuGH/epgnotify/internal/epgstation"
	"github.com/ManuGH/epgnotify/internal/log"
	"github.com/ManuGH/epgnotify/internal/mail"
	"github.com/ManuGH/epgnotify/internal/mirakurun"
	"github.com/ManuGH/epgnotify/internal/netutil"
	"github.com/ManuGH/epgnotify/internal/notify"
	"github.com/ManuGH/epgnotify/internal/report"
	"github.com/ManuGH/epgnotify/internal/selection"
	"github.com/ManuGH/epgnotify/internal/upstream"
	"github.com/ManuGH/epgnotify/internal/validate"
	"github.com/ManuGH/epgnotify/internal/version"
	"github.com/spf13/cobra"
)

// exitError carries the process exit code out of cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func configError(err error) error { return &exitError{code: exitConfig, err: err} }

type flags struct {
	configPath    string
	exclusions    string
	mirakurunURL  string
	epgstationURL string
	onlyNew       bool
	template      string
	html          bool
	noSend        bool
	channels      string
	output        string
	xmltv         string
	logLevel      string
	logFormat     string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "epgnotify",
		Short: "Mail a digest of new TV series from the EPG",
		Long: `epgnotify reads the program guide from Mirakurun, keeps free-to-air
first-run programs on the selected channel types, marks the ones EPGStation
already has reserved and mails the rendered report.`,
		Version:       version.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var onlyNew *bool
			if cmd.Flags().Changed("only-new") {
				onlyNew = &f.onlyNew
			}
			var html *bool
			if cmd.Flags().Changed("html") {
				html = &f.html
			}
			return runNotify(cmd.Context(), f, onlyNew, html, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return configError(err)
	})

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "path to config file (YAML or JSON)")
	fl.StringVarP(&f.exclusions, "ignore", "i", "", "file of title phrases to exclude, one per line")
	fl.StringVar(&f.mirakurunURL, "mirakurun", "", "Mirakurun base URL")
	fl.StringVar(&f.epgstationURL, "epgstation", "", "EPGStation base URL")
	fl.BoolVar(&f.onlyNew, "only-new", true, "require the new-series marker in the title")
	fl.StringVarP(&f.template, "mail", "m", "", "text template for the report")
	fl.BoolVar(&f.html, "html", false, "also render and send the HTML variant")
	fl.BoolVarP(&f.noSend, "nosend", "n", false, "print the report instead of mailing it")
	fl.StringVar(&f.channels, "channels", "", "comma separated channel types (GR,BS,CS,SKY)")
	fl.StringVarP(&f.output, "output", "o", "", "also write the report to this file")
	fl.StringVar(&f.xmltv, "xmltv", "", "also write the selection as XMLTV to this file")
	fl.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fl.StringVar(&f.logFormat, "log-format", "", "log format (json, console)")
	return cmd
}

func runNotify(ctx context.Context, f flags, onlyNew, html *bool, stdout, stderr io.Writer) error {
	log.Configure(log.Config{Level: f.logLevel, Format: f.logFormat, Output: stderr, Version: version.Version})
	logger := log.WithComponent("cli")

	loader := config.NewLoader(f.configPath, version.Version).WithOverrides(config.Overrides{
		MirakurunURL:  f.mirakurunURL,
		EPGStationURL: f.epgstationURL,
		ChannelTypes:  f.channels,
		OnlyNew:       onlyNew,
		Exclusions:    f.exclusions,
		Template:      f.template,
		Output:        f.output,
		XMLTV:         f.xmltv,
		HTML:          html,
		LogLevel:      f.logLevel,
		LogFormat:     f.logFormat,
		NoSend:        f.noSend,
	})
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", f.configPath).
			Msg("failed to load configuration")
		var verr validate.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors() {
				logger.Error().
					Str("event", "config.invalid_field").
					Str("field", fe.Field).
					Msg(fe.Message)
			}
		}
		return configError(err)
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: stderr, Version: version.Version})
	logger = log.WithComponent("cli")
	logger.Debug().Object("config", cfg).Msg("configuration loaded")

	var exclude *regexp.Regexp
	if cfg.Exclusions != "" {
		exclude, err = selection.LoadExclusions(cfg.Exclusions)
		if err != nil {
			return fmt.Errorf("load exclusions: %w", err)
		}
	}

	renderer, err := report.NewRenderer(report.Options{
		TextTemplate: cfg.Report.Template,
		HTML:         cfg.HTML,
		HTMLTemplate: cfg.Report.HTMLTemplate,
	})
	if err != nil {
		return configError(err)
	}

	programs := mirakurun.New(cfg.Mirakurun.BaseURL, cfg.Mirakurun.Timeout)
	reserves := epgstation.New(cfg.EPGStation.BaseURL, cfg.EPGStation.Timeout)
	for _, up := range []*upstream.Client{programs.Upstream(), reserves.Upstream()} {
		logger.Info().
			Str(log.FieldEvent, "upstream.configured").
			Str(log.FieldUpstream, up.Name()).
			Str(log.FieldBaseURL, netutil.MaskURL(up.BaseURL())).
			Msg("using upstream")
	}

	deps := notify.Deps{
		Programs: programs,
		Reserves: reserves,
		Renderer: renderer,
	}
	if !cfg.NoSend {
		deps.Sender = mail.NewSender(mail.Config{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			HELO:      cfg.SMTP.Name,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			TLSPolicy: cfg.SMTP.TLSPolicy,
			Timeout:   cfg.SMTP.Timeout,
			From:      cfg.Envelope.From,
			To:        cfg.Envelope.To,
			Subject:   cfg.Envelope.Subject,
		})
	}

	runner, err := notify.NewRunner(deps, notify.Options{
		ChannelTypes:    cfg.ChannelTypes,
		OnlyNew:         cfg.OnlyNew,
		Exclude:         exclude,
		Location:        cfg.Location,
		NoSend:          cfg.NoSend,
		Stdout:          stdout,
		Output:          cfg.Report.Output,
		XMLTV:           cfg.Report.XMLTV,
		MetricsTextfile: cfg.Metrics.Textfile,
	})
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = runner.Run(ctx)
	return err
}

// execute runs the command and maps its error to an exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "epgnotify: %v\n", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, config.ErrInvalidConfig) {
		return exitConfig
	}
	return exitFailed
}
