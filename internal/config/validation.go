// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strings"

	"github.com/ManuGH/epgnotify/internal/validate"
)

var (
	httpSchemes = []string{"http", "https"}
	tlsPolicies = []string{"mandatory", "opportunistic", "none"}
	logFormats  = []string{"json", "console"}
)

// Validate checks cfg before any network access. Delivery settings are only
// required when the report is going to be mailed.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("log_level", "invalid log level (must be: debug, info, warn, error)", cfg.LogLevel)
	}
	v.OneOf("log_format", cfg.LogFormat, logFormats)

	v.URL("mirakurun.base_url", cfg.Mirakurun.BaseURL, httpSchemes)
	v.URL("epgstation.base_url", cfg.EPGStation.BaseURL, httpSchemes)
	v.Positive("mirakurun.timeout", int(cfg.Mirakurun.Timeout))
	v.Positive("epgstation.timeout", int(cfg.EPGStation.Timeout))

	if len(cfg.ChannelTypes) == 0 {
		v.AddError("channel_types", "at least one channel type is required", cfg.ChannelTypes)
	}

	v.File("exclusions", cfg.Exclusions)
	v.File("report.template", cfg.Report.Template)
	v.File("report.html_template", cfg.Report.HTMLTemplate)
	v.ParentDir("report.output", cfg.Report.Output)
	v.ParentDir("report.xmltv", cfg.Report.XMLTV)
	v.ParentDir("metrics.textfile", cfg.Metrics.Textfile)

	if !cfg.NoSend {
		v.NotEmpty("smtp.host", cfg.SMTP.Host)
		v.Port("smtp.port", cfg.SMTP.Port)
		v.OneOf("smtp.tls_policy", cfg.SMTP.TLSPolicy, tlsPolicies)
		v.Positive("smtp.timeout", int(cfg.SMTP.Timeout))
		if cfg.SMTP.Password != "" && cfg.SMTP.Username == "" {
			v.AddError("smtp.username", "username is required when a password is set", "")
		}
		v.Address("envelope.from", cfg.Envelope.From)
		if len(cfg.Envelope.To) == 0 {
			v.AddError("envelope.to", "at least one recipient is required", cfg.Envelope.To)
		}
		for i, to := range cfg.Envelope.To {
			v.Address(fmt.Sprintf("envelope.to[%d]", i), to)
		}
		if strings.TrimSpace(cfg.Envelope.Subject) == "" {
			v.AddError("envelope.subject", "subject cannot be empty", cfg.Envelope.Subject)
		}
	}

	if !v.IsValid() {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, v.Err())
	}
	return nil
}
