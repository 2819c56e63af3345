// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config resolves the run configuration from defaults, a strict YAML
// file, EPGNOTIFY_* environment variables and command-line overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/ManuGH/epgnotify/internal/netutil"
	"github.com/rs/zerolog"
)

const maskedValue = "***"

// Masked returns a copy of cfg with secrets replaced and URL credentials
// stripped, for logging.
func (cfg AppConfig) Masked() AppConfig {
	out := cfg
	if out.SMTP.Password != "" {
		out.SMTP.Password = maskedValue
	}
	out.Mirakurun.BaseURL = netutil.MaskURL(out.Mirakurun.BaseURL)
	out.EPGStation.BaseURL = netutil.MaskURL(out.EPGStation.BaseURL)
	return out
}

// String renders the configuration with secrets masked.
func (cfg AppConfig) String() string {
	m := cfg.Masked()
	types := make([]string, len(m.ChannelTypes))
	for i, t := range m.ChannelTypes {
		types[i] = string(t)
	}
	loc := "UTC"
	if m.Location != nil {
		loc = m.Location.String()
	}
	return fmt.Sprintf("mirakurun=%s epgstation=%s channel_types=%s only_new=%t exclusions=%q "+
		"timezone=%s html=%t smtp=%s@%s:%d password=%s to=%s no_send=%t",
		m.Mirakurun.BaseURL, m.EPGStation.BaseURL, strings.Join(types, ","), m.OnlyNew, m.Exclusions,
		loc, m.HTML, m.SMTP.Username, m.SMTP.Host, m.SMTP.Port, m.SMTP.Password,
		strings.Join(m.Envelope.To, ","), m.NoSend)
}

// MarshalZerologObject logs the effective configuration without secrets.
func (cfg AppConfig) MarshalZerologObject(e *zerolog.Event) {
	m := cfg.Masked()
	types := make([]string, len(m.ChannelTypes))
	for i, t := range m.ChannelTypes {
		types[i] = string(t)
	}
	e.Str("mirakurun", m.Mirakurun.BaseURL).
		Str("epgstation", m.EPGStation.BaseURL).
		Strs("channel_types", types).
		Bool("only_new", m.OnlyNew).
		Str("exclusions", m.Exclusions).
		Bool("html", m.HTML).
		Str("smtp_host", m.SMTP.Host).
		Str("smtp_password", m.SMTP.Password).
		Bool("no_send", m.NoSend)
}
