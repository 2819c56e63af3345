// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/epgnotify/internal/epg"
)

// FileConfig represents the YAML configuration structure
type FileConfig struct {
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"`

	Mirakurun    UpstreamConfig `yaml:"mirakurun"`
	EPGStation   UpstreamConfig `yaml:"epgstation"`
	ChannelTypes []string       `yaml:"channel_types,omitempty"`
	OnlyNew      *bool          `yaml:"only_new,omitempty"`
	Exclusions   string         `yaml:"exclusions,omitempty"` // path to the newline-delimited phrase list

	Report   ReportConfig   `yaml:"report,omitempty"`
	SMTP     SMTPConfig     `yaml:"smtp,omitempty"`
	Envelope EnvelopeConfig `yaml:"envelope,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
}

// UpstreamConfig holds the base URL and timeout of one upstream API.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ReportConfig controls rendering.
type ReportConfig struct {
	Template     string `yaml:"template,omitempty"`      // text template path; empty uses the built-in one
	HTML         *bool  `yaml:"html,omitempty"`          // also render and send a rich variant
	HTMLTemplate string `yaml:"html_template,omitempty"` // html template path; empty uses the built-in one
	Timezone     string `yaml:"timezone,omitempty"`
	Output       string `yaml:"output,omitempty"` // also write the text report here
	XMLTV        string `yaml:"xmltv,omitempty"`  // also write the selection as XMLTV here
}

// SMTPConfig is the mail transport.
type SMTPConfig struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port,omitempty"`
	Name      string        `yaml:"name,omitempty"` // HELO name
	Username  string        `yaml:"username,omitempty"`
	Password  string        `yaml:"password,omitempty"`
	TLSPolicy string        `yaml:"tls_policy,omitempty"` // mandatory|opportunistic|none
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// EnvelopeConfig is the static mail envelope.
type EnvelopeConfig struct {
	From    string   `yaml:"from"`
	To      []string `yaml:"to"`
	Subject string   `yaml:"subject,omitempty"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// AppConfig is the resolved configuration a run works with.
type AppConfig struct {
	LogLevel  string
	LogFormat string

	Mirakurun  UpstreamConfig
	EPGStation UpstreamConfig

	ChannelTypes []epg.ChannelType
	OnlyNew      bool
	Exclusions   string

	Report   ReportConfig
	HTML     bool
	Location *time.Location

	SMTP     SMTPConfig
	Envelope EnvelopeConfig
	Metrics  MetricsConfig

	// NoSend prints the report instead of mailing it. CLI only.
	NoSend bool
}

// Overrides are command-line values applied after file and environment.
// Nil or empty fields leave the loaded value untouched.
type Overrides struct {
	MirakurunURL  string
	EPGStationURL string
	ChannelTypes  string // comma separated
	OnlyNew       *bool
	Exclusions    string
	Template      string
	Output        string
	XMLTV         string
	HTML          *bool
	LogLevel      string
	LogFormat     string
	NoSend        bool
}
