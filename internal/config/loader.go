// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/epgnotify/internal/epg"
	"github.com/ManuGH/epgnotify/internal/report"
	"gopkg.in/yaml.v3"
)

// Defaults applied before the file is read.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultSMTPPort  = 587
	DefaultSubject   = "新番組のお知らせ"
	DefaultTimezone  = report.DefaultTimezone
	DefaultTLSPolicy = "opportunistic"
)

// DefaultChannelTypes is the allowlist used when nothing is configured.
var DefaultChannelTypes = []string{string(epg.ChannelGR), string(epg.ChannelBS)}

// Loader resolves an AppConfig from defaults, an optional file, the
// environment and command-line overrides, in that order.
type Loader struct {
	configPath string
	version    string
	overrides  Overrides
	lookupEnv  envLookupFunc
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath: configPath,
		version:    version,
		lookupEnv:  os.LookupEnv,
	}
}

// WithOverrides sets the command-line overrides applied after the environment.
func (l *Loader) WithOverrides(o Overrides) *Loader {
	l.overrides = o
	return l
}

// Version returns the build version the loader was created with.
func (l *Loader) Version() string { return l.version }

// Load loads configuration with precedence: overrides > ENV > File > Defaults.
// Every failure wraps ErrInvalidConfig.
func (l *Loader) Load() (AppConfig, error) {
	fc := defaultFileConfig()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return AppConfig{}, fmt.Errorf("%w: load config file: %w", ErrInvalidConfig, err)
		}
		mergeFile(&fc, fileCfg)
	}

	l.mergeEnv(&fc)
	l.mergeOverrides(&fc)

	cfg, err := resolve(fc)
	if err != nil {
		return AppConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.NoSend = l.overrides.NoSend

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// loadFile decodes path strictly. JSON files are accepted since JSON is YAML.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func defaultFileConfig() FileConfig {
	onlyNew := true
	html := false
	return FileConfig{
		LogLevel:     "info",
		LogFormat:    "json",
		Mirakurun:    UpstreamConfig{Timeout: DefaultTimeout},
		EPGStation:   UpstreamConfig{Timeout: DefaultTimeout},
		ChannelTypes: append([]string(nil), DefaultChannelTypes...),
		OnlyNew:      &onlyNew,
		Report: ReportConfig{
			HTML:     &html,
			Timezone: DefaultTimezone,
		},
		SMTP: SMTPConfig{
			Port:      DefaultSMTPPort,
			TLSPolicy: DefaultTLSPolicy,
			Timeout:   DefaultTimeout,
		},
		Envelope: EnvelopeConfig{Subject: DefaultSubject},
	}
}

// mergeFile copies every value the file sets over dst.
func mergeFile(dst *FileConfig, src *FileConfig) {
	setString(&dst.LogLevel, src.LogLevel)
	setString(&dst.LogFormat, src.LogFormat)
	mergeUpstream(&dst.Mirakurun, src.Mirakurun)
	mergeUpstream(&dst.EPGStation, src.EPGStation)
	if len(src.ChannelTypes) > 0 {
		dst.ChannelTypes = append([]string(nil), src.ChannelTypes...)
	}
	if src.OnlyNew != nil {
		v := *src.OnlyNew
		dst.OnlyNew = &v
	}
	setString(&dst.Exclusions, src.Exclusions)

	setString(&dst.Report.Template, src.Report.Template)
	setString(&dst.Report.HTMLTemplate, src.Report.HTMLTemplate)
	setString(&dst.Report.Timezone, src.Report.Timezone)
	setString(&dst.Report.Output, src.Report.Output)
	setString(&dst.Report.XMLTV, src.Report.XMLTV)
	if src.Report.HTML != nil {
		v := *src.Report.HTML
		dst.Report.HTML = &v
	}

	setString(&dst.SMTP.Host, src.SMTP.Host)
	if src.SMTP.Port != 0 {
		dst.SMTP.Port = src.SMTP.Port
	}
	setString(&dst.SMTP.Name, src.SMTP.Name)
	setString(&dst.SMTP.Username, src.SMTP.Username)
	setString(&dst.SMTP.Password, src.SMTP.Password)
	setString(&dst.SMTP.TLSPolicy, src.SMTP.TLSPolicy)
	if src.SMTP.Timeout != 0 {
		dst.SMTP.Timeout = src.SMTP.Timeout
	}

	setString(&dst.Envelope.From, src.Envelope.From)
	if len(src.Envelope.To) > 0 {
		dst.Envelope.To = append([]string(nil), src.Envelope.To...)
	}
	setString(&dst.Envelope.Subject, src.Envelope.Subject)

	setString(&dst.Metrics.Textfile, src.Metrics.Textfile)
}

func mergeUpstream(dst *UpstreamConfig, src UpstreamConfig) {
	setString(&dst.BaseURL, src.BaseURL)
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
}

func (l *Loader) mergeEnv(fc *FileConfig) {
	logger := envLogger()
	lookup := l.lookupEnv

	fc.Mirakurun.BaseURL = parseString(logger, lookup, EnvMirakurunURL, fc.Mirakurun.BaseURL)
	fc.EPGStation.BaseURL = parseString(logger, lookup, EnvEPGStationURL, fc.EPGStation.BaseURL)
	if v := parseString(logger, lookup, EnvChannelTypes, ""); v != "" {
		fc.ChannelTypes = splitList(v)
	}
	fc.SMTP.Password = parseString(logger, lookup, EnvSMTPPassword, fc.SMTP.Password)
	fc.LogLevel = parseString(logger, lookup, EnvLogLevel, fc.LogLevel)

	onlyNew := parseBool(logger, lookup, EnvOnlyNew, *fc.OnlyNew)
	fc.OnlyNew = &onlyNew

	fc.Mirakurun.Timeout = parseDuration(logger, lookup, EnvTimeout, fc.Mirakurun.Timeout)
	fc.EPGStation.Timeout = parseDuration(logger, lookup, EnvTimeout, fc.EPGStation.Timeout)
}

func (l *Loader) mergeOverrides(fc *FileConfig) {
	o := l.overrides
	setString(&fc.Mirakurun.BaseURL, o.MirakurunURL)
	setString(&fc.EPGStation.BaseURL, o.EPGStationURL)
	if o.ChannelTypes != "" {
		fc.ChannelTypes = splitList(o.ChannelTypes)
	}
	if o.OnlyNew != nil {
		v := *o.OnlyNew
		fc.OnlyNew = &v
	}
	setString(&fc.Exclusions, o.Exclusions)
	setString(&fc.Report.Template, o.Template)
	setString(&fc.Report.Output, o.Output)
	setString(&fc.Report.XMLTV, o.XMLTV)
	if o.HTML != nil {
		v := *o.HTML
		fc.Report.HTML = &v
	}
	setString(&fc.LogLevel, o.LogLevel)
	setString(&fc.LogFormat, o.LogFormat)
}

// resolve converts the merged file view into typed values.
func resolve(fc FileConfig) (AppConfig, error) {
	types, err := epg.ParseChannelTypes(fc.ChannelTypes)
	if err != nil {
		return AppConfig{}, err
	}
	loc, err := time.LoadLocation(fc.Report.Timezone)
	if err != nil {
		return AppConfig{}, fmt.Errorf("report.timezone: %w", err)
	}
	return AppConfig{
		LogLevel:     strings.ToLower(fc.LogLevel),
		LogFormat:    strings.ToLower(fc.LogFormat),
		Mirakurun:    fc.Mirakurun,
		EPGStation:   fc.EPGStation,
		ChannelTypes: types,
		OnlyNew:      *fc.OnlyNew,
		Exclusions:   fc.Exclusions,
		Report:       fc.Report,
		HTML:         fc.Report.HTML != nil && *fc.Report.HTML,
		Location:     loc,
		SMTP:         fc.SMTP,
		Envelope:     fc.Envelope,
		Metrics:      fc.Metrics,
	}, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
