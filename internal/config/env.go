// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/epgnotify/internal/log"
	"github.com/rs/zerolog"
)

// Environment keys understood by the loader.
const (
	EnvMirakurunURL  = "EPGNOTIFY_MIRAKURUN_URL"
	EnvEPGStationURL = "EPGNOTIFY_EPGSTATION_URL"
	EnvChannelTypes  = "EPGNOTIFY_CHANNEL_TYPES"
	EnvSMTPPassword  = "EPGNOTIFY_SMTP_PASSWORD"
	EnvLogLevel      = "EPGNOTIFY_LOG_LEVEL"
	EnvOnlyNew       = "EPGNOTIFY_ONLY_NEW"
	EnvTimeout       = "EPGNOTIFY_TIMEOUT"
)

type envLookupFunc func(key string) (string, bool)

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	return strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password")
}

// parseString reads an environment variable, falling back to defaultValue when
// it is unset or empty. The chosen source is logged; sensitive values are not.
func parseString(logger zerolog.Logger, lookup envLookupFunc, key, defaultValue string) string {
	if value, exists := lookup(key); exists {
		switch {
		case value == "":
			logger.Debug().
				Str("key", key).
				Str("source", "default").
				Msg("using default value (environment variable is empty)")
			return defaultValue
		case isSensitiveKey(key):
			logger.Debug().
				Str("key", key).
				Str("source", "environment").
				Bool("sensitive", true).
				Msg("using environment variable")
		default:
			logger.Debug().
				Str("key", key).
				Str("value", value).
				Str("source", "environment").
				Msg("using environment variable")
		}
		return value
	}
	return defaultValue
}

// parseBool accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
// Unparseable values keep the default and log a warning.
func parseBool(logger zerolog.Logger, lookup envLookupFunc, key string, defaultValue bool) bool {
	v, ok := lookup(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes":
		return true
	case "no":
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Bool("value", b).
		Str("source", "environment").
		Msg("using environment variable")
	return b
}

// parseDuration reads a Go duration string such as "5s".
func parseDuration(logger zerolog.Logger, lookup envLookupFunc, key string, defaultValue time.Duration) time.Duration {
	v, ok := lookup(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	return d
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envLogger() zerolog.Logger {
	return log.WithComponent("config")
}
