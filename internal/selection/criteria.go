// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package selection picks the upcoming programs a viewer wants to hear about.
package selection

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/epgnotify/internal/epg"
)

// Criteria is the per-run input of the eligibility checks.
// Build it once per run; it is read-only afterwards.
type Criteria struct {
	Now          time.Time
	Services     []epg.Service
	ChannelTypes []epg.ChannelType
	Exclude      *regexp.Regexp // nil matches nothing
	OnlyNew      bool
}

// Check is a single eligibility rule. It returns false when p must be dropped.
type Check struct {
	Name string
	Fn   func(c *Criteria, p *epg.Program) bool
}

// Checks are evaluated in order; the first failing one decides.
var Checks = []Check{
	{Name: "not_started", Fn: NotStarted},
	{Name: "genre_new", Fn: HasNewGenre},
	{Name: "channel_type", Fn: OnAllowedChannel},
	{Name: "free", Fn: IsFree},
	{Name: "new_marker", Fn: HasNewMarker},
	{Name: "not_excluded", Fn: NotExcluded},
}

// NotStarted passes programs starting at or after Now.
func NotStarted(c *Criteria, p *epg.Program) bool {
	return p.StartAt >= c.Now.UnixMilli()
}

// HasNewGenre passes programs tagged with the first-run genre.
func HasNewGenre(_ *Criteria, p *epg.Program) bool {
	return p.HasGenreLevel(epg.GenreLevelNew)
}

// OnAllowedChannel passes programs whose service is known, has a channel
// descriptor and is received on one of the allowed channel types.
func OnAllowedChannel(c *Criteria, p *epg.Program) bool {
	svc, ok := epg.FindService(c.Services, p.ServiceID, p.NetworkID)
	if !ok || svc.Channel == nil {
		return false
	}
	return slices.Contains(c.ChannelTypes, svc.Channel.Type)
}

// IsFree passes free-to-air programs.
func IsFree(_ *Criteria, p *epg.Program) bool {
	return p.IsFree
}

// HasNewMarker passes programs whose title carries the new-series glyph.
// It always passes unless OnlyNew is set.
func HasNewMarker(c *Criteria, p *epg.Program) bool {
	if !c.OnlyNew {
		return true
	}
	return strings.Contains(p.Name, epg.NewMarker)
}

// NotExcluded drops programs whose title matches the exclusion pattern.
func NotExcluded(c *Criteria, p *epg.Program) bool {
	if c.Exclude == nil {
		return true
	}
	return !c.Exclude.MatchString(p.Name)
}

// MatchResult contains the outcome of the checks against one program.
type MatchResult struct {
	Matched bool
	Reasons []string
}

// Evaluate runs every check against p and stops at the first failure.
// Reasons lists the passed checks, or the single failed one.
func (c *Criteria) Evaluate(p *epg.Program) MatchResult {
	res := MatchResult{Matched: true}
	for _, chk := range Checks {
		if !chk.Fn(c, p) {
			return MatchResult{Matched: false, Reasons: []string{chk.Name + " mismatch"}}
		}
		res.Reasons = append(res.Reasons, chk.Name+" match")
	}
	return res
}

// Eligible reports whether p passes every check.
func (c *Criteria) Eligible(p *epg.Program) bool {
	for _, chk := range Checks {
		if !chk.Fn(c, p) {
			return false
		}
	}
	return true
}
