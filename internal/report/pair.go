// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package report turns selected programs into the notification body.
package report

import (
	"time"

	"github.com/ManuGH/epgnotify/internal/epg"
)

// DefaultTimezone is the zone report timestamps are shown in.
const DefaultTimezone = "Asia/Tokyo"

// weekdays are the Japanese short weekday names, Sunday first.
var weekdays = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// FormatTime renders t as "01/02 (曜) 15:04" in loc.
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return t.Format("01/02") + " (" + weekdays[t.Weekday()] + ") " + t.Format("15:04")
}

// Reservations answers whether a program already has a recording scheduled.
type Reservations interface {
	HasProgram(programID int64) bool
}

// RenderPair is a selected program joined with everything the template shows.
type RenderPair struct {
	Program  epg.Program
	Service  *epg.Service // nil when the service is unknown
	StartAt  string
	EndAt    string
	Reserved bool
	Extended []epg.ExtendedField
}

// PrepareRenderPairs builds one RenderPair per program, in input order.
// Missing services, reservations or extended data degrade to empty values.
func PrepareRenderPairs(programs []epg.Program, reserves Reservations, services []epg.Service, loc *time.Location) []RenderPair {
	out := make([]RenderPair, 0, len(programs))
	for _, p := range programs {
		pair := RenderPair{
			Program:  p,
			StartAt:  FormatTime(p.Start(), loc),
			EndAt:    FormatTime(p.End(), loc),
			Extended: []epg.ExtendedField{},
		}
		if svc, ok := epg.FindService(services, p.ServiceID, p.NetworkID); ok {
			pair.Service = svc
		}
		if reserves != nil {
			pair.Reserved = reserves.HasProgram(p.ID)
		}
		if len(p.Extended) > 0 {
			pair.Extended = append(pair.Extended, p.Extended...)
		}
		out = append(out, pair)
	}
	return out
}

// CountReserved returns how many pairs already have a reservation.
func CountReserved(pairs []RenderPair) int {
	n := 0
	for _, p := range pairs {
		if p.Reserved {
			n++
		}
	}
	return n
}
