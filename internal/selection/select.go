// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

import (
	"sort"

	"github.com/ManuGH/epgnotify/internal/epg"
)

// Select returns the eligible programs ordered by start time.
// Programs starting at the same instant keep their input order.
// The input slice is not modified.
func Select(c *Criteria, programs []epg.Program) []epg.Program {
	out := make([]epg.Program, 0)
	for i := range programs {
		if c.Eligible(&programs[i]) {
			out = append(out, programs[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartAt < out[j].StartAt
	})
	return out
}

// Drop is a program that failed a check, with the check that failed it.
type Drop struct {
	Program epg.Program
	Reason  string
}

// Explain is Select plus the reason every other program was dropped.
// It costs one extra slice and is meant for debug logging.
func Explain(c *Criteria, programs []epg.Program) ([]epg.Program, []Drop) {
	out := make([]epg.Program, 0)
	var drops []Drop
	for i := range programs {
		res := c.Evaluate(&programs[i])
		if res.Matched {
			out = append(out, programs[i])
			continue
		}
		drops = append(drops, Drop{Program: programs[i], Reason: res.Reasons[0]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartAt < out[j].StartAt
	})
	return out, drops
}
