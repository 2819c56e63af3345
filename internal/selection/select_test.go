// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/epgnotify/internal/epg"
)

var testNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func testServices() []epg.Service {
	return []epg.Service{
		{ServiceID: 1024, NetworkID: 32736, Name: "NHK G", Channel: &epg.Channel{Type: epg.ChannelGR, Channel: "27"}},
		{ServiceID: 101, NetworkID: 4, Name: "NHK BS", Channel: &epg.Channel{Type: epg.ChannelBS, Channel: "BS15_0"}},
		{ServiceID: 55, NetworkID: 7, Name: "CS Movie", Channel: &epg.Channel{Type: epg.ChannelCS, Channel: "CS4"}},
		{ServiceID: 77, NetworkID: 32736, Name: "No descriptor"},
	}
}

func testCriteria(t *testing.T) *Criteria {
	t.Helper()
	re, err := CompileExclusions([]string{"再放送", "(字)"})
	require.NoError(t, err)
	return &Criteria{
		Now:          testNow,
		Services:     testServices(),
		ChannelTypes: []epg.ChannelType{epg.ChannelGR, epg.ChannelBS},
		Exclude:      re,
		OnlyNew:      true,
	}
}

// eligibleProgram passes every check of testCriteria.
func eligibleProgram() epg.Program {
	return epg.Program{
		ID:        1,
		ServiceID: 1024,
		NetworkID: 32736,
		StartAt:   testNow.Add(time.Hour).UnixMilli(),
		Duration:  30 * 60 * 1000,
		IsFree:    true,
		Name:      "🈟アニメ「テスト」",
		Genres:    []epg.Genre{{Lv1: 7, Lv2: 0}},
	}
}

func TestEligibilityChecks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Criteria, p *epg.Program)
		want   bool
		reason string
	}{
		{"all checks pass", func(*Criteria, *epg.Program) {}, true, ""},

		{"starts exactly now", func(c *Criteria, p *epg.Program) { p.StartAt = c.Now.UnixMilli() }, true, ""},
		{"started one second ago", func(c *Criteria, p *epg.Program) { p.StartAt = c.Now.Add(-time.Second).UnixMilli() }, false, "not_started mismatch"},

		{"new genre among others", func(_ *Criteria, p *epg.Program) { p.Genres = []epg.Genre{{Lv1: 3}, {Lv1: 7}} }, true, ""},
		{"no new genre", func(_ *Criteria, p *epg.Program) { p.Genres = []epg.Genre{{Lv1: 3}} }, false, "genre_new mismatch"},
		{"no genres at all", func(_ *Criteria, p *epg.Program) { p.Genres = nil }, false, "genre_new mismatch"},

		{"allowed BS service", func(_ *Criteria, p *epg.Program) { p.ServiceID, p.NetworkID = 101, 4 }, true, ""},
		{"disallowed CS service", func(_ *Criteria, p *epg.Program) { p.ServiceID, p.NetworkID = 55, 7 }, false, "channel_type mismatch"},
		{"unknown service", func(_ *Criteria, p *epg.Program) { p.ServiceID, p.NetworkID = 999, 1 }, false, "channel_type mismatch"},
		{"service id on wrong network", func(_ *Criteria, p *epg.Program) { p.ServiceID, p.NetworkID = 1024, 4 }, false, "channel_type mismatch"},
		{"service without channel descriptor", func(_ *Criteria, p *epg.Program) { p.ServiceID, p.NetworkID = 77, 32736 }, false, "channel_type mismatch"},
		{"empty allowlist", func(c *Criteria, _ *epg.Program) { c.ChannelTypes = nil }, false, "channel_type mismatch"},

		{"pay program", func(_ *Criteria, p *epg.Program) { p.IsFree = false }, false, "free mismatch"},

		{"missing new marker", func(_ *Criteria, p *epg.Program) { p.Name = "アニメ「テスト」" }, false, "new_marker mismatch"},
		{"missing new marker with only-new off", func(c *Criteria, p *epg.Program) {
			c.OnlyNew = false
			p.Name = "アニメ「テスト」"
		}, true, ""},
		{"marker in the middle", func(_ *Criteria, p *epg.Program) { p.Name = "アニメ🈟テスト" }, true, ""},

		{"excluded phrase", func(_ *Criteria, p *epg.Program) { p.Name = "🈟ドラマ(再放送)" }, false, "not_excluded mismatch"},
		{"metacharacters matched literally", func(_ *Criteria, p *epg.Program) { p.Name = "🈟映画(字)" }, false, "not_excluded mismatch"},
		{"metacharacters not treated as regexp", func(_ *Criteria, p *epg.Program) { p.Name = "🈟映画字" }, true, ""},
		{"nil exclusion pattern", func(c *Criteria, p *epg.Program) {
			c.Exclude = nil
			p.Name = "🈟ドラマ(再放送)"
		}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCriteria(t)
			p := eligibleProgram()
			tt.mutate(c, &p)

			assert.Equal(t, tt.want, c.Eligible(&p))

			res := c.Evaluate(&p)
			assert.Equal(t, tt.want, res.Matched)
			if tt.want {
				assert.Len(t, res.Reasons, len(Checks))
			} else {
				assert.Equal(t, []string{tt.reason}, res.Reasons)
			}

			got := Select(c, []epg.Program{p})
			if tt.want {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestSelectOrdersByStartStable(t *testing.T) {
	c := testCriteria(t)
	base := eligibleProgram()

	mk := func(id int64, offset time.Duration) epg.Program {
		p := base
		p.ID = id
		p.StartAt = testNow.Add(offset).UnixMilli()
		return p
	}

	programs := []epg.Program{
		mk(1, 3*time.Hour),
		mk(2, time.Hour),
		mk(3, 2*time.Hour),
		mk(4, time.Hour),
		mk(5, -time.Hour), // past, dropped
		mk(6, time.Hour),
		mk(7, 0),
	}
	input := append([]epg.Program(nil), programs...)

	got := Select(c, programs)

	ids := make([]int64, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{7, 2, 4, 6, 3, 1}, ids)
	assert.Equal(t, input, programs, "input must not be reordered")

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].StartAt, got[i].StartAt)
	}
}

func TestSelectEmpty(t *testing.T) {
	c := testCriteria(t)

	got := Select(c, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	p := eligibleProgram()
	p.IsFree = false
	got = Select(c, []epg.Program{p})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExplain(t *testing.T) {
	c := testCriteria(t)

	keep := eligibleProgram()
	pay := eligibleProgram()
	pay.ID = 2
	pay.IsFree = false
	old := eligibleProgram()
	old.ID = 3
	old.StartAt = testNow.Add(-time.Minute).UnixMilli()

	selected, drops := Explain(c, []epg.Program{pay, keep, old})
	require.Len(t, selected, 1)
	assert.Equal(t, int64(1), selected[0].ID)

	require.Len(t, drops, 2)
	assert.Equal(t, int64(2), drops[0].Program.ID)
	assert.Equal(t, "free mismatch", drops[0].Reason)
	assert.Equal(t, int64(3), drops[1].Program.ID)
	assert.Equal(t, "not_started mismatch", drops[1].Reason)

	assert.Equal(t, Select(c, []epg.Program{pay, keep, old}), selected)
}
