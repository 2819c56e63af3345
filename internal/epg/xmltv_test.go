// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildXMLTV(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	start := time.Date(2025, 10, 9, 12, 0, 0, 0, time.UTC)
	services := []Service{
		{ServiceID: 1024, NetworkID: 32736, Name: "NHK総合"},
	}
	programs := []Program{
		{
			ID: 1, ServiceID: 1024, NetworkID: 32736,
			StartAt: start.UnixMilli(), Duration: int64(30 * time.Minute / time.Millisecond),
			Name: "🈟ドラマ", Description: "第1話",
			Genres: []Genre{{Lv1: GenreLevelNew}},
		},
		{
			ID: 2, ServiceID: 1024, NetworkID: 32736,
			StartAt: start.Add(time.Hour).UnixMilli(), Duration: int64(time.Hour / time.Millisecond),
			Name: "ニュース",
		},
		{
			ID: 3, ServiceID: 9, NetworkID: 4,
			StartAt: start.UnixMilli(), Duration: 60000,
			Name: "unknown service",
		},
	}

	tv := BuildXMLTV(programs, services, loc)

	require.Len(t, tv.Channels, 2)
	assert.Equal(t, XMLTVChannelID(32736, 1024), tv.Channels[0].ID)
	assert.Equal(t, []string{"NHK総合"}, tv.Channels[0].DisplayName)
	assert.Equal(t, []string{"4.9.epgnotify"}, tv.Channels[1].DisplayName, "unknown services fall back to the id")

	require.Len(t, tv.Programs, 3)
	first := tv.Programs[0]
	assert.Equal(t, "20251009210000 +0900", first.Start)
	assert.Equal(t, "20251009213000 +0900", first.Stop)
	assert.Equal(t, Title{Lang: "ja", Value: "🈟ドラマ"}, first.Title)
	require.NotNil(t, first.Desc)
	assert.Equal(t, "第1話", first.Desc.Value)
	assert.Equal(t, []Title{{Lang: "en", Value: "New"}}, first.Categories)

	assert.Nil(t, tv.Programs[1].Desc)
	assert.Empty(t, tv.Programs[1].Categories)
}

func TestBuildXMLTVEmpty(t *testing.T) {
	tv := BuildXMLTV(nil, nil, nil)
	assert.NotNil(t, tv.Channels)
	assert.NotNil(t, tv.Programs)
	assert.Empty(t, tv.Programs)
}

func TestWriteXMLTVRoundTrip(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tv := BuildXMLTV([]Program{{
		ServiceID: 1, NetworkID: 2, StartAt: start.UnixMilli(), Duration: 1000,
		Name: "A & B <test>",
	}}, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteXMLTV(&buf, tv))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `generator-info-name="epgnotify"`)
	assert.Contains(t, out, "A &amp; B &lt;test&gt;")
	assert.Contains(t, out, `start="20250102030405 +0000"`)

	var decoded TV
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Programs, 1)
	assert.Equal(t, "A & B <test>", decoded.Programs[0].Title.Value)
}
