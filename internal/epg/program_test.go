// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProgram = `{
  "id": 327360102400123,
  "eventId": 123,
  "serviceId": 1024,
  "networkId": 32736,
  "startAt": 1760000000000,
  "duration": 1800000,
  "isFree": true,
  "name": "🈟ドラマ「例」第1話",
  "genres": [{"lv1": 3, "lv2": 0, "un1": 15, "un2": 15}, {"lv1": 7, "lv2": 0, "un1": 15, "un2": 15}],
  "extended": {"出演者": "山田太郎", "あらすじ": "第一話", "番組内容": "説明"}
}`

func TestProgramDecode(t *testing.T) {
	var p Program
	require.NoError(t, json.Unmarshal([]byte(sampleProgram), &p))

	assert.Equal(t, int64(327360102400123), p.ID)
	assert.Equal(t, 1024, p.ServiceID)
	assert.Equal(t, 32736, p.NetworkID)
	assert.True(t, p.IsFree)
	assert.Len(t, p.Genres, 2)
	assert.Equal(t, GenreLevelNew, p.Genres[1].Lv1)
	assert.Equal(t, time.UnixMilli(1760000000000), p.Start())
	assert.Equal(t, p.Start().Add(30*time.Minute), p.End())

	// payload order is kept
	require.Len(t, p.Extended, 3)
	assert.Equal(t, "出演者", p.Extended[0].Title)
	assert.Equal(t, "あらすじ", p.Extended[1].Title)
	assert.Equal(t, "番組内容", p.Extended[2].Title)
	assert.Equal(t, "第一話", p.Extended[1].Value)
}

func TestExtendedDuplicateKey(t *testing.T) {
	var e Extended
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &e))
	assert.Equal(t, Extended{{Title: "a", Value: "3"}, {Title: "b", Value: "2"}}, e)
}

func TestProgramDecodeWithoutExtended(t *testing.T) {
	var p Program
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"startAt":0,"duration":0,"isFree":false}`), &p))
	assert.Nil(t, p.Extended)
	assert.Empty(t, p.Genres)

	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"extended":null}`), &p))
	assert.Nil(t, p.Extended)
}

func TestExtendedRejectsNonObject(t *testing.T) {
	var e Extended
	assert.Error(t, json.Unmarshal([]byte(`["a","b"]`), &e))
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &e))
}

func TestExtendedMarshalKeepsOrder(t *testing.T) {
	e := Extended{{Title: "b", Value: "1"}, {Title: "a", Value: "2"}}
	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"1","a":"2"}`, string(out))

	out, err = json.Marshal(Program{ID: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "extended")
}

func TestHasGenreLevel(t *testing.T) {
	p := Program{Genres: []Genre{{Lv1: 0x0}, {Lv1: GenreLevelNew, Lv2: 0x1}}}
	assert.True(t, p.HasGenreLevel(GenreLevelNew))
	assert.False(t, p.HasGenreLevel(0x3))
	assert.False(t, Program{}.HasGenreLevel(GenreLevelNew))
}
