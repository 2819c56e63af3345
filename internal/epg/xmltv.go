// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

// XMLTVGenerator is written to the generator-info-name attribute.
const XMLTVGenerator = "epgnotify"

type TV struct {
	XMLName   xml.Name       `xml:"tv"`
	Generator string         `xml:"generator-info-name,attr,omitempty"`
	Channels  []XMLTVChannel `xml:"channel"`
	Programs  []Programme    `xml:"programme"`
}

// XMLTVChannel is the XMLTV channel element. It maps one-to-one onto a Service.
type XMLTVChannel struct {
	ID          string   `xml:"id,attr"`
	DisplayName []string `xml:"display-name"`
}

type Programme struct {
	Start      string  `xml:"start,attr"`
	Stop       string  `xml:"stop,attr"`
	Channel    string  `xml:"channel,attr"`
	Title      Title   `xml:"title"`
	Desc       *Title  `xml:"desc,omitempty"`
	Categories []Title `xml:"category,omitempty"`
}

type Title struct {
	// Lang contains the language code for the title (optional).
	Lang string `xml:"lang,attr,omitempty"`
	// Value is the character data of the title element.
	Value string `xml:",chardata"`
}

const xmltvLang = "ja"

// XMLTVChannelID is the stable channel id for a (network, service) pair.
func XMLTVChannelID(networkID, serviceID int) string {
	return fmt.Sprintf("%d.%d.epgnotify", networkID, serviceID)
}

func formatXMLTVTime(t time.Time) string {
	return t.Format("20060102150405 -0700")
}

// BuildXMLTV converts programs into an XMLTV document. Only services that
// carry at least one of the programs are listed, in order of first use.
// Times are rendered in loc (UTC when nil).
func BuildXMLTV(programs []Program, services []Service, loc *time.Location) TV {
	if loc == nil {
		loc = time.UTC
	}
	tv := TV{
		Generator: XMLTVGenerator,
		Channels:  []XMLTVChannel{},
		Programs:  make([]Programme, 0, len(programs)),
	}

	seen := make(map[string]bool)
	for _, p := range programs {
		id := XMLTVChannelID(p.NetworkID, p.ServiceID)
		if !seen[id] {
			seen[id] = true
			name := id
			if svc, ok := FindService(services, p.ServiceID, p.NetworkID); ok && svc.Name != "" {
				name = svc.Name
			}
			tv.Channels = append(tv.Channels, XMLTVChannel{ID: id, DisplayName: []string{name}})
		}

		prog := Programme{
			Start:   formatXMLTVTime(p.Start().In(loc)),
			Stop:    formatXMLTVTime(p.End().In(loc)),
			Channel: id,
			Title:   Title{Lang: xmltvLang, Value: p.Name},
		}
		if p.Description != "" {
			prog.Desc = &Title{Lang: xmltvLang, Value: p.Description}
		}
		if p.HasGenreLevel(GenreLevelNew) {
			prog.Categories = append(prog.Categories, Title{Lang: "en", Value: "New"})
		}
		tv.Programs = append(tv.Programs, prog)
	}
	return tv
}

// WriteXMLTV encodes tv with an XML declaration.
func WriteXMLTV(w io.Writer, tv TV) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(tv); err != nil {
		return fmt.Errorf("encode xmltv: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
