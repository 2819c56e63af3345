// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChannelType is returned for channel type names outside GR/BS/CS/SKY.
var ErrInvalidChannelType = errors.New("invalid channel type")

// ChannelType is the tuner category a service is received on.
type ChannelType string

const (
	ChannelGR  ChannelType = "GR"  // terrestrial
	ChannelBS  ChannelType = "BS"  // broadcasting satellite
	ChannelCS  ChannelType = "CS"  // communication satellite
	ChannelSKY ChannelType = "SKY" // SKY PerfecTV! premium
)

// ChannelTypes lists every known channel type in canonical order.
var ChannelTypes = []ChannelType{ChannelGR, ChannelBS, ChannelCS, ChannelSKY}

// ParseChannelType maps a case-insensitive name to a ChannelType.
func ParseChannelType(name string) (ChannelType, error) {
	ct := ChannelType(strings.ToUpper(strings.TrimSpace(name)))
	for _, known := range ChannelTypes {
		if ct == known {
			return ct, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChannelType, name)
}

// ParseChannelTypes parses a list of names, failing on the first unknown one.
func ParseChannelTypes(names []string) ([]ChannelType, error) {
	out := make([]ChannelType, 0, len(names))
	for _, n := range names {
		ct, err := ParseChannelType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, nil
}

// Channel is the tuner channel descriptor of a service.
type Channel struct {
	Type    ChannelType `json:"type"`
	Channel string      `json:"channel"`
	Name    string      `json:"name,omitempty"`
}

// Service is a receivable station. (ServiceID, NetworkID) is its natural key.
type Service struct {
	ID        int64    `json:"id"`
	ServiceID int      `json:"serviceId"`
	NetworkID int      `json:"networkId"`
	Name      string   `json:"name"`
	Type      int      `json:"type,omitempty"`
	RemoteKey int      `json:"remoteControlKeyId,omitempty"`
	Channel   *Channel `json:"channel,omitempty"`
}

// FindService returns the service matching both serviceID and networkID.
func FindService(services []Service, serviceID, networkID int) (*Service, bool) {
	for i := range services {
		if services[i].ServiceID == serviceID && services[i].NetworkID == networkID {
			return &services[i], true
		}
	}
	return nil, false
}
