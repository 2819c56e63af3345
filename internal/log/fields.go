// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService = "service"
	FieldVersion = "version"
	FieldRunID   = "run_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldUpstream  = "upstream"

	// Domain fields
	FieldProgramID   = "program_id"
	FieldProgramName = "program_name"
	FieldServiceID   = "service_id"
	FieldNetworkID   = "network_id"
	FieldReason      = "reason"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)
