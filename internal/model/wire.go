// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file models wires and their endpoints.
//
// Why a text form for endpoints?
//
// Graph files and the command line both need a compact way to name one
// terminal of one module. "<index>.<terminal>" (for example "0.out") is short
// enough to write by hand and trivially parsed.
package model

import (
	"fmt"
	"regexp"
	"strconv"
)

var endpointPattern = regexp.MustCompile(`^(\d+)\.([A-Za-z_][A-Za-z0-9_-]*)$`)

// Endpoint names one terminal of one module.
type Endpoint struct {
	Module   int    `validate:"gte=0"`
	Terminal string `validate:"required,identifier"`
}

// Wire connects a source terminal to a target terminal.
type Wire struct {
	Source Endpoint
	Target Endpoint
}

// ParseEndpoint parses the "<index>.<terminal>" form.
func ParseEndpoint(s string) (Endpoint, error) {
	m := endpointPattern.FindStringSubmatch(s)
	if m == nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: expected <module index>.<terminal>", s)
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", s, err)
	}
	return Endpoint{Module: idx, Terminal: m[2]}, nil
}

// String renders the endpoint in its text form.
func (e Endpoint) String() string {
	return fmt.Sprintf("%d.%s", e.Module, e.Terminal)
}

// String renders the wire as "source -> target".
func (w Wire) String() string {
	return w.Source.String() + " -> " + w.Target.String()
}
