// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file models a whole graph description and the wire lookups the engine
// performs on it.
package model

import "sort"

// Graph is an immutable graph description.
type Graph struct {
	Name        string `validate:"required,identifier"`
	Description string
	Modules     []Module `validate:"min=1,dive"`
	Wires       []Wire   `validate:"dive"`
}

// Incoming returns the wires targeting a module, in wire sequence order.
func (g *Graph) Incoming(module int) []Wire {
	var out []Wire
	for _, w := range g.Wires {
		if w.Target.Module == module {
			out = append(out, w)
		}
	}
	return out
}

// Outgoing returns the wires whose source is the given endpoint, in wire
// sequence order.
func (g *Graph) Outgoing(src Endpoint) []Wire {
	var out []Wire
	for _, w := range g.Wires {
		if w.Source == src {
			out = append(out, w)
		}
	}
	return out
}

// HasOutgoing reports whether any wire leaves the given endpoint.
func (g *Graph) HasOutgoing(src Endpoint) bool {
	for _, w := range g.Wires {
		if w.Source == src {
			return true
		}
	}
	return false
}

// FanIn returns the target endpoints reached by more than one wire, sorted.
func (g *Graph) FanIn() []Endpoint {
	counts := map[Endpoint]int{}
	for _, w := range g.Wires {
		counts[w.Target]++
	}
	var out []Endpoint
	for ep, n := range counts {
		if n > 1 {
			out = append(out, ep)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Terminal < out[j].Terminal
	})
	return out
}

// InputNames returns the names of the graph's input modules in module order.
// These are the parameters an activation of the graph accepts.
func (g *Graph) InputNames() []string {
	return g.namesOf(KindInput)
}

// OutputNames returns the names of the graph's output modules in module order.
func (g *Graph) OutputNames() []string {
	return g.namesOf(KindOutput)
}

func (g *Graph) namesOf(kind Kind) []string {
	var out []string
	for _, m := range g.Modules {
		if m.Kind() == kind {
			out = append(out, m.Name())
		}
	}
	return out
}
