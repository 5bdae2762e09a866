// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file models a single module record and typed access to its static
// parameters.
//
// Why keep params as raw cty values?
//
// Static parameters are design-time configuration whose shape depends on the
// module kind. Keeping them as cty values lets HCL and YAML sources share one
// representation, while the accessors below give the engine the handful of
// typed views it actually needs.
package model

import (
	"github.com/zclconf/go-cty/cty"
)

// Static parameter names.
const (
	ParamName    = "name"
	ParamDefault = "default"
	ParamCode    = "code"
	ParamParams  = "params"
	ParamGraph   = "graph"
	ParamText    = "text"
)

// Module is one module instance in a graph. Its identity is its index in
// Graph.Modules.
type Module struct {
	Type   string `validate:"required,identifier"`
	Params map[string]cty.Value
}

// CodeBody is the static code of a code module together with its ordered
// parameter names. Parameter names double as the module's input terminals.
type CodeBody struct {
	Source string
	Params []string
}

// Position returns the index of a parameter name, or -1.
func (b CodeBody) Position(name string) int {
	for i, p := range b.Params {
		if p == name {
			return i
		}
	}
	return -1
}

// Kind returns the execution kind derived from the module type.
func (m Module) Kind() Kind {
	return KindOf(m.Type)
}

// Param returns a static parameter, if set and not null.
func (m Module) Param(name string) (cty.Value, bool) {
	v, ok := m.Params[name]
	if !ok || v.IsNull() {
		return cty.NilVal, false
	}
	return v, true
}

// Name returns the "name" parameter of input and output modules.
func (m Module) Name() string {
	return m.stringParam(ParamName)
}

// Default returns the static default value of an input module.
func (m Module) Default() (cty.Value, bool) {
	return m.Param(ParamDefault)
}

// CodeBody returns the static code of a code module.
func (m Module) CodeBody() CodeBody {
	return CodeBody{
		Source: m.stringParam(ParamCode),
		Params: m.stringListParam(ParamParams),
	}
}

// Subgraph returns the name of the sub-graph a composed module activates:
// the "graph" parameter when set, the type name otherwise.
func (m Module) Subgraph() string {
	if name := m.stringParam(ParamGraph); name != "" {
		return name
	}
	return m.Type
}

// Defaults returns the default parameter values a composed module passes to
// its sub-graph. The returned map is a fresh copy.
func (m Module) Defaults() map[string]cty.Value {
	out := map[string]cty.Value{}
	v, ok := m.Param(ParamParams)
	if !ok || !v.IsKnown() {
		return out
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return out
	}
	for it := v.ElementIterator(); it.Next(); {
		k, val := it.Element()
		out[k.AsString()] = val
	}
	return out
}

func (m Module) stringParam(name string) string {
	v, ok := m.Param(name)
	if !ok || !v.IsKnown() || !v.Type().Equals(cty.String) {
		return ""
	}
	return v.AsString()
}

func (m Module) stringListParam(name string) []string {
	v, ok := m.Param(name)
	if !ok || !v.IsKnown() || !v.CanIterateElements() {
		return nil
	}
	ty := v.Type()
	if ty.IsObjectType() || ty.IsMapType() {
		return nil
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		if el.IsNull() || !el.IsKnown() || !el.Type().Equals(cty.String) {
			continue
		}
		out = append(out, el.AsString())
	}
	return out
}
