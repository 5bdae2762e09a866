// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file validates graph descriptions before any frame activates them.
//
// Why validate up front?
//
// The engine trusts the description: it indexes modules by wire endpoints and
// reads static params through typed accessors. Catching an out-of-range wire or
// a code module without code here turns what would be a silent no-op at run
// time into a precise error naming the offending field.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/zclconf/go-cty/cty"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)
	paramNamePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ValidationError describes a graph that cannot be activated.
type ValidationError struct {
	Graph   string
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("graph %q: %s: %s", e.Graph, e.Field, e.Message)
	}
	return fmt.Sprintf("graph %q: %s", e.Graph, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks the structure of a graph: names are well formed, every wire
// references existing modules and every module carries the static params its
// kind requires. Fan-in is legal and not reported here; see Graph.FanIn.
func Validate(g *Graph) error {
	if g == nil {
		return &ValidationError{Message: "graph is nil"}
	}

	if err := validatorInstance().Struct(g); err != nil {
		return convertValidationError(g.Name, err)
	}

	for i, m := range g.Modules {
		if err := validateModule(m); err != nil {
			return &ValidationError{Graph: g.Name, Field: fmt.Sprintf("modules[%d]", i), Message: err.Error()}
		}
	}

	for i, w := range g.Wires {
		for _, ep := range []Endpoint{w.Source, w.Target} {
			if ep.Module >= len(g.Modules) {
				return &ValidationError{
					Graph:   g.Name,
					Field:   fmt.Sprintf("wires[%d]", i),
					Message: fmt.Sprintf("endpoint %s references module %d, graph has %d modules", ep, ep.Module, len(g.Modules)),
				}
			}
		}
		if g.Modules[w.Target.Module].Kind() == KindComment || g.Modules[w.Source.Module].Kind() == KindComment {
			return &ValidationError{Graph: g.Name, Field: fmt.Sprintf("wires[%d]", i), Message: "comment modules cannot be wired"}
		}
		if k := g.Modules[w.Target.Module].Kind(); k == KindInput || k == KindCallback {
			return &ValidationError{Graph: g.Name, Field: fmt.Sprintf("wires[%d]", i), Message: fmt.Sprintf("%s modules take no incoming wires", k)}
		}
	}

	return nil
}

func validateModule(m Module) error {
	switch m.Kind() {
	case KindInput, KindOutput:
		if err := requireString(m, ParamName); err != nil {
			return err
		}
	case KindCodeBody:
		if err := requireString(m, ParamCode); err != nil {
			return err
		}
		if v, ok := m.Param(ParamParams); ok {
			ty := v.Type()
			if !ty.IsListType() && !ty.IsTupleType() {
				return fmt.Errorf("%s param %q must be a list of names", m.Type, ParamParams)
			}
			body := m.CodeBody()
			if len(body.Params) != v.LengthInt() {
				return fmt.Errorf("%s param %q must contain only strings", m.Type, ParamParams)
			}
			seen := map[string]bool{}
			for _, p := range body.Params {
				if !paramNamePattern.MatchString(p) {
					return fmt.Errorf("%s parameter name %q is not a valid identifier", m.Type, p)
				}
				if seen[p] {
					return fmt.Errorf("%s parameter %q declared twice", m.Type, p)
				}
				seen[p] = true
			}
		}
	case KindComposed:
		if v, ok := m.Param(ParamGraph); ok && !v.Type().Equals(cty.String) {
			return fmt.Errorf("%s param %q must be a string", m.Type, ParamGraph)
		}
		if v, ok := m.Param(ParamParams); ok {
			ty := v.Type()
			if !ty.IsObjectType() && !ty.IsMapType() {
				return fmt.Errorf("%s param %q must be an object", m.Type, ParamParams)
			}
		}
	}
	return nil
}

func requireString(m Module, name string) error {
	v, ok := m.Param(name)
	if !ok {
		return fmt.Errorf("%s module requires param %q", m.Type, name)
	}
	if !v.IsKnown() || !v.Type().Equals(cty.String) || strings.TrimSpace(v.AsString()) == "" {
		return fmt.Errorf("%s param %q must be a non-empty string", m.Type, name)
	}
	return nil
}

func convertValidationError(graph string, err error) error {
	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := fieldName(ve)
		msg := fmt.Sprintf("%q failed validation for tag '%s'", fmt.Sprint(ve.Value()), ve.Tag())
		return &ValidationError{Graph: graph, Field: field, Message: msg, Err: err}
	}
	return &ValidationError{Graph: graph, Message: err.Error(), Err: err}
}

// fieldName turns "Graph.Wires[2].Source.Terminal" into
// "wires[2].source.terminal".
func fieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}
