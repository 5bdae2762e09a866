// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file maps module type names onto execution kinds.
//
// Why derive the kind from the type name?
//
// A graph file only says which module type an instance is. The handful of
// built-in types each get their own execution rule; every other type name is a
// reference to a named sub-graph and therefore a composed module.
package model

// Kind is the execution category of a module record.
type Kind int

const (
	KindComposed Kind = iota
	KindInput
	KindOutput
	KindCallback
	KindCodeBody
	KindComment
)

// Built-in module type names.
const (
	TypeInput    = "input"
	TypeOutput   = "output"
	TypeCallback = "callback"
	TypeCode     = "code"
	TypeComment  = "comment"
)

// Well-known terminal names.
const (
	TerminalOut              = "out"
	TerminalIn               = "in"
	TerminalCallbackFunction = "callbackFunction"
	TerminalCallbackOutput   = "output"
)

// KindOf returns the kind for a module type name.
func KindOf(typeName string) Kind {
	switch typeName {
	case TypeInput:
		return KindInput
	case TypeOutput:
		return KindOutput
	case TypeCallback:
		return KindCallback
	case TypeCode:
		return KindCodeBody
	case TypeComment:
		return KindComment
	default:
		return KindComposed
	}
}

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindCallback:
		return "callback"
	case KindCodeBody:
		return "codeBody"
	case KindComment:
		return "comment"
	default:
		return "composed"
	}
}
