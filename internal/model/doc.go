// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model defines the format-agnostic graph description consumed by the
// execution engine.
//
// A Graph is an ordered list of module records plus an unordered list of wires.
// Modules are identified by their position in the list; wires reference them by
// index and terminal name. Once built, a Graph is never mutated: every frame that
// activates it shares the same instance read-only.
//
// File formats (HCL, YAML, JSON) are handled by the loader package, which
// produces values of these types and runs Validate on them.
package model
