// Package engine executes graph descriptions as dataflow.
//
// # Frames
//
// A Frame is one activation of a model.Graph. It stores the values each module
// produced, keyed by module index and terminal name, and an optional back-link
// to the composed module of a parent frame. The description itself is shared
// read-only; all mutable state lives in the frame.
//
// # Readiness and propagation
//
// A module is ready when every wire targeting it has a produced source value.
// Input and callback modules are always ready and comments never are. When a
// module produces a value on a terminal, the propagator walks the wires
// leaving that terminal in sequence order and executes each target that has
// become ready. Run seeds this process with every module that is ready before
// anything has been produced and returns once the cascade is exhausted.
//
// # Module kinds
//
//   - input: produces "out" from the run parameter of the same name, or the
//     static default.
//   - callback: produces "callbackFunction", a *Callback handle. Invoking it
//     later records its arguments on "output" and propagates that terminal.
//   - code: evaluates its code body through the injected Evaluator and
//     produces "out".
//   - output: records the received value on "in". In a child frame it also
//     writes the value into the parent under the output's name and propagates
//     it there.
//   - composed: resolves a sub-graph through the injected Resolver, creates a
//     child frame and runs it.
//
// # Concurrency
//
// All frames of one root activation form a tree. One cascade at a time runs
// per tree; produced values are additionally guarded by a read/write lock so
// readers outside the cascade never see a torn write. A callback invoked with
// a context belonging to a running cascade of the same tree nests inside it
// instead of waiting. Running or invoking frames of another tree from inside
// a cascade is refused with ErrCrossTreeInvoke. Cascades are bounded by
// Limits; exceeding them yields ErrUnboundedCascade.
//
// # Faults
//
// A code body that fails or a sub-graph that cannot be resolved makes only
// that module produce nothing. The fault is reported to the Observer and the
// cascade continues. Only cascade-level failures are returned to callers.
package engine
