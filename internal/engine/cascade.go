package engine

import (
	"context"
	"fmt"
)

type cascadeKey struct{}

// budget is shared by every wave of one cascade. A cascade starts with a Run
// or an external callback invocation and ends when control returns to its
// caller. Re-entrant invocations made while it is active join it.
//
// A budget is only touched by the goroutine driving its cascade.
type budget struct {
	tree   *tree
	limits Limits
	depth  int
	steps  int
	err    error
}

// wave records which modules executed since the last trigger. Each trigger
// (a run, or one callback invocation) opens a new wave, and a module executes
// at most once per wave.
type wave struct {
	budget   *budget
	executed map[*Frame]map[int]bool
}

func newWave(b *budget) *wave {
	return &wave{budget: b, executed: map[*Frame]map[int]bool{}}
}

func waveFrom(ctx context.Context) (*wave, bool) {
	w, ok := ctx.Value(cascadeKey{}).(*wave)
	return w, ok
}

// beginWave opens a wave for a trigger on f. When ctx already carries a
// cascade of the same frame tree the new wave joins its budget and no lock
// is taken; otherwise the tree's cascade lock is acquired and released by
// the returned func. A cascade of another tree is refused, since holding two
// cascade locks could deadlock against the reverse order.
func (f *Frame) beginWave(ctx context.Context) (context.Context, *wave, bool, func(), error) {
	if w, ok := waveFrom(ctx); ok {
		if w.budget.tree != f.tree {
			return ctx, nil, false, nil, ErrCrossTreeInvoke
		}
		nested := newWave(w.budget)
		return context.WithValue(ctx, cascadeKey{}, nested), nested, true, func() {}, nil
	}
	f.tree.cascadeMu.Lock()
	w := newWave(&budget{tree: f.tree, limits: f.engine.limits})
	return context.WithValue(ctx, cascadeKey{}, w), w, false, f.tree.cascadeMu.Unlock, nil
}

// enter accounts for one module execution. It fails, and poisons the
// cascade, when ctx is done or a limit would be exceeded.
func (w *wave) enter(ctx context.Context) error {
	b := w.budget
	if b.err != nil {
		return b.err
	}
	if err := ctx.Err(); err != nil {
		b.err = err
		return err
	}
	if b.depth+1 > b.limits.MaxDepth {
		b.err = fmt.Errorf("%w: nesting depth exceeds %d", ErrUnboundedCascade, b.limits.MaxDepth)
		return b.err
	}
	if b.steps+1 > b.limits.MaxSteps {
		b.err = fmt.Errorf("%w: more than %d module executions", ErrUnboundedCascade, b.limits.MaxSteps)
		return b.err
	}
	b.depth++
	b.steps++
	return nil
}

func (w *wave) leave() {
	w.budget.depth--
}

func (w *wave) mark(f *Frame, module int) {
	done, ok := w.executed[f]
	if !ok {
		done = map[int]bool{}
		w.executed[f] = done
	}
	done[module] = true
}

func (w *wave) done(f *Frame, module int) bool {
	return w.executed[f][module]
}
