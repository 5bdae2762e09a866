package hclbody

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/wiregrid/internal/ctxlog"
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// ArgsVariable is the variable holding all positional arguments as a tuple.
const ArgsVariable = "args"

// Evaluator implements engine.Evaluator for HCL expression bodies. It is safe
// for concurrent use.
type Evaluator struct {
	cache sync.Map // cache key -> *compiled
	base  *hcl.EvalContext
}

type compiled struct {
	expr hclsyntax.Expression
	err  error
}

// New creates an evaluator with the standard function library.
func New() *Evaluator {
	return &Evaluator{base: &hcl.EvalContext{Functions: standardFunctions()}}
}

// Compile parses and checks a body without evaluating it. Bodies that fail to
// parse, reference variables other than their parameters and `args`, or call
// unknown functions are rejected. Results are cached.
func (e *Evaluator) Compile(body model.CodeBody) (hclsyntax.Expression, error) {
	key := body.Source + "\x00" + strings.Join(body.Params, "\x00")
	if c, ok := e.cache.Load(key); ok {
		c := c.(*compiled)
		return c.expr, c.err
	}
	expr, err := e.compile(body)
	e.cache.Store(key, &compiled{expr: expr, err: err})
	return expr, err
}

func (e *Evaluator) compile(body model.CodeBody) (hclsyntax.Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(body.Source), "code", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse code body: %w", diags)
	}

	declared := map[string]bool{ArgsVariable: true}
	for _, p := range body.Params {
		declared[p] = true
	}

	roots, functions := extractRootsAndFunctions(expr)
	for _, name := range roots {
		if !declared[name] {
			return nil, fmt.Errorf("code body references undeclared variable %q", name)
		}
	}
	for _, name := range functions {
		if name == invokeFunction {
			continue
		}
		if _, ok := e.base.Functions[name]; !ok {
			return nil, fmt.Errorf("code body calls unknown function %q", name)
		}
	}
	return expr, nil
}

// Evaluate binds args to the body's parameters by position and evaluates it.
func (e *Evaluator) Evaluate(ctx context.Context, body model.CodeBody, args []cty.Value) (cty.Value, error) {
	if err := ctx.Err(); err != nil {
		return cty.NilVal, err
	}
	expr, err := e.Compile(body)
	if err != nil {
		return cty.NilVal, err
	}

	all := cty.EmptyTupleVal
	if len(args) > 0 {
		all = cty.TupleVal(args)
	}
	vars := map[string]cty.Value{ArgsVariable: all}
	for i, name := range body.Params {
		if i < len(args) {
			vars[name] = args[i]
		} else {
			vars[name] = cty.NullVal(cty.DynamicPseudoType)
		}
	}

	ectx := e.base.NewChild()
	ectx.Variables = vars
	ectx.Functions = map[string]function.Function{invokeFunction: newInvokeFunction(ctx)}

	ctxlog.FromContext(ctx).Debug("Evaluating code body.", "source", body.Source, "params", body.Params)
	v, diags := expr.Value(ectx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return v, nil
}
