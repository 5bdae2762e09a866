package ctyconv

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// ForLogs converts a value to its loggable representation.
// For cty.Value, it's converted to a Go interface. Other types are passed through.
func ForLogs(v any) any {
	if ctyVal, ok := v.(cty.Value); ok {
		converted, err := ToGo(ctyVal)
		if err != nil {
			return fmt.Sprintf("[unloggable cty.Value: %v]", err)
		}
		return converted
	}
	return v
}

// Format renders a value as an HCL literal, e.g. `14`, `"bob"` or
// `[1, 2]`. Values HCL cannot spell (unknowns, capsules) are rendered
// through ToGo instead.
func Format(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	if !v.IsWhollyKnown() || hasCapsule(v) {
		converted, err := ToGo(v)
		if err != nil {
			return fmt.Sprintf("<%s>", v.Type().FriendlyName())
		}
		return fmt.Sprint(converted)
	}
	return string(hclwrite.TokensForValue(v).Bytes())
}

func hasCapsule(v cty.Value) bool {
	found := false
	_ = cty.Walk(v, func(_ cty.Path, el cty.Value) (bool, error) {
		if el.Type().IsCapsuleType() {
			found = true
			return false, nil
		}
		return !found, nil
	})
	return found
}

// ParseLiteral parses text as an HCL literal expression: `7`, `"bob"`,
// `[1, 2]`, `{a = 1}`, `true`. Text that is not a self-contained literal,
// such as a bare word, is returned as a string.
func ParseLiteral(text string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(text), "<literal>", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() || len(expr.Variables()) > 0 {
		return cty.StringVal(text)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() {
		return cty.StringVal(text)
	}
	return v
}
