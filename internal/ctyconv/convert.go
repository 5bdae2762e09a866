package ctyconv

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToGo converts a cty.Value to a Go interface{}. Numbers become float64,
// collections become []any and map[string]any, and capsules become their
// String() form when they have one.
func ToGo(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsCapsuleType() {
		if s, ok := val.EncapsulatedValue().(fmt.Stringer); ok {
			return s.String(), nil
		}
		return fmt.Sprintf("<%s>", ty.FriendlyName()), nil
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := ToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := ToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// FromGo converts a plain Go value, as produced by YAML or JSON decoding, to a
// cty.Value. Values of other Go types go through gocty's implied typing.
func FromGo(x any) (cty.Value, error) {
	switch v := x.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return v, nil
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int32:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case uint:
		return cty.NumberUIntVal(uint64(v)), nil
	case uint64:
		return cty.NumberUIntVal(v), nil
	case float32:
		return cty.NumberFloatVal(float64(v)), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(v))
		for i, el := range v {
			converted, err := FromGo(el)
			if err != nil {
				return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = converted
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		return objectFromGo(v)
	case map[any]any:
		attrs := make(map[string]any, len(v))
		for k, el := range v {
			attrs[fmt.Sprint(k)] = el
		}
		return objectFromGo(attrs)
	default:
		ty, err := gocty.ImpliedType(x)
		if err != nil {
			return cty.NilVal, fmt.Errorf("unsupported Go type %T: %w", x, err)
		}
		return gocty.ToCtyValue(x, ty)
	}
}

func objectFromGo(m map[string]any) (cty.Value, error) {
	if len(m) == 0 {
		return cty.EmptyObjectVal, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make(map[string]cty.Value, len(m))
	for _, k := range keys {
		converted, err := FromGo(m[k])
		if err != nil {
			return cty.NilVal, fmt.Errorf("%s: %w", k, err)
		}
		attrs[k] = converted
	}
	return cty.ObjectVal(attrs), nil
}

// FromGoSlice converts every element of a slice with FromGo.
func FromGoSlice(xs []any) ([]cty.Value, error) {
	out := make([]cty.Value, len(xs))
	for i, x := range xs {
		v, err := FromGo(x)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
