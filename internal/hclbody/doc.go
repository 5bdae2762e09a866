// Package hclbody evaluates code-module bodies written as HCL expressions.
//
// A body such as `a * 2` or `upper(name)` sees its declared parameters as
// variables, the full positional argument list as `args`, the go-cty standard
// function library, and `invoke(handle, ...)` for firing a callback handle
// received on a wire. Bodies are parsed once and cached by source text.
package hclbody
