// Package ctyconv converts between cty values and plain Go values, and renders
// cty values for logs and terminal output.
package ctyconv
