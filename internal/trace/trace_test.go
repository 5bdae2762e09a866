package trace_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/wiregrid/internal/engine"
	"github.com/specialistvlad/wiregrid/internal/hclbody"
	"github.com/specialistvlad/wiregrid/internal/testutil"
	"github.com/specialistvlad/wiregrid/internal/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func decodeLines(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), "line %q", sc.Text())
		out = append(out, m)
	}
	return out
}

func TestRecorder_RecordsRun(t *testing.T) {
	t.Parallel()

	b := testutil.NewGraph("traced")
	x := b.Input("x")
	c := b.Code("a * 2", "a")
	bad := b.Code("a.missing", "a")
	y := b.Output("y")
	b.Wire(x, "out", c, "a").Wire(x, "out", bad, "a").Wire(c, "out", y, "in")

	buf := &testutil.SafeBuffer{}
	rec := trace.New(trace.Options{Writer: buf, Values: true})
	ctx, _ := testutil.LogContext(t)

	e := engine.New(nil, hclbody.New(), engine.WithObserver(rec))
	f, err := e.Start(ctx, b.Build(), map[string]cty.Value{"x": cty.NumberIntVal(4)})
	require.NoError(t, err)

	lines := decodeLines(t, buf.String())
	require.NotEmpty(t, lines)

	first := lines[0]
	assert.Equal(t, "frame_started", first["event"])
	assert.Equal(t, f.ID().String(), first["frame"])
	assert.Equal(t, "traced", first["graph"])
	assert.NotContains(t, first, "module")
	assert.Contains(t, first, "time")

	last := lines[len(lines)-1]
	assert.Equal(t, "frame_finished", last["event"])

	var sawValue, sawFault bool
	for _, l := range lines {
		if l["event"] == "produced" && l["module_type"] == "output" {
			assert.Equal(t, "8", l["value"])
			assert.Equal(t, "in", l["terminal"])
			sawValue = true
		}
		if l["event"] == "module_faulted" {
			assert.Equal(t, "error", l["level"])
			assert.EqualValues(t, 2, l["module"])
			assert.NotEmpty(t, l["error"])
			sawFault = true
		}
	}
	assert.True(t, sawValue)
	assert.True(t, sawFault)
}

func TestRecorder_ValuesOptional(t *testing.T) {
	t.Parallel()

	buf := &testutil.SafeBuffer{}
	rec := trace.New(trace.Options{Writer: buf})
	rec.Observe(t.Context(), engine.Event{Type: engine.EventProduced, Module: 0, ModuleType: "input", Terminal: "out", Value: cty.StringVal("secret")})

	lines := decodeLines(t, buf.String())
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.NotContains(t, lines[0], "value")
}

func TestOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trace.jsonl")
	rec, err := trace.Open(path, false)
	require.NoError(t, err)
	rec.Observe(t.Context(), engine.Event{Type: engine.EventInputUnset, Module: 1, ModuleType: "input", Terminal: "out"})
	require.NoError(t, rec.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := decodeLines(t, string(raw))
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "input_unset", lines[0]["event"])

	_, err = trace.Open(filepath.Join(t.TempDir(), "missing", "trace.jsonl"), false)
	assert.Error(t, err)

	var nilRec *trace.Recorder
	assert.NoError(t, nilRec.Close())
}
