package library_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/wiregrid/internal/engine"
	"github.com/specialistvlad/wiregrid/internal/hclbody"
	"github.com/specialistvlad/wiregrid/internal/library"
	"github.com/specialistvlad/wiregrid/internal/model"
	"github.com/specialistvlad/wiregrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func outputOnly(name string) *model.Graph {
	b := testutil.NewGraph(name)
	b.Output("o")
	return b.Build()
}

func TestLibrary_AddGetResolve(t *testing.T) {
	t.Parallel()

	lib, err := library.New(outputOnly("b"), outputOnly("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lib.Names())

	g, ok := lib.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", g.Name)

	resolved, err := lib.Resolve(context.Background(), "b")
	require.NoError(t, err)
	assert.Same(t, mustGet(t, lib, "b"), resolved)

	_, err = lib.Resolve(context.Background(), "c")
	assert.ErrorIs(t, err, library.ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lib.Resolve(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func mustGet(t *testing.T, lib *library.Library, name string) *model.Graph {
	t.Helper()
	g, ok := lib.Get(name)
	require.True(t, ok)
	return g
}

func TestLibrary_AddRejects(t *testing.T) {
	t.Parallel()

	lib, err := library.New(outputOnly("a"))
	require.NoError(t, err)

	assert.ErrorIs(t, lib.Add(outputOnly("a")), library.ErrDuplicate)
	assert.ErrorIs(t, lib.Add(outputOnly("x"), outputOnly("x")), library.ErrDuplicate)
	_, ok := lib.Get("x")
	assert.False(t, ok, "a failed Add registers nothing")

	var ve *model.ValidationError
	assert.True(t, errors.As(lib.Add(&model.Graph{}), &ve))

	_, err = library.New(outputOnly("d"), outputOnly("d"))
	assert.ErrorIs(t, err, library.ErrDuplicate)
}

func TestLibrary_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	lib, err := library.New()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			assert.NoError(t, lib.Add(outputOnly(name)))
			_, _ = lib.Resolve(context.Background(), name)
			_ = lib.Names()
		}(i)
	}
	wg.Wait()
	assert.Len(t, lib.Names(), 16)
}

func TestLibrary_LoadPathsResolvesComposedModules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inc.hcl"), []byte(`
graph "inc" {
  module "input" { name = "n" }
  module "code" {
    code   = "a + step"
    params = ["a", "step"]
  }
  module "input" {
    name    = "step"
    default = 1
  }
  module "output" { name = "n2" }
  wire {
    from = "0.out"
    to   = "1.a"
  }
  wire {
    from = "2.out"
    to   = "1.step"
  }
  wire {
    from = "1.out"
    to   = "3.in"
  }
}
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.yaml"), []byte(`
name: root
modules:
  - {type: input, params: {name: start, default: 1}}
  - {type: inc, params: {params: {step: 10}}}
  - {type: output, params: {name: result}}
wires:
  - {from: 0.out, to: 1.n}
  - {from: 1.n2, to: 2.in}
`), 0o600))

	ctx, _ := testutil.LogContext(t)
	lib, err := library.New()
	require.NoError(t, err)
	require.NoError(t, lib.LoadPaths(ctx, dir))
	assert.Equal(t, []string{"inc", "root"}, lib.Names())

	e := engine.New(lib, hclbody.New())
	f, err := e.Start(ctx, mustGet(t, lib, "root"), nil)
	require.NoError(t, err)

	out := f.Outputs()
	v, ok := out["result"]
	require.True(t, ok)
	assert.True(t, v.Equals(cty.NumberIntVal(11)).True(), "got %#v", v)

	assert.ErrorIs(t, lib.LoadPaths(ctx, dir), library.ErrDuplicate)
}
