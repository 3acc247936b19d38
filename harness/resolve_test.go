package harness

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/snippetlab/verifier/sandbox"
)

func tableWith(t *testing.T, entries map[string]bool, order ...string) *sandbox.CallableTable {
	t.Helper()
	table := sandbox.NewCallableTable()
	noop := reflect.ValueOf(func() {})
	for _, name := range order {
		if entries[name] {
			table.Add(name, noop)
		} else {
			table.Add(name, reflect.Value{})
		}
	}
	return table
}

func TestResolve(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("ExplicitNameWins", func(t *testing.T) {
		table := tableWith(t, map[string]bool{"add": true, "sub": true}, "add", "sub")
		tc := TestCase{Description: "sub two numbers"}
		assert.Equal(t, "add", Resolve(tc, table, "add", logger))
	})

	t.Run("DescriptionPrefixRouting", func(t *testing.T) {
		table := tableWith(t, map[string]bool{"add": true, "sub": true}, "add", "sub")
		tc := TestCase{Description: "Sub returns the difference"}
		assert.Equal(t, "sub", Resolve(tc, table, "", logger))
	})

	t.Run("PrefixMatchIsCaseInsensitive", func(t *testing.T) {
		table := tableWith(t, map[string]bool{"Reverse": true}, "Reverse")
		tc := TestCase{Description: "reverse the input string"}
		assert.Equal(t, "Reverse", Resolve(tc, table, "", logger))
	})

	t.Run("PrefixSkipsNonCallableEntries", func(t *testing.T) {
		table := tableWith(t, map[string]bool{"subtle": false, "sub": true}, "subtle", "sub")
		tc := TestCase{Description: "subtle behavior"}
		// "subtle" never resolved, so routing falls through to the first
		// actually-callable entry.
		assert.Equal(t, "sub", Resolve(tc, table, "", logger))
	})

	t.Run("FallbackToFirstCallable", func(t *testing.T) {
		table := tableWith(t, map[string]bool{"ghost": false, "real": true}, "ghost", "real")
		tc := TestCase{Description: "no matching prefix here"}
		assert.Equal(t, "real", Resolve(tc, table, "", logger))
	})

	t.Run("FallbackToFirstExtractedName", func(t *testing.T) {
		// Nothing resolved; the failure should still be able to name the
		// expected callable.
		table := tableWith(t, map[string]bool{}, "wanted", "other")
		assert.Equal(t, "wanted", Resolve(TestCase{}, table, "", logger))
	})

	t.Run("EmptyTable", func(t *testing.T) {
		table := sandbox.NewCallableTable()
		assert.Equal(t, "", Resolve(TestCase{}, table, "", logger))
	})
}

func TestLoadCases(t *testing.T) {
	t.Run("YAML", func(t *testing.T) {
		data := []byte(`
- input: [1, 2]
  expected_output: 3
  description: add two small numbers
- input: {a: 1}
  expected_output: {b: 2}
`)
		cases, err := LoadCases(data)
		assert.NoError(t, err)
		assert.Len(t, cases, 2)
		assert.Equal(t, []any{1, 2}, cases[0].Input)
		assert.Equal(t, 3, cases[0].ExpectedOutput)
		assert.Equal(t, "add two small numbers", cases[0].Description)
		assert.Equal(t, map[string]any{"a": 1}, cases[1].Input)
	})

	t.Run("JSON", func(t *testing.T) {
		data := []byte(`[{"input": [1, 2], "expected_output": 3}]`)
		cases, err := LoadCases(data)
		assert.NoError(t, err)
		assert.Len(t, cases, 1)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := LoadCases([]byte(`{not yaml`))
		assert.Error(t, err)
	})
}
