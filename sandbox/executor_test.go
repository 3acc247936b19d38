package sandbox

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewExecutor(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("Defaults", func(t *testing.T) {
		exec := NewExecutor(logger)
		require.NotNil(t, exec)
		assert.Equal(t, DefaultCapabilityMarkers(), exec.markers)
	})

	t.Run("WithCapabilityMarkers", func(t *testing.T) {
		exec := NewExecutor(logger, WithCapabilityMarkers([]string{"custom marker"}))
		assert.Equal(t, []string{"custom marker"}, exec.markers)
	})
}

func TestPopulate(t *testing.T) {
	exec := NewExecutor(zaptest.NewLogger(t))
	ctx := context.Background()

	t.Run("ResolvesDeclaredFunctions", func(t *testing.T) {
		code := "package main\n\nfunc Add(a, b int) int { return a + b }\n\nfunc Sub(a, b int) int { return a - b }\n"
		table, console, err := exec.Populate(ctx, code, []string{"Add", "Sub"})
		require.NoError(t, err)
		assert.Empty(t, console)
		assert.Equal(t, []string{"Add", "Sub"}, table.Names())
		assert.True(t, table.IsCallable("Add"))
		assert.True(t, table.IsCallable("Sub"))
		assert.Equal(t, 2, table.CallableCount())
	})

	t.Run("UnresolvedNameGetsSentinel", func(t *testing.T) {
		code := "package main\n\nfunc Real() int { return 1 }\n"
		table, _, err := exec.Populate(ctx, code, []string{"Real", "Imagined"})
		require.NoError(t, err)
		assert.True(t, table.IsCallable("Real"))
		assert.False(t, table.IsCallable("Imagined"))
		assert.Equal(t, []string{"Real", "Imagined"}, table.Names())
	})

	t.Run("NonFuncBindingIsNotCallable", func(t *testing.T) {
		code := "package main\n\nvar Value = 42\n"
		table, _, err := exec.Populate(ctx, code, []string{"Value"})
		require.NoError(t, err)
		assert.False(t, table.IsCallable("Value"))
	})

	t.Run("ConsoleOutputCaptured", func(t *testing.T) {
		code := "package main\n\nimport \"fmt\"\n\nfunc init() { fmt.Println(\"from the snippet\") }\n\nfunc F() int { return 0 }\n"
		table, console, err := exec.Populate(ctx, code, []string{"F"})
		require.NoError(t, err)
		assert.Contains(t, console, "from the snippet")
		assert.True(t, table.IsCallable("F"))
	})

	t.Run("MissingCapabilitySilentlyEmpty", func(t *testing.T) {
		code := "package main\n\nimport \"github.com/nowhere/gone\"\n\nfunc F() { gone.Call() }\n"
		table, _, err := exec.Populate(ctx, code, []string{"F"})
		require.NoError(t, err, "unavailable capability is not an execution error")
		assert.False(t, table.IsCallable("F"))
		assert.Equal(t, []string{"F"}, table.Names())
	})

	t.Run("NonMainPackageClause", func(t *testing.T) {
		code := "package solution\n\nfunc Greet() string { return \"hi\" }\n"
		table, _, err := exec.Populate(ctx, code, []string{"Greet"})
		require.NoError(t, err)
		assert.True(t, table.IsCallable("Greet"))
	})
}

func TestCallableTable(t *testing.T) {
	table := NewCallableTable()
	table.Add("a", reflect.ValueOf(func() {}))
	table.Add("b", reflect.Value{})
	table.Add("a", reflect.ValueOf(func() {})) // re-add keeps order

	assert.Equal(t, []string{"a", "b"}, table.Names())
	assert.True(t, table.IsCallable("a"))
	assert.False(t, table.IsCallable("b"))
	assert.False(t, table.IsCallable("missing"))
	assert.Equal(t, 1, table.CallableCount())

	_, ok := table.Lookup("a")
	assert.True(t, ok)
	_, ok = table.Lookup("b")
	assert.False(t, ok)
}
