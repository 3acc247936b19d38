package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := Compile(nil)
	require.NoError(t, err)
	return a
}

func TestAnalyzeBlockingRules(t *testing.T) {
	a := defaultAnalyzer(t)

	tests := []struct {
		name    string
		snippet string
	}{
		{"InterpreterInvocation", `i := interp.New(interp.Options{})`},
		{"EvalCall", `result, _ := i.Eval("1+1")`},
		{"ReflectMakeFunc", `fn := reflect.MakeFunc(typ, body)`},
		{"UnsafeUsage", `p := unsafe.Pointer(&x)`},
		{"UnsafeImport", `import "unsafe"`},
		{"SyscallUsage", `syscall.Kill(pid, 9)`},
		{"ExecCommand", `cmd := exec.Command("rm", "-rf", "/")`},
		{"ExecImport", `import "os/exec"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.Analyze(tt.snippet)
			assert.False(t, result.Safe)
			assert.NotEmpty(t, result.Issues)
		})
	}
}

func TestAnalyzeAdvisoryRules(t *testing.T) {
	a := defaultAnalyzer(t)

	t.Run("FilesystemWrite", func(t *testing.T) {
		result := a.Analyze(`os.WriteFile("out.txt", data, 0644)`)
		assert.True(t, result.Safe)
		assert.Empty(t, result.Issues)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "filesystem")
	})

	t.Run("ProcessState", func(t *testing.T) {
		result := a.Analyze(`os.Exit(1)`)
		assert.True(t, result.Safe)
		assert.NotEmpty(t, result.Warnings)
	})

	t.Run("LargeAllocation", func(t *testing.T) {
		result := a.Analyze(`buf := make([]byte, 100000)`)
		assert.True(t, result.Safe)
		assert.NotEmpty(t, result.Warnings)
	})

	t.Run("SmallAllocationClean", func(t *testing.T) {
		result := a.Analyze(`buf := make([]byte, 99999)`)
		assert.Empty(t, result.Warnings)
	})
}

func TestAnalyzeLoopHeuristic(t *testing.T) {
	a := defaultAnalyzer(t)

	t.Run("BareLoopWithoutBreak", func(t *testing.T) {
		result := a.Analyze("func spin() {\n\tfor {\n\t\tcount++\n\t}\n}")
		assert.True(t, result.Safe, "loop heuristic must stay advisory")
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "infinite loop")
	})

	t.Run("ForTrueWithoutBreak", func(t *testing.T) {
		result := a.Analyze("for true {\n\tx++\n}")
		assert.NotEmpty(t, result.Warnings)
	})

	t.Run("LoopWithBreakSuppressed", func(t *testing.T) {
		result := a.Analyze("for {\n\tif done {\n\t\tbreak\n\t}\n}")
		assert.Empty(t, result.Warnings)
	})

	t.Run("BoundedLoopClean", func(t *testing.T) {
		result := a.Analyze("for i := 0; i < 10; i++ {\n\tsum += i\n}")
		assert.Empty(t, result.Warnings)
	})
}

func TestAnalyzeCleanSnippet(t *testing.T) {
	a := defaultAnalyzer(t)

	result := a.Analyze(`
func Add(a, b int) int {
	return a + b
}
`)
	assert.True(t, result.Safe)
	assert.Empty(t, result.Issues)
	assert.Empty(t, result.Warnings)
}

func TestCompile(t *testing.T) {
	t.Run("CustomRules", func(t *testing.T) {
		a, err := Compile([]RuleSpec{
			{Pattern: `\bfmt\.Println\b`, Description: "no printing", Blocking: true},
		})
		require.NoError(t, err)

		result := a.Analyze(`fmt.Println("hi")`)
		assert.False(t, result.Safe)
		assert.Equal(t, []string{"no printing"}, result.Issues)
	})

	t.Run("InvalidPattern", func(t *testing.T) {
		_, err := Compile([]RuleSpec{{Pattern: `([`}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid safety rule")
	})

	t.Run("RuleOrderPreserved", func(t *testing.T) {
		a, err := Compile([]RuleSpec{
			{Pattern: `aaa`, Description: "first", Blocking: true},
			{Pattern: `bbb`, Description: "second", Blocking: true},
		})
		require.NoError(t, err)

		result := a.Analyze("bbb aaa")
		assert.Equal(t, []string{"first", "second"}, result.Issues)
	})
}
