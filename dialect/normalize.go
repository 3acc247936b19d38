package dialect

import (
	"fmt"
	"go/parser"
	"go/token"
	"regexp"
	"strings"

	"github.com/snippetlab/verifier/classify"
)

// NormalizationResult carries either runnable code or a diagnostic.
// Exactly one of the two fields is populated.
type NormalizationResult struct {
	Code  string `json:"code"`
	Error string `json:"error,omitempty"`
}

// enumNote is appended to normalization errors when the snippet uses an
// enum declaration, since that failure mode is specifically handled.
const enumNote = "Note: enum declarations are supported and lowered to plain struct values before execution."

var (
	annotationLine = regexp.MustCompile(`(?m)^\s*@\w+(\(.*\))?\s*$`)
	packageClause  = regexp.MustCompile(`(?m)^\s*package\s+[A-Za-z_]\w*`)
	enumBlock      = regexp.MustCompile(`(?ms)^\s*enum\s+([A-Za-z_]\w*)\s*\{([^}]*)\}`)
	enumMemberSep  = regexp.MustCompile(`[,\n]`)
)

// Normalize converts an annotated snippet into plain Go source. Strict
// diagnostics are deliberately off: only syntax errors fail
// normalization, so a snippet with type problems still produces runnable
// output for behavioral testing.
func Normalize(source string) NormalizationResult {
	code := annotationLine.ReplaceAllString(source, "")
	code = lowerEnums(code)

	if !packageClause.MatchString(code) {
		code = "package main\n\n" + code
	}

	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "snippet.go", code, parser.SkipObjectResolution); err != nil {
		msg := classify.Sanitize(classify.Message(err))
		if strings.Contains(source, "enum ") || strings.Contains(msg, "enum") {
			msg = msg + " " + enumNote
		}
		return NormalizationResult{Error: msg}
	}

	return NormalizationResult{Code: code}
}

// lowerEnums rewrites every enum block into a struct-valued variable:
//
//	enum Color { Red, Green, Blue }
//
// becomes
//
//	var Color = struct {
//		Red int
//		Green int
//		Blue int
//	}{Red: 0, Green: 1, Blue: 2}
func lowerEnums(code string) string {
	return enumBlock.ReplaceAllStringFunc(code, func(block string) string {
		m := enumBlock.FindStringSubmatch(block)
		if m == nil {
			return block
		}
		name, body := m[1], m[2]

		var fields, values []string
		next := 0
		for _, raw := range enumMemberSep.Split(body, -1) {
			member := strings.TrimSpace(raw)
			if member == "" {
				continue
			}
			memberName := member
			if eq := strings.Index(member, "="); eq >= 0 {
				memberName = strings.TrimSpace(member[:eq])
				if _, err := fmt.Sscanf(strings.TrimSpace(member[eq+1:]), "%d", &next); err != nil {
					// Leave the block untouched so the parser reports it.
					return block
				}
			}
			fields = append(fields, "\t"+memberName+" int")
			values = append(values, fmt.Sprintf("%s: %d", memberName, next))
			next++
		}
		if len(fields) == 0 {
			return block
		}

		return fmt.Sprintf("var %s = struct {\n%s\n}{%s}",
			name, strings.Join(fields, "\n"), strings.Join(values, ", "))
	})
}
