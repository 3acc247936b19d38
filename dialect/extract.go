package dialect

import "regexp"

// Declaration shapes recognized by the extractor. This is a lexical scan,
// not a parse: it exists because the sandbox needs a hint list of
// identifiers to probe after evaluation, and it may over-approximate
// (a name declared inside a block is reported even though the probe for
// it will miss).
var declShapes = []*regexp.Regexp{
	// func Name(...)
	regexp.MustCompile(`(?m)^\s*func\s+([A-Za-z_]\w*)\s*\(`),
	// Name := func / var Name = func (arrow-style and function-style bindings)
	regexp.MustCompile(`(?m)\b([A-Za-z_]\w*)\s*:?=\s*func\b`),
	// "name": func (property-style binding with a literal key)
	regexp.MustCompile(`"([A-Za-z_]\w*)"\s*:\s*func\b`),
}

// ExtractNames scans normalized source for callable declarations and
// returns their names in first-occurrence order, duplicates removed.
func ExtractNames(code string) []string {
	type hit struct {
		pos  int
		name string
	}

	var hits []hit
	for _, shape := range declShapes {
		for _, m := range shape.FindAllStringSubmatchIndex(code, -1) {
			hits = append(hits, hit{pos: m[2], name: code[m[2]:m[3]]})
		}
	}

	// Insertion sort by position; hit counts are tiny.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	seen := make(map[string]bool, len(hits))
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.name == "main" || seen[h.name] {
			continue
		}
		seen[h.name] = true
		names = append(names, h.name)
	}
	return names
}
