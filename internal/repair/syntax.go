// Package repair applies deterministic fixes to workflow definitions: a
// text-level syntax pass for documents that fail to parse, and a tree-level
// rule engine keyed by remediation hint for documents that parse but are
// structurally incomplete.
package repair

import (
	"strings"

	"github.com/deeklead/wfmend/internal/document"
)

const tabReplacement = "  " // one tab normalizes to one indent step

// FixText applies the five syntax repairs in fixed order, exactly once:
// trailing whitespace, tab indentation, bare "key:" lines, unquoted reserved
// characters, duplicate top-level keys (first occurrence wins). The caller
// re-invokes the parser once on the result; there is no retry loop.
func FixText(text string) (string, []document.RepairAction) {
	lines := strings.Split(text, "\n")

	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	for i, l := range lines {
		lines[i] = normalizeTabs(l)
	}
	coerceBareKeys(lines)
	for i, l := range lines {
		lines[i] = quoteReserved(l)
	}
	lines, actions := dropDuplicateTopLevelKeys(lines)

	return strings.Join(lines, "\n"), actions
}

// normalizeTabs replaces each leading tab with a fixed-width space sequence.
func normalizeTabs(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	lead := strings.ReplaceAll(line[:i], "\t", tabReplacement)
	return lead + line[i:]
}

// coerceBareKeys rewrites "key:" with no value to `key: ""`. A bare key
// followed by a deeper-indented line opens a block and is left alone.
func coerceBareKeys(lines []string) {
	for i, l := range lines {
		content := strings.TrimLeft(l, " ")
		if content == "" || strings.HasPrefix(content, "#") || strings.HasPrefix(content, "-") {
			continue
		}
		if !strings.HasSuffix(content, ":") || strings.Contains(content, ": ") {
			continue
		}
		if nextIndent(lines, i) > len(l)-len(content) {
			continue
		}
		lines[i] = l + ` ""`
	}
}

// nextIndent returns the indentation of the next significant line, or -1 at
// end of input.
func nextIndent(lines []string, i int) int {
	for j := i + 1; j < len(lines); j++ {
		content := strings.TrimLeft(lines[j], " ")
		if content == "" || strings.HasPrefix(content, "#") {
			continue
		}
		return len(lines[j]) - len(content)
	}
	return -1
}

// quoteReserved wraps a bare scalar value in double quotes when it contains
// characters reserved by the grammar. Already-quoted values are left alone.
func quoteReserved(line string) string {
	content := strings.TrimLeft(line, " ")
	lead := line[:len(line)-len(content)]
	if content == "" || strings.HasPrefix(content, "#") {
		return line
	}

	prefix, value := splitValue(content)
	if value == "" || value[0] == '"' || value[0] == '\'' {
		return line
	}
	if !strings.Contains(value, ": ") && !strings.HasSuffix(value, ":") &&
		!strings.ContainsAny(value, "\"'") {
		return line
	}

	var b strings.Builder
	b.WriteString(lead)
	b.WriteString(prefix)
	b.WriteByte('"')
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

// splitValue splits a significant line into its structural prefix ("key: "
// or "- ") and the scalar value portion. Lines with no value return "".
func splitValue(content string) (prefix, value string) {
	if strings.HasPrefix(content, "- ") {
		rest := content[2:]
		if p, v := splitValue(rest); v != "" && p != "" {
			return "- " + p, v
		}
		return "- ", rest
	}
	i := strings.Index(content, ": ")
	if i < 0 {
		return content, ""
	}
	return content[:i+2], content[i+2:]
}

// dropDuplicateTopLevelKeys removes repeated top-level keys together with
// their indented blocks, keeping the first occurrence. Each removal is
// recorded as a repair action.
func dropDuplicateTopLevelKeys(lines []string) ([]string, []document.RepairAction) {
	seen := make(map[string]bool)
	var out []string
	var actions []document.RepairAction

	i := 0
	for i < len(lines) {
		l := lines[i]
		key, ok := topLevelKey(l)
		if !ok {
			out = append(out, l)
			i++
			continue
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, l)
			i++
			continue
		}

		action := document.RepairAction{
			Code:   document.ActionDuplicateKeyRemoved,
			Path:   document.Path{key},
			Before: l,
		}
		i++
		// Drop only the block itself: blank lines and indented content.
		// Any unindented line, comments included, ends the block.
		for i < len(lines) {
			content := strings.TrimLeft(lines[i], " ")
			if content != "" && len(lines[i]) == len(content) {
				break
			}
			i++
		}
		actions = append(actions, action)
	}
	return out, actions
}

// topLevelKey extracts the key of an unindented "key:" or "key: value" line.
func topLevelKey(line string) (string, bool) {
	if line == "" || line[0] == ' ' || line[0] == '#' || line[0] == '-' {
		return "", false
	}
	i := strings.IndexByte(line, ':')
	if i <= 0 {
		return "", false
	}
	if i+1 < len(line) && line[i+1] != ' ' {
		return "", false
	}
	return line[:i], true
}
