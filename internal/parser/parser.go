// Package parser implements the structural parser and canonical serializer
// for the indentation-scoped workflow definition format.
package parser

import (
	"fmt"
	"strings"

	"github.com/deeklead/wfmend/internal/document"
)

// IndentWidth is the canonical indentation step.
const IndentWidth = 2

// ParseError reports a malformed input with position information. It is the
// only error type Parse returns; parsing never panics on input.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func errAt(line, column int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Column: column, Message: fmt.Sprintf(format, args...)}
}

// srcLine is one significant source line: blank lines and comment-only lines
// are dropped before structural parsing.
type srcLine struct {
	num    int    // 1-based line number in the original text
	indent int    // leading space count
	text   string // content with indentation stripped
}

type parser struct {
	lines []srcLine
	pos   int
}

// Parse parses raw text into a node tree. It is pure: no I/O, no shared
// state. Every malformed input yields a *ParseError.
func Parse(text string) (*document.Node, error) {
	lines, err := scanLines(text)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return document.NewMapping(), nil
	}
	p := &parser{lines: lines}
	root, err := p.parseBlock(lines[0].indent)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.lines) {
		l := p.lines[p.pos]
		return nil, errAt(l.num, l.indent+1, "unexpected content after document root")
	}
	return root, nil
}

// scanLines splits text into significant lines and rejects tab indentation.
func scanLines(text string) ([]srcLine, error) {
	var out []srcLine
	for i, raw := range strings.Split(text, "\n") {
		num := i + 1
		if strings.HasPrefix(strings.TrimLeft(raw, " \t"), "#") {
			continue
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}
		indent := 0
		for indent < len(raw) && raw[indent] == ' ' {
			indent++
		}
		if indent < len(raw) && raw[indent] == '\t' {
			return nil, errAt(num, indent+1, "tab character in indentation")
		}
		out = append(out, srcLine{num: num, indent: indent, text: strings.TrimRight(raw[indent:], " ")})
	}
	return out, nil
}

// parseBlock parses the run of lines at exactly the given indent into a
// mapping or sequence, depending on the first line.
func (p *parser) parseBlock(indent int) (*document.Node, error) {
	l := p.lines[p.pos]
	if l.text == "-" || strings.HasPrefix(l.text, "- ") {
		return p.parseSequence(indent)
	}
	return p.parseMapping(indent)
}

func (p *parser) parseMapping(indent int) (*document.Node, error) {
	node := document.NewMapping()
	seen := make(map[string]int)

	for p.pos < len(p.lines) {
		l := p.lines[p.pos]
		if l.indent < indent {
			break
		}
		if l.indent > indent {
			return nil, errAt(l.num, l.indent+1, "unexpected indentation")
		}
		if l.text == "-" || strings.HasPrefix(l.text, "- ") {
			return nil, errAt(l.num, l.indent+1, "sequence item inside mapping block")
		}

		key, rest, err := splitEntry(l)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[key]; dup {
			return nil, errAt(l.num, l.indent+1, "duplicate key %q (first defined on line %d)", key, prev)
		}
		seen[key] = l.num
		p.pos++

		var value *document.Node
		if rest == "" {
			value, err = p.parseChildBlock(l, indent)
		} else {
			value, err = parseScalar(rest, l.num, l.indent+len(key)+2)
		}
		if err != nil {
			return nil, err
		}
		node.Entries = append(node.Entries, document.Entry{Key: key, Value: value})
	}
	return node, nil
}

func (p *parser) parseSequence(indent int) (*document.Node, error) {
	node := document.NewSequence()

	for p.pos < len(p.lines) {
		l := p.lines[p.pos]
		if l.indent != indent {
			if l.indent > indent {
				return nil, errAt(l.num, l.indent+1, "unexpected indentation")
			}
			break
		}
		if l.text != "-" && !strings.HasPrefix(l.text, "- ") {
			break
		}

		if l.text == "-" {
			p.pos++
			item, err := p.parseChildBlock(l, indent)
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, item)
			continue
		}

		rest := strings.TrimLeft(l.text[2:], " ")
		if isEntryStart(rest) {
			// Inline mapping item: rewrite the dash line as the item's
			// first entry, two columns deeper, so continuation keys on the
			// following lines join the same mapping.
			p.lines[p.pos] = srcLine{num: l.num, indent: indent + IndentWidth, text: rest}
			item, err := p.parseMapping(indent + IndentWidth)
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, item)
			continue
		}

		item, err := parseScalar(rest, l.num, l.indent+3)
		if err != nil {
			return nil, err
		}
		node.Items = append(node.Items, item)
		p.pos++
	}
	return node, nil
}

// parseChildBlock parses the indented block owned by opener. A bare opener
// with no deeper block is a missing value.
func (p *parser) parseChildBlock(opener srcLine, indent int) (*document.Node, error) {
	if p.pos >= len(p.lines) || p.lines[p.pos].indent <= indent {
		return nil, errAt(opener.num, opener.indent+len(opener.text), "missing value")
	}
	return p.parseBlock(p.lines[p.pos].indent)
}

// splitEntry splits "key: value" or "key:" into its parts. Keys are bare
// identifiers; the colon must be followed by a space or end the line.
func splitEntry(l srcLine) (key, rest string, err error) {
	i := strings.IndexByte(l.text, ':')
	if i <= 0 {
		return "", "", errAt(l.num, l.indent+1, "expected \"key: value\"")
	}
	key = l.text[:i]
	if strings.ContainsAny(key, "\"' ") {
		return "", "", errAt(l.num, l.indent+1, "invalid character in key %q", key)
	}
	after := l.text[i+1:]
	if after == "" {
		return key, "", nil
	}
	if after[0] != ' ' {
		return "", "", errAt(l.num, l.indent+i+2, "expected space after colon")
	}
	return key, strings.TrimLeft(after, " "), nil
}

// isEntryStart reports whether a sequence item body begins a mapping entry
// rather than a scalar. Quoted scalars never do, even when they contain a
// colon.
func isEntryStart(s string) bool {
	if s == "" || s[0] == '"' || s[0] == '\'' {
		return false
	}
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return false
	}
	return i == len(s)-1 || s[i+1] == ' '
}

// parseScalar parses a scalar value. Bare scalars may not contain quote
// characters or a colon followed by a space; those are reserved by the
// grammar and require quoting.
func parseScalar(s string, line, col int) (*document.Node, error) {
	switch s[0] {
	case '"':
		value, rest, err := unquoteDouble(s, line, col)
		if err != nil {
			return nil, err
		}
		if rest != "" {
			return nil, errAt(line, col+len(s)-len(rest), "unexpected content after closing quote")
		}
		return document.QuotedScalar(value), nil
	case '\'':
		end := strings.IndexByte(s[1:], '\'')
		if end < 0 {
			return nil, errAt(line, col, "unterminated single-quoted scalar")
		}
		if end+2 != len(s) {
			return nil, errAt(line, col+end+2, "unexpected content after closing quote")
		}
		return document.QuotedScalar(s[1 : end+1]), nil
	}
	if strings.ContainsAny(s, "\"'") {
		return nil, errAt(line, col, "bare scalar contains a quote character")
	}
	if i := strings.Index(s, ": "); i >= 0 {
		return nil, errAt(line, col+i, "bare scalar contains a reserved colon")
	}
	if strings.HasSuffix(s, ":") {
		return nil, errAt(line, col+len(s)-1, "bare scalar contains a reserved colon")
	}
	return document.Scalar(s), nil
}

// unquoteDouble consumes a double-quoted scalar supporting \" and \\ escapes.
// It returns the decoded value and any trailing content.
func unquoteDouble(s string, line, col int) (string, string, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch c {
		case '\\':
			if i+1 >= len(s) {
				return "", "", errAt(line, col+i, "dangling escape in quoted scalar")
			}
			next := s[i+1]
			if next != '"' && next != '\\' {
				return "", "", errAt(line, col+i, "unsupported escape \\%c", next)
			}
			b.WriteByte(next)
			i += 2
		case '"':
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", "", errAt(line, col, "unterminated quoted scalar")
}
