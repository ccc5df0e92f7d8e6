package parser

import (
	"strings"

	"github.com/deeklead/wfmend/internal/document"
)

// Serialize renders a node tree back to canonical text: two-space
// indentation, keys in insertion order, scalars quoted exactly when their
// quoting flag is set. Serializing an already-canonical tree reproduces the
// text that parsed into it byte for byte.
func Serialize(root *document.Node) string {
	var b strings.Builder
	writeNode(&b, root, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n *document.Node, depth int) {
	switch n.Kind {
	case document.KindMapping:
		writeMapping(b, n, depth)
	case document.KindSequence:
		writeSequence(b, n, depth)
	case document.KindScalar:
		indent(b, depth)
		b.WriteString(renderScalar(n))
		b.WriteByte('\n')
	}
}

func writeMapping(b *strings.Builder, n *document.Node, depth int) {
	for _, e := range n.Entries {
		indent(b, depth)
		b.WriteString(e.Key)
		b.WriteByte(':')
		if e.Value.Kind == document.KindScalar {
			b.WriteByte(' ')
			b.WriteString(renderScalar(e.Value))
			b.WriteByte('\n')
			continue
		}
		b.WriteByte('\n')
		writeNode(b, e.Value, depth+1)
	}
}

func writeSequence(b *strings.Builder, n *document.Node, depth int) {
	for _, item := range n.Items {
		indent(b, depth)
		switch item.Kind {
		case document.KindScalar:
			b.WriteString("- ")
			b.WriteString(renderScalar(item))
			b.WriteByte('\n')
		case document.KindMapping:
			// First entry shares the dash line; the rest align under it.
			b.WriteString("- ")
			first := item.Entries[0]
			b.WriteString(first.Key)
			b.WriteByte(':')
			if first.Value.Kind == document.KindScalar {
				b.WriteByte(' ')
				b.WriteString(renderScalar(first.Value))
				b.WriteByte('\n')
			} else {
				b.WriteByte('\n')
				writeNode(b, first.Value, depth+2)
			}
			rest := &document.Node{Kind: document.KindMapping, Entries: item.Entries[1:]}
			writeMapping(b, rest, depth+1)
		case document.KindSequence:
			b.WriteString("-\n")
			writeNode(b, item, depth+1)
		}
	}
}

func renderScalar(n *document.Node) string {
	if !n.Quoted {
		return n.Value
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(n.Value); i++ {
		c := n.Value[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat(" ", depth*IndentWidth))
}
