// Package document defines the generic parsed representation of a workflow
// definition file and the result types produced while processing one.
package document

import "strconv"

// Kind identifies the variant a Node holds.
type Kind int

const (
	KindMapping Kind = iota
	KindSequence
	KindScalar
)

// Node is a tagged variant over the three structural shapes a document can
// contain. A Mapping preserves insertion order and rejects duplicate keys at
// parse time; a Scalar keeps an explicit quoting flag so serialization can
// reproduce the source form.
type Node struct {
	Kind    Kind
	Entries []Entry // KindMapping
	Items   []*Node // KindSequence
	Value   string  // KindScalar
	Quoted  bool    // KindScalar
}

// Entry is a single ordered key/value pair of a mapping.
type Entry struct {
	Key   string
	Value *Node
}

// NewMapping returns an empty mapping node.
func NewMapping() *Node {
	return &Node{Kind: KindMapping}
}

// NewSequence returns an empty sequence node.
func NewSequence() *Node {
	return &Node{Kind: KindSequence}
}

// Scalar returns an unquoted scalar node.
func Scalar(value string) *Node {
	return &Node{Kind: KindScalar, Value: value}
}

// QuotedScalar returns a scalar node that serializes inside double quotes.
func QuotedScalar(value string) *Node {
	return &Node{Kind: KindScalar, Value: value, Quoted: true}
}

// Get returns the value for key, or nil when the node is not a mapping or
// the key is absent.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	for _, e := range n.Entries {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Has reports whether the mapping contains key.
func (n *Node) Has(key string) bool {
	return n.Get(key) != nil
}

// Set replaces the value for key, or appends a new entry when the key is
// absent. Appending keeps synthesized keys after the original ones.
func (n *Node) Set(key string, value *Node) {
	for i, e := range n.Entries {
		if e.Key == key {
			n.Entries[i].Value = value
			return
		}
	}
	n.Entries = append(n.Entries, Entry{Key: key, Value: value})
}

// Append adds an item to a sequence node.
func (n *Node) Append(item *Node) {
	n.Items = append(n.Items, item)
}

// Path locates a node inside a tree as a sequence of mapping keys and
// sequence indices (indices rendered in decimal).
type Path []string

// String renders the path in dotted form, e.g. "jobs.build.steps.0".
func (p Path) String() string {
	out := ""
	for i, seg := range p {
		if i > 0 {
			out += "."
		}
		out += seg
	}
	return out
}

// Child returns a new path extended by one segment.
func (p Path) Child(seg string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, seg)
}

// Index returns a new path extended by a sequence index.
func (p Path) Index(i int) Path {
	return p.Child(strconv.Itoa(i))
}

// Lookup resolves a path against a tree. It returns nil when any segment
// does not resolve.
func Lookup(root *Node, path Path) *Node {
	cur := root
	for _, seg := range path {
		if cur == nil {
			return nil
		}
		switch cur.Kind {
		case KindMapping:
			cur = cur.Get(seg)
		case KindSequence:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur.Items) {
				return nil
			}
			cur = cur.Items[idx]
		default:
			return nil
		}
	}
	return cur
}
