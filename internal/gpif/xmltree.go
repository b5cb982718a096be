package gpif

import (
	"encoding/xml"
	"io"
	"strings"
)

// Node is a namespace-agnostic element tree node: tag name, attributes,
// children, and any direct text content. encoding/xml's Decoder is walked
// once into this shape so the transformer can do child-by-tag and
// attribute lookups without repeated token-stream decoding.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// ParseDocument decodes data into its root Node.
func ParseDocument(data []byte) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	var stack []*Node
	var root *Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &XMLError{Detail: err.Error()}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, &XMLError{Detail: "no root element found"}
	}
	return root, nil
}

// Child returns the first direct child named name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children named name.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ChildText returns the trimmed text of the first direct child named name,
// or "" if absent.
func (n *Node) ChildText(name string) string {
	c := n.Child(name)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text)
}

// TrimmedText returns n's own text, trimmed.
func (n *Node) TrimmedText() string {
	return strings.TrimSpace(n.Text)
}

// Attr returns an attribute's value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// fields splits a space-separated list, discarding empty fields (handles
// repeated whitespace and leading/trailing space).
func fields(s string) []string {
	return strings.Fields(s)
}
