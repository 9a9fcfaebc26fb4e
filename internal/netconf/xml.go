package netconf

import (
	"encoding/xml"
	"strings"
)

// Node is a minimal, non-validating XML DOM element. Received payloads
// are never validated against the YANG schemas, so a bridge that only
// implements part of the configured module set still parses.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr
	Content  string
	Children []*Node
}

// Text returns the element's own character content, trimmed.
func (n *Node) Text() string { return strings.TrimSpace(n.Content) }

// UnmarshalXML builds the Node tree token by token; encoding/xml cannot
// unmarshal directly into a self-referential *Node without this hook.
func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.XMLName = start.Name
	n.Attrs = start.Attr
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child := &Node{}
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			n.Content += string(t)
		case xml.EndElement:
			return nil
		}
	}
}

// Parse decodes a single root element from an XML document.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			root := &Node{}
			if err := root.UnmarshalXML(dec, start); err != nil {
				return nil, err
			}
			return root, nil
		}
	}
}

// Child returns the first direct child whose local name matches name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every direct child whose local name matches name.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of the attribute named key, or "".
func (n *Node) Attr(key string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == key {
			return a.Value
		}
	}
	return ""
}

// pathSegment is one parsed step of an XPath-subset expression: an
// element name plus an optional list of "[key='value']" or
// "[key=N]" predicates.
type pathSegment struct {
	name       string
	predicates [][2]string // key, value pairs, in source order
}

// parsePath splits a slash-separated XPath-subset expression into
// segments, each with its bracketed predicates parsed out. Supports
// exactly what edit_port's ten-entry table and the LLDP extractor need:
// child-name matching, [name='value'] key predicates, and positional
// [index=N] predicates — not a general XPath grammar.
func parsePath(path string) []pathSegment {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	segs := make([]pathSegment, 0, len(parts))
	for _, p := range parts {
		seg := pathSegment{}
		if i := strings.IndexByte(p, '['); i >= 0 {
			seg.name = p[:i]
			rest := p[i:]
			for len(rest) > 0 && rest[0] == '[' {
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					break
				}
				pred := rest[1:end]
				if eq := strings.IndexByte(pred, '='); eq >= 0 {
					key := strings.TrimSpace(pred[:eq])
					val := strings.Trim(strings.TrimSpace(pred[eq+1:]), "'\"")
					seg.predicates = append(seg.predicates, [2]string{key, val})
				}
				rest = rest[end+1:]
			}
		} else {
			seg.name = p
		}
		segs = append(segs, seg)
	}
	return segs
}

// FindAll evaluates path against root and returns every matching
// descendant, supporting the child-name, key-predicate, and
// index-predicate constructs described on parsePath.
func FindAll(root *Node, path string) []*Node {
	segs := parsePath(path)
	level := []*Node{root}
	for _, seg := range segs {
		var next []*Node
		for _, n := range level {
			for _, c := range n.Children {
				if c.XMLName.Local != seg.name {
					continue
				}
				if matchesPredicates(c, seg.predicates) {
					next = append(next, c)
				}
			}
		}
		level = next
		if level == nil {
			return nil
		}
	}
	return level
}

func matchesPredicates(n *Node, preds [][2]string) bool {
	for _, p := range preds {
		key, val := p[0], p[1]
		if key == "index" {
			if idx := n.Child("index"); idx == nil || idx.Text() != val {
				return false
			}
			continue
		}
		if child := n.Child(key); child != nil {
			if child.Text() != val {
				return false
			}
			continue
		}
		if n.Attr(key) != val {
			return false
		}
	}
	return true
}
