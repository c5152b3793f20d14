package outcome

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is one element of an outcome document. Nodes can only be
// grown: extensions append children but cannot see or replace
// what other contributors wrote.
type Node struct {
	name     string
	text     string
	cdata    bool
	children []*Node
}

// NewNode creates a detached element.
func NewNode(name string) *Node {
	return &Node{name: name}
}

// Name returns the element's local name.
func (n *Node) Name() string { return n.name }

// Element appends and returns an empty child element.
func (n *Node) Element(name string) *Node {
	child := NewNode(name)
	n.children = append(n.children, child)
	return child
}

// AddText appends a child element holding escaped character data.
func (n *Node) AddText(name, text string) *Node {
	child := n.Element(name)
	child.text = text
	return child
}

// AddCDATA appends a child element whose content is written as a
// CDATA section instead of entity-escaped text.
func (n *Node) AddCDATA(name, text string) *Node {
	child := n.AddText(name, text)
	child.cdata = true
	return child
}

// Text returns the element's own character data.
func (n *Node) Text() string { return n.text }

// IsCDATA reports whether the text is emitted as CDATA.
func (n *Node) IsCDATA() bool { return n.cdata }

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ChildNames lists the direct children's names in order.
func (n *Node) ChildNames() []string {
	names := make([]string, len(n.children))
	for i, c := range n.children {
		names[i] = c.name
	}
	return names
}

// Path follows a slash-separated chain of child names.
func (n *Node) Path(path string) *Node {
	cur := n
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if cur = cur.Child(seg); cur == nil {
			return nil
		}
	}
	return cur
}

// search finds the first descendant-or-self named name, depth
// first in document order.
func (n *Node) search(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.search(name); found != nil {
			return found
		}
	}
	return nil
}

// cdataElement lets encoding/xml write a CDATA section.
type cdataElement struct {
	Value string `xml:",cdata"`
}

func (n *Node) encode(enc *xml.Encoder, start xml.StartElement) error {
	if n.cdata {
		return enc.EncodeElement(cdataElement{Value: legalChars(n.text)}, start)
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.text != "" {
		if err := enc.EncodeToken(xml.CharData(n.text)); err != nil {
			return err
		}
	}
	for _, c := range n.children {
		if err := c.encode(enc, xml.StartElement{Name: xml.Name{Local: c.name}}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// legalChars replaces characters XML 1.0 cannot carry with U+FFFD,
// matching what encoding/xml does for escaped text.
func legalChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0x09 || r == 0x0A || r == 0x0D ||
			r >= 0x20 && r <= 0xD7FF ||
			r >= 0xE000 && r <= 0xFFFD ||
			r >= 0x10000 && r <= 0x10FFFF {
			return r
		}
		return '\uFFFD'
	}, s)
}

// Document is a whole outcome envelope.
type Document struct {
	Root      *Node
	Namespace string
}

// NewDocument creates a document with the given root element.
func NewDocument(rootName, namespace string) *Document {
	return &Document{Root: NewNode(rootName), Namespace: namespace}
}

// Bytes serialises the document with an XML declaration.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	start := xml.StartElement{Name: xml.Name{Local: d.Root.name}}
	if d.Namespace != "" {
		start.Attr = []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: d.Namespace}}
	}
	if err := d.Root.encode(enc, start); err != nil {
		return nil, fmt.Errorf("encode %s: %w", d.Root.name, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("flush document: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseDocument reads an XML document into a Node tree. Namespaces
// are dropped and CDATA sections become ordinary text.
func ParseDocument(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		doc   *Document
		stack []*Node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse outcome document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			var node *Node
			if len(stack) == 0 {
				if doc != nil {
					return nil, fmt.Errorf("parse outcome document: multiple root elements")
				}
				doc = &Document{Root: NewNode(t.Name.Local), Namespace: t.Name.Space}
				node = doc.Root
			} else {
				node = stack[len(stack)-1].Element(t.Name.Local)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("parse outcome document: no root element")
	}
	return doc, nil
}

// Find resolves path with descendant semantics on its first
// segment: "resultRecord/result" matches a resultRecord anywhere
// in the document, then walks direct children.
func (d *Document) Find(path string) *Node {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	anchor := d.Root.search(segs[0])
	if anchor == nil {
		return nil
	}
	if len(segs) == 1 {
		return anchor
	}
	return anchor.Path(strings.Join(segs[1:], "/"))
}

// Text returns the character data at path, or nil when the
// element is absent or has none. Whitespace-only content of
// container elements counts as none.
func (d *Document) Text(path string) *string {
	node := d.Find(path)
	if node == nil || node.text == "" {
		return nil
	}
	if node.Len() > 0 && strings.TrimSpace(node.text) == "" {
		return nil
	}
	text := node.text
	return &text
}
