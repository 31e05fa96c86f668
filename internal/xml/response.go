package xml

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/samber/mo"
)

// ParseFeed parses an Atom feed document and returns it together with its
// entry elements in document order
func ParseFeed(data []byte) (*etree.Document, []*etree.Element, error) {
	doc, err := parseRoot(data, TagFeed)
	if err != nil {
		return nil, nil, err
	}
	return doc, Children(doc.Root(), Atom, TagEntry), nil
}

// ParseEntry parses a single Atom entry document
func ParseEntry(data []byte) (*etree.Element, error) {
	doc, err := parseRoot(data, TagEntry)
	if err != nil {
		return nil, err
	}
	return doc.Root(), nil
}

func parseRoot(data []byte, tag string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	if root.Tag != tag || !inNamespace(root, Atom) {
		return nil, fmt.Errorf("invalid root tag: %s", root.FullTag())
	}
	return doc, nil
}

// Child returns the first child of elem named local in namespace ns, or nil.
// etree's SelectElement ignores namespaces for unprefixed queries, which
// would confuse atom:id with batch:id.
func Child(elem *etree.Element, ns, local string) *etree.Element {
	if elem == nil {
		return nil
	}
	for _, child := range elem.ChildElements() {
		if child.Tag == local && inNamespace(child, ns) {
			return child
		}
	}
	return nil
}

// Children returns all children of elem named local in namespace ns
func Children(elem *etree.Element, ns, local string) []*etree.Element {
	if elem == nil {
		return nil
	}
	var out []*etree.Element
	for _, child := range elem.ChildElements() {
		if child.Tag == local && inNamespace(child, ns) {
			out = append(out, child)
		}
	}
	return out
}

// ChildText returns the trimmed text of a child element, if present
func ChildText(elem *etree.Element, ns, local string) mo.Option[string] {
	child := Child(elem, ns, local)
	if child == nil {
		return mo.None[string]()
	}
	return mo.Some(strings.TrimSpace(child.Text()))
}

// ChildAttr returns an attribute of a child element, if both are present
func ChildAttr(elem *etree.Element, ns, local, attr string) mo.Option[string] {
	child := Child(elem, ns, local)
	if child == nil {
		return mo.None[string]()
	}
	if a := child.SelectAttr(attr); a != nil {
		return mo.Some(a.Value)
	}
	return mo.None[string]()
}

// Link returns the href of the first atom:link with the given relation
func Link(entry *etree.Element, rel string) mo.Option[string] {
	for _, link := range Children(entry, Atom, TagLink) {
		if link.SelectAttrValue(AttrRel, "") == rel {
			if href := link.SelectAttr(AttrHref); href != nil {
				return mo.Some(href.Value)
			}
		}
	}
	return mo.None[string]()
}

// FirstLink returns the href of the first atom:link regardless of relation
func FirstLink(entry *etree.Element) mo.Option[string] {
	for _, link := range Children(entry, Atom, TagLink) {
		if href := link.SelectAttr(AttrHref); href != nil {
			return mo.Some(href.Value)
		}
	}
	return mo.None[string]()
}

// ElementString serializes a detached copy of elem, for diagnostics
func ElementString(elem *etree.Element) string {
	if elem == nil {
		return ""
	}
	doc := etree.NewDocument()
	doc.AddChild(elem.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}
