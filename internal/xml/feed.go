package xml

import "github.com/beevik/etree"

// NewFeed builds a fresh feed document with the requested namespace prefixes
// declared on its root. Every call returns an independent document.
func NewFeed(prefixes ...string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(TagFeed)
	AddNamespaces(root, prefixes...)
	return doc
}

// NewEntry builds an unparented entry element with the requested namespace
// prefixes declared on it
func NewEntry(prefixes ...string) *etree.Element {
	entry := etree.NewElement(TagEntry)
	AddNamespaces(entry, prefixes...)
	return entry
}

// AddText appends <tag type="text">text</tag> to parent
func AddText(parent *etree.Element, tag, text string) *etree.Element {
	elem := parent.CreateElement(tag)
	elem.CreateAttr(AttrType, TextType)
	elem.SetText(text)
	return elem
}

// AddValue appends an empty <tag value="..."/> element, the shape used by
// gd and gCal properties
func AddValue(parent *etree.Element, tag, value string) *etree.Element {
	elem := parent.CreateElement(tag)
	elem.CreateAttr(AttrValue, value)
	return elem
}

// AddLink appends an atom:link element
func AddLink(parent *etree.Element, rel, href string) *etree.Element {
	link := parent.CreateElement(TagLink)
	link.CreateAttr(AttrRel, rel)
	link.CreateAttr(AttrType, ContentTypeAtom)
	link.CreateAttr(AttrHref, href)
	return link
}
