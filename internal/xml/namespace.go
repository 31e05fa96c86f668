package xml

import "github.com/beevik/etree"

// Namespace definitions for the Atom based calendar data protocol
const (
	// Atom is the Atom syndication namespace, always the default namespace
	Atom = "http://www.w3.org/2005/Atom"
	// Batch carries batch protocol metadata (id, operation, status, interrupted)
	Batch = "http://schemas.google.com/gdata/batch"
	// GCal carries calendar specific fields
	GCal = "http://schemas.google.com/gCal/2005"
	// GData is the common data namespace (when, where, eventStatus, ...)
	GData = "http://schemas.google.com/g/2005"
)

// Prefixes used when writing documents
const (
	PrefixBatch = "batch"
	PrefixGCal  = "gCal"
	PrefixGData = "gd"
)

// PrefixNamespace maps the prefixes this package writes to their namespace URIs
var PrefixNamespace = map[string]string{
	PrefixBatch: Batch,
	PrefixGCal:  GCal,
	PrefixGData: GData,
}

// AddNamespaces declares Atom as the default namespace of elem plus every
// requested prefix. Unknown prefixes are ignored.
func AddNamespaces(elem *etree.Element, prefixes ...string) {
	if elem == nil {
		return
	}
	elem.CreateAttr("xmlns", Atom)
	for _, prefix := range prefixes {
		if uri, ok := PrefixNamespace[prefix]; ok {
			elem.CreateAttr("xmlns:"+prefix, uri)
		}
	}
}

// inNamespace reports whether elem lives in namespace ns. Unqualified
// elements in documents without a default namespace are treated as Atom.
func inNamespace(elem *etree.Element, ns string) bool {
	uri := elem.NamespaceURI()
	if uri == ns {
		return true
	}
	return ns == Atom && uri == "" && elem.Space == ""
}
