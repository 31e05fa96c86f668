package gcal

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/cyp0633/libgcal/internal/xml"
)

// envelope is a batch feed under construction
type envelope struct {
	doc     *etree.Document
	entries int
}

// newEnvelope builds an empty batch feed. Nothing is shared between calls.
func newEnvelope() *envelope {
	return &envelope{doc: xml.NewFeed(xml.PrefixBatch, xml.PrefixGCal)}
}

// addEntry appends event as a batch entry with the given operation and
// correlation id
func (e *envelope) addEntry(event *Event, op Operation, batchID int) error {
	name, err := op.wireName()
	if err != nil {
		return err
	}
	entry, err := event.encode()
	if err != nil {
		return err
	}
	setBatchMeta(entry, name, batchID)

	if op != OpInsert {
		entry.CreateElement(xml.TagID).SetText(event.ID)
	}
	if op.needsEditLink() && event.EditLink != "" {
		xml.AddLink(entry, xml.RelEdit, event.EditLink)
	}

	e.doc.Root().AddChild(entry)
	e.entries++
	return nil
}

// addQuery appends a bare query entry carrying only the remote identifier
func (e *envelope) addQuery(id string, batchID int) {
	name, _ := OpQuery.wireName()
	entry := e.doc.Root().CreateElement(xml.TagEntry)
	entry.CreateElement(xml.TagID).SetText(id)
	setBatchMeta(entry, name, batchID)
	e.entries++
}

func setBatchMeta(entry *etree.Element, operation string, batchID int) {
	entry.CreateElement(batchTag(xml.TagID)).SetText(strconv.Itoa(batchID))
	entry.CreateElement(batchTag(xml.TagOperation)).CreateAttr(xml.AttrType, operation)
}

func (e *envelope) len() int {
	return e.entries
}

func (e *envelope) bytes() ([]byte, error) {
	return e.doc.WriteToBytes()
}
