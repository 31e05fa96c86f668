package gcal

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/cyp0633/libgcal/internal/xml"
)

const (
	eventKindScheme = xml.GData + "#kind"
	eventKindTerm   = xml.GData + "#event"
	eventConfirmed  = xml.GData + "#event.confirmed"
	eventOpaque     = xml.GData + "#event.opaque"
	eventTransp     = xml.GData + "#event.transparent"

	dateTimeLayout = "2006-01-02T15:04:05"
	dateLayout     = "2006-01-02"
)

// Event is a calendar event. ID and EditLink are owned by the service: ID is
// assigned when an insert succeeds and EditLink is refreshed before every
// update or delete.
type Event struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	// EndsAt zero makes an all-day event starting on StartsAt's date
	EndsAt      time.Time
	Transparent bool

	// ID is the remote identifier
	ID string
	// EditLink is the concurrency token required to mutate the event
	EditLink string
}

// AllDay reports whether the event has no end time
func (e *Event) AllDay() bool {
	return e.EndsAt.IsZero()
}

// encode serializes the event's business fields into a fresh entry element
func (e *Event) encode() (*etree.Element, error) {
	if !e.EndsAt.IsZero() && e.StartsAt.After(e.EndsAt) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidTimes, e.StartsAt, e.EndsAt)
	}

	entry := xml.NewEntry(xml.PrefixGData)
	category := entry.CreateElement(xml.TagCategory)
	category.CreateAttr(xml.AttrScheme, eventKindScheme)
	category.CreateAttr(xml.AttrTerm, eventKindTerm)
	xml.AddValue(entry, gd(xml.TagEventStatus), eventConfirmed)

	xml.AddText(entry, xml.TagTitle, e.Title)
	xml.AddText(entry, xml.TagContent, e.Description)

	if !e.StartsAt.IsZero() {
		when := entry.CreateElement(gd(xml.TagWhen))
		if e.AllDay() {
			when.CreateAttr(xml.AttrStartTime, e.StartsAt.Format(dateLayout))
		} else {
			when.CreateAttr(xml.AttrStartTime, e.StartsAt.Format(dateTimeLayout))
			when.CreateAttr(xml.AttrEndTime, e.EndsAt.Format(dateTimeLayout))
		}
	}

	where := entry.CreateElement(gd(xml.TagWhere))
	where.CreateAttr(xml.AttrValueString, e.Location)

	transparency := eventOpaque
	if e.Transparent {
		transparency = eventTransp
	}
	xml.AddValue(entry, gd(xml.TagTransparency), transparency)

	return entry, nil
}

func gd(tag string) string {
	return xml.PrefixGData + ":" + tag
}

func batchTag(tag string) string {
	return xml.PrefixBatch + ":" + tag
}

func gCal(tag string) string {
	return xml.PrefixGCal + ":" + tag
}
