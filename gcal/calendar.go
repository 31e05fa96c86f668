package gcal

import (
	"fmt"
	"net/url"

	"github.com/beevik/etree"
	"github.com/cyp0633/libgcal/internal/xml"
)

// DefaultColor is used for new calendars; the service accepts only a fixed
// palette of 21 colors
const DefaultColor = "#528800"

const defaultSummary = "No summary"

// Calendar is a calendar collection
type Calendar struct {
	Title    string
	Summary  string
	TimeZone string
	Color    string

	// Populated from the service
	ID string
	// Path is the path of the calendar's events feed
	Path string
	// EditPath is where the calendar itself is modified or deleted
	EditPath string
}

// encode builds a standalone calendar entry document
func (c *Calendar) encode() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	entry := xml.NewEntry(xml.PrefixGData, xml.PrefixGCal)
	doc.SetRoot(entry)

	xml.AddText(entry, xml.TagTitle, c.Title)
	summary := c.Summary
	if summary == "" {
		summary = defaultSummary
	}
	xml.AddText(entry, xml.TagSummary, summary)
	xml.AddValue(entry, gCal(xml.TagTimezone), c.TimeZone)
	color := c.Color
	if color == "" {
		color = DefaultColor
	}
	xml.AddValue(entry, gCal(xml.TagColor), color)
	return doc
}

// decodeCalendar reads a calendar feed entry
func decodeCalendar(entry *etree.Element) *Calendar {
	cal := &Calendar{
		ID:       xml.ChildText(entry, xml.Atom, xml.TagID).OrEmpty(),
		Title:    xml.ChildText(entry, xml.Atom, xml.TagTitle).OrEmpty(),
		Summary:  xml.ChildText(entry, xml.Atom, xml.TagSummary).OrEmpty(),
		TimeZone: xml.ChildAttr(entry, xml.GCal, xml.TagTimezone, xml.AttrValue).OrEmpty(),
		Color:    xml.ChildAttr(entry, xml.GCal, xml.TagColor, xml.AttrValue).OrEmpty(),
	}
	if href, ok := xml.Link(entry, xml.RelAlternate).Get(); ok {
		cal.Path = linkPath(href)
	}
	if href, ok := xml.Link(entry, xml.RelEdit).Get(); ok {
		cal.EditPath = linkPath(href)
	}
	return cal
}

// processAddResponse reads the created calendar entry and records its path
func (c *Calendar) processAddResponse(body []byte) (string, error) {
	entry, err := xml.ParseEntry(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAddCalendar, err)
	}
	href, ok := xml.FirstLink(entry).Get()
	if !ok {
		return "", fmt.Errorf("%w: created entry has no link", ErrAddCalendar)
	}
	created := decodeCalendar(entry)
	c.ID = created.ID
	c.EditPath = created.EditPath
	c.Path = linkPath(href)
	return c.Path, nil
}

// linkPath returns the path component of an absolute link, or the link
// unchanged when it cannot be parsed
func linkPath(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.Path == "" {
		return href
	}
	return u.EscapedPath()
}
