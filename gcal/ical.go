package gcal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const (
	prodID        = "-//github.com/cyp0633/libgcal//NONSGML v1.0//EN"
	transpOpaque  = "OPAQUE"
	transpVisible = "TRANSPARENT"
)

// EventFromICal converts a VEVENT into an Event ready for insertion. Floating
// and all-day times are interpreted in loc.
func EventFromICal(event ical.Event, loc *time.Location) (*Event, error) {
	if loc == nil {
		loc = time.Local
	}
	e := &Event{}
	var err error
	if e.Title, err = optionalText(event.Props, ical.PropSummary); err != nil {
		return nil, err
	}
	if e.Description, err = optionalText(event.Props, ical.PropDescription); err != nil {
		return nil, err
	}
	if e.Location, err = optionalText(event.Props, ical.PropLocation); err != nil {
		return nil, err
	}

	start := event.Props.Get(ical.PropDateTimeStart)
	if start == nil {
		return nil, fmt.Errorf("event %q has no start time", e.Title)
	}
	if e.StartsAt, err = event.DateTimeStart(loc); err != nil {
		return nil, fmt.Errorf("failed to parse DTSTART: %w", err)
	}
	// All-day events carry no end time. Timed ones end at DTEND, at
	// DTSTART+DURATION, or at DTSTART when neither is given.
	if start.ValueType() != ical.ValueDate {
		if e.EndsAt, err = event.DateTimeEnd(loc); err != nil {
			return nil, fmt.Errorf("failed to read event end: %w", err)
		}
	}

	transp, err := optionalText(event.Props, ical.PropTransparency)
	if err != nil {
		return nil, err
	}
	e.Transparent = strings.EqualFold(transp, transpVisible)
	return e, nil
}

func optionalText(props ical.Props, name string) (string, error) {
	if props.Get(name) == nil {
		return "", nil
	}
	text, err := props.Text(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return text, nil
}

// ICal converts the event into a VEVENT. Events without a remote id get a
// random UID.
func (e *Event) ICal() *ical.Event {
	event := ical.NewEvent()
	uid := e.ID
	if uid == "" {
		uid = uuid.New().String()
	}
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetText(ical.PropSummary, e.Title)
	if e.Description != "" {
		event.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.Location != "" {
		event.Props.SetText(ical.PropLocation, e.Location)
	}
	if e.AllDay() {
		dtstart := ical.NewProp(ical.PropDateTimeStart)
		dtstart.SetDate(e.StartsAt)
		event.Props.Set(dtstart)
	} else {
		event.Props.SetDateTime(ical.PropDateTimeStart, e.StartsAt)
		event.Props.SetDateTime(ical.PropDateTimeEnd, e.EndsAt)
	}
	if e.Transparent {
		event.Props.SetText(ical.PropTransparency, transpVisible)
	} else {
		event.Props.SetText(ical.PropTransparency, transpOpaque)
	}
	return event
}

// ReadICal decodes every VEVENT of an iCalendar stream
func ReadICal(r io.Reader, loc *time.Location) ([]*Event, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to parse iCalendar data: %w", err)
	}
	var events []*Event
	for _, ev := range cal.Events() {
		e, err := EventFromICal(ev, loc)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// WriteICal encodes events as a single VCALENDAR
func WriteICal(w io.Writer, events []*Event) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	for _, e := range events {
		cal.Children = append(cal.Children, e.ICal().Component)
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
