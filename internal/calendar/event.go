package calendar

import "time"

// EventType categorises an event for colouring and grouping on the calendar
// grid. Values outside the known set are tolerated; consumers fall back to a
// default style rather than failing to render.
type EventType string

const (
	EventTypePersonal EventType = "personal"
	EventTypeHoliday  EventType = "holiday"
	EventTypeSchool   EventType = "school"
	EventTypeWork     EventType = "work"
	EventTypeOther    EventType = "other"
)

// IsValid reports whether the value is a member of the enumerated set.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypePersonal, EventTypeHoliday, EventTypeSchool, EventTypeWork, EventTypeOther:
		return true
	}
	return false
}

// Kind is the second, independent classification axis (persisted as "type").
type Kind string

const (
	KindMeeting  Kind = "meeting"
	KindPersonal Kind = "personal"
	KindAcademic Kind = "academic"
	KindTask     Kind = "task"
	KindReminder Kind = "reminder"
)

// IsValid reports whether the value is a member of the enumerated set.
func (k Kind) IsValid() bool {
	switch k {
	case KindMeeting, KindPersonal, KindAcademic, KindTask, KindReminder:
		return true
	}
	return false
}

// Priority places an event in an Eisenhower-matrix quadrant.
type Priority string

const (
	PriorityUrgentImportant       Priority = "urgent-important"
	PriorityNotUrgentImportant    Priority = "not-urgent-important"
	PriorityUrgentNotImportant    Priority = "urgent-not-important"
	PriorityNotUrgentNotImportant Priority = "not-urgent-not-important"
)

// IsValid reports whether the value is a member of the enumerated set.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgentImportant, PriorityNotUrgentImportant,
		PriorityUrgentNotImportant, PriorityNotUrgentNotImportant:
		return true
	}
	return false
}

// Color is the optional display colour for an event.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
	ColorOrange Color = "orange"
	ColorGray   Color = "gray"
)

// DefaultColor is applied when a draft leaves the colour unset.
const DefaultColor = ColorBlue

// IsValid reports whether the value is a member of the enumerated set.
func (c Color) IsValid() bool {
	switch c {
	case ColorBlue, ColorGreen, ColorRed, ColorYellow, ColorPurple, ColorPink, ColorOrange, ColorGray:
		return true
	}
	return false
}

// Event is a single scheduled calendar item. The JSON field names match the
// persisted blob layout, so a stored collection round-trips unchanged.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventType   EventType `json:"eventType"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Location    string    `json:"location"`
	Kind        Kind      `json:"type"`
	Priority    Priority  `json:"priority"`
	Color       Color     `json:"color"`
	Tags        []string  `json:"tags"`
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	out := e
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	return out
}

// CloneEvents returns a deep copy of the collection.
func CloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}
	out := make([]Event, len(events))
	for i, event := range events {
		out[i] = event.Clone()
	}
	return out
}
