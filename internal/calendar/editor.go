package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidClock is returned when a time-of-day input does not match the
// 24-hour HH:MM pattern. Malformed input is a validation failure, never
// silently defaulted.
var ErrInvalidClock = errors.New("calendar: time of day must match HH:MM")

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ParseClock parses a strict 24-hour "HH:MM" string.
func ParseClock(value string) (hour, minute int, err error) {
	value = strings.TrimSpace(value)
	if !clockPattern.MatchString(value) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, _ = strconv.Atoi(value[:2])
	minute, _ = strconv.Atoi(value[3:])
	return hour, minute, nil
}

// CombineDateTime overlays the parsed hour and minute from clock onto the
// calendar date of day, in day's location. Seconds and sub-second components
// are zeroed.
func CombineDateTime(day time.Time, clock string) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	year, month, dom := day.Date()
	return time.Date(year, month, dom, hour, minute, 0, 0, day.Location()), nil
}

// Draft is the editor's transient working copy of an Event. The date and the
// time-of-day for each boundary are held as separate inputs so they can be
// edited independently; Normalize combines them. A draft never touches the
// stored collection until the normalized event is committed.
type Draft struct {
	ID          string
	Title       string
	Description string
	EventType   EventType
	Location    string
	Kind        Kind
	Priority    Priority
	Color       Color
	Tags        []string

	StartDate  time.Time
	StartClock string
	EndDate    time.Time
	EndClock   string
}

// NewDraft opens a draft in create mode. A fresh identifier is generated once
// and held for the lifetime of the draft; day seeds both boundary dates.
func NewDraft(id string, day time.Time) Draft {
	return Draft{
		ID:         id,
		EventType:  EventTypePersonal,
		Kind:       KindMeeting,
		Priority:   PriorityNotUrgentImportant,
		Color:      DefaultColor,
		StartDate:  day,
		EndDate:    day,
		StartClock: "09:00",
		EndClock:   "10:00",
	}
}

// EditDraft opens a draft over an existing event, reusing its identifier
// unchanged. The boundary dates and clocks are split back out of the stored
// timestamps.
func EditDraft(event Event) Draft {
	return Draft{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		EventType:   event.EventType,
		Location:    event.Location,
		Kind:        event.Kind,
		Priority:    event.Priority,
		Color:       event.Color,
		Tags:        append([]string(nil), event.Tags...),
		StartDate:   event.StartTime,
		StartClock:  event.StartTime.Format("15:04"),
		EndDate:     event.EndTime,
		EndClock:    event.EndTime.Format("15:04"),
	}
}

// AddTag trims the text and appends it to the draft's tag list. Empty results
// and case-sensitive duplicates are dropped; insertion order is preserved.
func (d Draft) AddTag(text string) Draft {
	text = strings.TrimSpace(text)
	if text == "" {
		return d
	}
	for _, existing := range d.Tags {
		if existing == text {
			return d
		}
	}
	out := d
	out.Tags = append(append([]string(nil), d.Tags...), text)
	return out
}

// RemoveTag removes the matching entry, if present.
func (d Draft) RemoveTag(text string) Draft {
	out := d
	out.Tags = make([]string, 0, len(d.Tags))
	for _, existing := range d.Tags {
		if existing == text {
			continue
		}
		out.Tags = append(out.Tags, existing)
	}
	return out
}

// FieldErrors maps draft field names to human-readable validation messages.
type FieldErrors map[string]string

// ValidationError reports the draft fields that failed normalization. The
// draft itself is left untouched so the caller can correct and resubmit.
type ValidationError struct {
	Fields FieldErrors
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "calendar: draft validation failed"
}

func (v *ValidationError) add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(FieldErrors)
	}
	v.Fields[field] = message
}

func (v *ValidationError) hasErrors() bool {
	return len(v.Fields) > 0
}

// Normalize assembles a complete, valid Event from the draft. Each boundary
// timestamp is built by overlaying the HH:MM clock onto its calendar date.
// No ordering between start and end is enforced.
func (d Draft) Normalize() (Event, error) {
	vErr := &ValidationError{}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		vErr.add("title", "title is required")
	}

	if d.ID == "" {
		vErr.add("id", "identifier is required")
	}

	if !d.EventType.IsValid() {
		vErr.add("eventType", "unknown event category")
	}
	if !d.Kind.IsValid() {
		vErr.add("type", "unknown event type")
	}
	if !d.Priority.IsValid() {
		vErr.add("priority", "unknown priority level")
	}

	color := d.Color
	if color == "" {
		color = DefaultColor
	}
	if !color.IsValid() {
		vErr.add("color", "unknown color")
	}

	start, err := CombineDateTime(d.StartDate, d.StartClock)
	if err != nil {
		vErr.add("startTime", "start time must match HH:MM")
	}
	end, err := CombineDateTime(d.EndDate, d.EndClock)
	if err != nil {
		vErr.add("endTime", "end time must match HH:MM")
	}

	if vErr.hasErrors() {
		return Event{}, vErr
	}

	tags := make([]string, 0, len(d.Tags))
	seen := make(map[string]struct{}, len(d.Tags))
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return Event{
		ID:          d.ID,
		Title:       title,
		Description: d.Description,
		EventType:   d.EventType,
		StartTime:   start,
		EndTime:     end,
		Location:    d.Location,
		Kind:        d.Kind,
		Priority:    d.Priority,
		Color:       color,
		Tags:        tags,
	}, nil
}
