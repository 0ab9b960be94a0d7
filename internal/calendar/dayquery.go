package calendar

import (
	"sort"
	"time"
)

// SameDay reports whether two instants fall on the same calendar day when both
// are interpreted in the location of the reference time.
func SameDay(reference, candidate time.Time) bool {
	candidate = candidate.In(reference.Location())
	ry, rm, rd := reference.Date()
	cy, cm, cd := candidate.Date()
	return ry == cy && rm == cm && rd == cd
}

// EventsOn returns the events whose start time falls on the same calendar day
// as date, sorted ascending by start time. An event spanning midnight appears
// only under its start day; the end time plays no part in bucketing. Ties keep
// the collection's original order. The input is never mutated.
func EventsOn(date time.Time, events []Event) []Event {
	matched := make([]Event, 0)
	for _, event := range events {
		if SameDay(date, event.StartTime) {
			matched = append(matched, event.Clone())
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StartTime.Before(matched[j].StartTime)
	})

	return matched
}

// CategoriesOn returns the distinct event types present on the given day, in
// first-seen order. The full set is always returned; capping the number of
// decoration dots is the rendering layer's responsibility.
func CategoriesOn(date time.Time, events []Event) []EventType {
	seen := make(map[EventType]struct{})
	categories := make([]EventType, 0)
	for _, event := range EventsOn(date, events) {
		if _, ok := seen[event.EventType]; ok {
			continue
		}
		seen[event.EventType] = struct{}{}
		categories = append(categories, event.EventType)
	}
	return categories
}

// DayMarker summarises one calendar-grid cell: how many events start that day
// and which categories are present.
type DayMarker struct {
	Day        int
	Count      int
	Categories []EventType
}

// MonthMarkers derives the decoration data for every day of the given month
// that has at least one event. Days are interpreted in loc.
func MonthMarkers(year int, month time.Month, loc *time.Location, events []Event) map[int]DayMarker {
	if loc == nil {
		loc = time.Local
	}

	markers := make(map[int]DayMarker)
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	for day := first; day.Month() == month; day = day.AddDate(0, 0, 1) {
		matched := EventsOn(day, events)
		if len(matched) == 0 {
			continue
		}
		markers[day.Day()] = DayMarker{
			Day:        day.Day(),
			Count:      len(matched),
			Categories: CategoriesOn(day, events),
		}
	}
	return markers
}
