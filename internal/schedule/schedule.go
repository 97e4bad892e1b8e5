package schedule

import (
	"regexp" // Regular expressions
	"sort"   // Sorting day sets
	"strings" // String manipulation
	"time"   // Date arithmetic for recurrence bounds
)

// Recurrence is the parsed form of a class schedule string.
// Days uses the Sunday=0 .. Saturday=6 convention.
type Recurrence struct {
	Days  []int  `json:"days"`  // Weekdays the class runs on, ascending
	Start string `json:"start"` // Start time, HH:MM
	End   string `json:"end"`   // End time, HH:MM
}

// timeRangeRe matches the parenthesized "(HH:MM-HH:MM)" part of a schedule.
var timeRangeRe = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)

// dayTokens maps the regional weekday tokens to Sunday=0 weekday numbers:
// "2" is Monday .. "7" is Saturday.
var dayTokens = map[string]int{"2": 1, "3": 2, "4": 3, "5": 4, "6": 5, "7": 6}

// Parse converts a schedule string like "2,4,6 (08:00-10:00)" into a
// Recurrence. Sunday is written as CN, SUN or 8. Returns ok=false for an
// absent, malformed or time-less string; callers must treat that as "no
// calendar entry", never as a fatal error.
func Parse(s string) (*Recurrence, bool) {
	if s == "" {
		return nil, false
	}
	parts := strings.SplitN(s, "(", 2) // Day tokens before the parenthesis, time range inside
	if len(parts) < 2 {
		return nil, false // No time range
	}
	partDay := strings.ToUpper(strings.TrimSpace(parts[0]))
	m := timeRangeRe.FindStringSubmatch(parts[1])
	if m == nil {
		return nil, false // Malformed time range
	}
	var days []int
	for tok, day := range dayTokens {
		if strings.Contains(partDay, tok) {
			days = append(days, day)
		}
	}
	// Sunday markers: CN (Chu Nhat), SUN, or the numeral 8
	if strings.Contains(partDay, "CN") || strings.Contains(partDay, "SUN") || strings.Contains(partDay, "8") {
		days = append(days, 0)
	}
	sort.Ints(days) // Canonical ascending order
	return &Recurrence{Days: days, Start: m[1], End: m[2]}, true
}

// RunsOn reports whether the recurrence includes the given weekday.
func (r *Recurrence) RunsOn(day time.Weekday) bool {
	for _, d := range r.Days {
		if d == int(day) {
			return true
		}
	}
	return false
}

// EndRecur converts an inclusive YYYY-MM-DD end date into the exclusive
// next-day bound recurring calendar renderers expect. Empty in, empty out.
func EndRecur(endDate string) string {
	if endDate == "" {
		return ""
	}
	d, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, 1).Format("2006-01-02")
}

// Event is a recurring calendar entry assembled from a class schedule.
type Event struct {
	Title      string         `json:"title"`           // Display title
	DaysOfWeek []int          `json:"daysOfWeek"`      // Recurrence weekdays
	StartTime  string         `json:"startTime"`       // HH:MM:SS
	EndTime    string         `json:"endTime"`         // HH:MM:SS
	StartRecur string         `json:"startRecur"`      // First day, YYYY-MM-DD
	EndRecur   string         `json:"endRecur,omitempty"` // Exclusive last day
	Color      string         `json:"color"`           // Render color
	URL        string         `json:"url,omitempty"`   // Meeting link
	Extended   map[string]any `json:"extendedProps,omitempty"` // Extra render data
}

// NewEvent builds a recurring event from a parsed schedule and the class
// date window.
func NewEvent(title string, rec *Recurrence, startDate, endDate, color string) Event {
	return Event{
		Title:      title,
		DaysOfWeek: rec.Days,
		StartTime:  rec.Start + ":00", // Calendar renderers want seconds
		EndTime:    rec.End + ":00",
		StartRecur: startDate,
		EndRecur:   EndRecur(endDate),
		Color:      color,
	}
}
