package reading

import "time"

// DateLayout is the wire format for calendar dates (day granularity)
const DateLayout = "2006-01-02"

// DisplayDateLayout is the human-facing date format (2-digit day and month)
const DisplayDateLayout = "02/01/2006"

// parseDay parses an ISO date at midnight UTC. Day granularity everywhere:
// constructing at midnight avoids off-by-one day counts from DST or timezone
// drift, and the calendar/streak logic depends on exact day counts.
func parseDay(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// Today returns the current date in ISO format
func Today() string {
	return time.Now().Format(DateLayout)
}

// FormatDate renders an ISO date for display (DD/MM/YYYY).
// An unparsable date is returned unchanged.
func FormatDate(date string) string {
	day, err := parseDay(date)
	if err != nil {
		return date
	}
	return day.Format(DisplayDateLayout)
}

// DaysBetween returns the whole-day difference between two ISO dates.
// An empty end means today. The result is negative when end precedes start;
// callers must guard. Unparsable dates count as zero distance.
func DaysBetween(start, end string) int {
	startDay, err := parseDay(start)
	if err != nil {
		return 0
	}

	var endDay time.Time
	if end == "" {
		now := time.Now()
		endDay = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		endDay, err = parseDay(end)
		if err != nil {
			return 0
		}
	}

	return int(endDay.Sub(startDay).Hours() / 24)
}

// DateRange enumerates every date from start to end inclusive, ascending.
// An empty end means today. Returns an empty slice when start is after end
// or either date is unparsable.
func DateRange(start, end string) []string {
	days := DaysBetween(start, end)
	if days < 0 {
		return []string{}
	}

	startDay, err := parseDay(start)
	if err != nil {
		return []string{}
	}

	dates := make([]string, 0, days+1)
	for i := 0; i <= days; i++ {
		dates = append(dates, startDay.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}
