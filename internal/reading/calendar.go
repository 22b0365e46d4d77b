package reading

import (
	"fmt"

	"readtrack/internal/models"
)

// Calendar builds the day-indexed intensity sequence from the start of
// reading through today. Books without a start date get an empty calendar.
// The sequence is regenerated fully on every call rather than patched
// incrementally, so history edits can never leave stale cells behind.
func (t *Tracker) Calendar(book *models.Book) []models.CalendarDay {
	if book.StartReadingDate == "" {
		return []models.CalendarDay{}
	}

	byDate := make(map[string]int, len(book.ReadingHistory))
	for _, activity := range book.ReadingHistory {
		byDate[activity.Date] = activity.PagesRead
	}

	dates := DateRange(book.StartReadingDate, t.today())
	days := make([]models.CalendarDay, 0, len(dates))
	for _, date := range dates {
		pagesRead := byDate[date]
		days = append(days, models.CalendarDay{
			Date:      date,
			PagesRead: pagesRead,
			Intensity: t.Intensity(pagesRead),
			Tooltip:   dayTooltip(date, pagesRead),
		})
	}
	return days
}

// dayTooltip renders the hover text for a single calendar cell
func dayTooltip(date string, pagesRead int) string {
	formatted := FormatDate(date)
	switch pagesRead {
	case 0:
		return fmt.Sprintf("%s: no reading", formatted)
	case 1:
		return fmt.Sprintf("%s: 1 page", formatted)
	default:
		return fmt.Sprintf("%s: %d pages", formatted, pagesRead)
	}
}
