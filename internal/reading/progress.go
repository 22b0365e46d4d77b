package reading

import (
	"math"
	"sort"
	"time"

	"readtrack/internal/models"
)

// IntensityThresholds holds the page counts separating the calendar
// intensity buckets. A day's bucket is the first threshold the count
// fits under; anything above High lands in the top bucket.
type IntensityThresholds struct {
	Low    int
	Medium int
	High   int
}

// DefaultIntensityThresholds returns the standard bucket boundaries
func DefaultIntensityThresholds() IntensityThresholds {
	return IntensityThresholds{Low: 5, Medium: 15, High: 30}
}

// Tracker owns the numeric and state invariants of a single book's reading
// progress. All operations are synchronous in-place mutations of the Book
// value passed in; the Tracker itself holds no book state.
type Tracker struct {
	thresholds IntensityThresholds
	now        func() time.Time
}

// NewTracker creates a tracker with the given bucket thresholds.
// A nil clock defaults to time.Now.
func NewTracker(thresholds IntensityThresholds, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{thresholds: thresholds, now: now}
}

func (t *Tracker) today() string {
	return t.now().Format(DateLayout)
}

// Percent computes the progress percentage, rounded to the nearest integer.
// A zero page capacity yields 0, never a division fault.
func (t *Tracker) Percent(pagesRead, totalPages int) int {
	if totalPages <= 0 {
		return 0
	}
	return int(math.Round(float64(pagesRead) / float64(totalPages) * 100))
}

// Intensity classifies a single day's page count into a 0..4 bucket
func (t *Tracker) Intensity(pagesRead int) int {
	switch {
	case pagesRead == 0:
		return 0
	case pagesRead <= t.thresholds.Low:
		return 1
	case pagesRead <= t.thresholds.Medium:
		return 2
	case pagesRead <= t.thresholds.High:
		return 3
	default:
		return 4
	}
}

// AddToHistory merges a page delta into the history entry for the given date.
// An existing entry accumulates additively (negative corrections included);
// an entry whose merged count drops to zero or below is removed. A new entry
// is only inserted for a positive count, and the history stays sorted
// descending by date.
func (t *Tracker) AddToHistory(book *models.Book, date string, pages int) {
	for i := range book.ReadingHistory {
		if book.ReadingHistory[i].Date != date {
			continue
		}
		book.ReadingHistory[i].PagesRead += pages
		if book.ReadingHistory[i].PagesRead <= 0 {
			book.ReadingHistory = append(book.ReadingHistory[:i], book.ReadingHistory[i+1:]...)
		}
		return
	}

	if pages <= 0 {
		return
	}

	book.ReadingHistory = append(book.ReadingHistory, models.ReadingActivity{
		Date:      date,
		PagesRead: pages,
	})
	sort.Slice(book.ReadingHistory, func(i, j int) bool {
		return book.ReadingHistory[i].Date > book.ReadingHistory[j].Date
	})
}

// ApplyDelta adds a page delta to the book's total, clamps it to
// [0, TotalPages], and re-derives the completion flag and reading status.
// Completion is not sticky: a negative correction that drops the count below
// capacity reopens the book as reading, never as not-started.
func (t *Tracker) ApplyDelta(book *models.Book, delta int) {
	book.PagesRead += delta

	if book.PagesRead < 0 {
		book.PagesRead = 0
	}
	if book.TotalPages > 0 && book.PagesRead > book.TotalPages {
		book.PagesRead = book.TotalPages
	}

	if book.TotalPages > 0 && book.PagesRead >= book.TotalPages {
		book.IsCompleted = true
		book.ReadingStatus = models.StatusCompleted
	} else if book.PagesRead < book.TotalPages {
		book.IsCompleted = false
		if book.ReadingStatus == models.StatusCompleted {
			book.ReadingStatus = models.StatusReading
		}
	}
}

// StartReading begins the reading lifecycle: status moves to reading and the
// start date is stamped with today. History is left untouched.
func (t *Tracker) StartReading(book *models.Book) {
	book.ReadingStatus = models.StatusReading
	book.StartReadingDate = t.today()
}

// Reset clears all progress unconditionally, regardless of current state
func (t *Tracker) Reset(book *models.Book) {
	book.ReadingStatus = models.StatusNotStarted
	book.PagesRead = 0
	book.IsCompleted = false
	book.ReadingHistory = []models.ReadingActivity{}
	book.StartReadingDate = ""
}

// BackfillDefaults fills absent progress fields with their zero values.
// Idempotent: already-present values are never overwritten.
func (t *Tracker) BackfillDefaults(book *models.Book) {
	if book.ReadingStatus == "" {
		book.ReadingStatus = models.StatusNotStarted
	}
	if book.ReadingHistory == nil {
		book.ReadingHistory = []models.ReadingActivity{}
	}
	if book.PagesRead < 0 {
		book.PagesRead = 0
	}
	if book.TotalPages < 0 {
		book.TotalPages = 0
	}
}
