package models

// ReadingStatus represents the lifecycle state of a book
type ReadingStatus string

const (
	StatusNotStarted ReadingStatus = "not-started"
	StatusReading    ReadingStatus = "reading"
	StatusCompleted  ReadingStatus = "completed"
)

// Label returns the display text for a reading status
func (s ReadingStatus) Label() string {
	switch s {
	case StatusReading:
		return "In Progress"
	case StatusCompleted:
		return "Read"
	default:
		return "Not Started"
	}
}

// MedalType represents a cosmetic medal tier
type MedalType string

const (
	MedalNone     MedalType = "none"
	MedalBronze   MedalType = "bronze"
	MedalSilver   MedalType = "silver"
	MedalGold     MedalType = "gold"
	MedalEmerald  MedalType = "emerald"
	MedalPlatinum MedalType = "platinum"
)

// Book represents a book in the catalog together with its reading progress.
// JSON tags match the catalog file format (books.json).
type Book struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	CoverImageURL string `json:"coverImageUrl"`
	Year          int    `json:"year,omitempty"`
	Genre         string `json:"genre,omitempty"`

	TotalPages       int           `json:"totalPages"`
	PagesRead        int           `json:"pagesRead"`
	IsCompleted      bool          `json:"isCompleted"`
	ReadingStatus    ReadingStatus `json:"readingStatus"`
	StartReadingDate string        `json:"startReadingDate,omitempty"`

	// ReadingHistory holds one entry per date, sorted descending by date
	ReadingHistory []ReadingActivity `json:"readingHistory"`

	// Cached projections, recomputed after every mutation. Not authoritative:
	// everything here derives from PagesRead and ReadingHistory.
	Achievements []Achievement `json:"achievements,omitempty"`
	Medals       []MedalType   `json:"medals,omitempty"`
}

// ReadingActivity records pages read on a single date
type ReadingActivity struct {
	Date      string `json:"date"` // YYYY-MM-DD, unique within a book's history
	PagesRead int    `json:"pagesRead"`
	Note      string `json:"note,omitempty"`
}

// Achievement is the evaluated result of a single achievement rule
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Completed   bool      `json:"completed"`
	Medal       MedalType `json:"medal,omitempty"` // set only when completed
}

// CalendarDay is one cell of the reading heat-map
type CalendarDay struct {
	Date      string `json:"date"`
	PagesRead int    `json:"pagesRead"`
	Intensity int    `json:"intensity"` // 0..4
	Tooltip   string `json:"tooltip,omitempty"`
}
