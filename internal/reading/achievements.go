package reading

import (
	"time"

	"readtrack/internal/models"
)

// Achievement catalog IDs
const (
	AchievementCompleteBook = "complete_book"
	AchievementDailyReader  = "daily_reader"
	AchievementSpeedReader  = "speed_reader"
)

// DefaultMaxSpeedReadDays is the speed_reader completion window (inclusive)
const DefaultMaxSpeedReadDays = 30

// MedalInfo carries the display metadata and progress threshold of one
// medal tier, served to the web client as-is
type MedalInfo struct {
	Type             models.MedalType `json:"type"`
	Name             string           `json:"name"`
	Icon             string           `json:"icon"`
	Color            string           `json:"color"`
	ProgressRequired int              `json:"progressRequired"`
}

// MedalCatalog returns the display metadata for every medal tier
func MedalCatalog() map[models.MedalType]MedalInfo {
	return map[models.MedalType]MedalInfo{
		models.MedalNone:     {Type: models.MedalNone, Name: "No Medal", Icon: "⚪", Color: "#e0e0e0", ProgressRequired: 0},
		models.MedalBronze:   {Type: models.MedalBronze, Name: "Bronze", Icon: "🥉", Color: "#cd7f32", ProgressRequired: 25},
		models.MedalSilver:   {Type: models.MedalSilver, Name: "Silver", Icon: "🥈", Color: "#c0c0c0", ProgressRequired: 50},
		models.MedalGold:     {Type: models.MedalGold, Name: "Gold", Icon: "🥇", Color: "#ffd700", ProgressRequired: 75},
		models.MedalEmerald:  {Type: models.MedalEmerald, Name: "Emerald", Icon: "💎", Color: "#50c878", ProgressRequired: 100},
		models.MedalPlatinum: {Type: models.MedalPlatinum, Name: "Platinum", Icon: "🏆", Color: "#e5e4e2", ProgressRequired: 100},
	}
}

// progressTiers are the medal tiers awardable by progress threshold, in
// descending threshold order. Platinum is excluded: it is only earned through
// achievements. Emerald precedes gold so that exactly one tier matches at 100.
var progressTiers = []MedalInfo{
	{Type: models.MedalEmerald, ProgressRequired: 100},
	{Type: models.MedalGold, ProgressRequired: 75},
	{Type: models.MedalSilver, ProgressRequired: 50},
	{Type: models.MedalBronze, ProgressRequired: 25},
}

// AchievementSpec is a catalog entry for one achievement rule
type AchievementSpec struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Medal       models.MedalType
}

// AchievementCatalog returns the fixed achievement catalog, in evaluation
// order
func AchievementCatalog() []AchievementSpec {
	return []AchievementSpec{
		{
			ID:          AchievementCompleteBook,
			Name:        "Book Complete",
			Description: "Finish 100% of the book",
			Icon:        "💎",
			Medal:       models.MedalEmerald,
		},
		{
			ID:          AchievementDailyReader,
			Name:        "Daily Reader",
			Description: "Read every single day until finishing the book",
			Icon:        "📅",
			Medal:       models.MedalPlatinum,
		},
		{
			ID:          AchievementSpeedReader,
			Name:        "Speed Reader",
			Description: "Finish the book in 30 days or less",
			Icon:        "⚡",
			Medal:       models.MedalPlatinum,
		},
	}
}

// Engine evaluates achievement rules against a book snapshot and derives the
// earned medal set. It reads book state but never mutates progress fields.
//
// The daily_reader streak is checked from startReadingDate through today, not
// through the completion date. A gap appearing after an early completion
// therefore revokes the achievement on the next recompute. Intentional:
// the projection is recomputed after every mutation and consumers rely on
// this behavior.
type Engine struct {
	catalog          []AchievementSpec
	maxSpeedReadDays int
	now              func() time.Time
}

// NewEngine creates an achievement engine. A non-positive window defaults to
// DefaultMaxSpeedReadDays and a nil clock to time.Now.
func NewEngine(maxSpeedReadDays int, now func() time.Time) *Engine {
	if maxSpeedReadDays <= 0 {
		maxSpeedReadDays = DefaultMaxSpeedReadDays
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		catalog:          AchievementCatalog(),
		maxSpeedReadDays: maxSpeedReadDays,
		now:              now,
	}
}

func (e *Engine) today() string {
	return e.now().Format(DateLayout)
}

// ProgressMedal returns the highest progress-threshold medal the given
// percentage meets, or none
func (e *Engine) ProgressMedal(percent int) models.MedalType {
	for _, tier := range progressTiers {
		if percent >= tier.ProgressRequired {
			return tier.Type
		}
	}
	return models.MedalNone
}

// DailyStreak reports whether every date from the start of reading through
// today has a history entry. Books without a start date or history never
// qualify.
func (e *Engine) DailyStreak(book *models.Book) bool {
	if book.StartReadingDate == "" || len(book.ReadingHistory) == 0 {
		return false
	}

	recorded := make(map[string]struct{}, len(book.ReadingHistory))
	for _, activity := range book.ReadingHistory {
		recorded[activity.Date] = struct{}{}
	}

	expected := DateRange(book.StartReadingDate, e.today())
	if len(expected) == 0 {
		return false
	}
	for _, date := range expected {
		if _, ok := recorded[date]; !ok {
			return false
		}
	}
	return true
}

// SpeedRead reports whether the book was completed within the speed-read
// window, boundary inclusive
func (e *Engine) SpeedRead(book *models.Book) bool {
	if !book.IsCompleted || book.StartReadingDate == "" {
		return false
	}
	daysTaken := DaysBetween(book.StartReadingDate, e.completionDate(book))
	return daysTaken <= e.maxSpeedReadDays
}

// completionDate is the most recent history entry's date, or today when no
// history exists. History is kept sorted descending, so the first entry is
// the most recent.
func (e *Engine) completionDate(book *models.Book) string {
	if len(book.ReadingHistory) > 0 {
		return book.ReadingHistory[0].Date
	}
	return e.today()
}

// Update evaluates every catalog rule against the book and its current
// progress percentage, returning the full achievement projection
func (e *Engine) Update(book *models.Book, percent int) []models.Achievement {
	achievements := make([]models.Achievement, 0, len(e.catalog))
	for _, spec := range e.catalog {
		var completed bool
		switch spec.ID {
		case AchievementCompleteBook:
			completed = percent >= 100
		case AchievementDailyReader:
			completed = book.IsCompleted && e.DailyStreak(book)
		case AchievementSpeedReader:
			completed = e.SpeedRead(book)
		}

		achievement := models.Achievement{
			ID:          spec.ID,
			Name:        spec.Name,
			Description: spec.Description,
			Icon:        spec.Icon,
			Completed:   completed,
		}
		if completed {
			achievement.Medal = spec.Medal
		}
		achievements = append(achievements, achievement)
	}
	return achievements
}

// EarnedMedals returns the deduplicated medal set: the progress-threshold
// medal plus the medal of every completed achievement
func (e *Engine) EarnedMedals(book *models.Book, percent int) []models.MedalType {
	var medals []models.MedalType
	add := func(medal models.MedalType) {
		if medal == models.MedalNone {
			return
		}
		for _, m := range medals {
			if m == medal {
				return
			}
		}
		medals = append(medals, medal)
	}

	add(e.ProgressMedal(percent))
	for _, achievement := range e.Update(book, percent) {
		if achievement.Completed {
			add(achievement.Medal)
		}
	}
	return medals
}

// Initialize attaches a zero-progress achievement projection to a book that
// has none yet
func (e *Engine) Initialize(book *models.Book) {
	if book.Achievements == nil {
		book.Achievements = e.Update(book, 0)
	}
}
