package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"readtrack/internal/models"
	"readtrack/internal/reading"
	"readtrack/internal/source"
)

var (
	// ErrBookNotFound is returned for an unknown book id
	ErrBookNotFound = errors.New("book not found")

	// ErrNotConfirmed is returned when cancellation is attempted without the
	// caller asserting confirmation
	ErrNotConfirmed = errors.New("cancellation not confirmed")

	// ErrInvalidDate is returned for an activity date that is not YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid activity date")
)

// Session owns the in-memory book set for one tracking session and sequences
// every core call: history merge, delta apply, then projection recompute.
// A single mutex serializes access - the design is single-writer,
// single-reader, typical of a local UI session.
type Session struct {
	mu      sync.RWMutex
	src     source.Source
	books   map[int64]*models.Book
	tracker *reading.Tracker
	engine  *reading.Engine
	logger  *zap.Logger
}

// NewSession creates a session over the given catalog source
func NewSession(src source.Source, tracker *reading.Tracker, engine *reading.Engine, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		src:     src,
		books:   make(map[int64]*models.Book),
		tracker: tracker,
		engine:  engine,
		logger:  logger,
	}
}

// Load fetches the catalog once, backfills absent progress fields and
// attaches the initial achievement projection to every book
func (s *Session) Load(ctx context.Context) error {
	books, err := s.src.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load book catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = make(map[int64]*models.Book, len(books))
	for i := range books {
		book := books[i]
		s.tracker.BackfillDefaults(&book)
		s.engine.Initialize(&book)
		s.recompute(&book)
		s.books[book.ID] = &book
	}

	s.logger.Info("Catalog loaded", zap.Int("books", len(s.books)))
	return nil
}

// recompute refreshes the cached achievement and medal projections.
// Caller must hold the lock.
func (s *Session) recompute(book *models.Book) {
	percent := s.tracker.Percent(book.PagesRead, book.TotalPages)
	book.Achievements = s.engine.Update(book, percent)
	book.Medals = s.engine.EarnedMedals(book, percent)
}

// clone deep-copies a book. A plain struct copy would share the slice backing
// arrays with live session state, so a caller writing through a snapshot (or
// serializing one outside the lock) would race with in-place history merges.
// Caller must hold the lock.
func clone(book *models.Book) models.Book {
	out := *book
	out.ReadingHistory = make([]models.ReadingActivity, len(book.ReadingHistory))
	copy(out.ReadingHistory, book.ReadingHistory)
	if book.Achievements != nil {
		out.Achievements = append([]models.Achievement(nil), book.Achievements...)
	}
	if book.Medals != nil {
		out.Medals = append([]models.MedalType(nil), book.Medals...)
	}
	return out
}

// Books returns a snapshot of every book, sorted by id
func (s *Session) Books() []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]models.Book, 0, len(s.books))
	for _, book := range s.books {
		books = append(books, clone(book))
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].ID < books[j].ID
	})
	return books
}

// Book returns a snapshot of a single book
func (s *Session) Book(id int64) (models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return models.Book{}, ErrBookNotFound
	}
	return clone(book), nil
}

// Progress returns the current progress percentage of a book
func (s *Session) Progress(id int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return 0, ErrBookNotFound
	}
	return s.tracker.Percent(book.PagesRead, book.TotalPages), nil
}

// Calendar returns the derived heat-map view of a book, regenerated on every
// call
func (s *Session) Calendar(id int64) ([]models.CalendarDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return s.tracker.Calendar(book), nil
}

// StartReading begins the reading lifecycle for a book
func (s *Session) StartReading(id int64) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return models.Book{}, ErrBookNotFound
	}

	s.tracker.StartReading(book)
	s.recompute(book)

	s.logger.Info("Reading started",
		zap.Int64("book_id", id),
		zap.String("start_date", book.StartReadingDate),
	)
	return clone(book), nil
}

// LogActivity merges a page delta for the given date into the book's history
// and progress, then recomputes the projections. Negative deltas are
// corrections; a date whose merged count drops to zero disappears from the
// history.
func (s *Session) LogActivity(id int64, date string, pages int, note string) (models.Book, error) {
	if _, err := time.Parse(reading.DateLayout, date); err != nil {
		return models.Book{}, ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return models.Book{}, ErrBookNotFound
	}

	s.tracker.AddToHistory(book, date, pages)
	if note != "" {
		for i := range book.ReadingHistory {
			if book.ReadingHistory[i].Date == date {
				book.ReadingHistory[i].Note = note
				break
			}
		}
	}
	s.tracker.ApplyDelta(book, pages)
	s.recompute(book)

	s.logger.Info("Activity logged",
		zap.Int64("book_id", id),
		zap.String("date", date),
		zap.Int("pages", pages),
		zap.Int("pages_read", book.PagesRead),
		zap.String("status", string(book.ReadingStatus)),
	)
	return clone(book), nil
}

// CancelReading resets all progress for a book. The caller must assert that
// the user confirmed the cancellation; the confirmation dialog itself is a
// UI concern.
func (s *Session) CancelReading(id int64, confirmed bool) (models.Book, error) {
	if !confirmed {
		return models.Book{}, ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return models.Book{}, ErrBookNotFound
	}

	s.tracker.Reset(book)
	s.recompute(book)

	s.logger.Info("Reading cancelled", zap.Int64("book_id", id))
	return clone(book), nil
}
