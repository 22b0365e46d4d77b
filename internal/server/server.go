package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"readtrack/internal/models"
	"readtrack/internal/reading"
	"readtrack/internal/tracker"
)

// Server exposes the tracking session as a read/write JSON API for the
// web client
type Server struct {
	session *tracker.Session
	logger  *zap.Logger

	// Set when the catalog failed to load; all /api routes answer 503 until
	// the process is restarted with a working source.
	loadErr error
}

// New creates a new API server over a session
func New(session *tracker.Session, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{session: session, logger: logger}
}

// SetLoadError marks the catalog as unavailable
func (s *Server) SetLoadError(err error) {
	s.loadErr = err
}

// RegisterRoutes registers API routes on the provided mux
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/medals", s.handleMedals)
	mux.HandleFunc("/api/books", s.handleBooks)
	mux.HandleFunc("/api/books/", s.handleBook)
}

// BookResponse is a book together with its derived display fields
type BookResponse struct {
	models.Book
	Progress    int                  `json:"progress"`
	StatusLabel string               `json:"statusLabel"`
	Calendar    []models.CalendarDay `json:"calendar,omitempty"`
}

// ActivityRequest is the request body for logging a reading activity
type ActivityRequest struct {
	Date  string `json:"date"`
	Pages int    `json:"pages"`
	Note  string `json:"note,omitempty"`
}

// CancelRequest is the request body for cancelling a reading
type CancelRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleMedals serves the medal display catalog (names, icons, colors,
// progress thresholds). Static metadata, so it stays up even when the book
// catalog failed to load.
func (s *Server) handleMedals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, reading.MedalCatalog())
}

// handleBooks returns the full book list with computed progress
func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	books := s.session.Books()
	responses := make([]BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, s.bookResponse(book, false))
	}

	writeJSON(w, http.StatusOK, responses)
}

// handleBook dispatches /api/books/{id} and its sub-routes
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/books/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book id")
		return
	}

	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}
	if len(parts) > 2 {
		http.NotFound(w, r)
		return
	}

	switch action {
	case "":
		s.handleBookDetail(w, r, id)
	case "calendar":
		s.handleCalendar(w, r, id)
	case "start":
		s.handleStart(w, r, id)
	case "activities":
		s.handleActivities(w, r, id)
	case "cancel":
		s.handleCancel(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleBookDetail(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	book, err := s.session.Book(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.bookResponse(book, true))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	days, err := s.session.Calendar(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	book, err := s.session.StartReading(id)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	s.logger.Info("Reading started via API", zap.Int64("book_id", id))
	writeJSON(w, http.StatusOK, s.bookResponse(book, true))
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("Failed to decode activity body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Date == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: date")
		return
	}
	if req.Pages == 0 {
		writeError(w, http.StatusBadRequest, "Pages must not be zero")
		return
	}

	book, err := s.session.LogActivity(id, req.Date, req.Pages, req.Note)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	s.logger.Info("Activity logged via API",
		zap.Int64("book_id", id),
		zap.String("date", req.Date),
		zap.Int("pages", req.Pages),
	)
	writeJSON(w, http.StatusCreated, s.bookResponse(book, true))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("Failed to decode cancel body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := s.session.CancelReading(id, req.Confirmed)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	s.logger.Info("Reading cancelled via API", zap.Int64("book_id", id))
	writeJSON(w, http.StatusOK, s.bookResponse(book, true))
}

// bookResponse decorates a book snapshot with its derived display fields
func (s *Server) bookResponse(book models.Book, withCalendar bool) BookResponse {
	response := BookResponse{
		Book:        book,
		StatusLabel: book.ReadingStatus.Label(),
	}
	if percent, err := s.session.Progress(book.ID); err == nil {
		response.Progress = percent
	}
	if withCalendar {
		if days, err := s.session.Calendar(book.ID); err == nil {
			response.Calendar = days
		}
	}
	return response
}

// available answers 503 when the catalog never loaded
func (s *Server) available(w http.ResponseWriter) bool {
	if s.loadErr == nil {
		return true
	}
	writeError(w, http.StatusServiceUnavailable, "Unable to load data")
	return false
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, tracker.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD")
	case errors.Is(err, tracker.ErrNotConfirmed):
		writeError(w, http.StatusConflict, "Cancellation requires confirmation")
	default:
		s.logger.Error("Session operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
