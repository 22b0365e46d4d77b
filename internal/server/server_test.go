package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readtrack/internal/models"
	"readtrack/internal/reading"
	"readtrack/internal/source/stubs"
	"readtrack/internal/tracker"
)

func newTestServer(t *testing.T, today string, books ...models.Book) *httptest.Server {
	t.Helper()

	day, err := time.Parse(reading.DateLayout, today)
	require.NoError(t, err)
	clock := func() time.Time { return day }

	src := stubs.NewMockSource()
	for _, book := range books {
		src.AddBook(book)
	}

	session := tracker.NewSession(
		src,
		reading.NewTracker(reading.DefaultIntensityThresholds(), clock),
		reading.NewEngine(reading.DefaultMaxSpeedReadDays, clock),
		nil,
	)
	require.NoError(t, session.Load(context.Background()))

	mux := http.NewServeMux()
	New(session, nil).RegisterRoutes(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func decodeBook(t *testing.T, resp *http.Response) BookResponse {
	t.Helper()
	defer resp.Body.Close()
	var body BookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, "2024-01-10")

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ListBooks(t *testing.T) {
	ts := newTestServer(t, "2024-01-10",
		models.Book{ID: 1, Title: "Dune", TotalPages: 400, PagesRead: 100, ReadingStatus: models.StatusReading},
		models.Book{ID: 2, Title: "The Hobbit", TotalPages: 310},
	)

	resp, err := http.Get(ts.URL + "/api/books")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var books []BookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&books))
	require.Len(t, books, 2)

	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, 25, books[0].Progress)
	assert.Equal(t, "In Progress", books[0].StatusLabel)
	assert.Empty(t, books[0].Calendar, "list view carries no calendar")

	assert.Equal(t, "Not Started", books[1].StatusLabel)
}

func TestServer_BookDetail(t *testing.T) {
	ts := newTestServer(t, "2024-01-12",
		models.Book{
			ID:               1,
			Title:            "Dune",
			TotalPages:       400,
			PagesRead:        100,
			ReadingStatus:    models.StatusReading,
			StartReadingDate: "2024-01-10",
			ReadingHistory: []models.ReadingActivity{
				{Date: "2024-01-10", PagesRead: 100},
			},
		},
	)

	resp, err := http.Get(ts.URL + "/api/books/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	book := decodeBook(t, resp)
	assert.Equal(t, int64(1), book.ID)
	assert.Equal(t, 25, book.Progress)
	require.Len(t, book.Calendar, 3)
	assert.Equal(t, "2024-01-10", book.Calendar[0].Date)
	assert.Equal(t, 4, book.Calendar[0].Intensity)
}

func TestServer_BookDetail_NotFound(t *testing.T) {
	ts := newTestServer(t, "2024-01-10")

	resp, err := http.Get(ts.URL + "/api/books/42")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_BookDetail_InvalidID(t *testing.T) {
	ts := newTestServer(t, "2024-01-10")

	resp, err := http.Get(ts.URL + "/api/books/abc")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_StartReading(t *testing.T) {
	ts := newTestServer(t, "2024-01-10",
		models.Book{ID: 1, TotalPages: 100},
	)

	resp := postJSON(t, ts.URL+"/api/books/1/start", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	book := decodeBook(t, resp)
	assert.Equal(t, models.StatusReading, book.ReadingStatus)
	assert.Equal(t, "2024-01-10", book.StartReadingDate)
	require.Len(t, book.Calendar, 1)
}

func TestServer_LogActivity(t *testing.T) {
	ts := newTestServer(t, "2024-01-10",
		models.Book{ID: 1, TotalPages: 100},
	)

	resp := postJSON(t, ts.URL+"/api/books/1/start", `{}`)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/books/1/activities", `{"date":"2024-01-10","pages":100,"note":"all of it"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	book := decodeBook(t, resp)
	assert.Equal(t, 100, book.PagesRead)
	assert.True(t, book.IsCompleted)
	assert.Equal(t, "Read", book.StatusLabel)
	assert.Equal(t, 100, book.Progress)
	assert.Contains(t, book.Medals, models.MedalEmerald)
	require.Len(t, book.ReadingHistory, 1)
	assert.Equal(t, "all of it", book.ReadingHistory[0].Note)
}

func TestServer_LogActivity_Validation(t *testing.T) {
	ts := newTestServer(t, "2024-01-10",
		models.Book{ID: 1, TotalPages: 100},
	)

	testCases := []struct {
		name     string
		body     string
		expected int
	}{
		{"missing date", `{"pages":10}`, http.StatusBadRequest},
		{"zero pages", `{"date":"2024-01-10","pages":0}`, http.StatusBadRequest},
		{"malformed date", `{"date":"10/01/2024","pages":10}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/books/1/activities", tc.body)
			defer resp.Body.Close()
			assert.Equal(t, tc.expected, resp.StatusCode)
		})
	}
}

func TestServer_Cancel(t *testing.T) {
	ts := newTestServer(t, "2024-01-10",
		models.Book{ID: 1, TotalPages: 100},
	)

	resp := postJSON(t, ts.URL+"/api/books/1/start", `{}`)
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/books/1/activities", `{"date":"2024-01-10","pages":30}`)
	resp.Body.Close()

	t.Run("unconfirmed is rejected", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/books/1/cancel", `{"confirmed":false}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("confirmed resets the book", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/api/books/1/cancel", `{"confirmed":true}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		book := decodeBook(t, resp)
		assert.Equal(t, models.StatusNotStarted, book.ReadingStatus)
		assert.Equal(t, 0, book.PagesRead)
		assert.Empty(t, book.Calendar)
	})
}

func TestServer_Calendar(t *testing.T) {
	ts := newTestServer(t, "2024-01-12",
		models.Book{
			ID:               1,
			TotalPages:       100,
			PagesRead:        10,
			ReadingStatus:    models.StatusReading,
			StartReadingDate: "2024-01-10",
			ReadingHistory: []models.ReadingActivity{
				{Date: "2024-01-11", PagesRead: 10},
			},
		},
	)

	resp, err := http.Get(ts.URL + "/api/books/1/calendar")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var days []models.CalendarDay
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&days))
	require.Len(t, days, 3)
	assert.Equal(t, 0, days[0].PagesRead)
	assert.Equal(t, 10, days[1].PagesRead)
	assert.Equal(t, 2, days[1].Intensity)
}

func TestServer_MedalCatalog(t *testing.T) {
	ts := newTestServer(t, "2024-01-10")

	resp, err := http.Get(ts.URL + "/api/medals")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog map[models.MedalType]reading.MedalInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&catalog))
	require.Len(t, catalog, 6)

	bronze := catalog[models.MedalBronze]
	assert.Equal(t, "Bronze", bronze.Name)
	assert.Equal(t, 25, bronze.ProgressRequired)
	assert.NotEmpty(t, bronze.Icon)
	assert.NotEmpty(t, bronze.Color)

	assert.Equal(t, 100, catalog[models.MedalPlatinum].ProgressRequired)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, "2024-01-10",
		models.Book{ID: 1, TotalPages: 100},
	)

	resp := postJSON(t, ts.URL+"/api/books", `{}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/api/books/1/start")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestServer_UnavailableAfterLoadError(t *testing.T) {
	session := tracker.NewSession(
		stubs.NewMockSource(),
		reading.NewTracker(reading.DefaultIntensityThresholds(), nil),
		reading.NewEngine(reading.DefaultMaxSpeedReadDays, nil),
		nil,
	)

	srv := New(session, nil)
	srv.SetLoadError(errors.New("catalog down"))

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/books")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// Health stays up for the process itself
	resp2, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
