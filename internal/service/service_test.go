package service

import (
	"bytes"
	"context"
	"cursedcompass-backend/internal/availability"
	"cursedcompass-backend/internal/components/telemetry"
	"cursedcompass-backend/internal/history"
	"cursedcompass-backend/internal/scrapers/ipms"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

type fakeChecker struct {
	res      availability.Response
	requests []ipms.AvailabilityRequest
}

func (f *fakeChecker) CheckAvailability(_ context.Context, req ipms.AvailabilityRequest) availability.Response {
	f.requests = append(f.requests, req)
	return f.res
}

type fakeHistory struct {
	mutex     sync.Mutex
	recorded  []availability.Response
	recordErr error
	listErr   error
	getErr    error
	lastLimit int
}

func (f *fakeHistory) Record(_ context.Context, _ ipms.AvailabilityRequest, res availability.Response) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.recordErr != nil {
		return "", f.recordErr
	}
	f.recorded = append(f.recorded, res)
	return "id", nil
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]history.Record, error) {
	f.lastLimit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []history.Record{{Id: "a", HotelId: "jerome-grand", Success: true, Rooms: []ipms.Room{}}}, nil
}

func (f *fakeHistory) Get(_ context.Context, id string) (history.Record, error) {
	if f.getErr != nil {
		return history.Record{}, f.getErr
	}
	if id != "a" {
		return history.Record{}, fmt.Errorf("%w: %s", history.ErrNotFound, id)
	}
	return history.Record{Id: "a", HotelId: "jerome-grand", Success: true, Rooms: []ipms.Room{}}, nil
}

type testEnv struct {
	router  *gin.Engine
	checker *fakeChecker
	history *fakeHistory
	tel     *telemetry.RecordingAPI
}

func newTestEnv(res availability.Response, withHistory bool) testEnv {
	gin.SetMode(gin.TestMode)

	checker := &fakeChecker{res: res}
	registry := availability.NewRegistry()
	registry.Register("jerome-grand", checker)

	tel := telemetry.NewRecordingAPI()
	options := []ServiceOption{WithCustomTelemetryAPI(tel)}
	hist := &fakeHistory{}
	if withHistory {
		options = append(options, WithHistory(hist))
	}

	service := NewAvailabilityService(registry, "jerome-grand", options...)
	return testEnv{
		router:  NewRouter(service, CorsConfig{}),
		checker: checker,
		history: hist,
		tel:     tel,
	}
}

func (e testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		encoded, _ := json.Marshal(v)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func successResponse() availability.Response {
	inventory := 3
	return availability.Response{
		HotelId: "jerome-grand",
		Rooms: []ipms.Room{{
			Id:             "jr-1",
			Name:           "A",
			Price:          100,
			Available:      true,
			Amenities:      []string{},
			InventoryCount: &inventory,
			Images:         []string{},
		}},
		Success:             true,
		ScrapedAt:           testNow,
		TotalRoomsFound:     1,
		RoomsAfterFiltering: 1,
	}
}

func TestWelcome(t *testing.T) {
	env := newTestEnv(successResponse(), false)
	rec := env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Welcome to Cursed Compass API!"}`, rec.Body.String())
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCheck(t *testing.T) {
	env := newTestEnv(successResponse(), true)

	rec := env.do(http.MethodPost, "/availability/check", CheckRequest{
		CheckIn:  "2025-06-10",
		CheckOut: "2025-06-12",
		Guests:   2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res availability.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.Equal(t, "jerome-grand", res.HotelId)
	require.Len(t, res.Rooms, 1)
	require.Equal(t, 3, res.Rooms[0].Inventory())

	require.Len(t, env.checker.requests, 1)
	require.Equal(t, 2, env.checker.requests[0].Nights())
	require.Len(t, env.history.recorded, 1)
}

func TestCheckScrapeFailureIsOk(t *testing.T) {
	env := newTestEnv(availability.Response{
		HotelId:   "jerome-grand",
		Rooms:     []ipms.Room{},
		Success:   false,
		Error:     "failed to establish booking session",
		ScrapedAt: testNow,
	}, true)

	rec := env.do(http.MethodPost, "/availability/check", CheckRequest{
		HotelId:  "jerome-grand",
		CheckIn:  "2025-06-10",
		CheckOut: "2025-06-12",
		Guests:   1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
	require.Contains(t, rec.Body.String(), `"rooms":[]`)
	require.True(t, env.tel.Has(telemetry.KindWarning, report_availability_check))
}

func TestCheckBadRequests(t *testing.T) {
	env := newTestEnv(successResponse(), false)

	testCases := []struct {
		name string
		body any
	}{
		{name: "not json", body: "{"},
		{name: "missing dates", body: map[string]any{"guests": 2}},
		{name: "no guests", body: CheckRequest{CheckIn: "2025-06-10", CheckOut: "2025-06-12"}},
		{name: "negative guests", body: CheckRequest{CheckIn: "2025-06-10", CheckOut: "2025-06-12", Guests: -1}},
		{name: "reversed", body: CheckRequest{CheckIn: "2025-06-12", CheckOut: "2025-06-10", Guests: 2}},
		{name: "bad date", body: CheckRequest{CheckIn: "June 10", CheckOut: "2025-06-12", Guests: 2}},
	}

	for _, test := range testCases {
		rec := env.do(http.MethodPost, "/availability/check", test.body)
		require.Equal(t, http.StatusBadRequest, rec.Code, test.name)
		require.Contains(t, rec.Body.String(), `"error"`, test.name)
	}
	require.Empty(t, env.checker.requests)
}

func TestCheckUnknownHotel(t *testing.T) {
	env := newTestEnv(successResponse(), false)
	rec := env.do(http.MethodPost, "/availability/check", CheckRequest{
		HotelId:  "stanley-hotel",
		CheckIn:  "2025-06-10",
		CheckOut: "2025-06-12",
		Guests:   2,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckHistoryFailureIgnored(t *testing.T) {
	env := newTestEnv(successResponse(), true)
	env.history.recordErr = errors.New("database is locked")

	rec := env.do(http.MethodPost, "/availability/check", CheckRequest{
		CheckIn:  "2025-06-10",
		CheckOut: "2025-06-12",
		Guests:   2,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":true`)
	require.True(t, env.tel.Has(telemetry.KindBroken, report_history_record))
}

func TestHistory(t *testing.T) {
	env := newTestEnv(successResponse(), true)

	rec := env.do(http.MethodGet, "/availability/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, history.DefaultListLimit, env.history.lastLimit)
	require.Contains(t, rec.Body.String(), `"checks":[`)

	rec = env.do(http.MethodGet, "/availability/history?limit=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, history.MaxListLimit, env.history.lastLimit)

	rec = env.do(http.MethodGet, "/availability/history?limit=abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env.history.listErr = errors.New("no such table")
	rec = env.do(http.MethodGet, "/availability/history", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHistoryDisabled(t *testing.T) {
	env := newTestEnv(successResponse(), false)
	rec := env.do(http.MethodGet, "/availability/history", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHistoryEntry(t *testing.T) {
	env := newTestEnv(successResponse(), true)

	rec := env.do(http.MethodGet, "/availability/history/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var record history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	require.Equal(t, "a", record.Id)
	require.Equal(t, "jerome-grand", record.HotelId)

	rec = env.do(http.MethodGet, "/availability/history/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	env.history.getErr = errors.New("no such table")
	rec = env.do(http.MethodGet, "/availability/history/a", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.True(t, env.tel.Has(telemetry.KindBroken, report_history_get))

	disabled := newTestEnv(successResponse(), false)
	rec = disabled.do(http.MethodGet, "/availability/history/a", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
