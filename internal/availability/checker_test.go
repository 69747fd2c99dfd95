package availability

import (
	"context"
	"cursedcompass-backend/internal/components/chrono"
	"cursedcompass-backend/internal/components/telemetry"
	"cursedcompass-backend/internal/scrapers/ipms"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

// fakeClient records the calls a check makes without touching the network.
type fakeClient struct {
	sessionErr error
	fetchErr   error
	body       string

	sessions int
	fetches  int
	lastForm ipms.FormData
}

func (f *fakeClient) EstablishSession(ctx context.Context) error {
	f.sessions++
	return f.sessionErr
}

func (f *fakeClient) FetchRooms(ctx context.Context, form ipms.FormData) ([]byte, error) {
	f.fetches++
	f.lastForm = form
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return []byte(f.body), nil
}

func newTestChecker(client BookingClient, tel telemetry.API, dump ResponseDump) *Checker {
	return NewChecker(
		client,
		ipms.NewDefaultParser("jr", tel),
		CheckerOptions{
			HotelId:      "jerome-grand",
			PropertyCode: "10246",
			Filter:       Filter{MinInventory: DefaultMinInventory},
			Dump:         dump,
		},
		chrono.FixedTime{At: testNow},
		tel,
	)
}

func mustRequest(t testing.TB, checkIn, checkOut string, guests int) ipms.AvailabilityRequest {
	req, err := ipms.NewAvailabilityRequest(checkIn, checkOut, guests)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

const roomsBody = `<html><body><script>
	resgrid = [[
		{display_name: "Standard Queen", day_base_1: "129", day_1: "1"},
		{display_name: "Deluxe King", day_base_1: "189.50", day_1: "3", roomimg: "/img/king.jpg"},
		{roomtype: "Suite", o_day_base_1: 260, day_1: 0},
		{display_name: "Bunk Room", day_base_1: "79", day_1: "2"},
	]];
</script></body></html>`

func TestCheckAvailability(t *testing.T) {
	tel := telemetry.NewRecordingAPI()
	client := &fakeClient{body: roomsBody}
	checker := newTestChecker(client, tel, nil)

	res, details := checker.CheckWithDetails(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))

	require.True(t, res.Success)
	require.Equal(t, "", res.Error)
	require.Equal(t, "jerome-grand", res.HotelId)
	require.Equal(t, testNow, res.ScrapedAt)
	require.Equal(t, 4, res.TotalRoomsFound)
	require.Equal(t, 2, res.RoomsAfterFiltering)

	expected := []ipms.Room{
		{
			Id:             "jr-2",
			Name:           "Deluxe King",
			Price:          189.5,
			Available:      true,
			Amenities:      []string{},
			InventoryCount: intPtr(3),
			Images:         []string{"/img/king.jpg"},
		},
		{
			Id:             "jr-4",
			Name:           "Bunk Room",
			Price:          79,
			Available:      true,
			Amenities:      []string{},
			InventoryCount: intPtr(2),
			Images:         []string{},
		},
	}
	if diff := cmp.Diff(expected, res.Rooms); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, "resgrid", details.Strategy)
	require.Len(t, details.Parsed, 4)

	require.Equal(t, 1, client.sessions)
	require.Equal(t, 1, client.fetches)
	nights, _ := client.lastForm.Get("nonights")
	require.Equal(t, "2", nights)

	require.Empty(t, tel.Reports(telemetry.KindBroken))
}

func TestCheckAvailabilitySessionFailure(t *testing.T) {
	tel := telemetry.NewRecordingAPI()
	client := &fakeClient{
		sessionErr: errors.Join(ipms.ErrSession, errors.New("dial tcp: connection refused")),
		body:       roomsBody,
	}
	checker := newTestChecker(client, tel, nil)

	res := checker.CheckAvailability(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))

	require.False(t, res.Success)
	require.NotNil(t, res.Rooms)
	require.Empty(t, res.Rooms)
	require.Contains(t, res.Error, "connection refused")
	require.Equal(t, 0, client.fetches)
	require.True(t, tel.Has(telemetry.KindBroken, report_checker_check))
}

func TestCheckAvailabilityTransportFailure(t *testing.T) {
	client := &fakeClient{fetchErr: errors.New("availability request failed: timeout")}
	checker := newTestChecker(client, telemetry.NewRecordingAPI(), nil)

	res := checker.CheckAvailability(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))
	require.False(t, res.Success)
	require.Empty(t, res.Rooms)
	require.Equal(t, "availability request failed: timeout", res.Error)
	require.Equal(t, 0, res.TotalRoomsFound)
}

func TestCheckAvailabilityInvalidRequest(t *testing.T) {
	client := &fakeClient{body: roomsBody}
	checker := newTestChecker(client, telemetry.NewRecordingAPI(), nil)

	req := ipms.AvailabilityRequest{CheckIn: testNow, CheckOut: testNow, Guests: 2}
	res := checker.CheckAvailability(context.Background(), req)

	require.False(t, res.Success)
	require.Contains(t, res.Error, ipms.ErrInvalidRequest.Error())
	require.Equal(t, 0, client.sessions)
}

func TestCheckAvailabilityNoRooms(t *testing.T) {
	client := &fakeClient{body: "<html><body><p>No rooms available for the selected dates.</p></body></html>"}
	checker := newTestChecker(client, telemetry.NewRecordingAPI(), nil)

	res, details := checker.CheckWithDetails(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))
	require.True(t, res.Success)
	require.NotNil(t, res.Rooms)
	require.Empty(t, res.Rooms)
	require.Equal(t, "", details.Strategy)

	encoded, err := json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(encoded), `"rooms":[]`)
	require.NotContains(t, string(encoded), `"error"`)
}

func TestCheckAvailabilityDump(t *testing.T) {
	dir := t.TempDir()
	tel := telemetry.NewRecordingAPI()
	dump := NewFilesystemDump(dir, "jerome_grand_response", chrono.FixedTime{At: testNow}, tel)
	checker := newTestChecker(&fakeClient{body: roomsBody}, tel, dump)

	res := checker.CheckAvailability(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))
	require.True(t, res.Success)
	require.NotEmpty(t, res.SourceHtmlPath)

	contents, err := os.ReadFile(res.SourceHtmlPath)
	require.NoError(t, err)
	require.Equal(t, roomsBody, string(contents))
}

type blockingClient struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (b *blockingClient) EstablishSession(ctx context.Context) error {
	n := b.inFlight.Add(1)
	for {
		current := b.maxInFlight.Load()
		if n <= current || b.maxInFlight.CompareAndSwap(current, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

func (b *blockingClient) FetchRooms(ctx context.Context, form ipms.FormData) ([]byte, error) {
	b.inFlight.Add(-1)
	return []byte(roomsBody), nil
}

func TestCheckAvailabilitySerialized(t *testing.T) {
	client := &blockingClient{}
	checker := newTestChecker(client, telemetry.NewRecordingAPI(), nil)
	req := mustRequest(t, "2025-06-10", "2025-06-12", 2)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checker.CheckAvailability(context.Background(), req)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), client.maxInFlight.Load())
}

func TestCheckAvailabilityEndToEnd(t *testing.T) {
	var posts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/booking/book-rooms-test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "PHPSESSID=abc; path=/")
		w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/booking/rmdetails", func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		if r.Header.Get("Cookie") != "PHPSESSID=abc" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(roomsBody))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tel := telemetry.NewRecordingAPI()
	client, err := ipms.NewClient(ipms.ClientOptions{
		BaseUrl:      server.URL,
		LandingPath:  "book-rooms-test",
		PropertyCode: "10246",
	}, chrono.FixedTime{At: testNow}, tel)
	require.NoError(t, err)

	checker := newTestChecker(client, tel, nil)
	res := checker.CheckAvailability(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))
	require.True(t, res.Success, res.Error)
	require.Equal(t, 2, res.RoomsAfterFiltering)
	require.Equal(t, int32(1), posts.Load())
}

func TestCheckAvailabilityEndToEndSessionFailure(t *testing.T) {
	// closed before use, every request fails to connect
	server := httptest.NewServer(http.NotFoundHandler())
	baseUrl := server.URL
	server.Close()

	tel := telemetry.NewRecordingAPI()
	client, err := ipms.NewClient(ipms.ClientOptions{
		BaseUrl:      baseUrl,
		LandingPath:  "book-rooms-test",
		PropertyCode: "10246",
		Timeout:      2 * time.Second,
	}, chrono.FixedTime{At: testNow}, tel)
	require.NoError(t, err)

	checker := newTestChecker(client, tel, nil)
	res := checker.CheckAvailability(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))

	require.False(t, res.Success)
	require.Empty(t, res.Rooms)
	require.NotEmpty(t, res.Error)
	require.False(t, tel.Has(telemetry.KindBroken, "client.fetch-rooms"))
}

func TestNewCheckerDefaults(t *testing.T) {
	checker := NewChecker(
		&fakeClient{},
		ipms.NewDefaultParser("jr", telemetry.NewRecordingAPI()),
		CheckerOptions{HotelId: "jerome-grand", PropertyCode: "10246"},
		chrono.FixedTime{At: testNow},
		telemetry.NewRecordingAPI(),
	)
	require.Equal(t, DefaultTimeout, checker.options.Timeout)
	require.Equal(t, DefaultMinInventory, checker.options.Filter.MinInventory)
}

func TestCheckAvailabilityZeroFilterKeepsThreshold(t *testing.T) {
	checker := NewChecker(
		&fakeClient{body: roomsBody},
		ipms.NewDefaultParser("jr", telemetry.NewRecordingAPI()),
		CheckerOptions{HotelId: "jerome-grand", PropertyCode: "10246"},
		chrono.FixedTime{At: testNow},
		telemetry.NewRecordingAPI(),
	)

	res := checker.CheckAvailability(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))
	require.True(t, res.Success)
	require.Equal(t, 4, res.TotalRoomsFound)
	require.Equal(t, 2, res.RoomsAfterFiltering)
	for _, room := range res.Rooms {
		require.GreaterOrEqual(t, room.Inventory(), DefaultMinInventory, room.Name)
	}
}

func newHttpChecker(t testing.TB, baseUrl string, requestTimeout, checkTimeout time.Duration) *Checker {
	tel := telemetry.NewRecordingAPI()
	client, err := ipms.NewClient(ipms.ClientOptions{
		BaseUrl:      baseUrl,
		LandingPath:  "book-rooms-test",
		PropertyCode: "10246",
		Timeout:      requestTimeout,
		MaxRedirects: 5,
	}, chrono.FixedTime{At: testNow}, tel)
	require.NoError(t, err)

	return NewChecker(
		client,
		ipms.NewDefaultParser("jr", tel),
		CheckerOptions{
			HotelId:      "jerome-grand",
			PropertyCode: "10246",
			Timeout:      checkTimeout,
		},
		chrono.FixedTime{At: testNow},
		tel,
	)
}

func requireFailureEnvelope(t testing.TB, res Response) {
	require.False(t, res.Success)
	require.NotNil(t, res.Rooms)
	require.Empty(t, res.Rooms)
	require.NotEmpty(t, res.Error)
	require.Equal(t, 0, res.TotalRoomsFound)

	encoded, err := json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(encoded), `"rooms":[]`)
	require.Contains(t, string(encoded), `"success":false`)
}

func TestCheckAvailabilityRedirectLoop(t *testing.T) {
	var posts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/booking/book-rooms-test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "PHPSESSID=abc; path=/")
		w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/booking/rmdetails", func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		http.Redirect(w, r, "/booking/rmdetails", http.StatusFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	checker := newHttpChecker(t, server.URL, 5*time.Second, 10*time.Second)
	res := checker.CheckAvailability(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))

	requireFailureEnvelope(t, res)
	require.Contains(t, res.Error, "5 redirects")
	// the sixth request is never sent
	require.Equal(t, int32(5), posts.Load())
}

func TestCheckAvailabilityTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/booking/book-rooms-test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "PHPSESSID=abc; path=/")
		w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/booking/rmdetails", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	testCases := []struct {
		name           string
		requestTimeout time.Duration
		checkTimeout   time.Duration
	}{
		{name: "request timeout", requestTimeout: 300 * time.Millisecond, checkTimeout: 10 * time.Second},
		{name: "check timeout", requestTimeout: 10 * time.Second, checkTimeout: 300 * time.Millisecond},
	}

	for _, test := range testCases {
		checker := newHttpChecker(t, server.URL, test.requestTimeout, test.checkTimeout)

		start := time.Now()
		res := checker.CheckAvailability(context.Background(), mustRequest(t, "2025-06-10", "2025-06-12", 2))
		require.Less(t, time.Since(start), 3*time.Second, test.name)
		requireFailureEnvelope(t, res)
	}
}
