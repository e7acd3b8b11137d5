package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smokyabdulrahman/vakit/internal/countdown"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDriver struct {
	snap      countdown.Snapshot
	err       error
	accept    bool
	refreshes int
}

func (f *fakeDriver) Snapshot(context.Context) (countdown.Snapshot, error) {
	return f.snap, f.err
}

func (f *fakeDriver) Refresh() bool {
	f.refreshes++
	return f.accept
}

func testSnapshot() countdown.Snapshot {
	rec := func(date, fajr string) prayer.Record {
		return prayer.Record{
			Date:    date,
			Fajr:    prayer.MustTime(fajr),
			Sunrise: prayer.MustTime("06:45"),
			Dhuhr:   prayer.MustTime("12:30"),
			Asr:     prayer.MustTime("15:50"),
			Maghrib: prayer.MustTime("18:20"),
			Isha:    prayer.MustTime("19:45"),
		}
	}
	return countdown.Snapshot{
		Now:       time.Date(2026, 3, 10, 18, 19, 30, 0, time.UTC),
		OK:        true,
		Valid:     true,
		Remaining: prayer.Remaining{Seconds: 30, Next: prayer.Maghrib},
		Target:    prayer.MustTime("18:20"),
		Current:   prayer.Asr,
		Schedule: prayer.NewSchedule([]prayer.Record{
			rec("10.03.2026", "05:12"),
			rec("11.03.2026", "05:10"),
		}),
	}
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	w := do(t, New(&fakeDriver{}, nil), http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRemaining(t *testing.T) {
	s := New(&fakeDriver{snap: testSnapshot()}, nil)
	w := do(t, s, http.MethodGet, "/api/remaining")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body)
	}
	var got remainingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := remainingResponse{
		Next: "Maghrib", Current: "Asr",
		Seconds: 30, Countdown: "00:00:30", At: "18:20", Valid: true,
	}
	if got != want {
		t.Errorf("body = %+v, want %+v", got, want)
	}
}

func TestRemaining_FajrNextDay(t *testing.T) {
	snap := testSnapshot()
	snap.Now = time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	snap.Remaining = prayer.Remaining{Hours: 6, Minutes: 10, Next: prayer.FajrNextDay}
	snap.Target = prayer.MustTime("05:10")
	snap.Current = prayer.Isha

	w := do(t, New(&fakeDriver{snap: snap}, nil), http.MethodGet, "/api/remaining")
	var got remainingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Next != "Fajr" || got.At != "05:10" {
		t.Errorf("next/at = %s/%s, want Fajr/05:10", got.Next, got.At)
	}
}

func TestRemaining_Unavailable(t *testing.T) {
	d := &fakeDriver{snap: countdown.Snapshot{LastStatus: countdown.StatusFetchFailed}}
	w := do(t, New(d, nil), http.MethodGet, "/api/remaining")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSchedule(t *testing.T) {
	s := New(&fakeDriver{snap: testSnapshot()}, nil)

	tests := []struct {
		target   string
		wantCode int
		wantDays int
	}{
		{"/api/schedule", http.StatusOK, 1},
		{"/api/schedule?days=2", http.StatusOK, 2},
		{"/api/schedule?days=7", http.StatusOK, 2},
		{"/api/schedule?days=0", http.StatusBadRequest, 0},
		{"/api/schedule?days=32", http.StatusBadRequest, 0},
		{"/api/schedule?days=week", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.target)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var body struct {
				Days []prayer.Record `json:"days"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if len(body.Days) != tt.wantDays {
				t.Errorf("len(days) = %d, want %d", len(body.Days), tt.wantDays)
			}
			if body.Days[0].Date != "10.03.2026" {
				t.Errorf("first day = %s, want 10.03.2026", body.Days[0].Date)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	d := &fakeDriver{accept: true}
	w := do(t, New(d, nil), http.MethodPost, "/api/refresh")
	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", w.Code)
	}
	if d.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", d.refreshes)
	}

	d.accept = false
	w = do(t, New(d, nil), http.MethodPost, "/api/refresh")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestRefresh_Origin(t *testing.T) {
	tests := []struct {
		origin string
		want   int
	}{
		{"", http.StatusAccepted},
		{"http://localhost:3000", http.StatusAccepted},
		{"http://127.0.0.1:8137", http.StatusAccepted},
		{"http://[::1]:8080", http.StatusAccepted},
		{"https://example.com", http.StatusForbidden},
		{"http://localhost.example.com", http.StatusForbidden},
		{"null", http.StatusForbidden},
	}

	for _, tt := range tests {
		d := &fakeDriver{accept: true}
		req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		w := httptest.NewRecorder()
		New(d, nil).Handler().ServeHTTP(w, req)

		if w.Code != tt.want {
			t.Errorf("origin %q: status = %d, want %d", tt.origin, w.Code, tt.want)
		}
		if accepted := d.refreshes == 1; accepted != (tt.want == http.StatusAccepted) {
			t.Errorf("origin %q: refreshes = %d", tt.origin, d.refreshes)
		}
	}
}

func TestCORS_PreflightOmitsPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/refresh", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	New(&fakeDriver{}, nil).Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Methods"); strings.Contains(got, http.MethodPost) {
		t.Errorf("Access-Control-Allow-Methods = %q, should not allow POST", got)
	}
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	New(&fakeDriver{}, nil).Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("Access-Control-Allow-Origin should be set for local dashboards")
	}
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(&fakeDriver{}, nil).ListenAndServe(ctx, "127.0.0.1:0")
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
