package sensortower

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sensortower-sync/config"
	"sensortower-sync/utils"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.Config{
		SensorTowerAPIKey:  "test-key",
		SensorTowerBaseURL: srv.URL,
	}, utils.NewLogger())
}

func testWindow() Window {
	return Window{
		Start:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		PrevStart: time.Date(2026, 7, 2, 0, 0, 0, 0, time.UTC),
		PrevEnd:   time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchComparison(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("auth_token"); got != "test-key" {
			t.Errorf("auth_token: got %q", got)
		}
		if got := q.Get("comparison_attribute"); got != "absolute" {
			t.Errorf("comparison_attribute: got %q", got)
		}
		if got := q.Get("regions"); got != "US" {
			t.Errorf("regions: got %q", got)
		}
		if got := q.Get("date"); got != "2026-08-01" {
			t.Errorf("date: got %q", got)
		}
		if got := q.Get("end_date"); got != "2026-08-30" {
			t.Errorf("end_date: got %q", got)
		}
		if got := q.Get("limit"); got != "15" {
			t.Errorf("limit: got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"app_id": "5a1b2c3d", "entities": [{"units_absolute": 900000, "comparison_units_value": 450000, "units_delta": 225000}]},
			{"app_id": 123456789, "units_absolute": 600000, "comparison_units_value": 300000, "units_delta": 60000}
		]`))
	})

	entries, err := client.FetchComparison(context.Background(), KindDownloads, testWindow(), 15)
	if err != nil {
		t.Fatalf("FetchComparison returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].AppID != "5a1b2c3d" {
		t.Errorf("entries[0].AppID: got %q", entries[0].AppID)
	}
	if entries[1].AppID != "123456789" {
		t.Errorf("numeric app_id should decode to string: got %q", entries[1].AppID)
	}
	if len(entries[0].Entities) != 1 || *entries[0].Entities[0].UnitsAbsolute != 900000 {
		t.Errorf("entities not decoded: %+v", entries[0].Entities)
	}
	if entries[1].UnitsAbsolute == nil || *entries[1].UnitsAbsolute != 600000 {
		t.Errorf("top-level units_absolute not decoded: %+v", entries[1])
	}
}

func TestFetchComparisonServerError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	entries, err := client.FetchComparison(context.Background(), KindDownloads, testWindow(), 15)
	if err == nil {
		t.Fatal("expected error on HTTP 500")
	}
	if !errors.Is(err, ErrAPI) {
		t.Errorf("error should wrap ErrAPI, got: %v", err)
	}
	if entries != nil {
		t.Errorf("entries should be nil on failure, got %d", len(entries))
	}
}

func TestFetchComparisonRateLimited(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := client.FetchComparison(context.Background(), KindPercentGrowth, testWindow(), 15)
	if !errors.Is(err, ErrAPI) {
		t.Errorf("error should wrap ErrAPI, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("rate-limited request must not be retried: got %d calls", calls)
	}
}

func TestFetchComparisonMalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.FetchComparison(context.Background(), KindDownloads, testWindow(), 15)
	if !errors.Is(err, ErrAPI) {
		t.Errorf("error should wrap ErrAPI, got: %v", err)
	}
}

func TestFetchTopAdvertisers(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("role"); got != "advertisers" {
			t.Errorf("role: got %q", got)
		}
		if got := q.Get("country"); got != "US" {
			t.Errorf("country: got %q", got)
		}
		if got := q.Get("period"); got != "month" {
			t.Errorf("period: got %q", got)
		}

		w.Write([]byte(`{"apps": [
			{"app_id": "adv1", "name": "Mega Shop", "publisher_name": "Mega Inc", "sov": 12.345},
			{"app_id": "adv2", "humanized_name": "Casual Game", "sov": 8.1}
		]}`))
	})

	apps, err := client.FetchTopAdvertisers(context.Background(), testWindow(), 25)
	if err != nil {
		t.Fatalf("FetchTopAdvertisers returned error: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("got %d advertisers, want 2", len(apps))
	}
	if apps[0].Name != "Mega Shop" || apps[0].SOV != 12.345 {
		t.Errorf("apps[0] mis-decoded: %+v", apps[0])
	}
	if apps[1].HumanizedName != "Casual Game" {
		t.Errorf("apps[1] mis-decoded: %+v", apps[1])
	}
}

func TestLookupApp(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/unified/apps/abc123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"name": "TikTok", "icon_url": "https://cdn/icon.png", "unified_publisher_name": "ByteDance"}`))
	})

	info := client.LookupApp(context.Background(), "abc123")
	if info.Name != "TikTok" || info.Publisher != "ByteDance" || info.IconURL != "https://cdn/icon.png" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestLookupAppSubAppFallback(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "", "publisher_name": "Indie Dev", "sub_apps": [{"name": "Lite Edition", "os": "android"}]}`))
	})

	info := client.LookupApp(context.Background(), "xyz")
	if info.Name != "Lite Edition" {
		t.Errorf("name should fall back to first sub app, got %q", info.Name)
	}
	if info.Publisher != "Indie Dev" {
		t.Errorf("publisher should fall back to publisher_name, got %q", info.Publisher)
	}
}

func TestLookupAppFailureIsNonFatal(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	info := client.LookupApp(context.Background(), "whatever")
	if info.Name != "Unknown" || info.Publisher != "Unknown" {
		t.Errorf("failed lookup should return Unknown fallbacks, got %+v", info)
	}
}
