package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL, 0)
}

func TestWeather(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("engine"); got != "google" {
			t.Errorf("engine = %q, want google", got)
		}
		if got := r.URL.Query().Get("q"); got != "weather in Tokyo" {
			t.Errorf("q = %q, want weather in Tokyo", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q, want test-key", got)
		}
		w.Write([]byte(`{"answer_box":{"temperature":"72","weather":"Sunny","humidity":"40%","wind":"5 mph"}}`))
	})

	got, err := client.Weather(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("Weather() error = %v", err)
	}
	if got == nil {
		t.Fatal("Weather() = nil, want report")
	}
	if got.Temperature != "72" || got.Conditions != "Sunny" {
		t.Errorf("Weather() = %+v", got)
	}
}

func TestWeatherEmptyAnswerBox(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	got, err := client.Weather(context.Background(), "Nowhere")
	if err != nil {
		t.Fatalf("Weather() error = %v", err)
	}
	if got != nil {
		t.Errorf("Weather() = %+v, want nil for empty answer box", got)
	}
}

func TestEvents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events_results":[
			{"title":"Jazz Night","venue":{"name":"Blue Note"},"date":{"start_date":"Sat, Sep 5"}},
			{"title":"Street Fair","venue":{},"date":{}}
		]}`))
	})

	got, err := client.Events(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(got))
	}
	if got[0].Title != "Jazz Night" || got[0].Venue != "Blue Note" {
		t.Errorf("events[0] = %+v", got[0])
	}
}

func TestNewsQueryBuilding(t *testing.T) {
	var lastQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"news_results":[]}`))
	})

	if _, err := client.News(context.Background(), "Mumbai", ""); err != nil {
		t.Fatal(err)
	}
	if lastQuery != "top news Mumbai today" {
		t.Errorf("general news query = %q", lastQuery)
	}

	if _, err := client.News(context.Background(), "Mumbai", "transportation"); err != nil {
		t.Fatal(err)
	}
	if lastQuery != "transportation Mumbai news" {
		t.Errorf("topic news query = %q", lastQuery)
	}
}

func TestPlacesFallbackShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"places_results":[{"name":"City Hospital","address":"1 Main St","rating":4.2}]}`))
	})

	got, err := client.Places(context.Background(), "hospitals", "Delhi")
	if err != nil {
		t.Fatalf("Places() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(places) = %d, want 1", len(got))
	}
	if got[0].Title != "City Hospital" {
		t.Errorf("places[0].Title = %q, want name fallback", got[0].Title)
	}
}

func TestLookupHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	if _, err := client.Weather(context.Background(), "Tokyo"); err == nil {
		t.Error("Weather() should surface non-200 responses as errors")
	}
}
