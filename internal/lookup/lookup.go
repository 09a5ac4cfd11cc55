// Package lookup implements the web lookup service used by the
// weather, news, events, and places tools. Queries go to a SerpAPI
// style endpoint; an empty result set is a valid outcome, not an
// error.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production search endpoint.
const DefaultBaseURL = "https://serpapi.com/search.json"

// Weather is the answer-box weather summary for a city.
type Weather struct {
	Temperature string
	Conditions  string
	Humidity    string
	Wind        string
}

// Event is one live event listing.
type Event struct {
	Title string
	Venue string
	Date  string
}

// Article is one news result.
type Article struct {
	Title   string
	Source  string
	Date    string
	Snippet string
}

// Place is one local place result.
type Place struct {
	Title   string
	Address string
	Rating  float64
	Phone   string
}

// Client queries the search API. The zero value is not usable; create
// one with NewClient.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a lookup client. baseURL overrides the production
// endpoint when non-empty (used by tests).
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// search performs one GET against the API and decodes the JSON body
// into out.
func (c *Client) search(ctx context.Context, engine, query string, out any) error {
	params := url.Values{
		"engine":  {engine},
		"q":       {query},
		"api_key": {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("lookup: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lookup: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("lookup: HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lookup: decode response: %w", err)
	}
	return nil
}

type weatherResponse struct {
	AnswerBox struct {
		Temperature string `json:"temperature"`
		Weather     string `json:"weather"`
		Humidity    string `json:"humidity"`
		Wind        string `json:"wind"`
	} `json:"answer_box"`
}

// Weather returns the current weather for a city, or nil when the
// answer box is empty.
func (c *Client) Weather(ctx context.Context, city string) (*Weather, error) {
	var wr weatherResponse
	if err := c.search(ctx, "google", "weather in "+city, &wr); err != nil {
		return nil, err
	}

	box := wr.AnswerBox
	if box.Temperature == "" && box.Weather == "" {
		return nil, nil
	}
	return &Weather{
		Temperature: box.Temperature,
		Conditions:  box.Weather,
		Humidity:    box.Humidity,
		Wind:        box.Wind,
	}, nil
}

type eventsResponse struct {
	EventsResults []struct {
		Title string `json:"title"`
		Venue struct {
			Name string `json:"name"`
		} `json:"venue"`
		Date struct {
			StartDate string `json:"start_date"`
		} `json:"date"`
	} `json:"events_results"`
}

// Events returns live events for a city this weekend.
func (c *Client) Events(ctx context.Context, city string) ([]Event, error) {
	var er eventsResponse
	if err := c.search(ctx, "google_events", "events in "+city+" this weekend", &er); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(er.EventsResults))
	for _, e := range er.EventsResults {
		events = append(events, Event{
			Title: e.Title,
			Venue: e.Venue.Name,
			Date:  e.Date.StartDate,
		})
	}
	return events, nil
}

type newsResponse struct {
	NewsResults []struct {
		Title   string `json:"title"`
		Source  string `json:"source"`
		Date    string `json:"date"`
		Snippet string `json:"snippet"`
	} `json:"news_results"`
}

// News returns current news for a location, optionally narrowed to a
// topic.
func (c *Client) News(ctx context.Context, location, topic string) ([]Article, error) {
	query := "top news " + location + " today"
	if topic != "" {
		query = topic + " " + location + " news"
	}

	var nr newsResponse
	if err := c.search(ctx, "google_news", query, &nr); err != nil {
		return nil, err
	}

	articles := make([]Article, 0, len(nr.NewsResults))
	for _, a := range nr.NewsResults {
		articles = append(articles, Article{
			Title:   a.Title,
			Source:  a.Source,
			Date:    a.Date,
			Snippet: a.Snippet,
		})
	}
	return articles, nil
}

type placeResult struct {
	Title   string  `json:"title"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Rating  float64 `json:"rating"`
	Phone   string  `json:"phone"`
}

type placesResponse struct {
	LocalResults struct {
		Places []placeResult `json:"places"`
	} `json:"local_results"`
	PlacesResults []placeResult `json:"places_results"`
}

// Places finds specific kinds of places (restaurants, hospitals,
// ATMs...) in a location.
func (c *Client) Places(ctx context.Context, query, location string) ([]Place, error) {
	var pr placesResponse
	if err := c.search(ctx, "google", query+" in "+location, &pr); err != nil {
		return nil, err
	}

	results := pr.LocalResults.Places
	if len(results) == 0 {
		results = pr.PlacesResults
	}

	places := make([]Place, 0, len(results))
	for _, p := range results {
		title := p.Title
		if title == "" {
			title = p.Name
		}
		places = append(places, Place{
			Title:   title,
			Address: p.Address,
			Rating:  p.Rating,
			Phone:   p.Phone,
		})
	}
	return places, nil
}
