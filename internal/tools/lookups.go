package tools

import (
	"context"
	"fmt"
	"strings"
)

// maxLookupResults caps how many events, articles, or places a single
// reply lists.
const maxLookupResults = 5

func (r *Registry) liveEventsTool() *Tool {
	return &Tool{
		Name: "LiveEventsTool",
		Description: "Get live events happening in a specific city this weekend. " +
			"Use this when the user asks about 'events', 'concerts', 'shows', 'what's happening', " +
			"or 'things to do this weekend' in a city.\n" +
			"Format: Just provide the city name\n" +
			"Example: 'Delhi' or 'New York' or 'London'\n" +
			"city: (e.g., 'Mumbai', 'Paris', 'Tokyo') - ALWAYS provide a specific city name",
		Spec: []Field{
			{Name: "city"},
		},
		Handler: r.handleLiveEvents,
	}
}

func (r *Registry) handleLiveEvents(ctx context.Context, call *Call) (string, error) {
	city := resolveLocation(call, call.Args.String("city"))
	if city == "" {
		return "I need a city to look up events for. Try 'LiveEventsTool' with a city name like 'Delhi'.", nil
	}

	events, err := r.deps.Lookup.Events(ctx, city)
	if err != nil {
		r.deps.Logger.Warn("events lookup failed", "city", city, "error", err)
		return fmt.Sprintf("Sorry, I couldn't fetch live events for %s right now. Please try again later or check local event listings.", city), nil
	}
	if len(events) == 0 {
		return fmt.Sprintf("No live events found for %s this weekend. Try checking local event websites or social media for updated listings.", city), nil
	}

	lines := []string{fmt.Sprintf("Live Events in %s this weekend:\n", city)}
	for i, e := range events {
		if i == maxLookupResults {
			break
		}
		title := orDefault(e.Title, "Unnamed Event")
		venue := orDefault(e.Venue, "Venue TBA")
		date := orDefault(e.Date, "Date TBA")
		lines = append(lines, "• "+title, "   "+venue, "   "+date+"\n")
	}
	return strings.Join(lines, "\n"), nil
}

func (r *Registry) weatherTool() *Tool {
	return &Tool{
		Name: "WeatherTool",
		Description: "Get current weather information for a specific city. " +
			"Use this when the user asks about 'weather', 'temperature', 'climate', " +
			"'how's the weather', or 'should I bring an umbrella' for a location.\n" +
			"Format: Just provide the city name\n" +
			"Example: 'Mumbai' or 'London' or 'Tokyo'\n" +
			"city: (e.g., 'Delhi', 'Paris', 'Singapore') - ALWAYS provide a specific city name",
		Spec: []Field{
			{Name: "city"},
		},
		Handler: r.handleWeather,
	}
}

func (r *Registry) handleWeather(ctx context.Context, call *Call) (string, error) {
	city := resolveLocation(call, call.Args.String("city"))
	if city == "" {
		return "I need a city to check the weather for. Try 'WeatherTool' with a city name like 'Tokyo'.", nil
	}

	report, err := r.deps.Lookup.Weather(ctx, city)
	if err != nil {
		r.deps.Logger.Warn("weather lookup failed", "city", city, "error", err)
		return fmt.Sprintf("Sorry, I couldn't fetch weather information for %s right now. Please try again later.", city), nil
	}
	if report == nil {
		return fmt.Sprintf("Weather information for %s is not available right now. Please check a weather app or website.", city), nil
	}

	return fmt.Sprintf(`Current Weather in %s:

Temperature: %s
Conditions: %s
Humidity: %s
Wind: %s

Perfect for planning your day out! Let me know if you need activity recommendations based on this weather.`,
		city,
		orDefault(report.Temperature, "N/A"),
		orDefault(report.Conditions, "N/A"),
		orDefault(report.Humidity, "N/A"),
		orDefault(report.Wind, "N/A"),
	), nil
}

func (r *Registry) newsTool() *Tool {
	return &Tool{
		Name: "NewsTool",
		Description: "Get top current news for a specific location, optionally filtered by topic. " +
			"Use this when the user asks about 'news', 'latest updates', 'what's happening in', " +
			"or wants current information about a city or region.\n" +
			"Format: 'location|topic' (topic is optional)\n" +
			"Example: 'Delhi' (for top news in Delhi) or 'Mumbai|transportation' (for transport news in Mumbai)\n" +
			"location: (e.g., 'Delhi', 'Mumbai', 'Chennai') - ALWAYS provide a specific city/location\n" +
			"topic: (optional, e.g., 'politics', 'weather', 'transportation', 'festivals') - provide if user wants specific type of news",
		Spec: []Field{
			{Name: "location"},
			{Name: "topic"},
		},
		Handler: r.handleNews,
	}
}

// genericNewsTopics are treated as "no topic": the user asked for the
// news, not news about something.
var genericNewsTopics = map[string]bool{
	"news": true, "latest": true, "top news": true, "current": true,
}

func (r *Registry) handleNews(ctx context.Context, call *Call) (string, error) {
	location := resolveLocation(call, call.Args.String("location"))
	if location == "" {
		return "I need a location to look up news for. Try 'NewsTool' with a city name like 'Mumbai'.", nil
	}

	topic := call.Args.String("topic")
	if genericNewsTopics[strings.ToLower(topic)] {
		topic = ""
	}

	articles, err := r.deps.Lookup.News(ctx, location, topic)
	if err != nil {
		r.deps.Logger.Warn("news lookup failed", "location", location, "error", err)
		return fmt.Sprintf("Sorry, I couldn't fetch news for %s right now. Please try again later.", location), nil
	}
	if len(articles) == 0 {
		return fmt.Sprintf("No recent news found for %s. The city might be having a quiet news day!", location), nil
	}

	header := fmt.Sprintf("Top News in %s:\n", location)
	if topic != "" {
		header = fmt.Sprintf("Latest on '%s' in %s:\n", topic, location)
	}

	lines := []string{header}
	for i, a := range articles {
		if i == maxLookupResults {
			break
		}
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, orDefault(a.Title, "No title")),
			fmt.Sprintf("%s • %s", orDefault(a.Source, "Unknown source"), orDefault(a.Date, "Recent")),
		)
		if a.Snippet != "" {
			lines = append(lines, a.Snippet)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), nil
}

func (r *Registry) placesFinderTool() *Tool {
	return &Tool{
		Name: "PlacesFinderTool",
		Description: "Find specific types of places like hospitals, restaurants, ATMs, pharmacies, etc. in a given location. " +
			"Use this when the user asks to 'find', 'locate', 'where is the nearest', " +
			"or needs practical services and facilities.\n" +
			"Format: 'search_query|location'\n" +
			"Example: 'hospitals near me|Connaught Place Delhi' or 'ATMs|Mumbai Central'\n" +
			"search_query: (e.g., 'hospitals', 'restaurants', 'ATMs', 'pharmacies', 'gas stations')\n" +
			"location: (e.g., 'Connaught Place Delhi', 'Times Square New York') - ALWAYS provide specific location",
		Spec: []Field{
			{Name: "search_query"},
			{Name: "location", Default: "current location"},
		},
		Handler: r.handlePlacesFinder,
	}
}

func (r *Registry) handlePlacesFinder(ctx context.Context, call *Call) (string, error) {
	query := call.Args.String("search_query")
	if query == "" {
		return "I need to know what kind of place to find. Try something like 'hospitals|Connaught Place Delhi'.", nil
	}

	location := resolveLocation(call, call.Args.String("location"))

	places, err := r.deps.Lookup.Places(ctx, query, location)
	if err != nil {
		r.deps.Logger.Warn("places lookup failed", "query", query, "location", location, "error", err)
		return fmt.Sprintf("Sorry, I couldn't find places for '%s' in %s right now. Please try again later.", query, location), nil
	}
	if len(places) == 0 {
		return fmt.Sprintf("No places found for '%s' in %s. Try a different search term or broader location.", query, location), nil
	}

	lines := []string{fmt.Sprintf("Places for '%s' in %s:\n", query, location)}
	for i, p := range places {
		if i == maxLookupResults {
			break
		}
		lines = append(lines,
			"• "+orDefault(p.Title, "Unnamed Place"),
			"   "+orDefault(p.Address, "Address not available"),
		)
		if p.Rating > 0 {
			lines = append(lines, fmt.Sprintf("   Rating: %.1f", p.Rating))
		}
		if p.Phone != "" {
			lines = append(lines, "   "+p.Phone)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), nil
}

// orDefault substitutes fallback for an empty value.
func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
