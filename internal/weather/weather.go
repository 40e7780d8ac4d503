package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	DefaultTTL     = 10 * time.Minute
)

var (
	// ErrNotConfigured is returned when the service is used without an
	// API key.
	ErrNotConfigured = errors.New("weather: api key not configured")

	ErrInvalidAPIKey    = errors.New("weather: invalid api key")
	ErrLocationNotFound = errors.New("weather: location not found")
)

// UpstreamError is any non-2xx reply that is not a credential or
// location problem.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("weather: upstream responded %s", e.Status)
}

// Report is the current weather shaped for the API response.
type Report struct {
	Temperature int     `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	FeelsLike   int     `json:"feelsLike"`
	Location    string  `json:"location"`
}

// IconURL returns the upstream image URL for an icon code.
func IconURL(icon string) string {
	return "https://openweathermap.org/img/wn/" + icon + "@2x.png"
}

type cacheEntry struct {
	report   Report
	storedAt time.Time
}

// Service looks up current weather with a TTL cache keyed by
// (location, language). Lookups for the same key are collapsed, so at
// most one upstream request per key is in flight at a time.
type Service struct {
	logger  *slog.Logger
	apiKey  string
	baseURL string
	ttl     time.Duration
	client  *http.Client
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
	group singleflight.Group
}

func New(logger *slog.Logger, apiKey string, baseURL string, ttl time.Duration, client *http.Client) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Service{
		logger:  logger.With("module", "weather"),
		apiKey:  apiKey,
		baseURL: baseURL,
		ttl:     ttl,
		client:  client,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
}

// SetClock overrides the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Current returns the weather for a location, served from cache while
// the entry is younger than the TTL.
func (s *Service) Current(ctx context.Context, location, lang string) (Report, error) {
	if s.apiKey == "" {
		return Report{}, ErrNotConfigured
	}
	if lang == "" {
		lang = "es"
	}

	key := location + "|" + lang

	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()

	if ok && s.now().Sub(entry.storedAt) < s.ttl {
		s.logger.Debug("cache hit", "location", location, "lang", lang)
		return entry.report, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		report, err := s.fetch(ctx, location, lang)
		if err != nil {
			return Report{}, err
		}

		s.mu.Lock()
		s.cache[key] = cacheEntry{report: report, storedAt: s.now()}
		s.mu.Unlock()

		return report, nil
	})
	if err != nil {
		return Report{}, err
	}

	return result.(Report), nil
}

// ClearCache drops all cached reports.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]cacheEntry)
	s.mu.Unlock()
}

type upstreamResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (s *Service) fetch(ctx context.Context, location, lang string) (Report, error) {
	query := url.Values{}
	query.Set("q", location)
	query.Set("appid", s.apiKey)
	query.Set("units", "metric")
	query.Set("lang", lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return Report{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Report{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Report{}, ErrInvalidAPIKey
	case resp.StatusCode == http.StatusNotFound:
		return Report{}, ErrLocationNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Report{}, &UpstreamError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Report{}, err
	}

	var data upstreamResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Report{}, fmt.Errorf("weather: decode response: %w", err)
	}

	report := Report{
		Temperature: int(math.Round(data.Main.Temp)),
		Humidity:    data.Main.Humidity,
		WindSpeed:   data.Wind.Speed,
		FeelsLike:   int(math.Round(data.Main.FeelsLike)),
		Location:    data.Name,
	}
	if len(data.Weather) > 0 {
		report.Description = data.Weather[0].Description
		report.Icon = data.Weather[0].Icon
	}

	s.logger.Debug("fetched weather", "location", location, "lang", lang, "temp", report.Temperature)

	return report, nil
}
