// internal/weather/client.go
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travel-assistant/internal/common/config"
	"travel-assistant/internal/common/database"
	commonerrors "travel-assistant/internal/common/errors"
	commonhttp "travel-assistant/internal/common/http"
	"travel-assistant/internal/common/logger"
	"travel-assistant/internal/common/metrics"
	"travel-assistant/internal/models"

	gocache "github.com/patrickmn/go-cache"
)

// Client fetches current conditions and a short forecast for a location.
// Lookups go through a small in-process cache first, then Redis, then
// the upstream API. Redis is optional.
type Client struct {
	cfg    config.WeatherConfig
	http   *commonhttp.Client
	local  *gocache.Cache
	redis  *database.RedisClient
	logger logger.Logger
}

func NewClient(cfg config.WeatherConfig, redis *database.RedisClient, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	return &Client{
		cfg:    cfg,
		http:   commonhttp.NewClient(time.Duration(cfg.Timeout) * time.Millisecond),
		local:  gocache.New(ttl, 2*ttl),
		redis:  redis,
		logger: log,
	}
}

// weatherapi.com forecast payload, reduced to the fields we read.
type apiResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC  float64 `json:"maxtemp_c"`
				MinTempC  float64 `json:"mintemp_c"`
				Condition struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Lookup returns the weather for a location, serving from cache when
// possible.
func (c *Client) Lookup(ctx context.Context, location string) (*models.Weather, error) {
	key := cacheKey(location)

	if cached, ok := c.local.Get(key); ok {
		metrics.WeatherLookups.WithLabelValues("hit").Inc()
		w := cached.(models.Weather)
		return &w, nil
	}

	if w := c.fromRedis(ctx, key); w != nil {
		metrics.WeatherLookups.WithLabelValues("hit").Inc()
		c.local.SetDefault(key, *w)
		return w, nil
	}

	w, err := c.fetch(ctx, location)
	if err != nil {
		metrics.WeatherLookups.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.WeatherLookups.WithLabelValues("miss").Inc()
	c.local.SetDefault(key, *w)
	c.toRedis(ctx, key, w)
	return w, nil
}

func (c *Client) fetch(ctx context.Context, location string) (*models.Weather, error) {
	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("q", location)
	q.Set("days", fmt.Sprintf("%d", c.cfg.ForecastDays))

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/forecast.json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", commonerrors.ErrWeatherLookupFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", commonerrors.ErrWeatherLookupFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", commonerrors.ErrWeatherLookupFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", commonerrors.ErrWeatherLookupFailed, resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", commonerrors.ErrWeatherLookupFailed, err)
	}

	w := &models.Weather{
		Location: parsed.Location.Name,
		Current: models.CurrentWeather{
			TempC:     parsed.Current.TempC,
			Condition: parsed.Current.Condition.Text,
		},
	}
	for _, day := range parsed.Forecast.ForecastDay {
		w.Forecast = append(w.Forecast, models.ForecastDay{
			Date:      day.Date,
			MaxTempC:  day.Day.MaxTempC,
			MinTempC:  day.Day.MinTempC,
			Condition: day.Day.Condition.Text,
		})
	}
	return w, nil
}

func (c *Client) fromRedis(ctx context.Context, key string) *models.Weather {
	if c.redis == nil {
		return nil
	}
	raw, err := c.redis.Get(ctx, key)
	if err != nil {
		return nil
	}
	var w models.Weather
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil
	}
	return &w
}

func (c *Client) toRedis(ctx context.Context, key string, w *models.Weather) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, raw, time.Duration(c.cfg.CacheTTL)*time.Second); err != nil {
		c.logger.Debug("weather redis cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func cacheKey(location string) string {
	return "weather:" + strings.ToLower(strings.TrimSpace(location))
}
