package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/korjavin/prayerbot/pkg/logger"
	"github.com/pkg/errors"
)

// aladhanResponse is the subset of the Aladhan timingsByCity response we read
type aladhanResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings map[string]string `json:"timings"`
		Meta    struct {
			Timezone string `json:"timezone"`
			Method   struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"method"`
		} `json:"meta"`
	} `json:"data"`
}

// Client fetches prayer times from the Aladhan API
type Client struct {
	httpClient *http.Client
	baseURL    string
	city       string
	country    string
	method     int
	logger     *logger.Logger
}

// NewClient creates a client for one city and calculation method
func NewClient(baseURL, city, country string, method int, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		city:       city,
		country:    country,
		method:     method,
		logger:     logger.New("aladhan"),
	}
}

// Fetch retrieves the schedule for the calendar day of date
func (c *Client) Fetch(ctx context.Context, date time.Time) (Schedule, error) {
	query := url.Values{}
	query.Set("city", c.city)
	query.Set("country", c.country)
	query.Set("method", strconv.Itoa(c.method))
	endpoint := fmt.Sprintf("%s/timingsByCity/%s?%s", c.baseURL, date.Format("02-01-2006"), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Schedule{}, &FetchError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Info("Fetching prayer times for %s, %s on %s", c.city, c.country, date.Format("2006-01-02"))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Schedule{}, &FetchError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Schedule{}, &FetchError{
			Op:  "request",
			Err: errors.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var payload aladhanResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Schedule{}, &FetchError{Op: "decode", Err: errors.Wrap(err, "invalid response body")}
	}
	if payload.Code != http.StatusOK {
		return Schedule{}, &FetchError{Op: "decode", Err: errors.Errorf("api returned code %d (%s)", payload.Code, payload.Status)}
	}

	times := make(map[Name]string, len(names))
	for _, name := range names {
		value := cleanTiming(payload.Data.Timings[string(name)])
		if value == "" {
			return Schedule{}, &FetchError{Op: "decode", Err: errors.Errorf("missing %s timing", name)}
		}
		times[name] = value
	}

	c.logger.Debug("Prayer times from API (%s, method %q): %v",
		payload.Data.Meta.Timezone, payload.Data.Meta.Method.Name, times)
	return Schedule{Date: date, Times: times, Origin: OriginAPI}, nil
}
