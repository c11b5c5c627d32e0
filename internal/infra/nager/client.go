// internal/infra/nager/client.go
package nager

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"qcdt_reminder_bot/internal/domain/holiday"
)

const defaultTimeout = 20 * time.Second

type cacheKey struct {
	year int
	code string
}

// Client fetches public holidays from a Nager.Date style endpoint and caches
// results per (year, country) for the process lifetime. Failures are cached
// as empty lists too, so a broken key is not re-requested every week.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Entry

	mu    sync.Mutex
	cache map[cacheKey][]holiday.Holiday
}

func NewClient(baseURL string, log *logrus.Entry) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
		cache:   make(map[cacheKey][]holiday.Holiday),
	}
}

// Holidays returns the holidays for a country and year. It never fails: any
// transport, status or decode problem degrades to an empty list.
func (c *Client) Holidays(ctx context.Context, countryCode string, year int) []holiday.Holiday {
	key := cacheKey{year: year, code: countryCode}

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	holidays := c.fetch(ctx, countryCode, year)

	c.mu.Lock()
	c.cache[key] = holidays
	c.mu.Unlock()
	return holidays
}

type apiHoliday struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	LocalName string `json:"localName"`
}

func (c *Client) fetch(ctx context.Context, countryCode string, year int) []holiday.Holiday {
	logCtx := c.log.WithFields(logrus.Fields{"country": countryCode, "year": year})

	url := fmt.Sprintf("%s/%d/%s", c.baseURL, year, countryCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logCtx.WithError(err).Warn("Holiday request could not be built")
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logCtx.WithError(err).Warn("Holiday lookup failed, treating as no holidays")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logCtx.WithField("status", resp.StatusCode).Warn("Holiday lookup returned non-success status")
		return nil
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "json") {
		logCtx.WithField("content_type", ct).Warn("Holiday lookup returned non-JSON content")
		return nil
	}

	var entries []apiHoliday
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		logCtx.WithError(err).Warn("Holiday payload could not be decoded")
		return nil
	}

	holidays := make([]holiday.Holiday, 0, len(entries))
	for _, e := range entries {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			logCtx.WithField("date", e.Date).Warn("Skipping holiday with malformed date")
			continue
		}
		name := e.Name
		if name == "" {
			name = e.LocalName
		}
		if name == "" {
			name = "Holiday"
		}
		holidays = append(holidays, holiday.Holiday{Date: date, Name: name})
	}
	logCtx.WithField("count", len(holidays)).Debug("Holiday list fetched")
	return holidays
}
