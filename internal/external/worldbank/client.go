package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/pkg/httputil"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// ProviderName is the registry key for this client.
const ProviderName = "worldbank"

// Client fetches indicator series from the World Bank open data API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new World Bank client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("provider", ProviderName),
		baseURL:    baseURL,
	}
}

// Name implements contracts.Provider.
func (c *Client) Name() string {
	return ProviderName
}

// point is one observation in the API response. Value is nullable.
type point struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Fetch retrieves the historical series for one entity and indicator.
// The API returns a two-element array: [metadata, observations].
func (c *Client) Fetch(ctx context.Context, entityCode, indicatorCode string, fromYear, toYear int) (contracts.Series, error) {
	series := contracts.NewSeries(entityCode, indicatorCode)

	url := fmt.Sprintf("%s/country/%s/indicator/%s?date=%d:%d&format=json&per_page=100",
		c.baseURL, entityCode, indicatorCode, fromYear, toYear)

	var envelope []json.RawMessage
	if err := c.httpClient.GetJSON(ctx, url, &envelope); err != nil {
		return series, err
	}

	if len(envelope) < 2 {
		return series, httputil.Permanent(fmt.Errorf("unexpected response shape: %d elements", len(envelope)))
	}

	var points []point
	if err := json.Unmarshal(envelope[1], &points); err != nil {
		return series, httputil.Permanent(fmt.Errorf("malformed observation list: %w", err))
	}

	for _, p := range points {
		if p.Value == nil {
			continue
		}
		year, err := strconv.Atoi(p.Date)
		if err != nil {
			continue
		}
		series.Points[year] = *p.Value
	}

	c.logger.WithFields(map[string]interface{}{
		"entity":    entityCode,
		"indicator": indicatorCode,
		"points":    len(series.Points),
	}).Debug("Fetched World Bank series")

	return series, nil
}
