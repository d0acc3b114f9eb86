package imf

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/pkg/httputil"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// ProviderName is the registry key for this client.
const ProviderName = "imf"

// Client fetches indicator series from the IMF DataMapper API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new IMF DataMapper client.
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

// response mirrors the DataMapper payload:
// {"values": {INDICATOR: {ENTITY: {"2021": 1.2, ...}}}}
type response struct {
	Values map[string]map[string]map[string]float64 `json:"values"`
}

// Fetch retrieves the historical series for one entity and indicator.
func (c *Client) Fetch(ctx context.Context, entityCode, indicatorCode string, fromYear, toYear int) (contracts.Series, error) {
	series := contracts.NewSeries(entityCode, indicatorCode)

	url := fmt.Sprintf("%s/%s/%s?periods=%d:%d",
		c.baseURL, indicatorCode, entityCode, fromYear, toYear)

	var resp response
	if err := c.httpClient.GetJSON(ctx, url, &resp); err != nil {
		return series, err
	}

	byEntity, ok := resp.Values[indicatorCode]
	if !ok {
		// The API omits the indicator key entirely when it has no data.
		return series, nil
	}

	for yearStr, value := range byEntity[entityCode] {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			continue
		}
		if year < fromYear || year > toYear {
			continue
		}
		series.Points[year] = value
	}

	c.logger.WithFields(map[string]interface{}{
		"entity":    entityCode,
		"indicator": indicatorCode,
		"points":    len(series.Points),
	}).Debug("Fetched IMF series")

	return series, nil
}
