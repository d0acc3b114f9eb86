package gdelt

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jmcarbo/clioscope/internal/contracts"
	"github.com/jmcarbo/clioscope/pkg/httputil"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// ProviderName is the registry key for this client.
const ProviderName = "gdelt"

// Indicator codes served by this provider. Each maps to a themed media
// query; the indicator value is the share of recent coverage matching
// the theme, already bounded in [0,1].
const (
	CodeSocialPolarization    = "CIVIL_WAR_RISK"
	CodeInstitutionalDistrust = "GOV_DISTRUST"
	CodeEliteOverproduction   = "ELITE_OVERPRODUCTION"
	CodeWealthConcentration   = "WEALTH_CONCENTRATION"
	CodeSuicideRate           = "SUICIDE"
)

// unrestQuery feeds the shock-factor event volume.
const unrestQuery = `(protest OR unrest OR violence OR conflict OR crisis)`

var themeQueries = map[string]string{
	CodeSocialPolarization:    `(polarization OR "civil conflict" OR riot OR militia)`,
	CodeInstitutionalDistrust: `("distrust in government" OR corruption OR scandal OR impeachment)`,
	CodeEliteOverproduction:   `("credential inflation" OR "elite competition" OR overqualified)`,
	CodeWealthConcentration:   `(inequality OR oligarch OR "wealth gap" OR billionaire)`,
	CodeSuicideRate:           `(suicide OR "mental health crisis")`,
}

// Client derives weekly social indicators and the event-intensity proxy
// from the GDELT DOC 2.0 article search API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string

	// sourceCodes maps ISO3 entity codes to GDELT source-country codes.
	sourceCodes map[string]string
}

// NewClient creates a new GDELT client. sourceCodes maps ISO3 codes to
// the two-letter source-country codes GDELT queries expect.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string, sourceCodes map[string]string) *Client {
	return &Client{
		httpClient:  httpClient,
		logger:      log.WithField("provider", ProviderName),
		baseURL:     baseURL,
		sourceCodes: sourceCodes,
	}
}

// Name implements contracts.Provider.
func (c *Client) Name() string {
	return ProviderName
}

type artListResponse struct {
	Articles []struct {
		URL    string `json:"url"`
		Title  string `json:"title"`
		Domain string `json:"domain"`
	} `json:"articles"`
}

// articleCount returns the number of recent articles matching the query
// for one source country, capped by the API record limit.
func (c *Client) articleCount(ctx context.Context, sourceCode, query, timespan string) (int, error) {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("%s sourcecountry:%s", query, sourceCode))
	params.Set("mode", "artlist")
	params.Set("maxrecords", "250")
	params.Set("timespan", timespan)
	params.Set("format", "json")

	fullURL := fmt.Sprintf("%s/doc/doc?%s", c.baseURL, params.Encode())

	var resp artListResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return 0, err
	}

	return len(resp.Articles), nil
}

// Fetch implements contracts.Provider. The returned series has a single
// point for the current period: the share of the last week's coverage
// matching the indicator's theme, in [0,1].
func (c *Client) Fetch(ctx context.Context, entityCode, indicatorCode string, fromYear, toYear int) (contracts.Series, error) {
	series := contracts.NewSeries(entityCode, indicatorCode)

	query, ok := themeQueries[indicatorCode]
	if !ok {
		return series, httputil.Permanent(fmt.Errorf("unknown indicator code: %s", indicatorCode))
	}

	sourceCode, ok := c.sourceCodes[entityCode]
	if !ok {
		return series, httputil.Permanent(fmt.Errorf("no source-country mapping for entity: %s", entityCode))
	}

	matched, err := c.articleCount(ctx, sourceCode, query, "7d")
	if err != nil {
		return series, err
	}

	total, err := c.articleCount(ctx, sourceCode, `(the OR a)`, "7d")
	if err != nil {
		return series, err
	}

	ratio := 0.0
	if total > 0 {
		ratio = float64(matched) / float64(total)
		if ratio > 1.0 {
			ratio = 1.0
		}
	}
	series.Points[toYear] = ratio

	c.logger.WithFields(map[string]interface{}{
		"entity":    entityCode,
		"indicator": indicatorCode,
		"matched":   matched,
		"total":     total,
		"ratio":     ratio,
	}).Debug("Derived media-share indicator")

	return series, nil
}

// RecentEventVolume implements contracts.EventVolumeProvider. It counts
// unrest-themed articles over the trailing window.
func (c *Client) RecentEventVolume(ctx context.Context, entityCode string, days int) (int, error) {
	sourceCode, ok := c.sourceCodes[entityCode]
	if !ok {
		return 0, httputil.Permanent(fmt.Errorf("no source-country mapping for entity: %s", entityCode))
	}

	timespan := fmt.Sprintf("%dd", days)
	count, err := c.articleCount(ctx, sourceCode, unrestQuery, timespan)
	if err != nil {
		return 0, err
	}

	return count, nil
}
