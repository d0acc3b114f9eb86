package wikicpi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmcarbo/clioscope/pkg/httputil"
	"github.com/jmcarbo/clioscope/pkg/logger"
)

// DefaultURL is the page carrying the most recent CPI table.
const DefaultURL = "https://en.wikipedia.org/wiki/Corruption_Perceptions_Index"

// tableTTL bounds how long a scraped table is reused before re-fetching.
const tableTTL = 24 * time.Hour

// Client scrapes the Corruption Perceptions Index table and serves
// per-entity fragility and corruption lookups from it. The table is
// fetched lazily and cached in memory.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string

	// names maps ISO3 entity codes to the country names used in the table.
	names map[string]string

	mu        sync.Mutex
	scores    map[string]float64 // country name -> CPI score [0,100]
	fetchedAt time.Time
}

// NewClient creates a new CPI scraper. names maps ISO3 codes to country
// names as they appear in the table.
func NewClient(httpClient *httputil.Client, log *logger.Logger, pageURL string, names map[string]string) *Client {
	if pageURL == "" {
		pageURL = DefaultURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("provider", "wikicpi"),
		url:        pageURL,
		names:      names,
	}
}

// table returns the scraped CPI table, fetching it if stale or missing.
func (c *Client) table(ctx context.Context) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scores != nil && time.Since(c.fetchedAt) < tableTTL {
		return c.scores, nil
	}

	resp, err := c.httpClient.Get(ctx, c.url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, httputil.Permanent(fmt.Errorf("failed to parse CPI page: %w", err))
	}

	scores := make(map[string]float64)
	doc.Find("table.wikitable").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		country := strings.TrimSpace(cells.Eq(1).Text())
		scoreText := strings.TrimSpace(cells.Eq(2).Text())
		score, err := strconv.ParseFloat(scoreText, 64)
		if err != nil {
			return
		}
		scores[country] = score
	})

	if len(scores) == 0 {
		return nil, httputil.Permanent(fmt.Errorf("no CPI rows found in table"))
	}

	c.scores = scores
	c.fetchedAt = time.Now()

	c.logger.WithField("countries", len(scores)).Info("Scraped CPI table")

	return scores, nil
}

// Score returns the raw CPI score [0,100] for an entity. Higher means
// cleaner institutions.
func (c *Client) Score(ctx context.Context, entityCode string) (float64, error) {
	name, ok := c.names[entityCode]
	if !ok {
		return 0, httputil.Permanent(fmt.Errorf("no country name mapping for entity: %s", entityCode))
	}

	scores, err := c.table(ctx)
	if err != nil {
		return 0, err
	}

	score, ok := scores[name]
	if !ok {
		return 0, httputil.Permanent(fmt.Errorf("entity %s (%s) not present in CPI table", entityCode, name))
	}

	return score, nil
}

// Fragility implements contracts.FragilityProvider: the CPI inverted
// onto [0,1], so corrupt institutions read as fragile.
func (c *Client) Fragility(ctx context.Context, entityCode string) (float64, error) {
	score, err := c.Score(ctx, entityCode)
	if err != nil {
		return 0, err
	}

	fragility := (100.0 - score) / 100.0
	if fragility < 0 {
		fragility = 0
	} else if fragility > 1 {
		fragility = 1
	}

	return fragility, nil
}

// CorruptionIndex returns 100 - CPI, the 0-100 corruption reading used
// by the eudaimonia predictor.
func (c *Client) CorruptionIndex(ctx context.Context, entityCode string) (float64, error) {
	score, err := c.Score(ctx, entityCode)
	if err != nil {
		return 0, err
	}
	return 100.0 - score, nil
}
