// Package websearch adapts a paid Brave-style web-search API. Every call is
// charged against a shared monthly budget; the two-step local lookup paces
// its dependent calls.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/satchel-mcp/satchel/internal/ratelimit"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1"

// RemoteError is a non-success response from the search API. The remote
// message is surfaced verbatim, never swallowed.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("search API error (%d): %s", e.StatusCode, e.Message)
}

// Client calls the search API with key-based auth.
type Client struct {
	key        string
	baseURL    string
	httpClient *http.Client
	budget     *ratelimit.Budget
	pacer      *ratelimit.Pacer
}

// NewClient creates a search client. budget gates every outbound call;
// pacer spaces the dependent calls of a local-search lookup.
func NewClient(key string, budget *ratelimit.Budget, pacer *ratelimit.Pacer) *Client {
	return &Client{
		key:        key,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		budget:     budget,
		pacer:      pacer,
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.budget.Check(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &RemoteError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type webSearchResponse struct {
	Web struct {
		Results []Result `json:"results"`
	} `json:"web"`
	Locations struct {
		Results []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"results"`
	} `json:"locations"`
}

// WebSearch runs a general web search. count is clamped to 1..20 and offset
// to 0..9, matching the API's limits.
func (c *Client) WebSearch(ctx context.Context, query string, count, offset int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(clamp(count, 1, 20)))
	params.Set("offset", strconv.Itoa(clamp(offset, 0, 9)))

	var resp webSearchResponse
	if err := c.get(ctx, "/web/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Web.Results, nil
}

type POI struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address struct {
		StreetAddress string `json:"streetAddress"`
		Locality      string `json:"addressLocality"`
		Region        string `json:"addressRegion"`
		PostalCode    string `json:"postalCode"`
	} `json:"address"`
	Phone  string `json:"phone"`
	Rating struct {
		Value float64 `json:"ratingValue"`
		Count int     `json:"ratingCount"`
	} `json:"rating"`
}

type poisResponse struct {
	Results []POI `json:"results"`
}

type descriptionsResponse struct {
	Descriptions map[string]string `json:"descriptions"`
}

// LocalResult joins a point of interest with its description.
type LocalResult struct {
	POI         POI
	Description string
}

// LocalSearch looks up places matching a query. It first asks the web
// endpoint for location ids, then fetches details and descriptions as two
// dependent, paced calls. With no location ids it falls back to a plain web
// search and returns nil local results.
func (c *Client) LocalSearch(ctx context.Context, query string, count int) ([]LocalResult, []Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("search_lang", "en")
	params.Set("result_filter", "locations")
	params.Set("count", strconv.Itoa(clamp(count, 1, 20)))

	var resp webSearchResponse
	if err := c.get(ctx, "/web/search", params, &resp); err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(resp.Locations.Results))
	for _, loc := range resp.Locations.Results {
		if loc.ID != "" {
			ids = append(ids, loc.ID)
		}
	}
	if len(ids) == 0 {
		web, err := c.WebSearch(ctx, query, count, 0)
		return nil, web, err
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, nil, err
	}
	poiParams := url.Values{}
	for _, id := range ids {
		poiParams.Add("ids", id)
	}
	var pois poisResponse
	if err := c.get(ctx, "/local/pois", poiParams, &pois); err != nil {
		return nil, nil, err
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, nil, err
	}
	var descs descriptionsResponse
	if err := c.get(ctx, "/local/descriptions", poiParams, &descs); err != nil {
		return nil, nil, err
	}

	results := make([]LocalResult, 0, len(pois.Results))
	for _, p := range pois.Results {
		results = append(results, LocalResult{POI: p, Description: descs.Descriptions[p.ID]})
	}
	return results, nil, nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
