// Package wiki adapts a Notion-style workspace API: page search, page and
// database reads, page creation and appends. Responses are flattened into
// plain text for the tool surface.
package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
)

// RemoteError is a structured error payload from the wiki API.
type RemoteError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("wiki API error (%d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("wiki API error (%d): %s", e.StatusCode, e.Message)
}

// Client is an authenticated wiki API client.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with a bearer token.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		remote := &RemoteError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var payload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Message != "" {
			remote.Code = payload.Code
			remote.Message = payload.Message
		}
		return remote
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// RichText is one fragment of formatted text.
type RichText struct {
	Type      string `json:"type"`
	PlainText string `json:"plain_text"`
	Text      *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
}

func plainText(fragments []RichText) string {
	var out string
	for _, f := range fragments {
		out += f.PlainText
	}
	return out
}

// Page is a page or database object as returned by search and reads.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time"`
	LastEditedTime string              `json:"last_edited_time"`
	URL            string              `json:"url,omitempty"`
	Title          []RichText          `json:"title,omitempty"`
	Properties     map[string]Property `json:"properties,omitempty"`
}

// Property is a simplified page property.
type Property struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Checkbox bool       `json:"checkbox,omitempty"`
	URL      string     `json:"url,omitempty"`
	Select   *struct {
		Name string `json:"name"`
	} `json:"select,omitempty"`
	Status *struct {
		Name string `json:"name"`
	} `json:"status,omitempty"`
	Date *struct {
		Start string `json:"start"`
		End   string `json:"end,omitempty"`
	} `json:"date,omitempty"`
}

// TitleText extracts the plain-text title of a page or database.
func (p *Page) TitleText() string {
	if len(p.Title) > 0 {
		return plainText(p.Title)
	}
	for _, prop := range p.Properties {
		if prop.Type == "title" && len(prop.Title) > 0 {
			return plainText(prop.Title)
		}
	}
	return ""
}

// SearchPage is one page of search results with its continuation cursor.
type SearchPage struct {
	Results    []Page `json:"results"`
	NextCursor string `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

// Search runs a workspace-wide text search. An empty cursor starts from the
// beginning; the returned NextCursor threads to the following page while
// HasMore is set.
func (c *Client) Search(ctx context.Context, query, cursor string, pageSize int) (*SearchPage, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 25
	}
	body := map[string]any{
		"query":     query,
		"page_size": pageSize,
	}
	if cursor != "" {
		body["start_cursor"] = cursor
	}

	var page SearchPage
	if err := c.request(ctx, http.MethodPost, "/search", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPage retrieves page metadata by id.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.request(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// QueryDatabase queries a database, following the cursor until limit rows
// are collected or the database is exhausted.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter any, sorts []map[string]any, limit int) ([]Page, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var rows []Page
	cursor := ""
	for {
		body := map[string]any{"page_size": limit - len(rows)}
		if filter != nil {
			body["filter"] = filter
		}
		if len(sorts) > 0 {
			body["sorts"] = sorts
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var page SearchPage
		if err := c.request(ctx, http.MethodPost, "/databases/"+databaseID+"/query", body, &page); err != nil {
			return nil, err
		}
		rows = append(rows, page.Results...)

		if !page.HasMore || len(rows) >= limit {
			return rows, nil
		}
		cursor = page.NextCursor
	}
}

// CreatePage creates a page under a parent page, optionally with initial
// paragraph content.
func (c *Client) CreatePage(ctx context.Context, parentID, title, content string) (*Page, error) {
	body := map[string]any{
		"parent": map[string]any{"page_id": parentID},
		"properties": map[string]any{
			"title": map[string]any{
				"title": []map[string]any{
					{"type": "text", "text": map[string]any{"content": title}},
				},
			},
		},
	}
	if content != "" {
		body["children"] = paragraphBlocks(content)
	}

	var page Page
	if err := c.request(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AppendParagraphs appends content to a page as paragraph blocks, one per
// line of input.
func (c *Client) AppendParagraphs(ctx context.Context, pageID, content string) error {
	body := map[string]any{"children": paragraphBlocks(content)}
	return c.request(ctx, http.MethodPatch, "/blocks/"+pageID+"/children", body, nil)
}
