// Package drive adapts a Google-Drive-style file store: listing and search
// with page-token cursors, metadata reads, and text downloads with export
// for workspace-native documents.
package drive

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
)

const defaultBaseURL = "https://www.googleapis.com/drive/v3"

// Export targets for workspace-native documents, which have no byte content
// of their own and must be converted on download.
var exportMimeTypes = map[string]string{
	"application/vnd.google-apps.document":     "text/markdown",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
	"application/vnd.google-apps.presentation": "text/plain",
	"application/vnd.google-apps.drawing":      "image/svg+xml",
}

// RemoteError is a non-success response from the drive API.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("drive API error (%d): %s", e.StatusCode, e.Message)
}

// File is drive file metadata.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         string `json:"size,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
}

// FilePage is one page of listing results with its continuation token.
type FilePage struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// Client is an authenticated drive API client.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with a bearer access token.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		var payload struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	return body, nil
}

func (c *Client) listFiles(ctx context.Context, query, pageToken string, pageSize int) (*FilePage, error) {
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("fields", "nextPageToken, files(id, name, mimeType, size, modifiedTime, webViewLink)")
	if query != "" {
		params.Set("q", query)
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	body, err := c.get(ctx, "/files", params)
	if err != nil {
		return nil, err
	}

	var page FilePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &page, nil
}

// List returns one page of files. An empty pageToken starts from the
// beginning; the returned NextPageToken threads to the following page.
func (c *Client) List(ctx context.Context, pageToken string, pageSize int) (*FilePage, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return c.listFiles(ctx, "", pageToken, pageSize)
}

// Search finds files whose full text matches the query.
func (c *Client) Search(ctx context.Context, query, pageToken string, pageSize int) (*FilePage, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	escaped := strings.ReplaceAll(query, `'`, `\'`)
	return c.listFiles(ctx, fmt.Sprintf("fullText contains '%s'", escaped), pageToken, pageSize)
}

// GetFile retrieves metadata for a single file.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	params := url.Values{}
	params.Set("fields", "id, name, mimeType, size, modifiedTime, webViewLink")

	body, err := c.get(ctx, "/files/"+fileID, params)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &f, nil
}

// ReadFile downloads a file's content as text. Workspace-native documents
// are exported to a text format chosen by MIME type; everything else is
// downloaded as-is. Returns the content and the MIME type it was served as.
func (c *Client) ReadFile(ctx context.Context, fileID string) (string, string, error) {
	meta, err := c.GetFile(ctx, fileID)
	if err != nil {
		return "", "", err
	}

	if exportType, ok := exportMimeTypes[meta.MimeType]; ok {
		params := url.Values{}
		params.Set("mimeType", exportType)
		body, err := c.get(ctx, "/files/"+fileID+"/export", params)
		if err != nil {
			return "", "", err
		}
		return string(body), exportType, nil
	}

	params := url.Values{}
	params.Set("alt", "media")
	body, err := c.get(ctx, "/files/"+fileID, params)
	if err != nil {
		return "", "", err
	}
	return string(body), meta.MimeType, nil
}
