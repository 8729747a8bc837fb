package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultNotionBaseURL = "https://api.notion.com/v1"
	notionVersion        = "2022-06-28"
)

// NotionClient files follow-up tasks as pages in a Notion database.
// Unlike the completion client this one requires credentials: calling
// it unconfigured is a configuration error, raised at point of use so
// store-only functionality keeps working without it.
type NotionClient struct {
	Token      string
	DatabaseID string
	BaseURL    string

	HTTPClient *http.Client
	Logger     *logrus.Logger
}

func NewNotionClient(token, databaseID string, logger *logrus.Logger) *NotionClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &NotionClient{
		Token:      token,
		DatabaseID: databaseID,
		BaseURL:    defaultNotionBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

// Configured reports whether both credential and target database are
// set. The pipeline skips task filing entirely when this is false.
func (c *NotionClient) Configured() bool {
	return c.Token != "" && c.DatabaseID != ""
}

// FileTask creates one task page keyed by lead id and returns the page
// id. No retries; a non-success response is the caller's problem.
//
// The target database must have properties Name (title), Notes
// (rich_text), LeadId (rich_text) and Priority (select).
func (c *NotionClient) FileTask(ctx context.Context, title, notes, leadID, priority string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("notion: NOTION_API_KEY and NOTION_DATABASE_ID must be set")
	}

	properties := map[string]interface{}{
		"Name": map[string]interface{}{
			"title": []map[string]interface{}{
				{"text": map[string]string{"content": title}},
			},
		},
		"Notes": map[string]interface{}{
			"rich_text": []map[string]interface{}{
				{"text": map[string]string{"content": notes}},
			},
		},
		"LeadId": map[string]interface{}{
			"rich_text": []map[string]interface{}{
				{"text": map[string]string{"content": leadID}},
			},
		},
	}
	if priority != "" {
		properties["Priority"] = map[string]interface{}{
			"select": map[string]string{"name": priority},
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"parent":     map[string]string{"database_id": c.DatabaseID},
		"properties": properties,
	})
	if err != nil {
		return "", fmt.Errorf("notion: encode request: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/pages", body)
	if err != nil {
		return "", err
	}

	var page struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return "", fmt.Errorf("notion: decode response: %w", err)
	}

	c.Logger.WithFields(logrus.Fields{
		"page_id": page.ID,
		"lead_id": leadID,
	}).Info("notion task created")

	return page.ID, nil
}

// Property describes one column of the target database. Exposed through
// the schema debug endpoint so operators can check their mapping.
type Property struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema fetches the target database's property names and types.
func (c *NotionClient) Schema(ctx context.Context) ([]Property, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("notion: NOTION_API_KEY and NOTION_DATABASE_ID must be set")
	}

	raw, err := c.do(ctx, http.MethodGet, "/databases/"+c.DatabaseID, nil)
	if err != nil {
		return nil, err
	}

	var db struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, fmt.Errorf("notion: decode database: %w", err)
	}

	props := make([]Property, 0, len(db.Properties))
	for name, p := range db.Properties {
		props = append(props, Property{Name: name, Type: p.Type})
	}
	return props, nil
}

func (c *NotionClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("notion: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", notionVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion: request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("notion: read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("notion: status %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
