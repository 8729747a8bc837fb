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

	"leadpilot/utils"

	"github.com/sirupsen/logrus"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// Completion is the result of one completion call. When the client is
// unconfigured, Disabled is true and Text/Parsed are empty — never an
// error, so the pipeline can proceed without AI assistance. Parsed is
// nil whenever the text isn't a JSON object; that's a degraded result,
// not a failure.
type Completion struct {
	Text     string
	Parsed   map[string]interface{}
	Disabled bool
}

// OpenAIClient calls the completion provider. Construct it eagerly even
// without a key; call sites check Enabled() before depending on real
// output.
type OpenAIClient struct {
	APIKey  string
	Model   string
	BaseURL string

	HTTPClient *http.Client
	Logger     *logrus.Logger
}

func NewOpenAIClient(apiKey, model string, logger *logrus.Logger) *OpenAIClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &OpenAIClient{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    defaultOpenAIBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     logger,
	}
}

// Enabled reports whether a credential is configured.
func (c *OpenAIClient) Enabled() bool {
	return c.APIKey != ""
}

type responsesRequest struct {
	Model       string  `json:"model"`
	Input       string  `json:"input"`
	Temperature float64 `json:"temperature"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Complete issues one request against the responses API with a fixed
// low temperature and returns the trimmed text plus a best-effort JSON
// parse of it.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (*Completion, error) {
	if !c.Enabled() {
		return &Completion{Disabled: true}, nil
	}

	body, err := json.Marshal(responsesRequest{
		Model:       c.Model,
		Input:       prompt,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("openai: status %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed responsesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}

	var sb strings.Builder
	for _, out := range parsed.Output {
		if out.Type != "message" {
			continue
		}
		for _, part := range out.Content {
			if part.Type == "output_text" {
				sb.WriteString(part.Text)
			}
		}
	}
	text := strings.TrimSpace(sb.String())

	c.Logger.WithFields(logrus.Fields{
		"model": c.Model,
		"chars": len(text),
	}).Debug("completion received")

	return &Completion{
		Text:   text,
		Parsed: utils.SafeJSON(text),
	}, nil
}
