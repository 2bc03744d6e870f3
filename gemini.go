package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// inlineImage is a base64-encoded image sent alongside a prompt.
type inlineImage struct {
	MimeType string
	Data     string
}

// analyzer is the generative-analysis collaborator: one prompt (plus an
// optional image) in, the model's text out. In JSON mode the text is a JSON
// document.
type analyzer interface {
	generate(ctx context.Context, apiKey, prompt string, img *inlineImage, jsonMode bool) (string, error)
}

/* ─── Gemini HTTP client ──────────────────────────────────────────────── */

// geminiClient calls the Gemini generateContent REST endpoint with raw
// net/http, the same way the service has always talked to its AI provider.
type geminiClient struct {
	baseURL string // overridable for tests
	model   string
	http    *http.Client
}

func newGeminiClient(baseURL, model string, timeout time.Duration) *geminiClient {
	return &geminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig map[string]interface{} `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// generate sends one generateContent request and returns the text of the
// first candidate's first part.
func (g *geminiClient) generate(ctx context.Context, apiKey, prompt string, img *inlineImage, jsonMode bool) (string, error) {
	parts := []geminiPart{{Text: prompt}}
	if img != nil {
		mime := img.MimeType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: mime, Data: img.Data}})
	}
	reqBody := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	}
	if jsonMode {
		reqBody.GenerationConfig = map[string]interface{}{"responseMimeType": "application/json"}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// The key travels in a header so transport errors, which quote the URL,
	// never carry it into logs.
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		g.baseURL, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
