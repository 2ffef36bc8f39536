package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	GeminiBaseUri      = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultGeminiModel = "gemini-2.0-flash-exp"

	geminiTimeoutSeconds = 30

	// Deterministic-leaning generation, classification should not be creative.
	geminiTemperature = 0.3
)

// GeminiClient implements TextGenerator against the Gemini generateContent
// REST endpoint, requesting JSON-shaped output.
type GeminiClient struct {
	client  *http.Client
	baseUri string
	model   string
	apiKey  string
}

var _ TextGenerator = (*GeminiClient)(nil)

func NewGeminiClient(client *http.Client, baseUri string, model string, apiKey string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		client:  client,
		baseUri: baseUri,
		model:   model,
		apiKey:  apiKey,
	}
}

// NewGeminiClientFromEnv builds the production client from GOOGLE_API_KEY and
// GEMINI_MODEL.
func NewGeminiClientFromEnv() *GeminiClient {
	return NewGeminiClient(
		&http.Client{Timeout: geminiTimeoutSeconds * time.Second},
		GeminiBaseUri,
		os.Getenv("GEMINI_MODEL"),
		os.Getenv("GOOGLE_API_KEY"),
	)
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate issues one generateContent call and returns the first candidate's
// text.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      geminiTemperature,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "fail to marshal gemini request")
	}

	uri := fmt.Sprintf("%s/%s:generateContent", g.baseUri, g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", uri, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	res, err := g.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fail to request gemini")
	}
	defer res.Body.Close()

	resBody, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "fail to read gemini response body")
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		excerpt := strings.TrimSpace(string(resBody))
		if len(excerpt) > 1024 {
			excerpt = excerpt[:1024]
		}
		return "", errors.Errorf("gemini api error %s: %s", res.Status, excerpt)
	}

	parsed := geminiResponse{}
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return "", errors.Wrap(err, "fail to parse gemini response")
	}
	if len(parsed.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
