package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reelspirit/backend/collector"
	. "github.com/reelspirit/backend/utils/log"
	"github.com/pkg/errors"
)

// Defaults used whenever the model leaves a field out.
const (
	DefaultCategory      = "General"
	DefaultSummary       = "No summary available."
	DefaultDrinkCategory = "Other"

	// Placeholder sent to the model for caption-less media.
	noTextPlaceholder = "No text, media only."
)

const analysisPrompt = `
You are an expert Instagram content analyst. Your task is to analyze the given posts.
Respond in JSON format, strictly adhering to the rules below.

**TASKS:**
1. 'category': Content type (Gastronomy, Fashion, Sports, Nightlife, Travel, Art, etc.)
2. 'summary': Summary of the content in ENGLISH (max 10 words).
3. 'drink_category': If there is an alcoholic beverage, specify its type accurately.

**DRINK_CATEGORY RULES:**
- Single Spirit: "Whiskey", "Gin", "Rum", "Vodka", "Tequila", "Beer", "Wine", "Raki".
- Cocktails (Dominant Spirit): "Whiskey Cocktail", "Gin Cocktail", "Rum Cocktail", "Vodka Cocktail", "Tequila Cocktail".
- Cocktails (Mix/Ambiguous): "Mixed Cocktail".
- Coffee + Alcohol: "Coffee Cocktail".
- Liqueur based: "Liqueur Cocktail".
- No alcohol or unclear: "Other".

**IMPORTANT:** - Look for keywords in the text like 'cl', 'oz', 'recipe', 'mix'.
- Return ONLY a valid JSON list of {"proxy_id", "category", "summary", "drink_category"} objects.
`

// Result is the classification outcome for a single media item, keyed by the
// item's external id. Callers cannot tell whether it came from the model or
// from the deterministic fallback.
type Result struct {
	Id            string
	Category      string
	Summary       string
	DrinkCategory string
}

// AnalyzedPost is a media item with its classification attached, the unit the
// persistence layer consumes.
type AnalyzedPost struct {
	collector.MediaItem

	Category      string
	Summary       string
	DrinkCategory string
}

// TextGenerator is the boundary to the text-generation backend. Generate
// sends one prompt and returns the raw response text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PostAnalyzer classifies batches of media items. The model path sends one
// batched request; any failure on it degrades to FallbackAnalysis for the
// entire batch, never a mix of both.
type PostAnalyzer struct {
	generator TextGenerator
}

func NewPostAnalyzer(generator TextGenerator) *PostAnalyzer {
	return &PostAnalyzer{generator: generator}
}

type promptItem struct {
	ProxyId string `json:"proxy_id"`
	Text    string `json:"text"`
}

type responseItem struct {
	ProxyId       string `json:"proxy_id"`
	Category      string `json:"category"`
	Summary       string `json:"summary"`
	DrinkCategory string `json:"drink_category"`
}

// externalId returns the id the pipeline correlates on, with an index-based
// placeholder for items that arrived without one.
func externalId(item collector.MediaItem, index int) string {
	if item.Id != "" {
		return item.Id
	}
	return fmt.Sprintf("UNKNOWN_%d", index)
}

// Analyze classifies every item in the batch. Empty input returns an empty
// result without touching the network.
//
// The model never sees real media ids: each item is keyed by a synthetic
// proxy id ("REF_<index>") and results are mapped back afterwards. Response
// elements with unknown proxy ids are dropped, which protects the pipeline
// from hallucinated ids.
func (a *PostAnalyzer) Analyze(ctx context.Context, items []collector.MediaItem) []Result {
	if len(items) == 0 {
		return []Result{}
	}

	Log.Infof("preparing %d posts for analysis", len(items))

	idMap := make(map[string]string)
	input := make([]promptItem, 0, len(items))
	for index, item := range items {
		proxyId := fmt.Sprintf("REF_%d", index)
		idMap[proxyId] = externalId(item, index)

		text := CleanCaption(item.Caption)
		if text == "" {
			text = noTextPlaceholder
		}
		input = append(input, promptItem{ProxyId: proxyId, Text: text})
	}

	encodedInput, err := json.Marshal(input)
	if err != nil {
		Log.Error("fail to encode analysis input: ", err)
		return FallbackAnalysis(items)
	}
	prompt := fmt.Sprintf("%s\n\nDATA:\n%s", analysisPrompt, string(encodedInput))

	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		Log.Error("text generation failed, switching to fallback: ", err)
		return FallbackAnalysis(items)
	}

	parsed, err := parseAnalysisResponse(text)
	if err != nil {
		Log.Error("unusable model response, switching to fallback: ", err)
		return FallbackAnalysis(items)
	}

	results := []Result{}
	for _, res := range parsed {
		id, ok := idMap[res.ProxyId]
		if !ok {
			Log.Warnf("dropping analysis element with unknown proxy id %q", res.ProxyId)
			continue
		}
		results = append(results, Result{
			Id:            id,
			Category:      orDefault(res.Category, DefaultCategory),
			Summary:       orDefault(res.Summary, DefaultSummary),
			DrinkCategory: orDefault(res.DrinkCategory, DefaultDrinkCategory),
		})
	}

	Log.Infof("analysis completed: %d items processed", len(results))
	return results
}

// parseAnalysisResponse decodes the model output, accepting either a bare
// JSON array or an object carrying the array under "results". Anything else
// is rejected so the caller can quarantine the batch into the fallback.
func parseAnalysisResponse(text string) ([]responseItem, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.New("empty model response")
	}

	var list []responseItem
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		return list, nil
	}

	var wrapper struct {
		Results []responseItem `json:"results"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapper); err == nil && wrapper.Results != nil {
		return wrapper.Results, nil
	}

	return nil, errors.New("model response is neither a result list nor a result wrapper")
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
