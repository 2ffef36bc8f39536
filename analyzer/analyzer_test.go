package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/reelspirit/backend/collector"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator replays a canned response and records the prompts it saw.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func testItems() []collector.MediaItem {
	return []collector.MediaItem{
		{Id: "18001", Caption: "Negroni night #gin"},
		{Id: "18002", Caption: ""},
	}
}

func TestAnalyzeEmptyInputMakesNoCall(t *testing.T) {
	gen := &fakeGenerator{}
	results := NewPostAnalyzer(gen).Analyze(context.Background(), []collector.MediaItem{})
	assert.Empty(t, results)
	assert.Empty(t, gen.prompts)
}

func TestAnalyzeMapsProxyIdsBack(t *testing.T) {
	gen := &fakeGenerator{response: `[
		{"proxy_id": "REF_0", "category": "Gastronomy", "summary": "Negroni showcase", "drink_category": "Gin Cocktail"},
		{"proxy_id": "REF_1", "category": "Travel", "summary": "Scenery", "drink_category": "Other"}
	]`}

	results := NewPostAnalyzer(gen).Analyze(context.Background(), testItems())

	want := []Result{
		{Id: "18001", Category: "Gastronomy", Summary: "Negroni showcase", DrinkCategory: "Gin Cocktail"},
		{Id: "18002", Category: "Travel", Summary: "Scenery", DrinkCategory: "Other"},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}

	// one batched request carrying cleaned captions and proxy ids only
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"REF_0"`)
	assert.Contains(t, gen.prompts[0], "Negroni night")
	assert.NotContains(t, gen.prompts[0], "18001")
	assert.Contains(t, gen.prompts[0], noTextPlaceholder)
}

func TestAnalyzeAcceptsResultsWrapper(t *testing.T) {
	gen := &fakeGenerator{response: `{"results": [
		{"proxy_id": "REF_0", "category": "Gastronomy", "summary": "s", "drink_category": "Gin"}
	]}`}

	results := NewPostAnalyzer(gen).Analyze(context.Background(), testItems())
	require.Len(t, results, 1)
	assert.Equal(t, "18001", results[0].Id)
}

func TestAnalyzeDropsHallucinatedProxyIds(t *testing.T) {
	gen := &fakeGenerator{response: `[
		{"proxy_id": "REF_0", "category": "Gastronomy", "summary": "s", "drink_category": "Gin"},
		{"proxy_id": "REF_99", "category": "Gastronomy", "summary": "s", "drink_category": "Gin"},
		{"category": "Gastronomy", "summary": "s", "drink_category": "Gin"}
	]`}

	results := NewPostAnalyzer(gen).Analyze(context.Background(), testItems())
	require.Len(t, results, 1)
	assert.Equal(t, "18001", results[0].Id)
}

func TestAnalyzeFillsFieldDefaults(t *testing.T) {
	gen := &fakeGenerator{response: `[{"proxy_id": "REF_0"}]`}

	results := NewPostAnalyzer(gen).Analyze(context.Background(), testItems())
	require.Len(t, results, 1)
	assert.Equal(t, DefaultCategory, results[0].Category)
	assert.Equal(t, DefaultSummary, results[0].Summary)
	assert.Equal(t, DefaultDrinkCategory, results[0].DrinkCategory)
}

func TestAnalyzeFallsBackOnGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("backend down")}

	items := []collector.MediaItem{{Id: "1", Caption: "gin cocktail"}}
	results := NewPostAnalyzer(gen).Analyze(context.Background(), items)

	require.Len(t, results, 1)
	assert.Equal(t, "Gin Cocktail", results[0].DrinkCategory)
}

func TestAnalyzeFallsBackOnUnusableResponse(t *testing.T) {
	items := []collector.MediaItem{{Id: "1", Caption: "gin cocktail"}}

	for _, response := range []string{
		"",
		"   ",
		"not json at all",
		`{"unexpected": "shape"}`,
		`"just a string"`,
		`[{"proxy_id": 42}]`,
	} {
		gen := &fakeGenerator{response: response}
		results := NewPostAnalyzer(gen).Analyze(context.Background(), items)
		require.Len(t, results, 1, "response %q", response)
		// fallback output, never partial model output
		assert.Equal(t, "Gin Cocktail", results[0].DrinkCategory, "response %q", response)
	}
}

func TestAnalyzePromptCarriesWholeBatch(t *testing.T) {
	gen := &fakeGenerator{response: `[]`}
	items := make([]collector.MediaItem, 25)
	for i := range items {
		items[i] = collector.MediaItem{Id: "id", Caption: "beer"}
	}
	NewPostAnalyzer(gen).Analyze(context.Background(), items)

	require.Len(t, gen.prompts, 1)
	payload := gen.prompts[0][strings.Index(gen.prompts[0], "DATA:\n")+len("DATA:\n"):]
	var decoded []promptItem
	require.Nil(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Len(t, decoded, 25)
}
