package analyzer

import (
	"testing"

	"github.com/reelspirit/backend/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fallbackDrinkCategory(t *testing.T, caption string) string {
	t.Helper()
	results := FallbackAnalysis([]collector.MediaItem{{Id: "1", Caption: caption}})
	require.Len(t, results, 1)
	return results[0].DrinkCategory
}

func TestFallbackSingleSpirit(t *testing.T) {
	assert.Equal(t, "Whiskey", fallbackDrinkCategory(t, "a dram of whiskey by the fire"))
	assert.Equal(t, "Beer", fallbackDrinkCategory(t, "cold beer after work"))
}

func TestFallbackSingleSpiritWithIndicator(t *testing.T) {
	assert.Equal(t, "Gin Cocktail", fallbackDrinkCategory(t, "gin cocktail for the weekend"))
	assert.Equal(t, "Vodka Cocktail", fallbackDrinkCategory(t, "4cl vodka, shake well"))
}

func TestFallbackLiqueurDemotion(t *testing.T) {
	// liqueur next to exactly one spirit acts as a modifier, not a base
	assert.Equal(t, "Whiskey Cocktail", fallbackDrinkCategory(t, "6cl whiskey + 1cl liqueur, recipe"))
}

func TestFallbackMixedCocktail(t *testing.T) {
	assert.Equal(t, "Mixed Cocktail", fallbackDrinkCategory(t, "rum and gin mix"))
	// three spirits, liqueur no longer demotable
	assert.Equal(t, "Mixed Cocktail", fallbackDrinkCategory(t, "whiskey, rum and liqueur blend"))
}

func TestFallbackCoffeeAlwaysWins(t *testing.T) {
	assert.Equal(t, "Coffee Cocktail", fallbackDrinkCategory(t, "espresso martini time"))
	// coffee beats the multi-spirit rule even with other spirits present
	assert.Equal(t, "Coffee Cocktail", fallbackDrinkCategory(t, "irish coffee with extra whiskey and baileys"))
}

func TestFallbackNoSpirit(t *testing.T) {
	assert.Equal(t, "Other", fallbackDrinkCategory(t, "sunset at the beach"))
	assert.Equal(t, "Other", fallbackDrinkCategory(t, ""))
}

func TestFallbackCategoryAndSummary(t *testing.T) {
	results := FallbackAnalysis([]collector.MediaItem{
		{Id: "1", Caption: "gin cocktail for the weekend"},
		{Id: "2", Caption: "new outfit for the show"},
		{Id: "3", Caption: "sunset at the beach"},
	})
	require.Len(t, results, 3)

	assert.Equal(t, "Gastronomy", results[0].Category)
	assert.Equal(t, "Gin Cocktail recipe or showcase.", results[0].Summary)

	assert.Equal(t, "Fashion", results[1].Category)
	assert.Equal(t, "Fashion related content.", results[1].Summary)

	assert.Equal(t, DefaultCategory, results[2].Category)
	assert.Equal(t, DefaultSummary, results[2].Summary)
	assert.Equal(t, DefaultDrinkCategory, results[2].DrinkCategory)
}

func TestFallbackDeterministic(t *testing.T) {
	caption := "6cl whiskey + 1cl liqueur, recipe"
	first := fallbackDrinkCategory(t, caption)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, fallbackDrinkCategory(t, caption))
	}
}

func TestFallbackTotalAndIdSafe(t *testing.T) {
	items := []collector.MediaItem{
		{Id: "18001", Caption: "beer"},
		{Caption: "no id on this one"},
	}
	results := FallbackAnalysis(items)
	require.Len(t, results, len(items))
	assert.Equal(t, "18001", results[0].Id)
	assert.Equal(t, "UNKNOWN_1", results[1].Id)
}
