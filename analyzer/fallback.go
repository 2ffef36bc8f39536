package analyzer

import (
	"fmt"
	"strings"

	"github.com/reelspirit/backend/collector"
	"github.com/reelspirit/backend/utils"
	. "github.com/reelspirit/backend/utils/log"
)

const (
	liqueurLabel       = "Liqueur"
	coffeeLabel        = "Coffee Cocktail"
	mixedCocktailLabel = "Mixed Cocktail"
)

// spiritKeywords is evaluated in order so the fallback is deterministic for a
// given caption.
var spiritKeywords = []struct {
	label string
	keys  []string
}{
	{"Whiskey", []string{"viski", "whiskey", "whisky", "bourbon", "scotch", "jack daniels", "jameson"}},
	{"Gin", []string{"cin", "gin", "tanqueray", "gordon", "hendricks", "beefeater"}},
	{"Rum", []string{"rom", "rum", "bacardi", "havana club", "captain morgan"}},
	{"Vodka", []string{"votka", "vodka", "absolut", "smirnoff", "grey goose"}},
	{"Tequila", []string{"tekila", "tequila", "patron", "olmeca"}},
	{"Beer", []string{"bira", "beer", "lager", "ale", "ipa", "stout"}},
	{"Wine", []string{"şarap", "wine", "merlot", "cabernet", "chardonnay"}},
	{"Raki", []string{"rakı", "raki", "yeni rakı"}},
	{liqueurLabel, []string{"likör", "liqueur", "baileys", "kahlua", "jagermeister", "cointreau"}},
	{coffeeLabel, []string{"espresso martini", "irish coffee"}},
}

var cocktailIndicators = []string{"cocktail", "kokteyl", "mix", "recipe", "tarif", "cl", "oz"}

var fashionKeywords = []string{"fashion", "style", "moda", "outfit"}

// FallbackAnalysis classifies a batch with pure keyword matching. It is the
// degradation path when the model call fails or returns unusable output: it
// never fails and always returns exactly one result per input item.
func FallbackAnalysis(items []collector.MediaItem) []Result {
	Log.Info("running fallback analysis (keyword based)")

	results := make([]Result, 0, len(items))
	for index, item := range items {
		caption := strings.ToLower(item.Caption)
		drinkCategory := classifyDrink(caption)

		var category, summary string
		switch {
		case drinkCategory != DefaultDrinkCategory:
			category = "Gastronomy"
			summary = fmt.Sprintf("%s recipe or showcase.", drinkCategory)
		case containsAny(caption, fashionKeywords):
			category = "Fashion"
			summary = "Fashion related content."
		default:
			category = DefaultCategory
			summary = DefaultSummary
		}

		results = append(results, Result{
			Id:            externalId(item, index),
			Category:      category,
			Summary:       summary,
			DrinkCategory: drinkCategory,
		})
	}
	return results
}

// classifyDrink applies the tie-break policy over the detected spirit sets:
// coffee always wins, a single spirit stands alone unless a cocktail
// indicator is present, liqueur next to exactly one other spirit acts as a
// modifier rather than a base, and anything else with two or more spirits is
// a mixed cocktail.
func classifyDrink(caption string) string {
	detected := []string{}
	for _, spirit := range spiritKeywords {
		if containsAny(caption, spirit.keys) {
			detected = append(detected, spirit.label)
		}
	}

	isCocktail := containsAny(caption, cocktailIndicators)

	for _, label := range detected {
		if label == coffeeLabel {
			return coffeeLabel
		}
	}

	switch {
	case len(detected) == 0:
		return DefaultDrinkCategory
	case len(detected) == 1:
		if isCocktail {
			return detected[0] + " Cocktail"
		}
		return detected[0]
	case len(detected) == 2 && utils.ContainsString(detected, liqueurLabel):
		for _, label := range detected {
			if label != liqueurLabel {
				return label + " Cocktail"
			}
		}
		return mixedCocktailLabel
	default:
		return mixedCocktailLabel
	}
}

func containsAny(caption string, keys []string) bool {
	for _, key := range keys {
		if strings.Contains(caption, key) {
			return true
		}
	}
	return false
}
