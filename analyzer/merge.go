package analyzer

import (
	"github.com/reelspirit/backend/collector"
)

// Sentinel values attached to items no classification result matched, so the
// item is still persisted instead of dropped.
const (
	UnprocessedDrinkCategory = "Unprocessed"
)

// MergeWithItems attaches classification results to their media items by
// external id. The merge is total over items: every input item yields exactly
// one AnalyzedPost, unmatched ones with sentinel values.
func MergeWithItems(items []collector.MediaItem, results []Result) []AnalyzedPost {
	resultById := make(map[string]Result, len(results))
	for _, res := range results {
		resultById[res.Id] = res
	}

	merged := make([]AnalyzedPost, 0, len(items))
	for index, item := range items {
		post := AnalyzedPost{MediaItem: item}
		if res, ok := resultById[externalId(item, index)]; ok {
			post.Category = res.Category
			post.Summary = res.Summary
			post.DrinkCategory = res.DrinkCategory
		} else {
			post.Category = DefaultCategory
			post.Summary = ""
			post.DrinkCategory = UnprocessedDrinkCategory
		}
		merged = append(merged, post)
	}
	return merged
}
