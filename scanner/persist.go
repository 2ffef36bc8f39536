package scanner

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/reelspirit/backend/analyzer"
	"github.com/reelspirit/backend/model"
	. "github.com/reelspirit/backend/utils/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// SavePosts inserts the analyzed posts that are not yet in the database and
// returns how many rows were newly inserted. Posts whose instagram id already
// exists are skipped, first write wins, so the function is idempotent under
// retried or overlapping batches. The existence check runs before every
// insert; the unique index on instagram_id backstops the race where two
// identical pages are processed concurrently, and that duplicate-key failure
// is also treated as a skip. Any other storage error aborts the batch.
func SavePosts(db *gorm.DB, posts []analyzer.AnalyzedPost, username string) (int, error) {
	savedCount := 0
	for _, post := range posts {
		if post.Id == "" {
			Log.Warn("skipping analyzed post without instagram id")
			continue
		}

		var existing model.Post
		if db.Where("instagram_id = ?", post.Id).First(&existing).RowsAffected != 0 {
			continue
		}

		row := model.Post{
			Id:            uuid.New().String(),
			InstagramId:   post.Id,
			Username:      username,
			Caption:       post.Caption,
			MediaType:     post.MediaType,
			MediaUrl:      post.MediaUrl,
			Permalink:     post.Permalink,
			PostTimestamp: parsePostTimestamp(post.Timestamp),
			AiCategory:    post.Category,
			AiSummary:     post.Summary,
			DrinkCategory: post.DrinkCategory,
		}
		if err := db.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				// lost the race against a concurrent identical page
				continue
			}
			return savedCount, errors.Wrapf(err, "fail to insert post %s", post.Id)
		}
		savedCount++
	}

	if savedCount > 0 {
		Log.Infof("saved %d new posts for %s", savedCount, username)
	}
	return savedCount, nil
}

// parsePostTimestamp parses the Graph API timestamp string, zero time when
// absent or unparseable.
func parsePostTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := dateparse.ParseAny(raw)
	if err != nil {
		Log.Warnf("unparseable post timestamp %q: %v", raw, err)
		return time.Time{}
	}
	return ts
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return false
}
