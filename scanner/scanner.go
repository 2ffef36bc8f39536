package scanner

import (
	"context"
	"time"

	"github.com/reelspirit/backend/analyzer"
	"github.com/reelspirit/backend/collector"
	"github.com/reelspirit/backend/model"
	"github.com/reelspirit/backend/utils"
	. "github.com/reelspirit/backend/utils/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Fixed delay between continuation pages, keeps us inside the Graph API rate
// limits.
const DefaultPageDelay = 2 * time.Second

var (
	// ErrInvalidHandle means no account handle could be extracted from the
	// request input. Nothing was fetched or mutated.
	ErrInvalidHandle = errors.New("invalid instagram handle")

	// ErrProfileNotFound means the first live fetch yielded no media, the
	// profile does not exist, is private, or is empty.
	ErrProfileNotFound = errors.New("profile not found or has no media")
)

// MediaFetcher retrieves one page of an account's media.
type MediaFetcher interface {
	FetchMediaPage(ctx context.Context, username string, cursor string) ([]collector.MediaItem, string, error)
}

// PostClassifier classifies a batch of media items. It never fails, the
// implementation degrades to deterministic rules internally.
type PostClassifier interface {
	Analyze(ctx context.Context, items []collector.MediaItem) []analyzer.Result
}

// Scanner drives the fetch → classify → merge → persist pipeline for one
// account at a time: the first page synchronously, remaining pages on a
// detached continuation task. Scan status lives in the StatusStore; at most
// one continuation per account is in flight.
type Scanner struct {
	db *gorm.DB
	// newSession opens the continuation's own DB connection; the triggering
	// request's connection may be gone by the time the continuation runs.
	newSession func() (*gorm.DB, error)
	fetcher    MediaFetcher
	classifier PostClassifier
	statuses   StatusStore
	runner     TaskRunner
	pageDelay  time.Duration
}

func NewScanner(
	db *gorm.DB,
	newSession func() (*gorm.DB, error),
	fetcher MediaFetcher,
	classifier PostClassifier,
	statuses StatusStore,
	runner TaskRunner,
	pageDelay time.Duration,
) *Scanner {
	return &Scanner{
		db:         db,
		newSession: newSession,
		fetcher:    fetcher,
		classifier: classifier,
		statuses:   statuses,
		runner:     runner,
		pageDelay:  pageDelay,
	}
}

// Analyze serves an analysis request for the raw user input (handle, @handle
// or profile url). Accounts with persisted posts are served from storage.
// Otherwise the first page is fetched, classified and persisted before
// returning, and remaining pages continue in the background.
func (s *Scanner) Analyze(ctx context.Context, rawInput string) ([]model.Post, error) {
	username := utils.ExtractUsername(rawInput)
	if username == "" {
		return nil, ErrInvalidHandle
	}

	status, err := s.statuses.Get(username)
	if err != nil {
		return nil, errors.Wrap(err, "fail to read scan status")
	}

	// A scan is already running for this account, serve whatever has been
	// persisted so far; the caller polls status separately.
	if status == StatusInProgress {
		return s.PostsFor(username)
	}

	var existingCount int64
	if err := s.db.Model(&model.Post{}).Where("username = ?", username).Count(&existingCount).Error; err != nil {
		return nil, errors.Wrap(err, "fail to count existing posts")
	}

	// Cache hit: a previous scan already persisted this account. Mark the
	// status terminal so polling callers converge, do not re-fetch.
	if existingCount > 0 {
		if err := s.statuses.Set(username, StatusCompleted); err != nil {
			return nil, errors.Wrap(err, "fail to set scan status")
		}
		Log.Infof("serving %s from storage (%d posts)", username, existingCount)
		return s.PostsFor(username)
	}

	// Claim the account. SetIfAbsent wins only for never-scanned accounts; a
	// terminal entry left by a failed earlier scan with nothing persisted is
	// overwritten so the account can be retried.
	claimed, err := s.statuses.SetIfAbsent(username, StatusInProgress)
	if err != nil {
		return nil, errors.Wrap(err, "fail to claim scan")
	}
	if !claimed {
		status, err := s.statuses.Get(username)
		if err != nil {
			return nil, errors.Wrap(err, "fail to read scan status")
		}
		if status == StatusInProgress {
			return s.PostsFor(username)
		}
		if err := s.statuses.Set(username, StatusInProgress); err != nil {
			return nil, errors.Wrap(err, "fail to set scan status")
		}
	}

	Log.Infof("starting new scan for %s", username)

	items, cursor, err := s.fetcher.FetchMediaPage(ctx, username, "")
	if err != nil {
		Log.Warnf("first page fetch for %s failed: %v", username, err)
	}
	if len(items) == 0 {
		s.setStatus(username, StatusError)
		return nil, ErrProfileNotFound
	}

	results := s.classifier.Analyze(ctx, items)
	merged := analyzer.MergeWithItems(items, results)
	if _, err := SavePosts(s.db, merged, username); err != nil {
		s.setStatus(username, StatusError)
		return nil, err
	}

	if cursor != "" {
		s.runner.Submit("scan_"+username, func() {
			s.scanRemainingPages(username, cursor)
		})
	} else {
		s.setStatus(username, StatusCompleted)
	}

	return s.PostsFor(username)
}

// scanRemainingPages walks the remaining pages in cursor order. Page N+1 is
// only fetched after page N's posts are committed. Already-committed pages
// survive a failure, only the status flips to error.
func (s *Scanner) scanRemainingPages(username string, cursor string) {
	Log.Infof("continuation scan started for %s", username)

	db, err := s.newSession()
	if err != nil {
		Log.Errorf("continuation for %s cannot open db session: %v", username, err)
		s.setStatus(username, StatusError)
		return
	}

	ctx := context.Background()
	for cursor != "" {
		items, next, err := s.fetcher.FetchMediaPage(ctx, username, cursor)
		if err != nil {
			Log.Errorf("continuation fetch for %s failed: %v", username, err)
			s.setStatus(username, StatusError)
			return
		}
		if len(items) == 0 {
			break
		}

		results := s.classifier.Analyze(ctx, items)
		merged := analyzer.MergeWithItems(items, results)
		if _, err := SavePosts(db, merged, username); err != nil {
			Log.Errorf("continuation persist for %s failed: %v", username, err)
			s.setStatus(username, StatusError)
			return
		}

		cursor = next
		if cursor != "" {
			time.Sleep(s.pageDelay)
		}
	}

	s.setStatus(username, StatusCompleted)
	Log.Infof("scan completed for %s", username)
}

// Status reports the account's scan state, StatusUnknown when the account has
// never been scanned.
func (s *Scanner) Status(username string) string {
	status, err := s.statuses.Get(username)
	if err != nil {
		Log.Error("fail to read scan status: ", err)
		return StatusUnknown
	}
	if status == "" {
		return StatusUnknown
	}
	return status
}

// PostsFor returns the account's persisted posts, most recent first.
func (s *Scanner) PostsFor(username string) ([]model.Post, error) {
	posts := []model.Post{}
	err := s.db.
		Where("username = ?", username).
		Order("post_timestamp desc").
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to load posts")
	}
	return posts, nil
}

// CategoryStat is one drink-category bucket of an account's stats.
type CategoryStat struct {
	DrinkCategory string `json:"drink_category"`
	Count         int    `json:"count"`
}

// StatsFor aggregates the account's persisted posts by drink category. Zero
// posts is not an error: it yields a zero total and no buckets.
func (s *Scanner) StatsFor(username string) (int, []CategoryStat, error) {
	stats := []CategoryStat{}
	err := s.db.Model(&model.Post{}).
		Select("drink_category, count(*) as count").
		Where("username = ?", username).
		Group("drink_category").
		Order("count desc").
		Scan(&stats).Error
	if err != nil {
		return 0, nil, errors.Wrap(err, "fail to aggregate stats")
	}

	total := 0
	for _, stat := range stats {
		total += stat.Count
	}
	return total, stats, nil
}

func (s *Scanner) setStatus(username string, status string) {
	if err := s.statuses.Set(username, status); err != nil {
		Log.Errorf("fail to set scan status for %s: %v", username, err)
	}
}
