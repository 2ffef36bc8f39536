package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reelspirit/backend/model"
	"github.com/reelspirit/backend/scanner"
	. "github.com/reelspirit/backend/utils/log"
)

// AnalysisRequest is the POST /analyze body. Either field works, the handle
// extraction accepts bare handles, @handles and full profile urls.
type AnalysisRequest struct {
	InstagramUrl  string `json:"instagram_url"`
	AccountHandle string `json:"account_handle"`
}

// PostResponse is the wire shape of one analyzed post.
type PostResponse struct {
	InstagramId   string     `json:"instagram_id"`
	Username      string     `json:"username"`
	Caption       string     `json:"caption"`
	MediaType     string     `json:"media_type"`
	MediaUrl      string     `json:"media_url"`
	Permalink     string     `json:"permalink"`
	PostTimestamp *time.Time `json:"post_timestamp"`
	AiCategory    string     `json:"ai_category"`
	AiSummary     string     `json:"ai_summary"`
	DrinkCategory string     `json:"drink_category"`
}

func toPostResponse(post model.Post) PostResponse {
	res := PostResponse{
		InstagramId:   post.InstagramId,
		Username:      post.Username,
		Caption:       post.Caption,
		MediaType:     post.MediaType,
		MediaUrl:      post.MediaUrl,
		Permalink:     post.Permalink,
		AiCategory:    post.AiCategory,
		AiSummary:     post.AiSummary,
		DrinkCategory: post.DrinkCategory,
	}
	if !post.PostTimestamp.IsZero() {
		ts := post.PostTimestamp
		res.PostTimestamp = &ts
	}
	return res
}

func toPostResponses(posts []model.Post) []PostResponse {
	responses := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, toPostResponse(post))
	}
	return responses
}

// RegisterRoutes binds all analysis endpoints onto the router.
func RegisterRoutes(router *gin.Engine, s *scanner.Scanner) {
	router.POST("/analyze", AnalyzeHandler(s))
	router.GET("/analyze/status/:username", StatusHandler(s))
	router.GET("/posts/:username", PostsHandler(s))
	router.GET("/stats/:username", StatsHandler(s))
}

// AnalyzeHandler triggers a scan for the requested account, returning the
// posts that are persisted when the synchronous part of the scan is done.
func AnalyzeHandler(s *scanner.Scanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := AnalysisRequest{}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		input := req.InstagramUrl
		if input == "" {
			input = req.AccountHandle
		}

		posts, err := s.Analyze(c.Request.Context(), input)
		switch {
		case err == scanner.ErrInvalidHandle:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid instagram url or handle"})
		case err == scanner.ErrProfileNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found or has no media"})
		case err != nil:
			Log.Error("analyze request failed: ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		default:
			c.JSON(http.StatusOK, toPostResponses(posts))
		}
	}
}

// StatusHandler reports the account's scan state so clients can poll while a
// background continuation is running.
func StatusHandler(s *scanner.Scanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")
		c.JSON(http.StatusOK, gin.H{
			"username": username,
			"status":   s.Status(username),
		})
	}
}

// PostsHandler returns the account's persisted posts, most recent first.
// Unknown accounts get an empty list, not an error.
func PostsHandler(s *scanner.Scanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := s.PostsFor(c.Param("username"))
		if err != nil {
			Log.Error("fail to load posts: ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "fail to load posts"})
			return
		}
		c.JSON(http.StatusOK, toPostResponses(posts))
	}
}

// StatsHandler aggregates an account's posts by drink category.
func StatsHandler(s *scanner.Scanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")
		total, stats, err := s.StatsFor(username)
		if err != nil {
			Log.Error("fail to aggregate stats: ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "fail to aggregate stats"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"username":    username,
			"total_posts": total,
			"categories":  stats,
		})
	}
}
