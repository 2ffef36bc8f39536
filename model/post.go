package model

import (
	"time"
)

/*

Post is a single analyzed Instagram media item.

Id: primary key, assigned at insert time
CreatedAt: time when entity is created

InstagramId: the media item's id on the Graph API, globally unique across all
posts. A post is never inserted twice for the same InstagramId, enforced by an
existence check before insert with the unique index as backstop.
Username: account handle the post belongs to
Caption: raw caption as returned by the Graph API
MediaType: IMAGE / VIDEO / CAROUSEL_ALBUM
MediaUrl: direct media url
Permalink: canonical post url
PostTimestamp: time the media was published on Instagram

AiCategory: content category produced by analysis ("Gastronomy", "Fashion", ...)
AiSummary: short natural-language summary of the post
DrinkCategory: drink classification label (e.g. "Whiskey Cocktail")

Posts are insert-only: analysis results are never updated in place and
retention is an external concern.
*/

type Post struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time

	InstagramId   string `gorm:"uniqueIndex;not null"`
	Username      string `gorm:"index;not null"`
	Caption       string
	MediaType     string
	MediaUrl      string
	Permalink     string
	PostTimestamp time.Time

	AiCategory    string `gorm:"default:General"`
	AiSummary     string
	DrinkCategory string `gorm:"index;default:Other"`
}
