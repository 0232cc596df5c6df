package models

import "time"

// Review represents a rating and write-up a user leaves on an event.
// Like comments, reviews are guarded solely by the creator-ownership fallback.
type Review struct {
	// ID is the unique identifier for the review.
	ID uint64 `gorm:"primaryKey"`
	// EventID is the event being reviewed.
	EventID uint64 `gorm:"column:event_id;not null;uniqueIndex:idx_event_reviewer"`
	// Event is the associated event (loaded via foreign key).
	Event Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	// CreatorID is the user who wrote the review. One review per user per event.
	CreatorID uint64 `gorm:"column:creator_id;not null;uniqueIndex:idx_event_reviewer"`
	// Rating is the star rating, 1 to 5.
	Rating int `gorm:"not null"`
	// Body is the optional review text.
	Body string `gorm:"size:2000"`
	// CreatedAt is the timestamp when the review was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the review was last edited (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Review model.
func (Review) TableName() string {
	return "reviews"
}

// OwnerUserID returns the creator's user ID for ownership-fallback checks.
func (r *Review) OwnerUserID() uint64 {
	return r.CreatorID
}
