package models

import "time"

// Comment represents a user comment on an event.
// Comments have no role concept: the creator-ownership fallback is the only
// authorization path for modifying or deleting a comment.
type Comment struct {
	// ID is the unique identifier for the comment.
	ID uint64 `gorm:"primaryKey"`
	// EventID is the event this comment belongs to.
	EventID uint64 `gorm:"column:event_id;not null;index"`
	// Event is the associated event (loaded via foreign key).
	Event Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	// CreatorID is the user who wrote the comment.
	CreatorID uint64 `gorm:"column:creator_id;not null;index"`
	// Body is the comment text.
	Body string `gorm:"size:2000;not null"`
	// CreatedAt is the timestamp when the comment was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the comment was last edited (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Comment model.
func (Comment) TableName() string {
	return "comments"
}

// OwnerUserID returns the creator's user ID for ownership-fallback checks.
func (c *Comment) OwnerUserID() uint64 {
	return c.CreatorID
}
