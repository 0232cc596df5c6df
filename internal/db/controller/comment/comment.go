// Package comment provides operations for event comments.
//
// Comments have no role model of their own. Creating one only requires the
// creator's user ID; deleting one is guarded at the handler layer by the
// creator-ownership check.
package comment

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
)

var (
	// ErrCommentNotFound is returned when a comment does not exist on the given event.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrBodyEmpty is returned when attempting to create a comment with an empty body.
	ErrBodyEmpty = errors.New("comment body cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create adds a comment to an event.
func Create(db *gorm.DB, eventID, creatorID uint64, body string) (*models.Comment, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if body == "" {
		return nil, ErrBodyEmpty
	}

	comment := &models.Comment{
		EventID:   eventID,
		CreatorID: creatorID,
		Body:      body,
	}

	if err := db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// Get retrieves one comment of an event.
func Get(db *gorm.DB, eventID, commentID uint64) (*models.Comment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var comment models.Comment

	err := db.Where("event_id = ? AND id = ?", eventID, commentID).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// List retrieves all comments of an event, oldest first.
func List(db *gorm.DB, eventID uint64) ([]models.Comment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var comments []models.Comment

	err := db.Where("event_id = ?", eventID).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	return comments, nil
}

// Delete removes a comment from an event.
func Delete(db *gorm.DB, eventID, commentID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("event_id = ? AND id = ?", eventID, commentID).
		Delete(&models.Comment{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}

	return nil
}
