// Package review provides operations for event reviews.
//
// A user may leave at most one review per event. Deletion is guarded at the
// handler layer by the creator-ownership check.
package review

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/db/models"
)

var (
	// ErrReviewNotFound is returned when a review does not exist on the given event.
	ErrReviewNotFound = errors.New("review not found")
	// ErrAlreadyReviewed is returned when the user has already reviewed the event.
	ErrAlreadyReviewed = errors.New("user has already reviewed the event")
	// ErrInvalidRating is returned when the rating is outside 1 to 5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create adds a review to an event. Each user may review an event once.
func Create(db *gorm.DB, eventID, creatorID uint64, rating int, body string) (*models.Review, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	review := &models.Review{
		EventID:   eventID,
		CreatorID: creatorID,
		Rating:    rating,
		Body:      body,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64

		err := tx.Model(&models.Review{}).
			Where("event_id = ? AND creator_id = ?", eventID, creatorID).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check existing review: %w", err)
		}
		if count > 0 {
			return ErrAlreadyReviewed
		}

		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// Get retrieves one review of an event.
func Get(db *gorm.DB, eventID, reviewID uint64) (*models.Review, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var review models.Review

	err := db.Where("event_id = ? AND id = ?", eventID, reviewID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}

	return &review, nil
}

// List retrieves all reviews of an event, newest first.
func List(db *gorm.DB, eventID uint64) ([]models.Review, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var reviews []models.Review

	err := db.Where("event_id = ?", eventID).
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

// Delete removes a review from an event.
func Delete(db *gorm.DB, eventID, reviewID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("event_id = ? AND id = ?", eventID, reviewID).
		Delete(&models.Review{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}
