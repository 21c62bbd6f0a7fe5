package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"calmcompanion/internal/models"
)

const reviewsKey = "site_reviews"

// seedReviews is returned while no review has been stored. It is never
// written on its own; the first SaveReview persists it behind the new review.
func seedReviews() models.ReviewList {
	return models.ReviewList{
		{
			ID:        "seed-1",
			UserName:  "Mariana S.",
			Rating:    5,
			Comment:   "The visual routine made our mornings so much calmer.",
			Timestamp: 1704067200000,
			Avatar:    "👩",
		},
		{
			ID:        "seed-2",
			UserName:  "Lucas P.",
			Rating:    5,
			Comment:   "My son uses the communication board every day.",
			Timestamp: 1706745600000,
			Avatar:    "👨",
		},
		{
			ID:        "seed-3",
			UserName:  "Ana R.",
			Rating:    4,
			Comment:   "The breathing tool helps during sensory overload.",
			Timestamp: 1709251200000,
			Avatar:    "🧑",
		},
	}
}

// ReviewRepository stores site-wide reviews
type ReviewRepository struct {
	cs  *CollectionStore
	now func() time.Time
	mu  sync.Mutex
}

func NewReviewRepository(cs *CollectionStore) *ReviewRepository {
	return &ReviewRepository{cs: cs, now: time.Now}
}

// GetReviews returns stored reviews, or the seed set when none are stored
func (r *ReviewRepository) GetReviews(ctx context.Context) models.ReviewList {
	reviews := GetGlobal[models.ReviewList](ctx, r.cs, reviewsKey, nil)
	if len(reviews) == 0 {
		return seedReviews()
	}
	return reviews
}

// SaveReview prepends review to the current list and persists the result.
// Missing ids and timestamps are filled in.
func (r *ReviewRepository) SaveReview(ctx context.Context, review models.Review) (models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if review.ID == "" {
		review.ID = newTimeOrderedID()
	}
	if review.Timestamp == 0 {
		review.Timestamp = r.now().UnixMilli()
	}
	if err := review.Validate(); err != nil {
		return review, errors.Join(ErrInvalidValue, err)
	}

	reviews := append(models.ReviewList{review}, r.GetReviews(ctx)...)
	if err := SaveGlobal(ctx, r.cs, reviewsKey, reviews); err != nil {
		return review, err
	}
	return review, nil
}
