package models

import (
	"errors"
	"fmt"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a site-wide testimonial, not scoped to a profile
type Review struct {
	ID        string `json:"id"`
	UserName  string `json:"userName"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Timestamp int64  `json:"timestamp"`
	Avatar    string `json:"avatar"`
}

func (r Review) Validate() error {
	if r.ID == "" {
		return errors.New("review id is required")
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("rating %d out of range %d..%d", r.Rating, MinRating, MaxRating)
	}
	return nil
}

type ReviewList []Review

func (l ReviewList) Validate() error {
	return validateEach(l)
}
