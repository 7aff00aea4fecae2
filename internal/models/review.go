// internal/models/review.go
package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StarRating is the ordinal label stored for a review.
type StarRating string

const (
	StarsOne   StarRating = "one"
	StarsTwo   StarRating = "two"
	StarsThree StarRating = "three"
	StarsFour  StarRating = "four"
	StarsFive  StarRating = "five"
)

var starValues = map[StarRating]int{
	StarsOne:   1,
	StarsTwo:   2,
	StarsThree: 3,
	StarsFour:  4,
	StarsFive:  5,
}

// Value returns 1..5, or 0 for an unknown label.
func (s StarRating) Value() int {
	return starValues[s]
}

func (s StarRating) Valid() bool {
	_, ok := starValues[s]
	return ok
}

// ParseStarRating accepts either the label ("four") or its digit ("4").
func ParseStarRating(raw string) (StarRating, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if s := StarRating(raw); s.Valid() {
		return s, nil
	}
	for label, n := range starValues {
		if raw == fmt.Sprint(n) {
			return label, nil
		}
	}
	return "", fmt.Errorf("invalid star rating %q", raw)
}

type Review struct {
	BaseModel
	ReviewerID uuid.UUID  `json:"reviewer_id" gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	Stars      StarRating `json:"stars" gorm:"type:varchar(10);not null"`
	Title      string     `json:"title" gorm:"size:255"`
	Body       string     `json:"body" gorm:"type:text"`
	IsVerified bool       `json:"is_verified" gorm:"default:false"`
	IsActive   bool       `json:"is_active" gorm:"default:true;index"`

	// Relationships
	Responses []ReviewResponse `json:"responses,omitempty" gorm:"foreignKey:ReviewID"`
}

type ReviewResponse struct {
	BaseModel
	ReviewID         uuid.UUID `json:"review_id" gorm:"type:uuid;not null;index"`
	AuthorID         uuid.UUID `json:"author_id" gorm:"type:uuid;not null"`
	Content          string    `json:"content" gorm:"type:text;not null"`
	IsVendorResponse bool      `json:"is_vendor_response" gorm:"default:false"`
}

func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	c := *r
	if r.Responses != nil {
		c.Responses = append([]ReviewResponse(nil), r.Responses...)
	}
	return &c
}
