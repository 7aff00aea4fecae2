package catalog

import (
	"math"

	"github.com/javajoker/marketplace-catalog/internal/models"
)

type RatingSummary struct {
	AverageRating float64                   `json:"average_rating"`
	TotalReviews  int                       `json:"total_reviews"`
	Distribution  models.RatingDistribution `json:"distribution"`
}

// Aggregate computes the rating summary from scratch over the active reviews only.
func Aggregate(reviews []models.Review) RatingSummary {
	var summary RatingSummary
	sum := 0

	for _, r := range reviews {
		if !r.IsActive {
			continue
		}
		n := r.Stars.Value()
		if n == 0 {
			continue
		}
		sum += n
		summary.TotalReviews++

		switch n {
		case 1:
			summary.Distribution.One++
		case 2:
			summary.Distribution.Two++
		case 3:
			summary.Distribution.Three++
		case 4:
			summary.Distribution.Four++
		case 5:
			summary.Distribution.Five++
		}
	}

	if summary.TotalReviews > 0 {
		summary.AverageRating = roundTo(float64(sum)/float64(summary.TotalReviews), 1)
	}
	return summary
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
