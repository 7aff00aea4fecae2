package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/javajoker/marketplace-catalog/internal/models"
)

func review(stars models.StarRating, active bool) models.Review {
	return models.Review{Stars: stars, IsActive: active}
}

func TestAggregate_Empty(t *testing.T) {
	summary := Aggregate(nil)

	assert.Equal(t, RatingSummary{}, summary)
	assert.Equal(t, Aggregate(nil), Aggregate([]models.Review{}))
}

func TestAggregate_ExcludesSoftDeleted(t *testing.T) {
	reviews := []models.Review{
		review(models.StarsFive, true),
		review(models.StarsFive, true),
		review(models.StarsFour, true),
		review(models.StarsOne, true),
		review(models.StarsTwo, false),
	}

	summary := Aggregate(reviews)

	assert.Equal(t, 3.8, summary.AverageRating)
	assert.Equal(t, 4, summary.TotalReviews)
	assert.Equal(t, models.RatingDistribution{One: 1, Four: 1, Five: 2}, summary.Distribution)
}

func TestAggregate_Deterministic(t *testing.T) {
	reviews := []models.Review{
		review(models.StarsThree, true),
		review(models.StarsFour, true),
		review(models.StarsFour, true),
	}

	assert.Equal(t, Aggregate(reviews), Aggregate(reviews))
	assert.Equal(t, 3.7, Aggregate(reviews).AverageRating)
}

func TestAggregate_SoftDeleteDropsExactlyOne(t *testing.T) {
	reviews := []models.Review{
		review(models.StarsFive, true),
		review(models.StarsOne, true),
		review(models.StarsThree, true),
	}
	before := Aggregate(reviews)

	reviews[1].IsActive = false
	after := Aggregate(reviews)

	assert.Equal(t, before.TotalReviews-1, after.TotalReviews)
	assert.Equal(t, 0, after.Distribution.One)
	assert.Equal(t, 4.0, after.AverageRating)
}

func TestAggregate_RoundsHalfAwayFromZero(t *testing.T) {
	// 34/8 = 4.25
	reviews := []models.Review{
		review(models.StarsFive, true),
		review(models.StarsFive, true),
	}
	for i := 0; i < 6; i++ {
		reviews = append(reviews, review(models.StarsFour, true))
	}

	assert.Equal(t, 4.3, Aggregate(reviews).AverageRating)
}
