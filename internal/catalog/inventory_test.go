package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/models"
)

func TestResolve_VariantStockRollup(t *testing.T) {
	variants := []models.ColorVariant{
		{ColorName: "red", Stock: 5, IsActive: true},
		{ColorName: "blue", Stock: 3, IsActive: false},
		{ColorName: "green", Stock: 2, IsActive: true},
	}

	inv := Resolve(variants, nil, 0)

	assert.Equal(t, 7, inv.Stock)
	assert.True(t, inv.Available)
	assert.Nil(t, inv.PrimaryImage)
}

func TestResolve_LegacyProduct(t *testing.T) {
	legacy := []models.Image{
		{URL: "https://cdn/a.jpg", AssetID: "a"},
		{URL: "https://cdn/b.jpg", AssetID: "b"},
	}

	inv := Resolve(nil, legacy, 10)

	assert.Equal(t, 10, inv.Stock)
	assert.True(t, inv.Available)
	require.NotNil(t, inv.PrimaryImage)
	assert.Equal(t, "a", inv.PrimaryImage.AssetID)
}

func TestResolve_PrimaryImageSelection(t *testing.T) {
	tests := []struct {
		name     string
		variants []models.ColorVariant
		legacy   []models.Image
		want     string
	}{
		{
			name: "first variant with images wins",
			variants: []models.ColorVariant{
				{ColorName: "red", Stock: 1, IsActive: true},
				{ColorName: "blue", Stock: 1, IsActive: true, Images: []models.Image{{AssetID: "b1"}, {AssetID: "b2"}}},
				{ColorName: "green", Stock: 1, IsActive: true, Images: []models.Image{{AssetID: "g1", IsPrimary: true}}},
			},
			want: "b1",
		},
		{
			name: "flagged primary preferred within the variant",
			variants: []models.ColorVariant{
				{ColorName: "red", Stock: 1, IsActive: true, Images: []models.Image{{AssetID: "r1"}, {AssetID: "r2", IsPrimary: true}}},
			},
			want: "r2",
		},
		{
			name: "inactive variant still supplies the image",
			variants: []models.ColorVariant{
				{ColorName: "red", Stock: 4, IsActive: false, Images: []models.Image{{AssetID: "r1"}}},
			},
			want: "r1",
		},
		{
			name: "falls back to legacy images",
			variants: []models.ColorVariant{
				{ColorName: "red", Stock: 1, IsActive: true},
			},
			legacy: []models.Image{{AssetID: "legacy"}},
			want:   "legacy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Resolve(tt.variants, tt.legacy, 0)
			require.NotNil(t, inv.PrimaryImage)
			assert.Equal(t, tt.want, inv.PrimaryImage.AssetID)
			assert.True(t, inv.PrimaryImage.IsPrimary)
		})
	}
}

func TestResolve_AllVariantsInactive(t *testing.T) {
	variants := []models.ColorVariant{{ColorName: "red", Stock: 9, IsActive: false}}

	inv := Resolve(variants, nil, 50)

	assert.Equal(t, 0, inv.Stock)
	assert.False(t, inv.Available)
}

func TestApplyInventory(t *testing.T) {
	p := &models.Product{
		Stock: 3,
		ColorVariants: []models.ColorVariant{
			{ColorName: "red", Stock: 2, IsActive: true, Images: []models.Image{{URL: "u", AssetID: "r"}}},
		},
	}

	ApplyInventory(p)

	assert.Equal(t, 2, p.Stock)
	assert.True(t, p.Available)
	assert.Equal(t, "r", p.PrimaryImageAssetID)
}

func TestNormalizeImages(t *testing.T) {
	images, err := NormalizeImages([]models.Image{{AssetID: "a"}, {AssetID: "b"}})
	require.NoError(t, err)
	assert.True(t, images[0].IsPrimary)
	assert.False(t, images[1].IsPrimary)

	_, err = NormalizeImages([]models.Image{{AssetID: "a", IsPrimary: true}, {AssetID: "b", IsPrimary: true}})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestNormalizeVariants(t *testing.T) {
	t.Run("marks first image primary", func(t *testing.T) {
		variants := []models.ColorVariant{{ColorName: "red", Images: []models.Image{{AssetID: "a"}}}}
		require.NoError(t, NormalizeVariants(variants))
		assert.True(t, variants[0].Images[0].IsPrimary)
	})

	t.Run("rejects duplicate colors", func(t *testing.T) {
		err := NormalizeVariants([]models.ColorVariant{{ColorName: "red"}, {ColorName: "red"}})
		assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		err := NormalizeVariants([]models.ColorVariant{{ColorName: "red", Stock: -1}})
		assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	})

	t.Run("rejects two primaries", func(t *testing.T) {
		err := NormalizeVariants([]models.ColorVariant{{ColorName: "red", Images: []models.Image{
			{AssetID: "a", IsPrimary: true}, {AssetID: "b", IsPrimary: true},
		}}})
		assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	})
}
