package catalog

import (
	"github.com/javajoker/marketplace-catalog/internal/apperrors"
	"github.com/javajoker/marketplace-catalog/internal/models"
)

// Inventory is the rolled-up stock signal for a product.
type Inventory struct {
	Stock        int
	Available    bool
	PrimaryImage *models.Image
}

// Resolve rolls variant stock and images up to product level. Products without
// variants keep their legacy stock and first legacy image.
func Resolve(variants []models.ColorVariant, legacyImages []models.Image, legacyStock int) Inventory {
	if len(variants) == 0 {
		inv := Inventory{Stock: legacyStock, Available: legacyStock > 0}
		inv.PrimaryImage = firstImage(legacyImages)
		return inv
	}

	var inv Inventory
	for _, v := range variants {
		if v.IsActive {
			inv.Stock += v.Stock
		}
	}
	inv.Available = inv.Stock > 0

	for _, v := range variants {
		if len(v.Images) == 0 {
			continue
		}
		img := v.Images[0]
		for _, candidate := range v.Images {
			if candidate.IsPrimary {
				img = candidate
				break
			}
		}
		img.IsPrimary = true
		inv.PrimaryImage = &img
		return inv
	}

	inv.PrimaryImage = firstImage(legacyImages)
	return inv
}

func firstImage(images []models.Image) *models.Image {
	if len(images) == 0 {
		return nil
	}
	img := images[0]
	img.IsPrimary = true
	return &img
}

// ApplyInventory re-resolves the product and stores the derived fields on it.
func ApplyInventory(p *models.Product) Inventory {
	inv := Resolve(p.ColorVariants, p.Images, p.Stock)
	p.Stock = inv.Stock
	p.Available = inv.Available
	p.SetPrimaryImage(inv.PrimaryImage)
	return inv
}

// NormalizeImages marks the first image primary when none is, and rejects
// more than one primary.
func NormalizeImages(images []models.Image) ([]models.Image, error) {
	if len(images) == 0 {
		return images, nil
	}
	primaries := 0
	for _, img := range images {
		if img.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return nil, apperrors.Validation("only one image may be marked primary")
	}
	out := append([]models.Image(nil), images...)
	if primaries == 0 {
		out[0].IsPrimary = true
	}
	return out, nil
}

// NormalizeVariants validates each variant and normalizes its images in place.
func NormalizeVariants(variants []models.ColorVariant) error {
	seen := make(map[string]bool, len(variants))
	for i := range variants {
		v := &variants[i]
		if v.ColorName == "" {
			return apperrors.Validation("color variant %d is missing a color name", i)
		}
		if seen[v.ColorName] {
			return apperrors.Validation("duplicate color variant %q", v.ColorName)
		}
		seen[v.ColorName] = true
		if v.Stock < 0 {
			return apperrors.Validation("color variant %q has negative stock", v.ColorName)
		}
		images, err := NormalizeImages(v.Images)
		if err != nil {
			return apperrors.Validation("color variant %q: only one image may be marked primary", v.ColorName)
		}
		v.Images = images
	}
	return nil
}

// ColorNames lists the variant color names, used to fill the legacy colors column.
func ColorNames(variants []models.ColorVariant) []string {
	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.ColorName)
	}
	return names
}
