// internal/models/product.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Image is a reference to an asset held by the asset store.
type Image struct {
	URL       string `json:"url"`
	AssetID   string `json:"id"`
	IsPrimary bool   `json:"is_primary"`
}

type ColorVariant struct {
	ColorName string  `json:"color_name"`
	ColorCode string  `json:"color_code,omitempty"`
	Stock     int     `json:"stock"`
	IsActive  bool    `json:"is_active"`
	Images    []Image `json:"images"`
}

// Approval is the admin decision on a product. Build it with PendingApproval,
// ApprovedAt or RejectedAt so Reason is only ever set on a rejection.
type Approval struct {
	Kind      ApprovalKind `json:"kind" gorm:"type:varchar(20);default:'pending';not null;index"`
	Reason    string       `json:"reason,omitempty" gorm:"type:text"`
	Feedback  string       `json:"feedback,omitempty" gorm:"type:text"`
	DecidedAt *time.Time   `json:"decided_at,omitempty"`
}

func PendingApproval() Approval {
	return Approval{Kind: ApprovalPending}
}

func ApprovedAt(at time.Time, feedback string) Approval {
	return Approval{Kind: ApprovalApproved, Feedback: feedback, DecidedAt: &at}
}

func RejectedAt(at time.Time, reason string) Approval {
	return Approval{Kind: ApprovalRejected, Reason: reason, DecidedAt: &at}
}

// AdminApproved is the tri-state view: nil while pending.
func (a Approval) AdminApproved() *bool {
	var v bool
	switch a.Kind {
	case ApprovalApproved:
		v = true
	case ApprovalRejected:
		v = false
	default:
		return nil
	}
	return &v
}

type RatingDistribution struct {
	One   int `json:"1"`
	Two   int `json:"2"`
	Three int `json:"3"`
	Four  int `json:"4"`
	Five  int `json:"5"`
}

type Product struct {
	BaseModel
	VendorID     *uuid.UUID      `json:"vendor_id" gorm:"type:uuid;index"`
	Name         string          `json:"name" gorm:"size:255;not null"`
	Slug         string          `json:"slug" gorm:"size:300;not null;uniqueIndex"`
	Description  string          `json:"description" gorm:"type:text"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	MRP          decimal.Decimal `json:"mrp" gorm:"type:decimal(10,2);not null"`
	Discount     int             `json:"discount" gorm:"default:0"`
	Category     string          `json:"category" gorm:"size:100"`
	CategorySlug string          `json:"category_slug" gorm:"size:120;index"`
	Status       ProductStatus   `json:"status" gorm:"type:varchar(20);default:'active';not null;index"`
	Approval     Approval        `json:"approval" gorm:"embedded;embeddedPrefix:approval_"`

	// Derived by the inventory resolver on every write.
	Stock               int    `json:"stock" gorm:"default:0"`
	Available           bool   `json:"available" gorm:"default:false;index"`
	PrimaryImageURL     string `json:"primary_image_url,omitempty" gorm:"type:text"`
	PrimaryImageAssetID string `json:"primary_image_id,omitempty" gorm:"size:255"`

	ColorVariants datatypes.JSONSlice[ColorVariant] `json:"color_variants" gorm:"type:jsonb"`
	Images        datatypes.JSONSlice[Image]        `json:"images" gorm:"type:jsonb"`
	Colors        pq.StringArray                    `json:"colors" gorm:"type:text[]"`

	AverageRating      float64                                `json:"average_rating" gorm:"type:decimal(2,1);default:0"`
	TotalReviews       int                                    `json:"total_reviews" gorm:"default:0"`
	RatingDistribution datatypes.JSONType[RatingDistribution] `json:"rating_distribution" gorm:"type:jsonb"`

	// Relationships
	Vendor *Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

func (p *Product) IsFirstParty() bool {
	return p.VendorID == nil
}

func (p *Product) PrimaryImage() *Image {
	if p.PrimaryImageURL == "" && p.PrimaryImageAssetID == "" {
		return nil
	}
	return &Image{URL: p.PrimaryImageURL, AssetID: p.PrimaryImageAssetID, IsPrimary: true}
}

func (p *Product) SetPrimaryImage(img *Image) {
	if img == nil {
		p.PrimaryImageURL, p.PrimaryImageAssetID = "", ""
		return
	}
	p.PrimaryImageURL, p.PrimaryImageAssetID = img.URL, img.AssetID
}

// AssetIDs lists every asset referenced by the product, variant images first.
func (p *Product) AssetIDs() []string {
	var ids []string
	for _, v := range p.ColorVariants {
		for _, img := range v.Images {
			if img.AssetID != "" {
				ids = append(ids, img.AssetID)
			}
		}
	}
	for _, img := range p.Images {
		if img.AssetID != "" {
			ids = append(ids, img.AssetID)
		}
	}
	return ids
}

// MarshalJSON adds the derived admin_approved view to the stored shape.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		AdminApproved *bool  `json:"admin_approved"`
		PrimaryImage  *Image `json:"primary_image"`
	}{
		product:       product(p),
		AdminApproved: p.Approval.AdminApproved(),
		PrimaryImage:  p.PrimaryImage(),
	})
}

// Clone returns a deep copy, including variant image slices.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.VendorID != nil {
		id := *p.VendorID
		c.VendorID = &id
	}
	if p.Approval.DecidedAt != nil {
		t := *p.Approval.DecidedAt
		c.Approval.DecidedAt = &t
	}
	if p.ColorVariants != nil {
		c.ColorVariants = make(datatypes.JSONSlice[ColorVariant], len(p.ColorVariants))
		for i, v := range p.ColorVariants {
			v.Images = append([]Image(nil), v.Images...)
			c.ColorVariants[i] = v
		}
	}
	if p.Images != nil {
		c.Images = append(datatypes.JSONSlice[Image](nil), p.Images...)
	}
	if p.Colors != nil {
		c.Colors = append(pq.StringArray(nil), p.Colors...)
	}
	c.Vendor = p.Vendor.Clone()
	return &c
}
