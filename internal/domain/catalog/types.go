package catalog

import "time"

// Audience is the customer segment a perfume is marketed to.
type Audience string

const (
	AudienceMen    Audience = "men"
	AudienceWomen  Audience = "women"
	AudienceUnisex Audience = "unisex"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceMen, AudienceWomen, AudienceUnisex:
		return true
	}
	return false
}

// LocalizedText carries two independent language renditions of the same
// text. Secondary is not derived from Primary and may be absent; callers
// decide the fallback policy in one place instead of scattering nil checks.
type LocalizedText struct {
	Primary   string  `json:"primary"`
	Secondary *string `json:"secondary,omitempty"`
}

// Or returns Secondary when present, else Primary.
func (t LocalizedText) Or() string {
	if t.Secondary != nil && *t.Secondary != "" {
		return *t.Secondary
	}
	return t.Primary
}

type Brand struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a catalog entry. When HasVariants is true, PriceCents,
// DiscountCents and InStock are a cached projection of the variant set
// (see Rollup) and are rewritten on every variant mutation; they are not
// independently editable in that state.
type Product struct {
	ID            int64         `json:"id"`
	Name          LocalizedText `json:"name"`
	Description   LocalizedText `json:"description"`
	Slug          string        `json:"slug"`
	PriceCents    int64         `json:"price_cents"`
	DiscountCents int64         `json:"discount_cents"`
	HasVariants   bool          `json:"has_variants"`
	InStock       bool          `json:"in_stock"`
	ImageURLs     []string      `json:"image_urls,omitempty"`
	IsActive      bool          `json:"is_active"`
	Audience      Audience      `json:"audience"`
	CategoryID    *int64        `json:"category_id,omitempty"`
	BrandID       *int64        `json:"brand_id,omitempty"`
	SalesCount    int64         `json:"sales_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Variant is a purchasable size of a product, each with its own price,
// flat discount and stock flag. Variants are the unit of cart selection
// when the product has them.
type Variant struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	Name          string    `json:"name"`
	PriceCents    int64     `json:"price_cents"`
	DiscountCents int64     `json:"discount_cents"`
	InStock       bool      `json:"in_stock"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductCard is the lightweight shape for storefront lists.
type ProductCard struct {
	ID            int64         `json:"id"`
	Name          LocalizedText `json:"name"`
	Slug          string        `json:"slug"`
	PriceCents    int64         `json:"price_cents"`
	DiscountCents int64         `json:"discount_cents"`
	HasVariants   bool          `json:"has_variants"`
	InStock       bool          `json:"in_stock"`
	Audience      Audience      `json:"audience"`
	PrimaryImage  *string       `json:"primary_image,omitempty"`
	BrandName     *string       `json:"brand_name,omitempty"`
	CategoryName  *string       `json:"category_name,omitempty"`
}

// ProductDetail is the storefront product page payload.
type ProductDetail struct {
	Product  *Product   `json:"product"`
	Brand    *Brand     `json:"brand,omitempty"`
	Category *Category  `json:"category,omitempty"`
	Variants []*Variant `json:"variants"`
	Display  Display    `json:"display"`
}

// ProductFilter narrows storefront listings.
type ProductFilter struct {
	CategorySlug string
	BrandSlug    string
	Audience     Audience
	ActiveOnly   bool
}
