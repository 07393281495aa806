package domain

import (
	"strconv"
	"strings"
	"time"
)

type ProductType string

const (
	TypePhone     ProductType = "phone"
	TypeAccessory ProductType = "accessory"
	TypeRepair    ProductType = "repair"
)

type Tag string

const (
	TagNone    Tag = "none"
	TagSale    Tag = "sale"
	TagBudget  Tag = "budget"
	TagLikeNew Tag = "like-new"
)

type Condition string

const (
	CondNew     Condition = "new"
	CondUsed    Condition = "used"
	CondDamaged Condition = "damaged"
)

// MaxPrice is the upper bound accepted for price and new_price.
const MaxPrice = 500000

// PlaceholderImage is what listings without photos render with; it is
// never persisted on the document.
const PlaceholderImage = "/public/placeholder-phone.png"

var storageSizes = map[string]bool{
	"32GB": true, "64GB": true, "128GB": true, "256GB": true, "512GB": true, "1TB": true,
}

// Product is a storefront listing. For phones the ID is the user-supplied
// IMEI and acts as the upsert key; accessories and repair services get a
// generated opaque id. Type is immutable after creation.
type Product struct {
	ID          string      `bson:"_id" json:"id"`
	Type        ProductType `bson:"type" json:"type"`
	Name        string      `bson:"name" json:"name"`
	Price       int         `bson:"price" json:"price"`
	NewPrice    *int        `bson:"new_price,omitempty" json:"new_price"`
	Tag         Tag         `bson:"tag" json:"tag"`
	Description string      `bson:"description" json:"description"`
	Images      []string    `bson:"image" json:"image"`

	Brand     string    `bson:"brand,omitempty" json:"brand,omitempty"`
	Condition Condition `bson:"condition,omitempty" json:"condition,omitempty"`
	Storage   string    `bson:"storage,omitempty" json:"storage,omitempty"`
	Colour    string    `bson:"colour,omitempty" json:"colour,omitempty"`
	Camera    string    `bson:"camera,omitempty" json:"camera,omitempty"`
	Battery   int       `bson:"battery,omitempty" json:"battery,omitempty"`
	Processor string    `bson:"processor,omitempty" json:"processor,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayImage returns the canonical image, or the placeholder when the
// listing has no photos.
func (p *Product) DisplayImage() string {
	if len(p.Images) == 0 {
		return PlaceholderImage
	}
	return p.Images[0]
}

// ListingInput is the validated payload of the listing form, one shape
// per product type instead of the free-form object the admin panel posts.
type ListingInput struct {
	IMEI        string      `validate:"omitempty,numeric,min=8,max=20"`
	Type        ProductType `validate:"required,oneof=phone accessory repair"`
	Name        string      `validate:"required"`
	Price       int         `validate:"gte=0,lte=500000"`
	NewPrice    *int        `validate:"omitempty,gte=0,lte=500000"`
	Tag         Tag         `validate:"omitempty,oneof=none sale budget like-new"`
	Description string      `validate:"required"`
	Images      []string

	Brand     string
	Condition Condition `validate:"omitempty,oneof=new used damaged"`
	Storage   string
	Colour    string
	Camera    string
	Battery   int `validate:"gte=0"`
	Processor string
}

// Normalize applies defaults prior to validation.
func (in *ListingInput) Normalize() {
	in.IMEI = strings.TrimSpace(in.IMEI)
	in.Name = strings.TrimSpace(in.Name)
	if in.Tag == "" {
		in.Tag = TagNone
	}
}

// Check enforces the rules the validator tags cannot express.
func (in *ListingInput) Check() error {
	if in.Type == TypePhone && in.IMEI == "" {
		return Invalid("imei", "required for phones")
	}
	if in.Storage != "" && !storageSizes[in.Storage] {
		return Invalid("storage", "unknown size "+in.Storage)
	}
	return nil
}

// Product builds the document for this input. id must already be decided
// by the workflow (IMEI for phones, generated otherwise).
func (in *ListingInput) Product(id string, now time.Time) *Product {
	return &Product{
		ID:          id,
		Type:        in.Type,
		Name:        in.Name,
		Price:       in.Price,
		NewPrice:    in.NewPrice,
		Tag:         in.Tag,
		Description: in.Description,
		Images:      in.Images,
		Brand:       in.Brand,
		Condition:   in.Condition,
		Storage:     in.Storage,
		Colour:      in.Colour,
		Camera:      in.Camera,
		Battery:     in.Battery,
		Processor:   in.Processor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ParseAmount coerces a user-supplied numeric field. Empty input is zero;
// anything non-numeric is a validation error, never silently defaulted.
func ParseAmount(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, Invalid(field, "not a number: "+raw)
	}
	return n, nil
}
