package models

import (
	"time"

	"winestore/pkg/money"
)

// ProductDetails holds the tasting-note record nested inside a product.
// Stored as a JSON column but always carrying this exact shape; malformed
// blobs fail deserialization at the boundary instead of propagating.
type ProductDetails struct {
	Alcohol    string `json:"alcohol"`
	Ingredient string `json:"ingredient"`
	Aging      string `json:"aging"`
	Serving    string `json:"serving"`
	Pairing    string `json:"pairing"`
	Volume     string `json:"volume"`
}

// Product represents a purchasable item in the catalog.
type Product struct {
	ID            uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string         `json:"name" gorm:"type:varchar(200)" validate:"required,min=3,max=200"`
	Type          string         `json:"type" gorm:"type:varchar(100)" validate:"required"`
	Category      string         `json:"category" gorm:"type:varchar(100)"`
	Packaging     string         `json:"packaging" gorm:"type:varchar(100)"`
	Volume        string         `json:"volume" gorm:"type:varchar(50)"`
	Price         money.Amount   `json:"price" gorm:"type:bigint" validate:"gte=0"`
	OriginalPrice *money.Amount  `json:"original_price,omitempty" gorm:"type:bigint"`
	Discount      int            `json:"discount,omitempty" validate:"gte=0,lte=100"`
	Rating        float64        `json:"rating" validate:"gte=0,lte=5"`
	Image         string         `json:"image" gorm:"type:varchar(500)"`
	Description   string         `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Details       ProductDetails `json:"details" gorm:"serializer:json"`
	Story         string         `json:"story" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
