package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

type Product struct {
	gorm.Model
	BusinessID  uint           `json:"business_id" gorm:"index"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"not null"`
	Category    string         `json:"category"`
	ImageURL    string         `json:"image_url"`
	Attributes  datatypes.JSON `json:"attributes"` // serbest alan: beden, renk vb.
	Status      ProductStatus  `json:"status" gorm:"not null;default:'active'"`

	Business Business `json:"-" gorm:"foreignKey:BusinessID"`
}
