package model

import (
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type BusinessStatus string

const (
	BusinessStatusActive   BusinessStatus = "active"
	BusinessStatusInactive BusinessStatus = "inactive"
)

type BusinessCategory string

const (
	CategoryFood     BusinessCategory = "food"
	CategoryRetail   BusinessCategory = "retail"
	CategoryServices BusinessCategory = "services"
	CategoryCrafts   BusinessCategory = "crafts"
	CategoryOther    BusinessCategory = "other"
)

type Business struct {
	gorm.Model
	Name        string           `json:"name" gorm:"not null"`
	Slug        string           `json:"slug" gorm:"uniqueIndex;not null"`
	Description string           `json:"description" gorm:"type:text"`
	Category    BusinessCategory `json:"category" gorm:"not null"`
	Address     string           `json:"address" gorm:"not null"`
	Latitude    float64          `json:"latitude"`
	Longitude   float64          `json:"longitude"`
	Phone       string           `json:"phone"`
	Status      BusinessStatus   `json:"status" gorm:"not null;default:'active'"`

	UserID uint `json:"owner_id" gorm:"index"`

	User     User      `json:"-" gorm:"foreignKey:UserID"`
	Products []Product `json:"-"`
}

// BeforeCreate derives the public slug from the business name. Collisions
// get a numeric suffix based on how many rows already share the base slug.
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.Slug != "" {
		return nil
	}

	base := slug.Make(b.Name)
	if base == "" {
		base = fmt.Sprintf("business-%d", b.UserID)
	}

	var count int64
	tx.Model(&Business{}).Where("slug = ? OR slug LIKE ?", base, base+"-%").Count(&count)
	if count > 0 {
		base = fmt.Sprintf("%s-%d", base, count+1)
	}

	b.Slug = base
	return nil
}
