package seed

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"homebiz_backend/internal/model"
)

// SeedDemoData creates a demo buyer, a demo seller and one sample business
// for local development. Safe to run repeatedly.
func SeedDemoData(db *gorm.DB) {
	seller := seedUser(db, "seller@homebiz.test", "Demo Seller", model.RoleSeller)
	seedUser(db, "buyer@homebiz.test", "Demo Buyer", model.RoleBuyer)

	// seedUser returns a pre-existing row as-is; only attach the sample
	// business when that row actually holds the seller role.
	if seller == nil || !seller.IsSeller() {
		return
	}

	var count int64
	db.Model(&model.Business{}).Where("user_id = ?", seller.ID).Count(&count)
	if count > 0 {
		return
	}

	business := model.Business{
		Name:        "Tiong Bahru Bakes",
		Description: "Home-baked sourdough and kueh, fresh every morning.",
		Category:    model.CategoryFood,
		Address:     "56 Eng Hoon Street, Singapore",
		Latitude:    1.2853,
		Longitude:   103.8332,
		Phone:       "+65 8000 0000",
		Status:      model.BusinessStatusActive,
		UserID:      seller.ID,
	}
	if err := db.Create(&business).Error; err != nil {
		log.Printf("Could not seed demo business: %v", err)
		return
	}

	log.Println("Seeded demo users and business")
}

func seedUser(db *gorm.DB, emailAddr, name string, role model.UserRole) *model.User {
	var existing model.User
	if err := db.Where("email = ?", emailAddr).First(&existing).Error; err == nil {
		return &existing
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Could not hash demo password: %v", err)
		return nil
	}

	user := model.User{
		Email:    emailAddr,
		Password: string(hashed),
		Name:     name,
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Printf("Could not seed demo user %s: %v", emailAddr, err)
		return nil
	}
	return &user
}
