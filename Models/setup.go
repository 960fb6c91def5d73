package Models

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(databasePath string) {
	connection, err := gorm.Open(sqlite.Open(databasePath))
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", databasePath, err)
	}
	DB = connection

	// 1. Base tables first
	DB.AutoMigrate(
		&User{},
		&CustomerSession{},
	)

	// 2. Then tables referencing them
	DB.AutoMigrate(&ActivityEntry{})
}

// SeedAdminUser creates the initial dashboard account when none exists.
// No-op without credentials in the environment.
func SeedAdminUser(email, password string) {
	if email == "" || password == "" {
		return
	}
	var count int64
	if err := DB.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		log.Println(err)
		return
	}
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println(err)
		return
	}
	admin := User{
		Email:      email,
		Password:   hash,
		Name:       "Admin",
		Permission: 3,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}
	log.Printf("Seeded admin user %s", email)
}
