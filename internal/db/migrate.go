package db

import (
	"edusmart/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"golang.org/x/crypto/bcrypt" // Password hashing for the seeded admin
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema and returns
// the open connection for follow-up seeding
func Migrate(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := AutoMigrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
	return db
}

// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.RoleSequence{},
		&domain.Course{},
		&domain.Class{},
		&domain.Enrollment{},
		&domain.Attendance{},
		&domain.Review{},
		&domain.Recording{},
	)
}

// SeedAdmin creates the admin account if it does not exist yet. Admins are
// never created through registration, only seeded here.
func SeedAdmin(db *gorm.DB, username, password string) {
	if username == "" || password == "" {
		return // No admin configured
	}
	var existing domain.User // Skip when the admin already exists
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.Fatalf("failed to hash admin password: %v", err) // Log fatal error if hashing fails
	}
	admin := domain.User{
		CustomID:   "AD000001",           // Fixed admin custom ID
		Nickname:   "Administrator",      // Display name
		Username:   username,             // Login identifier from config
		Password:   string(hash),         // Hashed password
		Role:       domain.RoleAdmin,     // Admin role
		KycStatus:  domain.KycApproved,   // Admins skip the KYC flow
		IsVerified: true,                 // And are always verified
	}
	if err := db.Create(&admin).Error; err != nil {
		logrus.Fatalf("failed to seed admin: %v", err) // Log fatal error if seeding fails
	}
	logrus.WithField("username", username).Info("Admin account seeded") // Log seeded admin
}
