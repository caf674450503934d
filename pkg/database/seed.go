package database

import (
	"github.com/quillbase/blogserver/internal/constants"
	"github.com/quillbase/blogserver/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultAdmin defines the default admin user credentials
type DefaultAdmin struct {
	Username    string
	Password    string
	DisplayName string
}

// GetDefaultAdmin returns the default admin user
func GetDefaultAdmin() DefaultAdmin {
	return DefaultAdmin{
		Username:    "admin",
		Password:    "Admin@123", // Change this in production!
		DisplayName: "Administrator",
	}
}

// Seed creates initial data for the database
func Seed(db *gorm.DB) error {
	return SeedUsers(db)
}

// SeedUsers creates the default admin user if not exists
func SeedUsers(db *gorm.DB) error {
	admin := GetDefaultAdmin()

	var existingUser model.User
	result := db.Where("username = ?", admin.Username).First(&existingUser)

	if result.Error == nil {
		// User already exists, skip seeding
		return nil
	}

	if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		Username:    admin.Username,
		Password:    string(hashedPassword),
		DisplayName: admin.DisplayName,
		Authority:   constants.AuthorityAdmin,
	}

	return db.Create(&user).Error
}
