package database

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/bakaydmytro/team-seeker-be/internal/models"
)

func ConnectMySQL(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
}

// Migrate creates or updates the schema. Shared by main and the test helpers.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Member{},
		&models.Message{},
		&models.Friendship{},
	)
}
