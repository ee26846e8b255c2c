package db

import (
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the application owns.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Notepad{},
		&models.Session{},
	)
}
