package models

import "time"

type User struct {
	ID             uint        `gorm:"primaryKey"`
	Email          string      `gorm:"uniqueIndex;size:255;not null"`
	HashedPassword string      `gorm:"not null"`
	Profile        UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Notepads       []Notepad   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Sessions       []Session   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
