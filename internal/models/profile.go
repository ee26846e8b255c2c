package models

import "time"

type UserProfile struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"size:100;not null"`
	Surname     string `gorm:"size:100;not null"`
	Affiliation string `gorm:"size:100"`
	Orcid       string `gorm:"size:19"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p UserProfile) OwnerID() uint { return p.UserID }
