package models

import "time"

type Notepad struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:256;not null"`
	Body      string `gorm:"type:text"`
	UserID    uint   `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n Notepad) OwnerID() uint { return n.UserID }
