package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Name    string `json:"name" gorm:"not null"`
	Email   string `json:"email" gorm:"not null;uniqueIndex"`
	IsAdmin bool   `json:"is_admin" gorm:"default:false"`
	Kudos   int    `json:"kudos" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
