package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an operator of the custody unit. Password holds a bcrypt hash.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Nome      string    `json:"nome,omitempty"`
	Graduacao string    `json:"graduacao,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "app_user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
