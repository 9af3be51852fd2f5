package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer   = "customer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `json:"name"`
	Role     string    `gorm:"default:customer" json:"role"` // customer, admin, super_admin

	// Collection progress. CurrentOfferID/CurrentOfferProgress mirror the
	// user's in-progress reward so QR codes without an explicit offer can
	// resolve a target, and so legacy counter-only data can be migrated.
	CurrentOfferID       *uuid.UUID `gorm:"type:uuid;index" json:"current_offer_id,omitempty"`
	CurrentOfferProgress int        `gorm:"default:0" json:"current_offer_progress"`
	Purchases            int        `gorm:"default:0" json:"purchases"`
	LastScanAt           *time.Time `json:"last_scan_at,omitempty"`

	// Session fields. Each login rotates SessionToken and flips
	// IsSessionValid true, invalidating tokens from earlier logins.
	SessionToken   string     `json:"-"`
	IsSessionValid bool       `gorm:"default:false" json:"-"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`

	// Version guards read-modify-write cycles on this row. Every scan
	// bumps it; writers must match the version they read.
	Version int `gorm:"default:0" json:"-"`

	IsBlocked bool           `gorm:"default:false" json:"is_blocked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the user holds an administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
