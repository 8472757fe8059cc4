package models

import (
	"io"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type AuthorizationToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CustomClaims struct {
	UserId string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type PropertyType string

const (
	PropertyFlat       PropertyType = "flat"
	PropertySublet     PropertyType = "sublet"
	PropertyHostel     PropertyType = "hostel"
	PropertyCommercial PropertyType = "commercial"
)

var PropertyTypes = []PropertyType{PropertyFlat, PropertySublet, PropertyHostel, PropertyCommercial}

func (p PropertyType) Valid() bool {
	for _, v := range PropertyTypes {
		if p == v {
			return true
		}
	}
	return false
}

type TenantType string

const (
	TenantFamily   TenantType = "family"
	TenantBachelor TenantType = "bachelor"
	TenantStudent  TenantType = "student"
	TenantOffice   TenantType = "office"
)

var TenantTypes = []TenantType{TenantFamily, TenantBachelor, TenantStudent, TenantOffice}

func (t TenantType) Valid() bool {
	for _, v := range TenantTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Listing struct {
	Id           string       `json:"id" db:"id"`
	Title        string       `json:"title" db:"title"`
	Description  string       `json:"description" db:"description"`
	Price        float64      `json:"price" db:"price"`
	Location     string       `json:"location" db:"location"`
	PropertyType PropertyType `json:"property_type" db:"property_type"`
	TenantType   TenantType   `json:"tenant_type" db:"tenant_type"`
	Bedrooms     int          `json:"bedrooms" db:"bedrooms"`
	Bathrooms    int          `json:"bathrooms" db:"bathrooms"`
	OwnerNumber  string       `json:"owner_number" db:"owner_number"`
	UserId       string       `json:"user_id" db:"user_id"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	Images       []Image      `json:"property_images" db:"-"`
}

// Image is a reference to a blob held in object storage. Path is the
// storage key and never leaves the service.
type Image struct {
	Id         int64     `json:"id" db:"id"`
	PropertyId string    `json:"property_id" db:"property_id"`
	ImageUrl   string    `json:"image_url" db:"image_url"`
	Path       string    `json:"-" db:"storage_path"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type User struct {
	Id             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	EmailConfirmed bool      `json:"email_confirmed" db:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

type Session struct {
	UserId string `json:"user_id"`
	Email  string `json:"email"`
}

type Verification struct {
	UserId     string `json:"user_id"`
	RedirectTo string `json:"redirect_to"`
}

// Upload is one image file attached to a create request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
