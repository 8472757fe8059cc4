package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"rentListings/internal/models"
)

var (
	ErrNotFound       = errors.New("storage: not found")
	ErrDuplicateEmail = errors.New("storage: email already registered")
)

type Database interface {
	GetListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	GetListingById(ctx context.Context, id string) (models.Listing, error)
	GetListingsByOwner(ctx context.Context, userId string) ([]models.Listing, error)
	CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error)
	// UpdateListing matches on both listing.Id and listing.UserId and returns
	// ErrNotFound when the caller does not own the row.
	UpdateListing(ctx context.Context, listing models.Listing) (models.Listing, error)
	// DeleteListing removes an owned listing and returns its image references.
	DeleteListing(ctx context.Context, id string, userId string) ([]models.Image, error)
	AddImage(ctx context.Context, image models.Image) (models.Image, error)

	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserById(ctx context.Context, id string) (models.User, error)
	ConfirmEmail(ctx context.Context, userId string) error
	// DeleteUser removes an account that never got a verification link.
	DeleteUser(ctx context.Context, id string) error
}

// Cache misses are reported as redis.Nil. Entries live under a generation;
// InvalidateListings starts a new one, so a result read from the database
// must be stored under the generation observed before that read.
type Cache interface {
	Generation(ctx context.Context) (int64, error)
	GetListings(ctx context.Context, gen int64, key string) ([]byte, error)
	PutListings(ctx context.Context, gen int64, key string, listings []models.Listing) error
	InvalidateListings(ctx context.Context) error
}

type SessionStore interface {
	RevokeToken(ctx context.Context, tokenId string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenId string) (bool, error)
	SaveVerification(ctx context.Context, token string, v models.Verification, ttl time.Duration) error
	// ConsumeVerification returns ErrNotFound for unknown or expired tokens.
	ConsumeVerification(ctx context.Context, token string) (models.Verification, error)
}

type ImageStore interface {
	// Upload stores body under path and returns its public URL.
	Upload(ctx context.Context, path string, contentType string, body io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, path string) error
}
