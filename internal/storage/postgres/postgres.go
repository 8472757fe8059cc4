package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"rentListings/internal/models"
	"rentListings/internal/queries"
	"rentListings/internal/storage"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	driverName = "postgres"

	uniqueViolation = "23505"
)

//go:embed schema.sql
var schema string

type Storage struct {
	Db *sqlx.DB
}

func New(ctx context.Context, dsn string) (*Storage, error) {
	database, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	s := &Storage{Db: database}

	if err := s.init(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) init(ctx context.Context) error {
	if _, err := s.Db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres: apply schema: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.Db.Close()
}

func (s *Storage) GetListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	query, args := queries.SelectListings(filter)

	var listings []models.Listing
	if err := s.Db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("postgres: select listings: %w", err)
	}

	return s.withImages(ctx, listings)
}

func (s *Storage) GetListingsByOwner(ctx context.Context, userId string) ([]models.Listing, error) {
	var listings []models.Listing
	if err := s.Db.SelectContext(ctx, &listings, queries.SelectListingsByOwner(), userId); err != nil {
		return nil, fmt.Errorf("postgres: select owner listings: %w", err)
	}

	return s.withImages(ctx, listings)
}

func (s *Storage) GetListingById(ctx context.Context, id string) (models.Listing, error) {
	var listing models.Listing
	if err := s.Db.GetContext(ctx, &listing, queries.SelectListingById(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return listing, storage.ErrNotFound
		}
		return listing, fmt.Errorf("postgres: get listing: %w", err)
	}

	listings, err := s.withImages(ctx, []models.Listing{listing})
	if err != nil {
		return listing, err
	}

	return listings[0], nil
}

// withImages attaches image references to listings in upload order.
func (s *Storage) withImages(ctx context.Context, listings []models.Listing) ([]models.Listing, error) {
	if len(listings) == 0 {
		return listings, nil
	}

	ids := make([]string, len(listings))
	index := make(map[string]int, len(listings))
	for i, l := range listings {
		ids[i] = l.Id
		index[l.Id] = i
		listings[i].Images = []models.Image{}
	}

	var images []models.Image
	query := `SELECT id, property_id, image_url, storage_path, created_at FROM property_images
		WHERE property_id = ANY($1) ORDER BY id`
	if err := s.Db.SelectContext(ctx, &images, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("postgres: select images: %w", err)
	}

	for _, img := range images {
		i := index[img.PropertyId]
		listings[i].Images = append(listings[i].Images, img)
	}

	return listings, nil
}

func (s *Storage) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	query := `INSERT INTO properties (id, title, description, price, location, property_type, tenant_type,
			bedrooms, bathrooms, owner_number, user_id)
		VALUES (:id, :title, :description, :price, :location, :property_type, :tenant_type,
			:bedrooms, :bathrooms, :owner_number, :user_id)
		RETURNING created_at`

	rows, err := s.Db.NamedQueryContext(ctx, query, listing)
	if err != nil {
		return listing, fmt.Errorf("postgres: insert listing: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&listing.CreatedAt); err != nil {
			return listing, fmt.Errorf("postgres: insert listing: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return listing, fmt.Errorf("postgres: insert listing: %w", err)
	}

	listing.Images = []models.Image{}
	return listing, nil
}

func (s *Storage) UpdateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	query := `UPDATE properties SET title = :title, description = :description, price = :price,
			location = :location, property_type = :property_type, tenant_type = :tenant_type,
			bedrooms = :bedrooms, bathrooms = :bathrooms, owner_number = :owner_number
		WHERE id = :id AND user_id = :user_id`

	result, err := s.Db.NamedExecContext(ctx, query, listing)
	if err != nil {
		return listing, fmt.Errorf("postgres: update listing: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return listing, fmt.Errorf("postgres: update listing: %w", err)
	}
	if affected == 0 {
		return listing, storage.ErrNotFound
	}

	return s.GetListingById(ctx, listing.Id)
}

func (s *Storage) DeleteListing(ctx context.Context, id string, userId string) ([]models.Image, error) {
	tx, err := s.Db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres: delete listing: %w", err)
	}
	defer tx.Rollback()

	var images []models.Image
	query := `SELECT i.id, i.property_id, i.image_url, i.storage_path, i.created_at
		FROM property_images i JOIN properties p ON p.id = i.property_id
		WHERE p.id = $1 AND p.user_id = $2 ORDER BY i.id`
	if err := tx.SelectContext(ctx, &images, query, id, userId); err != nil {
		return nil, fmt.Errorf("postgres: select images: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE id = $1 AND user_id = $2`, id, userId)
	if err != nil {
		return nil, fmt.Errorf("postgres: delete listing: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("postgres: delete listing: %w", err)
	}
	if affected == 0 {
		return nil, storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: delete listing: %w", err)
	}

	return images, nil
}

func (s *Storage) AddImage(ctx context.Context, image models.Image) (models.Image, error) {
	query := `INSERT INTO property_images (property_id, image_url, storage_path)
		VALUES ($1, $2, $3) RETURNING id, created_at`

	err := s.Db.QueryRowxContext(ctx, query, image.PropertyId, image.ImageUrl, image.Path).
		Scan(&image.Id, &image.CreatedAt)
	if err != nil {
		return image, fmt.Errorf("postgres: insert image: %w", err)
	}

	return image, nil
}

func (s *Storage) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `INSERT INTO users (id, email, password_hash, email_confirmed)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	err := s.Db.QueryRowxContext(ctx, query, user.Id, strings.ToLower(user.Email), user.PasswordHash, user.EmailConfirmed).
		Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return user, storage.ErrDuplicateEmail
		}
		return user, fmt.Errorf("postgres: insert user: %w", err)
	}

	user.Email = strings.ToLower(user.Email)
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, email_confirmed, created_at FROM users WHERE email = $1`,
		strings.ToLower(email))
}

func (s *Storage) GetUserById(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, email_confirmed, created_at FROM users WHERE id = $1`, id)
}

func (s *Storage) getUser(ctx context.Context, query string, arg string) (models.User, error) {
	var user models.User
	if err := s.Db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, storage.ErrNotFound
		}
		return user, fmt.Errorf("postgres: get user: %w", err)
	}
	return user, nil
}

func (s *Storage) ConfirmEmail(ctx context.Context, userId string) error {
	result, err := s.Db.ExecContext(ctx, `UPDATE users SET email_confirmed = TRUE WHERE id = $1`, userId)
	if err != nil {
		return fmt.Errorf("postgres: confirm email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: confirm email: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	result, err := s.Db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: delete user: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
