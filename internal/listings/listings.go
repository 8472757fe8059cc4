package listings

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"rentListings/internal/metrics"
	"rentListings/internal/models"
	"rentListings/internal/query"
	"rentListings/internal/storage"
	"rentListings/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidID    = errors.New("listings: invalid property ID format")
	ErrUploadFailed = errors.New("listings: image upload failed")
)

const fallbackExt = "bin"

// Service runs the owner flows. Every successful mutation drops the listing
// query cache.
type Service struct {
	db      storage.Database
	images  storage.ImageStore
	query   *query.Service
	metrics *metrics.Metrics
	log     *zap.Logger

	newID func() string
}

func NewService(db storage.Database, images storage.ImageStore, q *query.Service, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:      db,
		images:  images,
		query:   q,
		metrics: m,
		log:     log,
		newID:   uuid.NewString,
	}
}

// ParseID accepts only the canonical 36 character UUID form.
func ParseID(id string) (string, error) {
	if len(id) != 36 {
		return "", ErrInvalidID
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Listing, error) {
	id, err := ParseID(id)
	if err != nil {
		return models.Listing{}, err
	}
	return s.db.GetListingById(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, userId string) ([]models.Listing, error) {
	listings, err := s.db.GetListingsByOwner(ctx, userId)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings, nil
}

// Create stores a new listing owned by userId together with its photos. The
// photos upload concurrently; if any of them fails the listing and every blob
// already written are removed again.
func (s *Service) Create(ctx context.Context, userId string, form validation.ListingForm, uploads []models.Upload) (models.Listing, error) {
	listing, err := form.Listing()
	if err != nil {
		return models.Listing{}, err
	}

	listing.Id = s.newID()
	listing.UserId = userId

	created, err := s.db.CreateListing(ctx, listing)
	if err != nil {
		return models.Listing{}, err
	}

	images, err := s.uploadAll(ctx, created.Id, uploads)
	if err != nil {
		s.rollback(ctx, created, images)
		return models.Listing{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	created.Images = make([]models.Image, 0, len(images))
	for _, img := range images {
		stored, err := s.db.AddImage(ctx, img)
		if err != nil {
			s.rollback(ctx, created, images)
			return models.Listing{}, err
		}
		created.Images = append(created.Images, stored)
	}

	s.mutated(ctx, "create")
	s.log.Info("listing created",
		zap.String("listing_id", created.Id),
		zap.String("user_id", userId),
		zap.Int("images", len(created.Images)),
	)

	return created, nil
}

// uploadAll returns the images that reached the store, in upload order, even
// when it fails part way.
func (s *Service) uploadAll(ctx context.Context, listingId string, uploads []models.Upload) ([]models.Image, error) {
	var (
		mu      sync.Mutex
		results = make([]*models.Image, len(uploads))
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, up := range uploads {
		g.Go(func() error {
			img, err := s.upload(gctx, listingId, up)
			s.metrics.Upload(err == nil)
			if err != nil {
				return fmt.Errorf("%s: %w", up.Filename, err)
			}

			mu.Lock()
			results[i] = &img
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	images := make([]models.Image, 0, len(uploads))
	for _, img := range results {
		if img != nil {
			images = append(images, *img)
		}
	}
	return images, err
}

func (s *Service) upload(ctx context.Context, listingId string, up models.Upload) (models.Image, error) {
	body, err := up.Open()
	if err != nil {
		return models.Image{}, err
	}
	defer body.Close()

	storagePath := listingId + "/" + uuid.NewString() + "." + extension(up.Filename)

	url, err := s.images.Upload(ctx, storagePath, up.ContentType, body)
	if err != nil {
		return models.Image{}, err
	}

	return models.Image{PropertyId: listingId, ImageUrl: url, Path: storagePath}, nil
}

func extension(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return fallbackExt
	}
	return ext
}

func (s *Service) rollback(ctx context.Context, listing models.Listing, images []models.Image) {
	ctx = context.WithoutCancel(ctx)

	s.deleteBlobs(ctx, images)
	if _, err := s.db.DeleteListing(ctx, listing.Id, listing.UserId); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Error("failed to roll back listing", zap.String("listing_id", listing.Id), zap.Error(err))
	}
	// The row was visible to browsers until now.
	if s.query != nil {
		s.query.Invalidate(ctx)
	}

	s.log.Warn("listing creation rolled back",
		zap.String("listing_id", listing.Id),
		zap.Int("removed_images", len(images)),
	)
}

func (s *Service) deleteBlobs(ctx context.Context, images []models.Image) {
	for _, img := range images {
		if err := s.images.Delete(ctx, img.Path); err != nil {
			s.log.Error("failed to delete image", zap.String("path", img.Path), zap.Error(err))
		}
	}
}

// Update replaces the editable fields of a listing owned by userId. Photos
// are not part of the edit form.
func (s *Service) Update(ctx context.Context, userId string, id string, form validation.ListingForm) (models.Listing, error) {
	id, err := ParseID(id)
	if err != nil {
		return models.Listing{}, err
	}

	listing, err := form.Listing()
	if err != nil {
		return models.Listing{}, err
	}
	listing.Id = id
	listing.UserId = userId

	updated, err := s.db.UpdateListing(ctx, listing)
	if err != nil {
		return models.Listing{}, err
	}

	s.mutated(ctx, "update")
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, userId string, id string) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}

	images, err := s.db.DeleteListing(ctx, id, userId)
	if err != nil {
		return err
	}

	s.deleteBlobs(context.WithoutCancel(ctx), images)
	s.mutated(ctx, "delete")
	s.log.Info("listing deleted", zap.String("listing_id", id), zap.String("user_id", userId))

	return nil
}

func (s *Service) mutated(ctx context.Context, op string) {
	s.metrics.Mutation(op)
	if s.query != nil {
		s.query.Invalidate(ctx)
	}
}
