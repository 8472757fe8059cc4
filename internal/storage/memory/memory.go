package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rentListings/internal/models"
	"rentListings/internal/storage"
)

// Storage is an in-process Database used by the "memory" storage driver and
// by tests. Filters are evaluated with models.ListingFilter.Matches.
type Storage struct {
	mu       sync.RWMutex
	listings map[string]models.Listing
	images   map[string][]models.Image
	users    map[string]models.User
	emails   map[string]string
	imageSeq int64

	now func() time.Time
}

func New() *Storage {
	return &Storage{
		listings: make(map[string]models.Listing),
		images:   make(map[string][]models.Image),
		users:    make(map[string]models.User),
		emails:   make(map[string]string),
		now:      time.Now,
	}
}

// WithClock replaces the creation timestamp source.
func (s *Storage) WithClock(now func() time.Time) *Storage {
	s.now = now
	return s
}

func (s *Storage) GetListings(_ context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(filter.Matches), nil
}

func (s *Storage) GetListingsByOwner(_ context.Context, userId string) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(l models.Listing) bool { return l.UserId == userId }), nil
}

func (s *Storage) collect(keep func(models.Listing) bool) []models.Listing {
	result := []models.Listing{}
	for _, l := range s.listings {
		if keep(l) {
			result = append(result, s.withImages(l))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Id < result[j].Id
	})

	return result
}

func (s *Storage) withImages(l models.Listing) models.Listing {
	l.Images = append([]models.Image{}, s.images[l.Id]...)
	return l
}

func (s *Storage) GetListingById(_ context.Context, id string) (models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return models.Listing{}, storage.ErrNotFound
	}
	return s.withImages(l), nil
}

func (s *Storage) CreateListing(_ context.Context, listing models.Listing) (models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing.CreatedAt = s.now().UTC()
	listing.Images = nil
	s.listings[listing.Id] = listing

	return s.withImages(listing), nil
}

func (s *Storage) UpdateListing(_ context.Context, listing models.Listing) (models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[listing.Id]
	if !ok || current.UserId != listing.UserId {
		return models.Listing{}, storage.ErrNotFound
	}

	listing.CreatedAt = current.CreatedAt
	listing.Images = nil
	s.listings[listing.Id] = listing

	return s.withImages(listing), nil
}

func (s *Storage) DeleteListing(_ context.Context, id string, userId string) ([]models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[id]
	if !ok || current.UserId != userId {
		return nil, storage.ErrNotFound
	}

	images := s.images[id]
	delete(s.listings, id)
	delete(s.images, id)

	return images, nil
}

func (s *Storage) AddImage(_ context.Context, image models.Image) (models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[image.PropertyId]; !ok {
		return image, storage.ErrNotFound
	}

	s.imageSeq++
	image.Id = s.imageSeq
	image.CreatedAt = s.now().UTC()
	s.images[image.PropertyId] = append(s.images[image.PropertyId], image)

	return image, nil
}

func (s *Storage) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	if _, ok := s.emails[user.Email]; ok {
		return user, storage.ErrDuplicateEmail
	}

	user.CreatedAt = s.now().UTC()
	s.users[user.Id] = user
	s.emails[user.Email] = user.Id

	return user, nil
}

func (s *Storage) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	delete(s.emails, user.Email)

	return nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Storage) GetUserById(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Storage) ConfirmEmail(_ context.Context, userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userId]
	if !ok {
		return storage.ErrNotFound
	}
	user.EmailConfirmed = true
	s.users[userId] = user

	return nil
}
