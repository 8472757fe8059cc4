package listings

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"

	"rentListings/internal/models"
	"rentListings/internal/query"
	"rentListings/internal/storage"
	"rentListings/internal/storage/memory"
	"rentListings/internal/storage/mocks"
	"rentListings/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const owner = "7b0c3a52-6f7e-4a57-9d8e-2f1d6c1a0b11"

// brokenStore rejects every upload declared with content type "image/broken".
type brokenStore struct {
	*memory.ImageStore
}

func (s brokenStore) Upload(ctx context.Context, path string, contentType string, body io.Reader) (string, error) {
	if contentType == "image/broken" {
		return "", errors.New("object storage: quota exceeded")
	}
	return s.ImageStore.Upload(ctx, path, contentType, body)
}

func form() validation.ListingForm {
	return validation.ListingForm{
		Title:        "Sunny flat",
		Description:  "Two rooms",
		Price:        "12000",
		Location:     "Dhanmondi",
		PropertyType: "flat",
		TenantType:   "family",
		Bedrooms:     "2",
		Bathrooms:    "1",
	}
}

func file(name, contentType, body string) models.Upload {
	return models.Upload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func newService(t *testing.T, db storage.Database, images storage.ImageStore) (*Service, *mocks.Cache) {
	t.Helper()

	cache := new(mocks.Cache)
	q := query.NewService(db, cache, nil, nil)
	return NewService(db, images, q, nil, nil), cache
}

func TestCreateUploadsEveryImage(t *testing.T) {
	db := memory.New()
	images := memory.NewImageStore("http://localhost:8080")
	svc, cache := newService(t, db, images)
	cache.On("InvalidateListings", mock.Anything).Return(nil).Once()

	listing, err := svc.Create(context.Background(), owner, form(), []models.Upload{
		file("front.JPG", "image/jpeg", "a"),
		file("kitchen", "image/png", "b"),
	})
	require.NoError(t, err)

	_, err = ParseID(listing.Id)
	require.NoError(t, err)
	assert.Equal(t, owner, listing.UserId)
	require.Len(t, listing.Images, 2)

	pathPattern := regexp.MustCompile(`^` + listing.Id + `/[0-9a-f-]{36}\.(jpg|bin)$`)
	for _, img := range listing.Images {
		assert.Regexp(t, pathPattern, img.Path)
		assert.Equal(t, "http://localhost:8080/images/"+img.Path, img.ImageUrl)
	}
	assert.True(t, strings.HasSuffix(listing.Images[0].Path, ".jpg"))
	assert.True(t, strings.HasSuffix(listing.Images[1].Path, ".bin"))

	stored, err := db.GetListingById(context.Background(), listing.Id)
	require.NoError(t, err)
	assert.Len(t, stored.Images, 2)

	cache.AssertExpectations(t)
}

func TestCreateRollsBackOnPartialUploadFailure(t *testing.T) {
	db := memory.New()
	blobs := memory.NewImageStore("http://localhost:8080")
	svc, cache := newService(t, db, brokenStore{blobs})
	cache.On("InvalidateListings", mock.Anything).Return(nil).Once()

	_, err := svc.Create(context.Background(), owner, form(), []models.Upload{
		file("a.jpg", "image/jpeg", "a"),
		file("b.jpg", "image/broken", "b"),
		file("c.jpg", "image/jpeg", "c"),
	})
	require.ErrorIs(t, err, ErrUploadFailed)
	assert.Contains(t, err.Error(), "quota exceeded")

	assert.Empty(t, blobs.Paths())

	remaining, err := db.GetListingsByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// Browses between insert and rollback may have cached the listing.
	cache.AssertExpectations(t)
}

func TestCreateRejectsInvalidFormBeforeStorage(t *testing.T) {
	db := new(mocks.Database)
	images := new(mocks.ImageStore)
	svc, _ := newService(t, db, images)

	f := form()
	f.Price = "-5"

	_, err := svc.Create(context.Background(), owner, f, []models.Upload{file("a.jpg", "image/jpeg", "a")})

	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Price must be a positive number", errs["price"])

	db.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
	images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRejectsMalformedID(t *testing.T) {
	db := new(mocks.Database)
	svc, _ := newService(t, db, nil)

	for _, id := range []string{"not-a-uuid", "", "7b0c3a526f7e4a579d8e2f1d6c1a0b11", "{7b0c3a52-6f7e-4a57-9d8e-2f1d6c1a0b11}"} {
		_, err := svc.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
	}

	db.AssertNotCalled(t, "GetListingById", mock.Anything, mock.Anything)
}

func TestUpdateAndDeleteAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	blobs := memory.NewImageStore("")
	svc, cache := newService(t, db, blobs)
	cache.On("InvalidateListings", mock.Anything).Return(nil)

	listing, err := svc.Create(ctx, owner, form(), []models.Upload{file("a.jpg", "image/jpeg", "a")})
	require.NoError(t, err)
	require.Len(t, blobs.Paths(), 1)

	stranger := "0d7e5d8e-3f55-4c3b-8a1e-9b4f2c6d7e80"
	edit := form()
	edit.Title = "Renamed"

	_, err = svc.Update(ctx, stranger, listing.Id, edit)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	updated, err := svc.Update(ctx, owner, listing.Id, edit)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Len(t, updated.Images, 1)

	assert.ErrorIs(t, svc.Delete(ctx, stranger, listing.Id), storage.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, owner, listing.Id))
	assert.Empty(t, blobs.Paths())

	_, err = svc.Get(ctx, listing.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	cache.AssertNumberOfCalls(t, "InvalidateListings", 3)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpg", extension("photo.JPG"))
	assert.Equal(t, "png", extension("dir.v2/photo.png"))
	assert.Equal(t, "bin", extension("photo"))
	assert.Equal(t, "bin", extension("photo."))
}
