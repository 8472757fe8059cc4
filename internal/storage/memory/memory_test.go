package memory

import (
	"context"
	"testing"
	"time"

	"rentListings/internal/models"
	"rentListings/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steppingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func flat(id string, price float64) models.Listing {
	return models.Listing{
		Id:           id,
		Title:        "Flat " + id,
		Description:  "Description",
		Price:        price,
		Location:     "Dhanmondi, Dhaka",
		PropertyType: models.PropertyFlat,
		TenantType:   models.TenantFamily,
		Bedrooms:     2,
		Bathrooms:    1,
		UserId:       "owner",
	}
}

func TestGetListingsFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	db := New().WithClock(steppingClock())

	for _, l := range []models.Listing{flat("a", 4000), flat("b", 10000), flat("c", 60000), flat("d", 5000)} {
		_, err := db.CreateListing(ctx, l)
		require.NoError(t, err)
	}

	got, err := db.GetListings(ctx, models.ListingFilter{
		PropertyType: models.PropertyFlat,
		MinPrice:     5000,
		MaxPrice:     50000,
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].Id)
	assert.Equal(t, "b", got[1].Id)
}

func TestOwnerScopedMutations(t *testing.T) {
	ctx := context.Background()
	db := New()

	created, err := db.CreateListing(ctx, flat("a", 10000))
	require.NoError(t, err)

	_, err = db.AddImage(ctx, models.Image{PropertyId: "a", ImageUrl: "u1", Path: "a/1.jpg"})
	require.NoError(t, err)

	stranger := created
	stranger.UserId = "someone-else"
	_, err = db.UpdateListing(ctx, stranger)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = db.DeleteListing(ctx, "a", "someone-else")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	images, err := db.DeleteListing(ctx, "a", "owner")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "a/1.jpg", images[0].Path)

	_, err = db.GetListingById(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := New()

	_, err := db.CreateUser(ctx, models.User{Id: "u1", Email: "Owner@Example.com"})
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, models.User{Id: "u2", Email: "owner@example.com"})
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	require.NoError(t, db.ConfirmEmail(ctx, "u1"))

	user, err := db.GetUserByEmail(ctx, "OWNER@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.Id)
	assert.True(t, user.EmailConfirmed)

	assert.ErrorIs(t, db.ConfirmEmail(ctx, "missing"), storage.ErrNotFound)
}
