package render

import (
	"testing"
	"time"

	"rentListings/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNewCard(t *testing.T) {
	listing := models.Listing{
		Id:           "0b4bb1d3-40c0-4c87-a9a1-6a5f1f3a8d10",
		Title:        "Sunny flat",
		Location:     "Gulshan",
		Price:        12500,
		PropertyType: models.PropertyFlat,
		TenantType:   models.TenantBachelor,
		Bedrooms:     2,
		Bathrooms:    1,
	}

	card := NewCard(listing)
	assert.Equal(t, PlaceholderImage, card.ImageUrl)
	assert.Equal(t, "bachelor", card.Type)
	assert.Equal(t, "/property/0b4bb1d3-40c0-4c87-a9a1-6a5f1f3a8d10", card.Href)
	assert.Equal(t, "৳12,500/month", card.PriceLabel)

	listing.Images = []models.Image{{ImageUrl: "http://img/1"}, {ImageUrl: "http://img/2"}}
	assert.Equal(t, "http://img/1", NewCard(listing).ImageUrl)
}

func TestNewDetail(t *testing.T) {
	listing := models.Listing{
		Id:          "0b4bb1d3-40c0-4c87-a9a1-6a5f1f3a8d10",
		Price:       8000,
		Bedrooms:    3,
		Bathrooms:   2,
		OwnerNumber: "01700000000",
		UserId:      "owner",
		CreatedAt:   time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		Images:      []models.Image{{ImageUrl: "http://img/1"}},
	}

	d := NewDetail(listing, "")
	assert.Equal(t, "3 Bedrooms", d.BedroomsLabel)
	assert.Equal(t, "2 Bathrooms", d.BathroomsLabel)
	assert.Equal(t, "Contact: 01700000000", d.Contact)
	assert.Equal(t, []string{"http://img/1"}, d.Images)
	assert.Equal(t, "2024-05-02", d.Posted)
	assert.Empty(t, d.EditHref)

	assert.Equal(t, "/edit/0b4bb1d3-40c0-4c87-a9a1-6a5f1f3a8d10", NewDetail(listing, "owner").EditHref)
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "No properties found", Heading(0))
	assert.Equal(t, "1 Property Found", Heading(1))
	assert.Equal(t, "7 Properties", Heading(7))
}

func TestPriceLabel(t *testing.T) {
	testCases := map[float64]string{
		5:         "৳5/month",
		999:       "৳999/month",
		1000:      "৳1,000/month",
		100000:    "৳100,000/month",
		1234567.5: "৳1,234,567.5/month",
		12.3456:   "৳12.35/month",
	}

	for price, expected := range testCases {
		assert.Equal(t, expected, PriceLabel(price), price)
	}
}
