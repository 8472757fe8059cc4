package validation

import (
	"encoding/json"
	"testing"

	"rentListings/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() ListingForm {
	return ListingForm{
		Title:        "Sunny flat",
		Description:  "Two rooms near the lake",
		Price:        "12000",
		Location:     "Dhanmondi, Dhaka",
		PropertyType: "flat",
		TenantType:   "family",
		Bedrooms:     "2",
		Bathrooms:    "1",
		OwnerNumber:  "+8801700000000",
	}
}

func TestListingForm(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(f *ListingForm)
		expected Errors
	}{
		{
			name:     "negative price",
			mutate:   func(f *ListingForm) { f.Price = "-5" },
			expected: Errors{"price": "Price must be a positive number"},
		},
		{
			name:     "zero price",
			mutate:   func(f *ListingForm) { f.Price = "0" },
			expected: Errors{"price": "Price must be a positive number"},
		},
		{
			name:     "non numeric price",
			mutate:   func(f *ListingForm) { f.Price = "cheap" },
			expected: Errors{"price": "Price must be a positive number"},
		},
		{
			name: "blank required fields",
			mutate: func(f *ListingForm) {
				f.Title = "   "
				f.Location = ""
				f.Bedrooms = ""
			},
			expected: Errors{
				"title":    "Title is required",
				"location": "Location is required",
				"bedrooms": "Number of bedrooms is required",
			},
		},
		{
			name: "negative and fractional counts",
			mutate: func(f *ListingForm) {
				f.Bedrooms = "-1"
				f.Bathrooms = "1.5"
			},
			expected: Errors{
				"bedrooms":  "Bedrooms must be a non-negative number",
				"bathrooms": "Bathrooms must be a non-negative number",
			},
		},
		{
			name: "categories outside their sets",
			mutate: func(f *ListingForm) {
				f.PropertyType = "castle"
				f.TenantType = ""
			},
			expected: Errors{
				"property_type": "Property type must be one of flat, sublet, hostel, commercial",
				"tenant_type":   "Tenant type is required",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.mutate(&form)

			_, err := form.Listing()

			var errs Errors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tc.expected, errs)
		})
	}
}

func TestListingFormConverts(t *testing.T) {
	form := validForm()
	form.Bedrooms = "0"

	listing, err := form.Listing()
	require.NoError(t, err)

	assert.Equal(t, 12000.0, listing.Price)
	assert.Equal(t, 0, listing.Bedrooms)
	assert.Equal(t, models.PropertyFlat, listing.PropertyType)
	assert.Equal(t, models.TenantFamily, listing.TenantType)

	assert.Equal(t, form, FormFromListing(listing))
}

func TestListingFormAcceptsJSONNumbers(t *testing.T) {
	var form ListingForm
	body := `{"title":"A","description":"B","price":-5,"location":"C",
		"property_type":"flat","tenant_type":"student","bedrooms":3,"bathrooms":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &form))

	assert.Equal(t, FieldValue("-5"), form.Price)
	assert.Equal(t, FieldValue("3"), form.Bedrooms)

	_, err := form.Listing()
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, Errors{
		"price":     "Price must be a positive number",
		"bathrooms": "Number of bathrooms is required",
	}, errs)
}

func TestCredentials(t *testing.T) {
	err := SignUp(models.Credentials{Email: "owner@example.com", Password: "12345"})
	assert.Equal(t, Errors{"password": "Password should be at least 6 characters long."}, err)

	err = SignUp(models.Credentials{Email: "not-an-email", Password: "123456"})
	assert.Equal(t, Errors{"email": "Please enter a valid email address"}, err)

	assert.NoError(t, SignUp(models.Credentials{Email: "owner@example.com", Password: "123456"}))

	err = SignIn(models.Credentials{Password: "x"})
	assert.Equal(t, Errors{"email": "Email is required"}, err)
}
