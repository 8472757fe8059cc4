package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBedroomBucket(t *testing.T) {
	testCases := []struct {
		input    string
		expected BedroomBucket
		wantErr  bool
	}{
		{input: "1", expected: 1},
		{input: "3", expected: 3},
		{input: "4", expected: BedroomsTopBucket},
		{input: "4+", expected: BedroomsTopBucket},
		{input: " 2 ", expected: 2},
		{input: "0", wantErr: true},
		{input: "5", wantErr: true},
		{input: "many", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			b, err := ParseBedroomBucket(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, b)
		})
	}
}

func TestBedroomBucketJSON(t *testing.T) {
	var b BedroomBucket
	require.NoError(t, json.Unmarshal([]byte(`"4+"`), &b))
	assert.Equal(t, BedroomsTopBucket, b)

	require.NoError(t, json.Unmarshal([]byte(`2`), &b))
	assert.Equal(t, BedroomBucket(2), b)

	out, err := json.Marshal(BedroomsTopBucket)
	require.NoError(t, err)
	assert.JSONEq(t, `"4+"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`7`), &b))
}

func TestBedroomBucketTopMeansAtLeastFour(t *testing.T) {
	assert.False(t, BedroomsTopBucket.Matches(3))
	assert.True(t, BedroomsTopBucket.Matches(4))
	assert.True(t, BedroomsTopBucket.Matches(9))
	assert.True(t, BedroomBucket(2).Matches(2))
	assert.False(t, BedroomBucket(2).Matches(3))
}

func TestFilterPatchDistinguishesNullFromAbsent(t *testing.T) {
	var p FilterPatch
	require.NoError(t, json.Unmarshal([]byte(`{"property_type": null, "tenant_type": "student"}`), &p))

	assert.True(t, p.PropertyType.Set)
	assert.Nil(t, p.PropertyType.Value)

	assert.True(t, p.TenantType.Set)
	require.NotNil(t, p.TenantType.Value)
	assert.Equal(t, TenantStudent, *p.TenantType.Value)

	assert.False(t, p.Bedrooms.Set)
	assert.Nil(t, p.PriceRange)
}

func TestListingFilterMatches(t *testing.T) {
	flat := PropertyFlat
	listing := Listing{
		Price:        10000,
		PropertyType: PropertyFlat,
		TenantType:   TenantFamily,
		Bedrooms:     5,
		Location:     "Dhanmondi, Dhaka",
		CreatedAt:    time.Now(),
	}

	sel := DefaultFilterSelection()
	sel.PropertyType = &flat
	f := NewListingFilter(sel, "DHAKA")
	assert.True(t, f.Matches(listing))

	f.Bedrooms = BedroomsTopBucket
	assert.True(t, f.Matches(listing))

	f.TenantType = TenantOffice
	assert.False(t, f.Matches(listing))

	bounds := ListingFilter{MinPrice: 10000, MaxPrice: 10000}
	assert.True(t, bounds.Matches(listing), "price bounds are inclusive")
}

func TestListingFilterKeyIsCaseInsensitiveOnLocation(t *testing.T) {
	sel := DefaultFilterSelection()
	a := NewListingFilter(sel, "Gulshan")
	b := NewListingFilter(sel, "gulshan")
	assert.Equal(t, a, b)
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "pt=|bd=|tt=|pr=5000-50000|loc=gulshan", a.Key())
}
