package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultMinPrice float64 = 5000
	DefaultMaxPrice float64 = 50000

	// Bounds of the price slider.
	PriceFloor   float64 = 0
	PriceCeiling float64 = 100000
)

// BedroomBucket is a bedroom filter value. The top bucket means "4 or more".
type BedroomBucket int

const BedroomsTopBucket BedroomBucket = 4

func ParseBedroomBucket(s string) (BedroomBucket, error) {
	s = strings.TrimSpace(s)
	if s == "4+" {
		return BedroomsTopBucket, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > int(BedroomsTopBucket) {
		return 0, fmt.Errorf("bedrooms must be one of 1, 2, 3, 4+: %q", s)
	}
	return BedroomBucket(n), nil
}

func (b BedroomBucket) String() string {
	if b >= BedroomsTopBucket {
		return "4+"
	}
	return strconv.Itoa(int(b))
}

func (b BedroomBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BedroomBucket) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("bedrooms: %w", err)
		}
		s = strconv.Itoa(n)
	}
	v, err := ParseBedroomBucket(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Matches reports whether a listing with n bedrooms falls into the bucket.
func (b BedroomBucket) Matches(n int) bool {
	if b >= BedroomsTopBucket {
		return n >= int(BedroomsTopBucket)
	}
	return n == int(b)
}

// PriceRange is an inclusive [lo, hi] interval.
type PriceRange [2]float64

// Valid reports whether the range is ordered and inside the slider bounds.
// NaN bounds fail every comparison and are rejected.
func (r PriceRange) Valid() bool {
	return r[0] >= PriceFloor && r[1] <= PriceCeiling && r[0] <= r[1]
}

func (r PriceRange) Contains(price float64) bool {
	return price >= r[0] && price <= r[1]
}

type FilterSelection struct {
	PropertyType *PropertyType  `json:"property_type"`
	Bedrooms     *BedroomBucket `json:"bedrooms"`
	TenantType   *TenantType    `json:"tenant_type"`
	PriceRange   PriceRange     `json:"price_range"`
}

func DefaultFilterSelection() FilterSelection {
	return FilterSelection{PriceRange: PriceRange{DefaultMinPrice, DefaultMaxPrice}}
}

// Optional distinguishes an absent JSON field (Set == false) from an explicit
// null (Set == true, Value == nil).
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: &v} }

func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// FilterPatch is a partial update of a FilterSelection.
type FilterPatch struct {
	PropertyType Optional[PropertyType]  `json:"property_type"`
	Bedrooms     Optional[BedroomBucket] `json:"bedrooms"`
	TenantType   Optional[TenantType]    `json:"tenant_type"`
	PriceRange   *PriceRange             `json:"price_range"`
}

// ListingFilter is the complete, comparable identity of a listing query.
// Zero values mean "unset"; Location is lower-cased because matching is
// case-insensitive.
type ListingFilter struct {
	PropertyType PropertyType
	Bedrooms     BedroomBucket
	TenantType   TenantType
	MinPrice     float64
	MaxPrice     float64
	Location     string
}

func NewListingFilter(sel FilterSelection, location string) ListingFilter {
	f := ListingFilter{
		MinPrice: sel.PriceRange[0],
		MaxPrice: sel.PriceRange[1],
		Location: strings.ToLower(location),
	}
	if sel.PropertyType != nil {
		f.PropertyType = *sel.PropertyType
	}
	if sel.Bedrooms != nil {
		f.Bedrooms = *sel.Bedrooms
	}
	if sel.TenantType != nil {
		f.TenantType = *sel.TenantType
	}
	return f
}

func (f ListingFilter) Key() string {
	bedrooms := ""
	if f.Bedrooms > 0 {
		bedrooms = f.Bedrooms.String()
	}
	return fmt.Sprintf("pt=%s|bd=%s|tt=%s|pr=%s-%s|loc=%s",
		f.PropertyType, bedrooms, f.TenantType,
		strconv.FormatFloat(f.MinPrice, 'f', -1, 64),
		strconv.FormatFloat(f.MaxPrice, 'f', -1, 64),
		f.Location)
}

// Matches is the predicate form of the filter; storage adapters that cannot
// push the filter down evaluate it in process.
func (f ListingFilter) Matches(l Listing) bool {
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	if f.Bedrooms > 0 && !f.Bedrooms.Matches(l.Bedrooms) {
		return false
	}
	if f.TenantType != "" && l.TenantType != f.TenantType {
		return false
	}
	if !(PriceRange{f.MinPrice, f.MaxPrice}).Contains(l.Price) {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(l.Location), f.Location) {
		return false
	}
	return true
}
