package queries

import (
	"fmt"
	"strings"

	"rentListings/internal/models"
)

const listingColumns = `id, title, description, price, location, property_type, tenant_type,
	bedrooms, bathrooms, owner_number, user_id, created_at`

// SelectListings builds the browse query for filter. Every set field adds one
// AND-ed predicate; the price range is always applied and is inclusive.
func SelectListings(filter models.ListingFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)

	add := func(predicate string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(predicate, len(args)))
	}

	if filter.PropertyType != "" {
		add(`property_type = $%d`, string(filter.PropertyType))
	}
	if filter.Bedrooms > 0 {
		if filter.Bedrooms >= models.BedroomsTopBucket {
			add(`bedrooms >= $%d`, int(models.BedroomsTopBucket))
		} else {
			add(`bedrooms = $%d`, int(filter.Bedrooms))
		}
	}
	if filter.TenantType != "" {
		add(`tenant_type = $%d`, string(filter.TenantType))
	}
	add(`price >= $%d`, filter.MinPrice)
	add(`price <= $%d`, filter.MaxPrice)
	if filter.Location != "" {
		add(`location ILIKE $%d`, "%"+EscapeLike(filter.Location)+"%")
	}

	query := `SELECT ` + listingColumns + ` FROM properties WHERE ` + strings.Join(where, ` AND `) +
		` ORDER BY created_at DESC, id`

	return query, args
}

func SelectListingsByOwner() string {
	return `SELECT ` + listingColumns + ` FROM properties WHERE user_id = $1 ORDER BY created_at DESC, id`
}

func SelectListingById() string {
	return `SELECT ` + listingColumns + ` FROM properties WHERE id = $1`
}

// EscapeLike escapes the LIKE wildcards so s matches as a literal substring.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
