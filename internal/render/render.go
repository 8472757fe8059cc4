package render

import (
	"strconv"
	"strings"
	"time"

	"rentListings/internal/models"
)

const PlaceholderImage = "/placeholder.svg"

// Card is a browse result tile. Its Type badge shows the tenant category.
type Card struct {
	Id         string  `json:"id"`
	Href       string  `json:"href"`
	Title      string  `json:"title"`
	Location   string  `json:"location"`
	Price      float64 `json:"price"`
	PriceLabel string  `json:"price_label"`
	Bedrooms   int     `json:"bedrooms"`
	Bathrooms  int     `json:"bathrooms"`
	ImageUrl   string  `json:"image_url"`
	Type       string  `json:"type"`
}

type Detail struct {
	Id             string   `json:"id"`
	Title          string   `json:"title"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	PriceLabel     string   `json:"price_label"`
	PropertyType   string   `json:"property_type"`
	TenantType     string   `json:"tenant_type"`
	BedroomsLabel  string   `json:"bedrooms_label"`
	BathroomsLabel string   `json:"bathrooms_label"`
	Contact        string   `json:"contact"`
	Images         []string `json:"images"`
	Posted         string   `json:"posted"`
	EditHref       string   `json:"edit_href,omitempty"`
}

func NewCard(l models.Listing) Card {
	image := PlaceholderImage
	if len(l.Images) > 0 && l.Images[0].ImageUrl != "" {
		image = l.Images[0].ImageUrl
	}

	return Card{
		Id:         l.Id,
		Href:       "/property/" + l.Id,
		Title:      l.Title,
		Location:   l.Location,
		Price:      l.Price,
		PriceLabel: PriceLabel(l.Price),
		Bedrooms:   l.Bedrooms,
		Bathrooms:  l.Bathrooms,
		ImageUrl:   image,
		Type:       string(l.TenantType),
	}
}

func Cards(listings []models.Listing) []Card {
	cards := make([]Card, 0, len(listings))
	for _, l := range listings {
		cards = append(cards, NewCard(l))
	}
	return cards
}

// NewDetail renders a listing for the detail screen. viewerId enables the
// edit link when the viewer owns the listing.
func NewDetail(l models.Listing, viewerId string) Detail {
	images := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, img.ImageUrl)
	}

	d := Detail{
		Id:             l.Id,
		Title:          l.Title,
		Location:       l.Location,
		Description:    l.Description,
		Price:          l.Price,
		PriceLabel:     PriceLabel(l.Price),
		PropertyType:   string(l.PropertyType),
		TenantType:     string(l.TenantType),
		BedroomsLabel:  strconv.Itoa(l.Bedrooms) + " Bedrooms",
		BathroomsLabel: strconv.Itoa(l.Bathrooms) + " Bathrooms",
		Contact:        "Contact: " + l.OwnerNumber,
		Images:         images,
	}
	if !l.CreatedAt.IsZero() {
		d.Posted = l.CreatedAt.UTC().Format(time.DateOnly)
	}
	if viewerId != "" && viewerId == l.UserId {
		d.EditHref = "/edit/" + l.Id
	}

	return d
}

// Heading is the title above the browse results.
func Heading(count int) string {
	switch count {
	case 0:
		return "No properties found"
	case 1:
		return "1 Property Found"
	default:
		return strconv.Itoa(count) + " Properties"
	}
}

// PriceLabel formats a monthly price as "৳12,500/month".
func PriceLabel(price float64) string {
	return "৳" + groupThousands(price) + "/month"
}

func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && len(frac) > 2 {
		s = strconv.FormatFloat(v, 'f', 2, 64)
		if sign != "" {
			s = s[1:]
		}
		whole, frac, _ = strings.Cut(s, ".")
		frac = strings.TrimRight(frac, "0")
		hasFrac = frac != ""
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}
