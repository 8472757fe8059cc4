package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"rentListings/internal/models"

	"github.com/go-playground/validator/v10"
)

// Errors maps a JSON field name to the message shown next to that field.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation: " + strings.Join(parts, "; ")
}

// FieldValue is a form input. JSON numbers are accepted and kept in their
// literal form so the numeric rules can judge them the same way as text.
type FieldValue string

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FieldValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	*v = FieldValue(n.String())
	return nil
}

// ListingForm is the create/edit form as submitted.
type ListingForm struct {
	Title        FieldValue `json:"title" validate:"required"`
	Description  FieldValue `json:"description" validate:"required"`
	Price        FieldValue `json:"price" validate:"required,positive_number"`
	Location     FieldValue `json:"location" validate:"required"`
	PropertyType FieldValue `json:"property_type" validate:"required,property_type"`
	TenantType   FieldValue `json:"tenant_type" validate:"required,tenant_type"`
	Bedrooms     FieldValue `json:"bedrooms" validate:"required,non_negative_int"`
	Bathrooms    FieldValue `json:"bathrooms" validate:"required,non_negative_int"`
	OwnerNumber  FieldValue `json:"owner_number"`
}

var messages = map[string]string{
	"title.required":              "Title is required",
	"description.required":        "Description is required",
	"price.required":              "Price is required",
	"price.positive_number":       "Price must be a positive number",
	"location.required":           "Location is required",
	"property_type.required":      "Property type is required",
	"property_type.property_type": "Property type must be one of flat, sublet, hostel, commercial",
	"tenant_type.required":        "Tenant type is required",
	"tenant_type.tenant_type":     "Tenant type must be one of family, bachelor, student, office",
	"bedrooms.required":           "Number of bedrooms is required",
	"bedrooms.non_negative_int":   "Bedrooms must be a non-negative number",
	"bathrooms.required":          "Number of bathrooms is required",
	"bathrooms.non_negative_int":  "Bathrooms must be a non-negative number",
	"email.required":              "Email is required",
	"email.email":                 "Please enter a valid email address",
	"password.required":           "Password is required",
	"password.min":                "Password should be at least 6 characters long.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("positive_number", func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && n > 0 && !math.IsInf(n, 0)
	}))
	must(v.RegisterValidation("non_negative_int", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err == nil && n >= 0
	}))
	must(v.RegisterValidation("property_type", func(fl validator.FieldLevel) bool {
		return models.PropertyType(fl.Field().String()).Valid()
	}))
	must(v.RegisterValidation("tenant_type", func(fl validator.FieldLevel) bool {
		return models.TenantType(fl.Field().String()).Valid()
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	result := Errors{}
	for _, fe := range fieldErrs {
		if _, seen := result[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		result[fe.Field()] = msg
	}
	return result
}

func (f *ListingForm) normalize() {
	for _, v := range []*FieldValue{
		&f.Title, &f.Description, &f.Price, &f.Location, &f.PropertyType,
		&f.TenantType, &f.Bedrooms, &f.Bathrooms, &f.OwnerNumber,
	} {
		*v = FieldValue(strings.TrimSpace(string(*v)))
	}
}

// Listing validates the form and converts it into a listing without id,
// owner or timestamps. The returned error is an Errors value on bad input.
func (f ListingForm) Listing() (models.Listing, error) {
	f.normalize()
	if err := validate.Struct(f); err != nil {
		return models.Listing{}, translate(err)
	}

	price, _ := strconv.ParseFloat(string(f.Price), 64)
	bedrooms, _ := strconv.Atoi(string(f.Bedrooms))
	bathrooms, _ := strconv.Atoi(string(f.Bathrooms))

	return models.Listing{
		Title:        string(f.Title),
		Description:  string(f.Description),
		Price:        price,
		Location:     string(f.Location),
		PropertyType: models.PropertyType(f.PropertyType),
		TenantType:   models.TenantType(f.TenantType),
		Bedrooms:     bedrooms,
		Bathrooms:    bathrooms,
		OwnerNumber:  string(f.OwnerNumber),
	}, nil
}

// FormFromListing fills an edit form with the stored values.
func FormFromListing(l models.Listing) ListingForm {
	return ListingForm{
		Title:        FieldValue(l.Title),
		Description:  FieldValue(l.Description),
		Price:        FieldValue(strconv.FormatFloat(l.Price, 'f', -1, 64)),
		Location:     FieldValue(l.Location),
		PropertyType: FieldValue(l.PropertyType),
		TenantType:   FieldValue(l.TenantType),
		Bedrooms:     FieldValue(strconv.Itoa(l.Bedrooms)),
		Bathrooms:    FieldValue(strconv.Itoa(l.Bathrooms)),
		OwnerNumber:  FieldValue(l.OwnerNumber),
	}
}

type signUp struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type signIn struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func SignUp(c models.Credentials) error {
	return translate(validate.Struct(signUp{Email: strings.TrimSpace(c.Email), Password: c.Password}))
}

func SignIn(c models.Credentials) error {
	return translate(validate.Struct(signIn{Email: strings.TrimSpace(c.Email), Password: c.Password}))
}
