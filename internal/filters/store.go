package filters

import (
	"sync"

	"rentListings/internal/models"
)

// Store holds the filter selection of one browsing session.
type Store struct {
	mu  sync.RWMutex
	sel models.FilterSelection
}

func NewStore() *Store {
	return &Store{sel: models.DefaultFilterSelection()}
}

// Filters returns a copy of the current selection.
func (s *Store) Filters() models.FilterSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clone(s.sel)
}

// SetFilters merges patch into the selection field by field. Fields absent
// from the patch keep their value; an explicit null unsets the field.
func (s *Store) SetFilters(patch models.FilterPatch) models.FilterSelection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.PropertyType.Set {
		s.sel.PropertyType = copyPtr(patch.PropertyType.Value)
	}
	if patch.Bedrooms.Set {
		s.sel.Bedrooms = copyPtr(patch.Bedrooms.Value)
	}
	if patch.TenantType.Set {
		s.sel.TenantType = copyPtr(patch.TenantType.Value)
	}
	if patch.PriceRange != nil {
		s.sel.PriceRange = *patch.PriceRange
	}

	return clone(s.sel)
}

func (s *Store) ResetFilters() models.FilterSelection {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sel = models.DefaultFilterSelection()
	return clone(s.sel)
}

func clone(sel models.FilterSelection) models.FilterSelection {
	return models.FilterSelection{
		PropertyType: copyPtr(sel.PropertyType),
		Bedrooms:     copyPtr(sel.Bedrooms),
		TenantType:   copyPtr(sel.TenantType),
		PriceRange:   sel.PriceRange,
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
