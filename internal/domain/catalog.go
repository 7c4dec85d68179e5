package domain

import (
	"fmt"
	"strings"
)

// Catalog is the process-wide perk table. It is built once and never mutated,
// so it can be shared between sessions without locking.
type Catalog struct {
	perks   []Perk
	byID    map[string]int
	byTitle map[string]int
}

// NewCatalog validates the given perks and builds an immutable catalog.
// Ids and titles must be non-empty and unique.
func NewCatalog(perks []Perk) (*Catalog, error) {
	c := &Catalog{
		perks:   make([]Perk, 0, len(perks)),
		byID:    make(map[string]int, len(perks)),
		byTitle: make(map[string]int, len(perks)),
	}
	for i, perk := range perks {
		perk.ID = strings.TrimSpace(perk.ID)
		perk.Title = strings.TrimSpace(perk.Title)
		if perk.ID == "" || perk.Title == "" {
			return nil, fmt.Errorf("%w: entry %d has an empty id or title", ErrCatalogLoad, i)
		}
		if _, exists := c.byID[perk.ID]; exists {
			return nil, fmt.Errorf("%w: id %q", ErrDuplicateID, perk.ID)
		}
		if _, exists := c.byTitle[perk.Title]; exists {
			return nil, fmt.Errorf("%w: title %q", ErrDuplicateID, perk.Title)
		}
		c.byID[perk.ID] = len(c.perks)
		c.byTitle[perk.Title] = len(c.perks)
		c.perks = append(c.perks, perk)
	}
	return c, nil
}

// Get returns the perk with the given id
func (c *Catalog) Get(id string) (Perk, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Perk{}, fmt.Errorf("%w: id %q", ErrNotFound, id)
	}
	return c.perks[idx], nil
}

// Has reports whether id is in the catalog
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// FindByTitle returns the perk whose title matches exactly
func (c *Catalog) FindByTitle(title string) (Perk, error) {
	idx, ok := c.byTitle[title]
	if !ok {
		return Perk{}, fmt.Errorf("%w: title %q", ErrNotFound, title)
	}
	return c.perks[idx], nil
}

// All returns the perks in insertion order
func (c *Catalog) All() []Perk {
	out := make([]Perk, len(c.perks))
	copy(out, c.perks)
	return out
}

// IDs returns the perk ids in insertion order
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.perks))
	for i, perk := range c.perks {
		ids[i] = perk.ID
	}
	return ids
}

// Len returns the number of perks
func (c *Catalog) Len() int {
	return len(c.perks)
}
