package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolver maps place names to stored locations, registering new ones.
type Resolver struct {
	geocoder Geocoder
	store    Store
}

// NewResolver creates a Resolver.
func NewResolver(geocoder Geocoder, store Store) *Resolver {
	return &Resolver{geocoder: geocoder, store: store}
}

// Resolve returns the stored location for name, creating it on first sight.
// Stored coordinates win over whatever the geocoder reports later.
func (r *Resolver) Resolve(ctx context.Context, name string) (Location, error) {
	query := canonicalName(name)
	if query == "" {
		return Location{}, &ResolutionError{Name: name, Err: ErrNoMatch}
	}

	match, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		return Location{}, &ResolutionError{Name: name, Err: err}
	}
	match.Name = canonicalName(match.Name)
	match.Country = canonicalName(match.Country)
	if match.Name == "" {
		return Location{}, &ResolutionError{Name: name, Err: ErrNoMatch}
	}

	loc, err := r.store.FindLocation(ctx, match.Name, match.Country)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Location{}, fmt.Errorf("find location %s: %w", match.Name, err)
	}

	loc, err = r.store.CreateLocation(ctx, Location{
		Name:      match.Name,
		Country:   match.Country,
		Latitude:  match.Latitude,
		Longitude: match.Longitude,
	})
	if err != nil {
		return Location{}, fmt.Errorf("create location %s: %w", match.Name, err)
	}
	log.Printf("resolver: registered %s (%s) id=%d at %.4f,%.4f",
		loc.Name, loc.Country, loc.ID, loc.Latitude, loc.Longitude)
	return loc, nil
}

// canonicalName trims, collapses inner whitespace and applies NFC so the same
// place spelled with composed or decomposed accents maps to one key.
func canonicalName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
