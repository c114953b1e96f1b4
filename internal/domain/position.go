// Package domain contains the core data types for TrailHop.
// This package has no dependencies beyond the uuid library and is imported
// by every other internal package (repo, service, handler).
package domain

import "fmt"

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the coordinates are within the valid WGS84 ranges.
// The returned error wraps ErrValidation and names the offending value.
func (p Position) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrValidation, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrValidation, p.Lng)
	}
	return nil
}
