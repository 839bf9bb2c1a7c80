// Package geo resolves client IPs to a country code and approximate
// coordinates via a local MaxMind GeoLite2 database, replacing the original
// implementation's geoip2.database.Reader.
package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Location is the subset of geolocation data the login flow needs.
type Location struct {
	CountryAcronym string // lowercase ISO 3166-1 alpha-2, "xx" if unknown
	Latitude       float64
	Longitude      float64
}

// Reader looks up IP geolocation, backed by a MaxMind City database file.
type Reader struct {
	db *geoip2.Reader
}

// Open loads the MaxMind database at path. Call Close when done.
func Open(path string) (*Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geolocation database at %s: %w", path, err)
	}
	return &Reader{db: db}, nil
}

// Close releases the underlying memory-mapped database file.
func (r *Reader) Close() error { return r.db.Close() }

// Lookup resolves ip to a Location. Unresolvable or private IPs yield the
// "xx" unknown-country sentinel with zeroed coordinates, never an error,
// since geolocation failure must never block a login.
func (r *Reader) Lookup(ip string) Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{CountryAcronym: "xx"}
	}
	record, err := r.db.City(parsed)
	if err != nil || record.Country.IsoCode == "" {
		return Location{CountryAcronym: "xx"}
	}
	return Location{
		CountryAcronym: toLower(record.Country.IsoCode),
		Latitude:       record.Location.Latitude,
		Longitude:      record.Location.Longitude,
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
