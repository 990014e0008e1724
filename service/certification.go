package service

import (
	"strings"

	"movie-finder-cli/model"
)

const NoCertification = "N/A"

// CertificationCountries is the fallback order used when the US entry has
// no certification.
var CertificationCountries = []string{
	"US", "GB", "CA", "AU", "NZ", "IE", "DE", "FR",
	"ES", "IT", "NL", "BR", "MX", "JP", "KR", "IN",
}

// ResolveCertification picks the first non-empty certification for the US,
// then for each country in CertificationCountries. It returns "N/A" for both
// values when nothing matches.
func ResolveCertification(releases []model.CountryReleases) (cert string, country string) {
	if cert, ok := countryCertification(releases, "US"); ok {
		return cert, "US"
	}
	for _, code := range CertificationCountries {
		if code == "US" {
			continue
		}
		if cert, ok := countryCertification(releases, code); ok {
			return cert, code
		}
	}
	return NoCertification, NoCertification
}

// Only the first entry for a country is consulted. Values come back as the
// API sent them; trimming only decides emptiness.
func countryCertification(releases []model.CountryReleases, country string) (string, bool) {
	for _, entry := range releases {
		if entry.Country != country {
			continue
		}
		for _, release := range entry.ReleaseDates {
			if strings.TrimSpace(release.Certification) != "" {
				return release.Certification, true
			}
		}
		return "", false
	}
	return "", false
}

// ResolveTrailers keeps YouTube videos typed as trailers, in order.
func ResolveTrailers(videos []model.Video) []model.Trailer {
	out := make([]model.Trailer, 0, len(videos))
	for _, v := range videos {
		if v.Site != "YouTube" || v.Type != "Trailer" {
			continue
		}
		out = append(out, model.Trailer{Site: v.Site, Key: v.Key, Name: v.Name})
	}
	return out
}
