package maven

import "strings"

// DefaultVendorMarker is the version substring of artifacts rebuilt by the vendor.
const DefaultVendorMarker = "redhat"

// Classifier decides whether a version is vendor-patched or community.
// An empty Marker falls back to [DefaultVendorMarker].
type Classifier struct {
	Marker string
}

// NewClassifier returns a classifier for marker.
func NewClassifier(marker string) Classifier {
	return Classifier{Marker: marker}
}

func (k Classifier) marker() string {
	if k.Marker == "" {
		return DefaultVendorMarker
	}
	return k.Marker
}

// IsVendorVersion reports whether version carries the vendor marker.
func (k Classifier) IsVendorVersion(version string) bool {
	return strings.Contains(version, k.marker())
}

// IsVendorPatched reports whether c was rebuilt by the vendor.
func (k Classifier) IsVendorPatched(c Coordinate) bool {
	return k.IsVendorVersion(c.Version)
}

// IsCommunity reports whether c is consumed as-is from the community project.
func (k Classifier) IsCommunity(c Coordinate) bool {
	return !k.IsVendorPatched(c)
}

// Community returns the community subset of s. The input is not modified.
func (k Classifier) Community(s Set) Set {
	out := make(Set)
	for c := range s {
		if k.IsCommunity(c) {
			out[c] = struct{}{}
		}
	}
	return out
}
