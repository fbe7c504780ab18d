package extension

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/depscan/pkg/errors"
)

// BOM artifact ids selecting the platform flavor.
const (
	CommunityBOM = "quarkus-bom"
	ProductBOM   = "quarkus-product-bom"
)

// DefaultVendorNamespace is the repository path fragment under which the
// vendor's platform descriptor is published.
const DefaultVendorNamespace = "com/redhat"

// IsProductBOM reports whether bomArtifactID selects the product flavor.
func IsProductBOM(bomArtifactID string) bool {
	return bomArtifactID == ProductBOM
}

// DescriptorName returns the file name of the platform descriptor for the
// given BOM flavor and upstream version, e.g.
// "quarkus-product-bom-quarkus-platform-descriptor-2.2.3-2.2.3.json".
// Any BOM other than the product BOM selects the community descriptor.
func DescriptorName(bomArtifactID, version string) string {
	bom := CommunityBOM
	if IsProductBOM(bomArtifactID) {
		bom = ProductBOM
	}
	return fmt.Sprintf("%s-quarkus-platform-descriptor-%s-%s.json", bom, version, version)
}

// ParseDescriptor returns the artifact ids listed under "extensions" in a
// platform descriptor. Unknown fields are ignored.
func ParseDescriptor(data []byte) (map[string]struct{}, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "platform descriptor is not valid JSON")
	}
	ids := make(map[string]struct{})
	gjson.GetBytes(data, "extensions.#.artifactId").ForEach(func(_, v gjson.Result) bool {
		if id := v.String(); id != "" {
			ids[id] = struct{}{}
		}
		return true
	})
	return ids, nil
}
