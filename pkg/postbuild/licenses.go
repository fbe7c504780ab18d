package postbuild

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/matzehuels/depscan/pkg/errors"
)

// LicensesEntry is the file inside a license bundle listing every license.
const LicensesEntry = "licenses.xml"

// LicenseNames returns the distinct text of every <name> element whose
// parent is a <license> element, wherever it appears in the document.
func LicenseNames(r io.Reader) (map[string]struct{}, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	names := make(map[string]struct{})
	var stack []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed %s", LicensesEntry)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "name" && len(stack) > 0 && stack[len(stack)-1] == "license" {
				var name string
				if err := dec.DecodeElement(&name, &t); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed %s", LicensesEntry)
				}
				names[strings.TrimSpace(name)] = struct{}{}
				continue
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return names, nil
}
