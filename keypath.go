package morph

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// keypath appends a key or index to a dotted keypath. The empty parent
// denotes the root.
func keypath(parent string, key any) string {
	part := fmt.Sprintf("%v", key)
	if parent == "" {
		return part
	}
	return parent + "." + part
}

var titleCaser = cases.Title(language.English)

// humanize renders an internal snake_case field name for
// human-readable messages: "customer_id" becomes "Customer Id".
func humanize(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}
