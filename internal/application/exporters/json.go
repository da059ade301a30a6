package exporters

import (
	"strings"

	"gorm.io/datatypes"
)

// domainSlice trims entries and drops blanks before storing a JSON list column.
func domainSlice(in []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return datatypes.JSONSlice[string](out)
}
