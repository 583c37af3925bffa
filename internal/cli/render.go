package cli

import (
	"fmt"
	"sort"

	"github.com/karstdb/karst/internal/mixed"
)

// ValueInfo is the renderable form of a mixed value.
type ValueInfo struct {
	Kind    string `json:"kind"`
	Value   string `json:"value"`
	Class   string `json:"class,omitempty"`
	Dynamic bool   `json:"dynamic,omitempty"`
}

// valueInfo renders a mixed value for output.
func valueInfo(v *mixed.Value) ValueInfo {
	info := ValueInfo{
		Kind:  v.Kind().String(),
		Value: v.String(),
	}
	if obj, err := v.AsObject(); err == nil && obj != nil {
		info.Class = v.TypedClass()
		info.Dynamic = v.IsDynamicObject()
	}
	return info
}

// renderText renders a ValueInfo as a single text line.
func renderText(info ValueInfo) string {
	if info.Class != "" {
		if info.Dynamic {
			return fmt.Sprintf("%s %s (dynamic)", info.Kind, info.Value)
		}
		return fmt.Sprintf("%s %s", info.Kind, info.Value)
	}
	return fmt.Sprintf("%s %s", info.Kind, info.Value)
}

// sortedFieldNames returns the keys of a field map in sorted order.
func sortedFieldNames(fields map[string]ValueInfo) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
