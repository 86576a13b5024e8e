package domain

import (
	"fmt"
	"strings"
)

// NormalizeSegmentName trims name and rejects empty names and the view
// selectors All and Today in any case, which would be ambiguous as
// segment names.
func NormalizeSegmentName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: segment name must not be empty", ErrValidation)
	}
	if strings.EqualFold(name, SegmentAll) || strings.EqualFold(name, SelectorToday) {
		return "", fmt.Errorf("%w: %q is a reserved view name", ErrValidation, name)
	}
	return name, nil
}
