package selector

import (
	"fmt"
	"strings"
)

// DefaultAllowedProperties are the properties a content selector may reference.
// A trailing ".*" allows any sub-property.
var DefaultAllowedProperties = []string{"format", "path", "coordinate.*"}

// ValidateProperties checks that every property referenced by n matches one
// of the allowed patterns. An empty allow-list accepts every property.
func ValidateProperties(n Node, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}
	for _, name := range Properties(n) {
		if !propertyAllowed(name, allowed) {
			return fmt.Errorf("%w: %q (allowed: %s)", ErrUnknownProperty, name, strings.Join(allowed, ", "))
		}
	}
	return nil
}

func propertyAllowed(name string, allowed []string) bool {
	for _, pattern := range allowed {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
				return true
			}
			continue
		}
		if name == pattern {
			return true
		}
	}
	return false
}
