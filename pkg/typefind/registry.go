// SPDX-License-Identifier: MPL-2.0

package typefind

import (
	"context"

	"github.com/cfgbind/cfgbind/pkg/typereg"
)

// RegistryFinder answers FindSubTypes from the registry alone, treating every
// registered type as loadable. It is used when no roots are configured.
type RegistryFinder struct {
	Registry *typereg.Registry
}

// FindSubTypes returns the sorted names of registered concrete types that
// provide capability and are accepted by accept.
func (f RegistryFinder) FindSubTypes(ctx context.Context, capability typereg.Capability, accept Predicate) []string {
	if f.Registry == nil || capability == "" {
		return nil
	}
	var names []string
	for _, e := range f.Registry.Implementations(capability) {
		if ctx.Err() != nil {
			return names
		}
		if accept == nil || accept(string(e.Name)) {
			names = append(names, string(e.Name))
		}
	}
	return names
}
