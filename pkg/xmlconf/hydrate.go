// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cfgbind/cfgbind/pkg/typefind"
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

// Hydrate creates and populates the object declared by the element's marker
// attribute.
//
// An undefined XML or a missing marker yields def, unpopulated. When the
// marker names no registered type and capability is set, the marker is
// taken as a partial name: the concrete types providing capability whose
// names end with it are searched. None found yields nil; more than one is
// an ErrAmbiguousMatch failure.
//
// With throwOnError set, failures are returned as *Error. Otherwise they
// are logged and def is returned.
func (x *XML) Hydrate(capability typereg.Capability, def any, throwOnError bool) (any, error) {
	obj, err := x.hydrate(capability, def)
	if err == nil {
		return obj, nil
	}
	if throwOnError {
		return nil, err
	}
	x.logFailure(err)
	return def, nil
}

func (x *XML) hydrate(capability typereg.Capability, def any) (any, error) {
	if !x.Defined() {
		return def, nil
	}
	eng := x.eng()
	marker, _ := getAttr(x.node, eng.marker)
	marker = strings.TrimSpace(marker)
	if marker == "" {
		eng.log().Debug("no type declared; using default", "path", x.Path(), "attribute", eng.marker)
		return def, nil
	}

	entry, err := x.resolve(capability, marker)
	if err != nil || entry == nil {
		return nil, err
	}

	obj, err := entry.New()
	if err != nil {
		return nil, &Error{Kind: KindInstantiation, Path: x.Path(), TypeName: entry.Name, Cause: err}
	}
	if capability != "" && !entry.Has(capability) {
		return nil, &Error{
			Kind:     KindTypeMismatch,
			Path:     x.Path(),
			TypeName: entry.Name,
			Message:  fmt.Sprintf("type does not provide %s", capability),
		}
	}
	if err := x.populateEntry(entry, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// resolve finds the entry named by marker, falling back to a partial-name
// search when capability is set. A nil entry with a nil error means the
// partial search found nothing.
func (x *XML) resolve(capability typereg.Capability, marker string) (*typereg.Entry, error) {
	eng := x.eng()
	entry, err := eng.registry.Lookup(typereg.TypeName(marker))
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, typereg.ErrNotFound) || capability == "" || eng.finder == nil {
		return nil, &Error{Kind: KindNotFound, Path: x.Path(), TypeName: typereg.TypeName(marker), Cause: err}
	}

	names := eng.finder.FindSubTypes(x.Context(), capability, typefind.HasSuffix(marker))
	switch len(names) {
	case 0:
		eng.log().Debug("no type matches partial name", "path", x.Path(), "name", marker, "capability", capability)
		return nil, nil
	case 1:
		eng.log().Debug("resolved partial type name", "name", marker, "type", names[0])
		entry, err := eng.registry.Lookup(typereg.TypeName(names[0]))
		if err != nil {
			return nil, &Error{Kind: KindNotFound, Path: x.Path(), TypeName: typereg.TypeName(names[0]), Cause: err}
		}
		return entry, nil
	default:
		return nil, &Error{
			Kind:     KindAmbiguousMatch,
			Path:     x.Path(),
			TypeName: typereg.TypeName(marker),
			Message: fmt.Sprintf("%d candidate types implementing %s ending with %q found; exactly 1 expected: %s",
				len(names), capability, marker, strings.Join(names, ", ")),
		}
	}
}

func (x *XML) logFailure(err error) {
	log := x.eng().log()
	switch KindOf(err) {
	case KindNotFound, KindSchema, KindAmbiguousMatch:
		log.Error("could not create object from configuration; using default", "path", x.Path(), "error", err)
	default:
		log.Debug("could not create object from configuration; using default", "path", x.Path(), "error", err)
	}
}
