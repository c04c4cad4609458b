// SPDX-License-Identifier: MPL-2.0

package convert

import (
	"github.com/cfgbind/cfgbind/pkg/typereg"
)

const (
	// Capability is provided by every converter type of this package.
	Capability typereg.Capability = "cfgbind.convert.Converter"

	namePrefix = "cfgbind.convert."
)

// timeConverterSchema constrains TimeConverter nodes.
var timeConverterSchema = []byte(`
#TimeConverter: {
	layout?: string & !=""
}
`)

// RegisterTypes declares the Converter capability and registers every
// converter type of this package in reg.
func RegisterTypes(reg *typereg.Registry) error {
	if err := reg.Declare(typereg.TypeName(Capability), typereg.KindInterface); err != nil {
		return err
	}

	caps := typereg.WithCapabilities(Capability)
	regs := []func() error{
		func() error {
			return typereg.Provide(reg, namePrefix+"StringConverter", func() *StringConverter { return &StringConverter{} }, caps)
		},
		func() error {
			return typereg.Provide(reg, namePrefix+"BoolConverter", func() *BoolConverter { return &BoolConverter{} }, caps)
		},
		func() error {
			return typereg.Provide(reg, namePrefix+"IntConverter", func() *IntConverter { return &IntConverter{} }, caps)
		},
		func() error {
			return typereg.Provide(reg, namePrefix+"UintConverter", func() *UintConverter { return &UintConverter{} }, caps)
		},
		func() error {
			return typereg.Provide(reg, namePrefix+"FloatConverter", func() *FloatConverter { return &FloatConverter{} }, caps)
		},
		func() error {
			return typereg.Provide(reg, namePrefix+"DurationConverter", func() *DurationConverter { return &DurationConverter{} }, caps)
		},
		func() error {
			return typereg.Provide(reg, namePrefix+"TextConverter", func() *TextConverter { return &TextConverter{} }, caps)
		},
		func() error {
			return typereg.Provide(reg, namePrefix+"TimeConverter", func() *TimeConverter { return &TimeConverter{} },
				caps, typereg.SchemaPopulating(), typereg.WithSchema(timeConverterSchema, "#TimeConverter"))
		},
	}
	for _, r := range regs {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}
