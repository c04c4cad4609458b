// SPDX-License-Identifier: MPL-2.0

package xmlconf

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// AssertWriteRead writes obj to XML, reads the result back through
// hydration and reports any difference between the two objects.
// It is meant for tests of types registered with the engine.
func (e *Engine) AssertWriteRead(obj any, rootName string) error {
	x, err := e.FromObject(rootName, obj)
	if err != nil {
		return fmt.Errorf("write %T: %w", obj, err)
	}
	text := x.Indent(2)

	reread, err := e.ParseString(text)
	if err != nil {
		return fmt.Errorf("re-parse %T: %w\n%s", obj, err, text)
	}
	got, err := reread.Hydrate("", nil, true)
	if err != nil {
		return fmt.Errorf("read %T: %w\n%s", obj, err, text)
	}

	if diff := cmp.Diff(obj, got, cmp.Exporter(func(reflect.Type) bool { return true })); diff != "" {
		return fmt.Errorf("%T changed after write/read (-written +read):\n%s\nXML:\n%s", obj, diff, text)
	}
	return nil
}
