// SPDX-License-Identifier: MPL-2.0

// cfgbind binds configuration documents to typed objects.
package main

import cmd "github.com/cfgbind/cfgbind/cmd/cfgbind"

func main() {
	cmd.Execute()
}
