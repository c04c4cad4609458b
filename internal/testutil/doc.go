// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides file helpers (MustMkdirAll, MustWriteFile, MustClose) it builds
// loadable roots on disk: directory roots of unit files (WriteUnitRoot) and
// zip archive roots (WriteArchiveRoot).
package testutil
