// SPDX-License-Identifier: MPL-2.0

package rootscan

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FormatVersion is the newest unit descriptor format this package reads.
	FormatVersion = 1

	maxDescriptorSize = 1 << 20
)

var (
	// ErrIncompatibleFormat is the sentinel error wrapped by IncompatibleFormatError.
	ErrIncompatibleFormat = errors.New("incompatible unit format")
	// ErrInvalidDescriptor is returned for descriptors that cannot be decoded.
	ErrInvalidDescriptor = errors.New("invalid unit descriptor")
)

type (
	// Descriptor is the TOML body of a unit file. An empty body is a valid
	// descriptor of the current format.
	Descriptor struct {
		// Name is the type name the unit stands for. It is not stored in the
		// file; the unit path encodes it.
		Name string `toml:"-"`
		// Format is the descriptor format version.
		Format int `toml:"format"`
		// Description is an optional human-readable summary.
		Description string `toml:"description,omitempty"`
	}

	// IncompatibleFormatError is returned for units written in a format newer
	// than FormatVersion.
	IncompatibleFormatError struct {
		Format int
	}
)

// Error implements the error interface.
func (e *IncompatibleFormatError) Error() string {
	return fmt.Sprintf("unit format %d is not supported (newest supported: %d)", e.Format, FormatVersion)
}

// Unwrap returns ErrIncompatibleFormat for errors.Is() compatibility.
func (e *IncompatibleFormatError) Unwrap() error { return ErrIncompatibleFormat }

// ReadDescriptor decodes a unit body.
func ReadDescriptor(r io.Reader) (Descriptor, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDescriptorSize+1))
	if err != nil {
		return Descriptor{}, err
	}
	if len(data) > maxDescriptorSize {
		return Descriptor{}, fmt.Errorf("%w: larger than %d bytes", ErrInvalidDescriptor, maxDescriptorSize)
	}

	d := Descriptor{Format: FormatVersion}
	if len(bytes.TrimSpace(data)) == 0 {
		return d, nil
	}
	if err := toml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	switch {
	case d.Format == 0:
		d.Format = FormatVersion
	case d.Format < 0:
		return Descriptor{}, fmt.Errorf("%w: negative format %d", ErrInvalidDescriptor, d.Format)
	case d.Format > FormatVersion:
		return Descriptor{}, &IncompatibleFormatError{Format: d.Format}
	}
	return d, nil
}

// ReadCandidate opens c and decodes its descriptor.
func ReadCandidate(c Candidate) (d Descriptor, err error) {
	rc, err := c.Open()
	if err != nil {
		return Descriptor{}, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	d, err = ReadDescriptor(rc)
	d.Name = c.Name
	return d, err
}

// MarshalDescriptor encodes d as a unit body.
func MarshalDescriptor(d Descriptor) ([]byte, error) {
	if d.Format == 0 {
		d.Format = FormatVersion
	}
	return toml.Marshal(d)
}
