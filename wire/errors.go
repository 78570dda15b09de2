package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Terminal codec errors. A failed Encode/Decode call returns one of these
// (possibly wrapped in a FieldError); no partial output is ever produced.
var (
	// ErrInvalidFieldNumber reports a field number outside [1, 2^29-1].
	ErrInvalidFieldNumber = errors.New("invalid field number")

	// ErrUnsupportedWireType reports tag wire-type bits that decode to
	// neither varint (0) nor length-delimited (2).
	ErrUnsupportedWireType = errors.New("unsupported wire type")

	// ErrVarintOverflow reports a varint that continues past 10 bytes.
	ErrVarintOverflow = errors.New("varint overflow")

	// ErrTruncatedBuffer reports input that ends before a declared tag,
	// varint or payload is complete.
	ErrTruncatedBuffer = errors.New("truncated buffer")
)

// FieldError represents an encoding/decoding error with a field path.
type FieldError struct {
	FieldPath []string // e.g., ["person", "phones", "number"]
	Err       error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("error at field path %s: %v", strings.Join(e.FieldPath, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// wrapWithField wraps an error with a field name, prepending to an
// existing path if err is already a FieldError.
func wrapWithField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}
