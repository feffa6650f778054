package xp

import (
	"errors"
	"fmt"
)

// ErrTruncated is matched by every TruncatedError via errors.Is.
var ErrTruncated = errors.New("xp: truncated input")

// TruncatedError reports that the stream ended before a required field or
// record could be read in full. Offset is the absolute position in the
// decompressed stream where the read started.
type TruncatedError struct {
	Offset int
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("xp: truncated input at offset %d: need %d bytes, have %d", e.Offset, e.Need, e.Have)
}

func (e *TruncatedError) Is(target error) bool { return target == ErrTruncated }
