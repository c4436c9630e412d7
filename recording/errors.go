package recording

import "errors"

// ErrUnsupportedFormat reports a data source this package cannot read.
var ErrUnsupportedFormat = errors.New("unsupported recording format")
