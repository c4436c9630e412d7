package detect

import "errors"

// ErrNoSampleRate reports that detection was attempted before the recording
// sampling rate is known. A default rate is never substituted.
var ErrNoSampleRate = errors.New("sampling rate unknown, detection refused")
