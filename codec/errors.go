package codec

import "errors"

// ErrNoCodec is returned when no registered codec handles a file.
var ErrNoCodec = errors.New("no codec for file")
