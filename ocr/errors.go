package ocr

import "errors"

// ErrNotEnabled is returned when text recognition is requested from a
// binary built without the "ocr" tag. Callers can test for it with
// errors.Is regardless of how the binary was built.
var ErrNotEnabled = errors.New("ocr: support not compiled in; rebuild with -tags ocr")
