package download

import "fmt"

const bytesPerMB = 1024 * 1024

// FetchError wraps any failure from the external fetcher: network errors,
// extraction failures, the fetcher's own size ceiling, or a missing output
// file.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SizeExceededError reports a fetched file over the delivery limit. Size is
// in bytes, LimitMB in mebibytes.
type SizeExceededError struct {
	Size    int64
	LimitMB int64
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("file too big (%.1fMB > %dMB)", float64(e.Size)/bytesPerMB, e.LimitMB)
}
