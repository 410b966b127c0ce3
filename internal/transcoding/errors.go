package transcoding

import "github.com/pkg/errors"

// Terminal error classes. Anything not matched here is treated as transient
// and retried up to the configured bound.
var (
	// ErrSourceUnavailable means the source object does not exist or access
	// to it was denied. Retrying cannot help.
	ErrSourceUnavailable = errors.New("source file unavailable")

	// ErrBadInput means the source object exists but is not a readable media
	// file (corrupt, truncated, wrong format).
	ErrBadInput = errors.New("source file is not valid media")

	// ErrAllVariantsFailed means every rendition encode failed, so there is
	// no output to publish.
	ErrAllVariantsFailed = errors.New("all encode variants failed")

	// ErrJobNotFound is surfaced by the API as 404.
	ErrJobNotFound = errors.New("job not found")
)

// IsTerminal reports whether err should fail the job immediately instead of
// being retried.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) ||
		errors.Is(err, ErrBadInput) ||
		errors.Is(err, ErrAllVariantsFailed)
}
