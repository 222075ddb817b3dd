package adaptive

import "errors"

// Sentinel errors for the adaptive package.
// Use errors.Is to check: errors.Is(err, adaptive.ErrNoCandidates)
var (
	ErrNoCandidates         = errors.New("adaptive: no candidate items")
	ErrNegativeResponseTime = errors.New("adaptive: negative response time")
	ErrEmptyItemID          = errors.New("adaptive: empty item id")
	ErrInvalidConfig        = errors.New("adaptive: config out of bounds")
)
