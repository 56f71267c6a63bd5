package services

import "errors"

// Stage-scoped errors. Reasoning failures surface as one of these only
// after the retry budget is exhausted; the session manager decides which
// are fatal to the session.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrExtraction   = errors.New("resume extraction failed")
	ErrFit          = errors.New("fit evaluation failed")
	ErrDebateTurn   = errors.New("debate turn failed")
	ErrDebate       = errors.New("debate failed")
	ErrDecision     = errors.New("decision synthesis failed")
	ErrTimeout      = errors.New("session budget exceeded")
	ErrCancelled    = errors.New("session cancelled")
)
