package app

import "errors"

// Generator errors. Both signal a constraint or configuration bug rather than a
// transient condition.
var ErrAttemptsExhausted = errors.New("sampling attempts exhausted")
var ErrInfeasible = errors.New("constraints cannot be satisfied for this draw")
var ErrInvalidStudyStart = errors.New("study start must be a Monday")
