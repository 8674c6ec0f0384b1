package services

import (
	"errors"
	"fmt"

	"github.com/yungbote/neurobridge-tutor/internal/learning/bandit"
)

// ErrNoArmAvailable means no unlocked, eligible arm exists in scope.
var ErrNoArmAvailable = bandit.ErrNoArmAvailable

// ErrStaleWrite is returned when another decision for the same learner
// committed between our read and our write. Callers retry.
var ErrStaleWrite = errors.New("stale write")

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrLearnerBusy    = errors.New("learner busy")
	ErrTopicNotFound  = errors.New("topic not found")
	ErrLearnerMissing = errors.New("learner id missing")
)

func invalidField(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}
