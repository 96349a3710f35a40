package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

const textCodeInvalidResetTransition = "INVALID_RESET_STAGE_TRANSITION"

// ErrInvalidResetTransition is returned when a reset attempt tries to move
// between stages the flow does not allow.
var ErrInvalidResetTransition = goerrors.New("invalid reset stage transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidResetTransition).
	WithCode(goerrors.CodeBadRequest)

// ResetStage is a stage in a password reset attempt
type ResetStage string

const (
	// ResetStageRequested is the initial stage, a reset was asked for
	ResetStageRequested ResetStage = "requested"
	// ResetStageTokenIssued means a token was encoded and handed off
	ResetStageTokenIssued ResetStage = "token-issued"
	// ResetStageTokenValidated means the token passed a validity check
	ResetStageTokenValidated ResetStage = "token-validated"
	// ResetStagePasswordChanged is the terminal success stage
	ResetStagePasswordChanged ResetStage = "password-changed"
	// ResetStageExpired is the terminal stage for out-of-window tokens
	ResetStageExpired ResetStage = "expired"
	// ResetStageRejected is the terminal stage for everything else
	ResetStageRejected ResetStage = "rejected"
)

var resetTransitions = map[ResetStage][]ResetStage{
	ResetStageRequested:      {ResetStageTokenIssued, ResetStageRejected},
	ResetStageTokenIssued:    {ResetStageTokenValidated, ResetStageExpired, ResetStageRejected},
	ResetStageTokenValidated: {ResetStagePasswordChanged, ResetStageExpired, ResetStageRejected},
}

// CanTransition reports whether the flow allows moving to the target stage.
func (s ResetStage) CanTransition(target ResetStage) bool {
	for _, allowed := range resetTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Terminal reports whether the stage ends the attempt.
func (s ResetStage) Terminal() bool {
	switch s {
	case ResetStagePasswordChanged, ResetStageExpired, ResetStageRejected:
		return true
	}
	return false
}

// resetAttempt tracks the stage of one pass through the flow.
type resetAttempt struct {
	stage ResetStage
}

func newResetAttempt() *resetAttempt {
	return &resetAttempt{stage: ResetStageRequested}
}

func (a *resetAttempt) advance(target ResetStage) error {
	if !a.stage.CanTransition(target) {
		return goerrors.Wrap(ErrInvalidResetTransition, goerrors.CategoryValidation, "reset stage transition not allowed").
			WithTextCode(textCodeInvalidResetTransition).
			WithMetadata(map[string]any{
				"from": string(a.stage),
				"to":   string(target),
			})
	}
	a.stage = target
	return nil
}
