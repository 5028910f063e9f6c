package pipeline

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Pipeline steps reported through ProgressEvent.Step
const (
	StepRouting    = "routing"
	StepProfile    = "profile"
	StepCriteria   = "criteria"
	StepParameters = "parameters"
	StepSearch     = "search"
	StepFormat     = "format"
	StepComplete   = "complete"
)

// ProgressEvent represents a progress update during a search
type ProgressEvent struct {
	Step      string `json:"step"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// emitProgress calls the progress callback if configured. A panicking callback is logged and ignored.
func emitProgress(cb ProgressCallback, logger zerolog.Logger, requestID, step, message string, content any) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Str("step", step).Str("panic", fmt.Sprint(r)).Msg("progress callback panicked")
		}
	}()
	cb(ProgressEvent{
		Step:      step,
		Message:   message,
		RequestID: requestID,
		Content:   content,
	})
}
