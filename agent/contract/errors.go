package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrFinalized       = errors.New("record already finalized")
	ErrPersistence     = errors.New("persistence failed")
)
