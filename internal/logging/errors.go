package logging

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrorType classifies failures by the stage that produced them.
type ErrorType string

const (
	ErrorTypeParse   ErrorType = "PARSE"
	ErrorTypeMatch   ErrorType = "MATCH"
	ErrorTypeRewrite ErrorType = "REWRITE"
	ErrorTypeScan    ErrorType = "SCAN"
	ErrorTypeIO      ErrorType = "IO"
	ErrorTypeReport  ErrorType = "REPORT"
)

// CodemodError is an error with a type and structured context.
type CodemodError struct {
	Type    ErrorType
	Message string
	Err     error
	Fields  map[string]interface{}
}

func (e *CodemodError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
}

func (e *CodemodError) Unwrap() error {
	return e.Err
}

// NewError builds a CodemodError.
func NewError(errType ErrorType, message string, err error, fields map[string]interface{}) *CodemodError {
	return &CodemodError{
		Type:    errType,
		Message: message,
		Err:     err,
		Fields:  fields,
	}
}

// TypeOf returns the type of the first CodemodError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var ce *CodemodError
	if errors.As(err, &ce) {
		return ce.Type, true
	}

	return "", false
}

// LogError writes err as one error event. CodemodError fields become event
// fields.
func LogError(logger zerolog.Logger, err error) {
	var ce *CodemodError
	if !errors.As(err, &ce) {
		logger.Error().Err(err).Msg(err.Error())

		return
	}

	event := logger.Error().Err(ce.Err).
		Str("error_type", string(ce.Type))

	for k, v := range ce.Fields {
		event = event.Interface(k, v)
	}

	event.Msg(ce.Message)
}
