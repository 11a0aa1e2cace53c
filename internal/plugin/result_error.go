package plugin

import (
	"fmt"

	"github.com/mlaporte/confset/internal/model"
)

// ResultError lets a unit processor fail with fully classified result
// information. The engine adopts the embedded record verbatim instead of
// synthesizing its own classification.
type ResultError struct {
	Info model.ResultInformation
}

// NewResultError constructs a ResultError.
func NewResultError(info model.ResultInformation) error {
	return &ResultError{Info: info}
}

func (e *ResultError) Error() string {
	if e == nil {
		return ""
	}
	if e.Info.Description != "" {
		return fmt.Sprintf("unit processor failed: %s: %s", e.Info.Code, e.Info.Description)
	}
	return fmt.Sprintf("unit processor failed: %s", e.Info.Code)
}
