package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ProviderErrorCategory string

const (
	ProviderTimeout  ProviderErrorCategory = "timeout"
	ProviderOutage   ProviderErrorCategory = "provider_outage"
	ProviderBadData  ProviderErrorCategory = "bad_data"
	ProviderInternal ProviderErrorCategory = "internal"
)

// ProviderError is a normalized failure of the upstream lookup call.
// Raw holds whatever payload the provider returned, for diagnosis.
type ProviderError struct {
	Category   ProviderErrorCategory
	Status     int
	Message    string
	Raw        json.RawMessage
	Underlying error
}

func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider [%s]: %s", e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

func ProviderErrorCategoryOf(err error) ProviderErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ProviderInternal
}
