package models

import "fmt"

// Validator is implemented by stored values that can check their own shape.
// Values failing validation on read are treated as absent.
type Validator interface {
	Validate() error
}

// validateEach validates every element and reports the first failure with its index
func validateEach[T Validator](items []T) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
