package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrSchema marks a response that decoded but does not match its schema.
var ErrSchema = errors.New("schema mismatch")

var validate = validator.New(validator.WithRequiredStructEnabled())

type checker interface {
	Check() error
}

// Validate runs struct tags, then the value's own Check when it has one.
// Slices of structs are validated element by element.
func Validate(v any) error {
	if err := structOrSlice(v); err != nil {
		return err
	}
	if c, ok := v.(checker); ok {
		if err := c.Check(); err != nil {
			return fmt.Errorf("%w: %w", ErrSchema, err)
		}
	}
	return nil
}

func structOrSlice(v any) error {
	var err error
	switch t := v.(type) {
	case *[]TypeStats:
		err = validateEach(*t)
	case *[]DailyStats:
		err = validateEach(*t)
	case *[]FraudByType:
		err = validateEach(*t)
	case *[]TopCustomer:
		err = validateEach(*t)
	default:
		err = validate.Struct(v)
	}
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrSchema, strings.Join(fields, "; "))
	}
	return fmt.Errorf("%w: %w", ErrSchema, err)
}

func validateEach[T any](items []T) error {
	for i := range items {
		if err := validate.Struct(&items[i]); err != nil {
			return err
		}
	}
	return nil
}
