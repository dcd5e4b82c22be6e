package config

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/roach88/worldgraph/internal/felt"
)

var (
	once sync.Once
	v    *validator.Validate
)

// validateFelt accepts any string that is the canonical form of a field
// element. Felt fields reach it through their string representation.
func validateFelt(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	canonical, err := felt.Canonical(s)
	return err == nil && canonical == s
}

// Validator returns a singleton that can be used to validate configuration.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()

		if err := v.RegisterValidation("felt", validateFelt); err != nil {
			panic("failed to register validation: " + err.Error())
		}

		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch f := field.Interface().(type) {
			case felt.Felt:
				return f.String()
			case *felt.Felt:
				return f.String()
			}
			panic("not a felt")
		}, felt.Felt{}, &felt.Felt{})
	})
	return v
}
