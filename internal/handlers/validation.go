package handlers

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3,5}$`)
	registerOnce        sync.Once
)

// validateCurrencyCode checks the shape of a currency code. Whether the code is
// supported is decided by the services.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodePattern.MatchString(fl.Field().String())
}

// registerCustomValidations adds the rules the DTO binding tags rely on.
func registerCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("currency", validateCurrencyCode); err != nil {
		return fmt.Errorf("failed to register currency validation: %w", err)
	}
	return nil
}

// RegisterValidators installs the custom binding rules on gin's validator engine.
// It panics when a rule cannot be registered, since binding would panic on the unknown tag later.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding engine is not a go-playground validator")
		}
		if err := registerCustomValidations(v); err != nil {
			panic(err)
		}
	})
}
