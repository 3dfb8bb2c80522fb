// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"spendwise/internal/money"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("dateonly", validateDateOnly)
	}
}

// validateMoney accepts positive decimal amounts like "12.50" or "12,50".
func validateMoney(fl validator.FieldLevel) bool {
	_, err := money.ParseToCents(fl.Field().String())
	return err == nil
}

// validateDateOnly accepts dates in YYYY-MM-DD form.
func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}
