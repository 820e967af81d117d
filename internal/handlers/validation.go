package handlers

import (
	"sync"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the currency_code tag to gin's validator engine.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("currency_code", validCurrencyCode)
	})
}

func validCurrencyCode(fl validator.FieldLevel) bool {
	_, err := domain.NormalizeCurrencyCode(fl.Field().String())
	return err == nil
}
