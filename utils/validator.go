package utils

import (
	"math"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// priceValidator accepts non negative amounts with at most two decimals.
var priceValidator validator.Func = func(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

// Validator returns gin's binding engine with the custom tags registered.
func Validator() *validator.Validate {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		panic("gin binding engine is not go-playground/validator")
	}
	registerOnce.Do(func() {
		if err := v.RegisterValidation("price", priceValidator); err != nil {
			panic(err)
		}
	})
	return v
}
