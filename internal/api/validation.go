package api

import (
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/roach88/flaggraph/internal/model"
)

// MaxFlagNameBytes bounds flag names accepted over HTTP.
const MaxFlagNameBytes = 128

var registerOnce sync.Once

// registerValidators adds the "flagname" tag to gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("flagname", validateFlagName)
		}
	})
}

// validateFlagName accepts names that are non-empty after normalization,
// at most MaxFlagNameBytes long and free of control characters.
func validateFlagName(fl validator.FieldLevel) bool {
	name := model.NormalizeName(fl.Field().String())
	if name == "" || len(name) > MaxFlagNameBytes {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
