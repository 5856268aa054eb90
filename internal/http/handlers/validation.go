// README: Custom binding tags for request structs.
package handlers

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidations adds the lat and lng tags to gin's validator.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground validator")
	}
	var err error
	registerOnce.Do(func() {
		if err = v.RegisterValidation("lat", validateLat); err != nil {
			return
		}
		err = v.RegisterValidation("lng", validateLng)
	})
	return err
}

func validateLat(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90.0 && lat <= 90.0
}

func validateLng(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= -180.0 && lng <= 180.0
}
