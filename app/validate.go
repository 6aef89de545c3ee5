package app

import (
	"fmt"

	"Gin_postgres_redis_inventory/grid"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags:
//
//	celllabel  a warehouse cell label such as "B03"
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("celllabel", func(fl validator.FieldLevel) bool {
		_, _, err := grid.DecodeLabel(fl.Field().String())
		return err == nil
	})
}
