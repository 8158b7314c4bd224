package common

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// ValidateStruct checks i against its `validate` tags with a shared validator.
func ValidateStruct(i any) error {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
	})
	return structValidator.Struct(i)
}

type GenericEchoValidator struct{}

func (gv *GenericEchoValidator) Validate(i any) error {
	if err := ValidateStruct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	return nil
}
