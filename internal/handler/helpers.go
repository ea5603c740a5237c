package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dev-shahrooz/Smart-Pricing/internal/apierror"
	"github.com/dev-shahrooz/Smart-Pricing/internal/engine"
	"github.com/dev-shahrooz/Smart-Pricing/internal/ingest"
	"github.com/dev-shahrooz/Smart-Pricing/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails, so the
// caller can return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError translates the engine/service error taxonomy into HTTP
// responses. Every hard failure carries a structured reason and internals are
// never leaked to the client.
func respondServiceError(c *gin.Context, err error) {
	var inputErr *engine.InputValidationError
	var insufficientErr *engine.InsufficientDataError
	var formatErr *ingest.FormatError

	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, apierror.New(inputErr.Error()))
	case errors.As(err, &insufficientErr):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(insufficientErr.Error()))
	case errors.Is(err, engine.ErrNoEstimate):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoBom):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, ingest.ErrTooManyRows):
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New(err.Error()))
	case errors.As(err, &formatErr):
		c.JSON(http.StatusBadRequest, apierror.New(formatErr.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("not found"))
	default:
		// Unexpected: hand to the error middleware, respond generically.
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
