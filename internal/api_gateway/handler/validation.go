package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smb-finance-ledger/internal/domain/ledger"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

const dateLayout = "2006-01-02"

// RegisterValidators installs the ledger binding rules on gin's validator.
// Field names in errors follow the json tag.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	if err := v.RegisterValidation("decimal_gt0", decimalGreaterThanZero); err != nil {
		return fmt.Errorf("failed to register decimal_gt0: %w", err)
	}
	if err := v.RegisterValidation("iso_date", isoDate); err != nil {
		return fmt.Errorf("failed to register iso_date: %w", err)
	}
	return nil
}

// decimalGreaterThanZero accepts a positive decimal string such as "1000.00"
// that fits the ledger amount column
func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	str := fl.Field().String()
	if str == "" {
		return true
	}
	d, err := decimal.NewFromString(str)
	return err == nil && d.IsPositive() && ledger.AmountFits(d)
}

func isoDate(fl validator.FieldLevel) bool {
	str := fl.Field().String()
	if str == "" {
		return true
	}
	_, err := time.Parse(dateLayout, str)
	return err == nil
}

// bindingError converts a gin binding failure into a ValidationError when
// the validator produced it, or a plain message otherwise
func bindingError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return shared.NewValidationError("body", "malformed request: "+err.Error())
	}

	var out shared.ValidationError
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a UUID"
	case "decimal_gt0":
		return "must be a decimal greater than zero with at most 2 decimal places, up to 999999999999.99"
	case "iso_date":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gt", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

// mustUUID and mustDecimal are only called on values the binding rules already accepted
func mustUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func mustDecimal(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
