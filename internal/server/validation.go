package server

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerValidatorsOnce sync.Once

// registerValidators teaches gin's validator about decimal amounts and makes
// it report JSON field names.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("decimal_gt0", decimalGreaterThanZero)
		_ = v.RegisterValidation("decimal_gte0", decimalNotNegative)
	})
}

// decimalValue exposes a decimal to validator as its string form so the
// custom rules below can parse it exactly.
func decimalValue(field reflect.Value) interface{} {
	if value, ok := field.Interface().(decimal.Decimal); ok {
		return value.String()
	}
	return nil
}

func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	value, ok := fieldDecimal(fl)
	return ok && value.IsPositive()
}

func decimalNotNegative(fl validator.FieldLevel) bool {
	value, ok := fieldDecimal(fl)
	return ok && !value.IsNegative()
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return decimal.Decimal{}, false
	}
	value, err := decimal.NewFromString(field.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}
