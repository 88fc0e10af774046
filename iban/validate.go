package iban

import (
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/prognoshealth/paymentproxy/proxy"
)

const (
	CategoryInvalidSortCode      = "Invalid sort code format"
	CategoryInvalidAccountNumber = "Invalid account number format"

	sortCodeTag      = "sortcode"
	accountNumberTag = "accountnumber"
)

var (
	sortCodePattern      = regexp.MustCompile(`^[0-9]{6}$`)
	accountNumberPattern = regexp.MustCompile(`^[0-9]{6,8}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()

	rules := map[string]*regexp.Regexp{
		sortCodeTag:      sortCodePattern,
		accountNumberTag: accountNumberPattern,
	}

	for tag, rx := range rules {
		rx := rx
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rx.MatchString(fl.Field().String())
		})
		if err != nil {
			panic(err)
		}
	}

	return v
}

// Validate checks presence first, then the cleaned sort code, then the
// account number, returning the first failure.
func (a BankAccountIdentifier) Validate() *proxy.HTTPError {
	if err := validate.Struct(a); err != nil {
		return proxy.NewMissingParametersError("Both sortCode and accountNumber are required")
	}

	if err := validate.Var(a.CleanSortCode(), sortCodeTag); err != nil {
		return proxy.NewHTTPError(http.StatusBadRequest, CategoryInvalidSortCode, "Sort code must be 6 digits (XX-XX-XX or XXXXXX)")
	}

	if err := validate.Var(a.AccountNumber, accountNumberTag); err != nil {
		return proxy.NewHTTPError(http.StatusBadRequest, CategoryInvalidAccountNumber, "Account number must be 6-8 digits")
	}

	return nil
}
