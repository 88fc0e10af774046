package iban

import (
	"encoding/json"
	"strings"
)

// BankAccountIdentifier is the inbound request body.
type BankAccountIdentifier struct {
	SortCode      string `json:"sortCode" validate:"required"`
	AccountNumber string `json:"accountNumber" validate:"required"`
}

// CleanSortCode returns the sort code without its dash separators.
func (a BankAccountIdentifier) CleanSortCode() string {
	return strings.ReplaceAll(a.SortCode, "-", "")
}

// Result is the normalized IBAN calculation. Every key is always present.
type Result struct {
	Success       bool   `json:"success"`
	IBAN          string `json:"iban"`
	Bank          string `json:"bank"`
	BIC           string `json:"bic"`
	Branch        string `json:"branch"`
	SortCode      string `json:"sortCode"`
	AccountNumber string `json:"accountNumber"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Zip           string `json:"zip"`
	Phone         string `json:"phone"`
	Country       string `json:"country"`
}

const notAvailable = "N/A"

// Lookup is a decoded upstream response. Fields keeps every upstream key so
// the raw payload can be echoed back when no IBAN was produced.
type Lookup struct {
	Raw    json.RawMessage
	Fields map[string]interface{}
}

// field returns the upstream value for key as a string. Absent, null, empty,
// false and zero values all read as "". Objects and arrays read as their
// compact JSON text.
func (l *Lookup) field(key string) string {
	switch v := l.Fields[key].(type) {
	case map[string]interface{}, []interface{}:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	case string:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return ""
		}
		return v.String()
	case bool:
		if v {
			return "true"
		}
	}

	return ""
}

func (l *Lookup) fieldOr(key, fallback string) string {
	if v := l.field(key); v != "" {
		return v
	}

	return fallback
}

// Normalize fills the result from the lookup, defaulting every missing field.
// sortCode and accountNumber fall back to the cleaned request values.
func (l *Lookup) Normalize(sortCode, accountNumber string) Result {
	return Result{
		Success:       true,
		IBAN:          l.field("iban"),
		Bank:          l.fieldOr("bank", "UK Bank"),
		BIC:           l.fieldOr("bic", notAvailable),
		Branch:        l.fieldOr("branch", notAvailable),
		SortCode:      l.fieldOr("sort_code", sortCode),
		AccountNumber: l.fieldOr("account", accountNumber),
		Address:       l.fieldOr("address", notAvailable),
		City:          l.fieldOr("city", notAvailable),
		Zip:           l.fieldOr("zip", notAvailable),
		Phone:         l.fieldOr("phone", notAvailable),
		Country:       l.fieldOr("country", "GB"),
	}
}
