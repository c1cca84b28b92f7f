// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
		_ = v.RegisterValidation("recurring_frequency", validateRecurringFrequency)
		_ = v.RegisterValidation("institutional_type", validateInstitutionalType)
		_ = v.RegisterValidation("recipient_type", validateRecipientType)
		_ = v.RegisterValidation("provider_code", validateProviderCode)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense", "transfer":
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monthly", "yearly":
		return true
	}
	return false
}

func validateRecurringFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "daily", "weekly", "monthly", "yearly":
		return true
	}
	return false
}

func validateInstitutionalType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pension", "insurance", "study_fund", "provident":
		return true
	}
	return false
}

func validateRecipientType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "tzedaka", "institution", "individual", "other":
		return true
	}
	return false
}

// validProviderCodes lists the open-banking providers the connect flow knows.
var validProviderCodes = map[string]bool{
	"PEPPER": true, "SALTEDGE": true, "MONO": true,
	"LEUMI": true, "HAPOALIM": true, "DISCOUNT": true,
	"MIZRAHI": true, "INTERNATIONAL": true, "JERUSALEM": true,
}

func validateProviderCode(fl validator.FieldLevel) bool {
	return validProviderCodes[fl.Field().String()]
}
