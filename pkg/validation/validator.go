package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var msisdnRe = regexp.MustCompile(`^(\+?254|0)[17]\d{8}$`)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("msisdn", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		})
		// Aliases for common semantics
		v.RegisterAlias("pwd", "min=8") // password minimum length
		v.RegisterAlias("phone", "msisdn")
		v.RegisterAlias("ymd", "datetime=2006-01-02")
		v.RegisterAlias("selfrole", "oneof=family vendor")
		v.RegisterAlias("paymethod", "oneof=mpesa card bank")
		v.RegisterAlias("visibility", "oneof=public private family_only")
		v.RegisterAlias("vendorcat", "oneof=funeral_home casket florist catering transport venue legal other")
	}
}

// ValidPhone applies the phone alias outside of request binding.
func ValidPhone(p string) bool {
	return msisdnRe.MatchString(strings.ReplaceAll(p, " ", ""))
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
// It covers all validator.v10 tags to provide stable, human-friendly messages.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	// Validation errors from validator.v10
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			out[field] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	// ===== PRESENCE/REQUIRED VALIDATIONS =====
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + param + " is present"
	case "required_with_all":
		return "is required when all of " + param + " are present"
	case "required_without":
		return "is required when " + param + " is not present"
	case "required_without_all":
		return "is required when none of " + param + " are present"
	case "required_if":
		return "is required if " + param
	case "required_unless":
		return "is required unless " + param
	case "omitempty":
		return "can be omitted"

	// ===== STRING FORMAT VALIDATIONS =====
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "uri":
		return "must be a valid URI"
	// ===== UUID/ULID VALIDATIONS =====
	case "uuid":
		return "must be a valid UUID"
	// ===== PHONE NUMBER VALIDATIONS =====
	case "e164":
		return "must be a valid phone number"

	// ===== CHARACTER SET VALIDATIONS =====
	case "alpha":
		return "must contain alphabetic characters only"
	case "alphanum":
		return "must contain alphanumeric characters only"
	case "alphanumunicode":
		return "must contain alphanumeric (unicode) characters only"
	case "alphaunicode":
		return "must contain alphabetic (unicode) characters only"
	case "ascii":
		return "must contain ASCII characters only"
	case "printascii":
		return "must contain printable ASCII characters only"
	case "multibyte":
		return "must contain multibyte characters"
	case "lowercase":
		return "must be in lowercase"
	case "uppercase":
		return "must be in uppercase"

	// ===== STRING CONTENT VALIDATIONS =====
	case "contains":
		return "must contain '" + param + "'"
	case "containsany":
		return "must contain at least one of '" + param + "'"
	case "containsrune":
		return "must contain the rune '" + param + "'"
	case "excludes":
		return "must not contain '" + param + "'"
	case "excludesall":
		return "must not contain any of '" + param + "'"
	case "excludesrune":
		return "must not contain the rune '" + param + "'"
	case "startswith":
		return "must start with '" + param + "'"
	case "endswith":
		return "must end with '" + param + "'"

	// ===== SIZE/LENGTH VALIDATIONS =====
	case "len":
		if param != "" {
			return fmt.Sprintf("must be exactly %s characters long", param)
		}
		return "invalid length"
	case "min":
		if param != "" {
			if isNumberKind(kind) {
				return "must be at least " + param
			}
			return "must be at least " + param + " characters long"
		}
		return "too small"
	case "max":
		if param != "" {
			if isNumberKind(kind) {
				return "must be at most " + param
			}
			return "must be at most " + param + " characters long"
		}
		return "too large"

	// ===== NUMERIC COMPARISON VALIDATIONS =====
	case "eq":
		if param != "" {
			return "must be equal to " + param
		}
		return "must be equal"
	case "ne":
		if param != "" {
			return "must not be equal to " + param
		}
		return "must not be equal"
	case "lt":
		if param != "" {
			return "must be less than " + param
		}
		return "must be less than"
	case "lte":
		if param != "" {
			return "must be less than or equal to " + param
		}
		return "must be less than or equal"
	case "gt":
		if param != "" {
			return "must be greater than " + param
		}
		return "must be greater than"
	case "gte":
		if param != "" {
			return "must be greater than or equal to " + param
		}
		return "must be greater than or equal"

	// ===== FIELD COMPARISON VALIDATIONS =====
	case "eqfield":
		return "must be equal to " + param + " field"
	case "nefield":
		return "must not be equal to " + param + " field"
	case "ltfield":
		return "must be less than " + param + " field"
	case "ltefield":
		return "must be less than or equal to " + param + " field"
	case "gtfield":
		return "must be greater than " + param + " field"
	case "gtefield":
		return "must be greater than or equal to " + param + " field"

	// ===== INCLUSION/EXCLUSION VALIDATIONS =====
	case "oneof":
		return "must be one of: " + strings.Join(splitParams(param), ", ")

	// ===== NUMERIC TYPE VALIDATIONS =====
	case "number":
		return "must be a valid number"
	case "numeric":
		return "must be numeric"

	// ===== DATE/TIME VALIDATIONS =====
	case "datetime":
		if param != "" {
			return "must match datetime format: " + param
		}
		return "must be a valid datetime"
	case "timezone":
		return "must be a valid timezone"

	// ===== COLLECTION/SLICE VALIDATIONS =====
	case "unique":
		return "must contain unique items"
	case "dive":
		return "array validation failed"

	// ===== BOOLEAN VALIDATIONS =====
	case "boolean":
		return "must be a boolean value"

	// ===== JSON VALIDATIONS =====
	case "json":
		return "must be valid JSON"

	// ===== CUSTOM ALIASES =====
	case "pwd":
		return "min length 8"
	case "phone", "msisdn":
		return "must be a valid Kenyan phone number"
	case "ymd":
		return "must be a date in YYYY-MM-DD format"
	case "selfrole", "paymethod", "visibility", "vendorcat":
		return "must be one of: " + strings.Join(splitParams(aliasParams[tag]), ", ")

	// ===== DEFAULT FALLBACK =====
	default:
		// For unknown tags, try to provide a meaningful message
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

// Helper functions
func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func splitParams(p string) []string {
	if p == "" {
		return nil
	}
	// Handle space-separated values
	parts := strings.Fields(p)
	if len(parts) > 1 {
		return parts
	}
	// Handle comma-separated values
	if strings.Contains(p, ",") {
		return strings.Split(p, ",")
	}
	// Handle pipe-separated values
	if strings.Contains(p, "|") {
		return strings.Split(p, "|")
	}
	// Single value
	return []string{p}
}

var aliasParams = map[string]string{
	"selfrole":   "family vendor",
	"paymethod":  "mpesa card bank",
	"visibility": "public private family_only",
	"vendorcat":  "funeral_home casket florist catering transport venue legal other",
}
