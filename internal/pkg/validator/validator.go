package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

// Allowed values for the custom tags.
var (
	HairTypes           = []string{"straight", "wavy", "curly", "coily", "thinning"}
	TreatmentCategories = []string{"topical", "supplement", "lifestyle", "professional"}
	Levels              = []string{"low", "medium", "high"}
	CaptureEvents       = []string{"start", "next", "skip", "back", "submit", "retry", "edit_photos", "reset"}
	CaptureMethods      = []string{"camera", "gallery", "file"}
)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerOneOf("hair_type", HairTypes)
	registerOneOf("treatment_category", TreatmentCategories)
	registerOneOf("level", Levels)
	registerOneOf("capture_event", CaptureEvents)
	registerOneOf("capture_method", CaptureMethods)
}

// registerOneOf registers a tag that accepts an empty string or one of values.
func registerOneOf(tag string, values []string) {
	_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		if v == "" {
			return true
		}
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	})
}

var customMessages = map[string]string{
	"hair_type":          "Invalid hair type. Must be: " + strings.Join(HairTypes, ", "),
	"treatment_category": "Invalid category. Must be: " + strings.Join(TreatmentCategories, ", "),
	"level":              "Invalid level. Must be: low, medium, or high",
	"capture_event":      "Invalid event. Must be: " + strings.Join(CaptureEvents, ", "),
	"capture_method":     "Invalid method. Must be: camera, gallery, or file",
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, fe := range validationErrors {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + fe.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + fe.Param()
		case "lte":
			errors[field] = "Value must be at most " + fe.Param()
		case "url":
			errors[field] = "Invalid URL format"
		default:
			if msg, ok := customMessages[fe.Tag()]; ok {
				errors[field] = msg
			} else {
				errors[field] = "Invalid value"
			}
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
