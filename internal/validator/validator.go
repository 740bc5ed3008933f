package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iiuc-platform/interview-service/internal/models"
)

// Validator wraps struct-tag validation with the service's custom rules.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new validator instance with all custom rules registered.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)
	return &Validator{structValidator: structValidator}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.structValidator.Var(field, tag)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("interview_status", validateInterviewStatus)
	validate.RegisterValidation("violation_type", validateViolationType)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateInterviewStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.InterviewStatus{
		models.InterviewScheduled,
		models.InterviewInProgress,
		models.InterviewCompleted,
		models.InterviewCancelled,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validateViolationType(fl validator.FieldLevel) bool {
	validTypes := []models.ViolationType{
		models.ViolationTabSwitch,
		models.ViolationFullscreenExit,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}
