package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"reservas/pkg/logger"
)

var orderRefRegex = regexp.MustCompile(`^(gid://shopify/Order/)?\d+$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// attendanceInput is what SetAttendance must receive before any upstream
// call is made. The user comes from the session, not the request body.
type attendanceInput struct {
	OrderRef string `validate:"required,order_ref"`
	SlotKey  string `validate:"required"`
	User     string `validate:"required"`
}

type AttendanceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAttendanceValidator(log *logger.Logger) *AttendanceValidator {
	v := validator.New()

	if err := v.RegisterValidation("order_ref", validateOrderRef); err != nil {
		log.Fatal("Failed to register 'order_ref' validator",
			"error", err,
		)
	}

	return &AttendanceValidator{
		validate: v,
		logger:   log,
	}
}

func validateOrderRef(fl validator.FieldLevel) bool {
	return orderRefRegex.MatchString(fl.Field().String())
}

func (v *AttendanceValidator) Validate(orderRef, slotKey, user string) error {
	input := attendanceInput{
		OrderRef: orderRef,
		SlotKey:  slotKey,
		User:     user,
	}

	if err := v.validate.Struct(&input); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// The slot key must be the exact start instant of a slot; anything that
	// does not parse could never match a marker.
	if _, err := time.Parse(time.RFC3339, slotKey); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "SlotKey",
				Message: "slot_key must be an RFC3339 timestamp",
			},
		}
	}

	return nil
}

func (v *AttendanceValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "order_ref":
			message = fmt.Sprintf("%s must be a numeric order id or a gid://shopify/Order/<id> ref", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
