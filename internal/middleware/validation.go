package middleware

import (
	"errors"

	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

const validatedBodyKey = "validatedBody"

// ValidateBody parses the request body into a fresh T, validates it and
// stores it for the handler. Read it back with Body.
func ValidateBody[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dest := new(T)
		if err := c.BodyParser(dest); err != nil {
			return utils.ErrorWithCode(c, "Invalid request body", "INVALID_INPUT", fiber.StatusBadRequest)
		}

		if err := ValidateStruct(dest); err != nil {
			return utils.ErrorWithCode(c, err.Error(), "INVALID_INPUT", fiber.StatusBadRequest)
		}

		c.Locals(validatedBodyKey, dest)
		return c.Next()
	}
}

// Body returns the request body stored by ValidateBody[T].
func Body[T any](c *fiber.Ctx) *T {
	dest, _ := c.Locals(validatedBodyKey).(*T)
	if dest == nil {
		dest = new(T)
	}
	return dest
}

// ValidateStruct runs the validator and turns the first failure into a
// readable message.
func ValidateStruct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errors.New("Validation failed")
	}
	firstError := validationErrors[0]

	var errorMessage string
	switch firstError.Tag() {
	case "required":
		errorMessage = firstError.Field() + " is required"
	case "email":
		errorMessage = "Invalid email format"
	case "min":
		errorMessage = firstError.Field() + " is too short"
	case "max":
		errorMessage = firstError.Field() + " is too long"
	case "uuid":
		errorMessage = "Invalid UUID format"
	case "oneof":
		errorMessage = firstError.Field() + " must be one of " + firstError.Param()
	default:
		errorMessage = "Validation failed for " + firstError.Field()
	}
	return errors.New(errorMessage)
}
