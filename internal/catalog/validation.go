package catalog

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one invalid field of a product request.
type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationErrors is returned before any mutation when input is rejected.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Description
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "finite":
		return fmt.Sprintf("%s must be a finite number", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// validate checks in and the image source. requireImage is set on create.
func (s *Service) validate(in ProductInput, img *Upload, requireImage bool) error {
	errs := ValidationErrors{}

	if err := s.validator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate product: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, FieldError{Field: fe.Field(), Description: describe(fe)})
		}
	}

	switch {
	case img != nil && in.ImageURL != "":
		errs = append(errs, FieldError{Field: "image_url", Description: "provide either image_url or an image file, not both"})
	case requireImage && img == nil && in.ImageURL == "":
		errs = append(errs, FieldError{Field: "image_url", Description: "image_url or an image file is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
