package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator, safe for concurrent use.
var v = validator.New()

// Struct validates the given struct using its validate tags.
// Returns one error listing every failing field, or nil.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// Var validates a single named value against tag, e.g. Var("minHistory", n, "gte=0").
func Var(name string, value interface{}, tag string) error {
	err := v.Var(value, tag)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return err
	}
	return fmt.Errorf("field '%s' failed '%s'", name, ve[0].ActualTag())
}

func describe(fe validator.FieldError) string {
	// Drop the root struct name so nested fields read as "DynamoTables.Games".
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if fe.Param() != "" {
		return fmt.Sprintf("field '%s' failed '%s=%s'", ns, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("field '%s' failed '%s'", ns, fe.Tag())
}
