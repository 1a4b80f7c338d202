package services

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// onlyDigits reports whether s is a non-empty run of ASCII digits.
func onlyDigits(s string) bool {
	return digitsOnly.MatchString(s)
}

// validationMessages turns validator field errors into the Spanish messages
// the frontend shows. Lookup is "Field.tag" first, then "Field". validator
// already collects one failure per bad field, which keeps the batched,
// never-fail-fast contract.
func validationMessages(err error, messages map[string]string) []string {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"Datos inválidos"}
	}
	out := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		msg := messages[fe.Field()+"."+fe.Tag()]
		if msg == "" {
			msg = messages[fe.Field()]
		}
		if msg == "" {
			msg = fmt.Sprintf("Campo '%s' inválido", fe.Field())
		}
		out = append(out, msg)
	}
	return out
}
