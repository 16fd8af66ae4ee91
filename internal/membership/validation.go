package membership

import (
	"strings"

	"club-la-victoria/internal/common/errors"
	"club-la-victoria/internal/common/validation"
)

const (
	minIDLength = 7
	maxIDLength = 8

	MsgIDTooShort = "El DNI debe tener al menos 7 dígitos"
	MsgIDTooLong  = "El DNI debe tener máximo 8 dígitos"
	MsgIDDigits   = "El DNI solo debe contener números"
)

// ValidateID trims raw and checks it is 7 or 8 ASCII digits. It is pure; the
// first failing check supplies the message.
func ValidateID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	n := len([]rune(id))

	switch {
	case n < minIDLength:
		return "", errors.NewInvalidMemberIDError(MsgIDTooShort, raw)
	case n > maxIDLength:
		return "", errors.NewInvalidMemberIDError(MsgIDTooLong, raw)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", errors.NewInvalidMemberIDError(MsgIDDigits, raw)
		}
	}
	return id, nil
}

// GetInputSchema describes the body accepted by the dialogs. Format rules are
// left to ValidateID so the user sees its messages.
func GetInputSchema(requireActivity bool) validation.JSONSchema {
	schema := validation.JSONSchema{
		Type:     "object",
		Required: []string{"dni"},
		Properties: map[string]validation.Property{
			"dni": {
				Type:        "string",
				Description: "Member national ID",
				MaxLength:   validation.IntPtr(64),
			},
		},
		AdditionalProperties: false,
	}
	if requireActivity {
		schema.Required = append(schema.Required, "activity")
		schema.Properties["activity"] = validation.Property{
			Type:        "string",
			Description: "Activity being reserved",
			MinLength:   validation.IntPtr(1),
			MaxLength:   validation.IntPtr(120),
		}
	}
	return schema
}
