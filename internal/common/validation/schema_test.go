package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dniSchema = JSONSchema{
	Type: "object",
	Properties: map[string]Property{
		"dni":      {Type: "string", MaxLength: IntPtr(32)},
		"activity": {Type: "string", MinLength: IntPtr(1)},
	},
	Required: []string{"dni"},
}

func TestValidate(t *testing.T) {
	result, err := Validate(map[string]interface{}{"dni": "12345678"}, dniSchema)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = Validate(map[string]interface{}{"activity": "Tenis"}, dniSchema)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Summary())

	result, err = Validate(map[string]interface{}{"dni": "1", "extra": true}, dniSchema)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("(root)"))
}

func TestValidateJSON(t *testing.T) {
	result, err := ValidateJSON([]byte(`{"dni": 12345678}`), dniSchema)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.GetErrorsForField("dni"))

	result, err = ValidateJSON([]byte(`{not json`), dniSchema)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "INVALID_JSON", result.Errors[0].Code)
}

func TestValidateURL(t *testing.T) {
	assert.True(t, ValidateURL("https://www.clublavictoria.com.ar/reservas"))
	assert.False(t, ValidateURL("ftp//nope"))
}
