package validation

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"min=2"`
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"pwd"`
	Role     string `json:"role" validate:"role"`
}

func TestStructValid(t *testing.T) {
	err := Struct(signup{Name: "Ana", Email: "ana@test.com", Password: "secret1", Role: "cliente"})
	assert.NoError(t, err)
}

func TestMessageListsEveryViolationInOrder(t *testing.T) {
	err := Struct(signup{Name: "A", Email: "nope", Password: "123", Role: "admin"})
	require.Error(t, err)

	assert.Equal(t,
		"name must be at least 2 characters long; "+
			"email must be a valid email; "+
			"password must be at least 6 characters long; "+
			"role must be 'cliente' or 'colaborador'",
		Message(err))
}

func TestRoleCheckUsesAccountRoles(t *testing.T) {
	base := signup{Name: "Ana", Email: "ana@test.com", Password: "secret1"}
	for _, role := range []string{"cliente", "colaborador"} {
		base.Role = role
		assert.NoError(t, Struct(base), role)
	}
	base.Role = "Cliente"
	assert.Equal(t, "role must be 'cliente' or 'colaborador'", Message(Struct(base)))
}

func TestPasswordUpperBound(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'x'
	}
	err := Struct(signup{Name: "Ana", Email: "ana@test.com", Password: string(long), Role: "colaborador"})
	require.Error(t, err)
	assert.Equal(t, "password must be at most 72 characters long", Message(err))
}

func TestToDetails(t *testing.T) {
	err := Struct(signup{Name: "Ana", Email: "bad", Password: "secret1", Role: "cliente"})
	assert.Equal(t, map[string]string{"email": "must be a valid email"}, ToDetails(err))

	var v map[string]any
	jsonErr := json.Unmarshal([]byte("{"), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(jsonErr))
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(io.ErrUnexpectedEOF))
	assert.Nil(t, ToDetails(nil))
}
