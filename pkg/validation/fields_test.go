package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckAllowedFields_AllAllowed(t *testing.T) {
	t.Parallel()

	p, err := DecodeUpdate([]byte(`{"description": "x", "completed": true}`))
	require.NoError(t, err)
	require.NoError(t, p.CheckAllowedFields("description", "completed"))
}

func TestCheckAllowedFields_RejectsWholesale(t *testing.T) {
	t.Parallel()

	p, err := DecodeUpdate([]byte(`{"description": "x", "owner": "other"}`))
	require.NoError(t, err)

	err = p.CheckAllowedFields("description", "completed")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidUpdateFields))
	require.Contains(t, err.Error(), "owner")
}

func TestCheckAllowedFields_EmptyPayload(t *testing.T) {
	t.Parallel()

	p, err := DecodeUpdate([]byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, p.CheckAllowedFields("description"))
}

func TestDecodeUpdate_NonObject(t *testing.T) {
	t.Parallel()

	_, err := DecodeUpdate([]byte(`[1,2,3]`))
	require.Error(t, err)
}

func TestUpdatePayload_Unmarshal(t *testing.T) {
	t.Parallel()

	p, err := DecodeUpdate([]byte(`{"age": 30, "name": "Ada"}`))
	require.NoError(t, err)

	require.True(t, p.Has("age"))
	require.False(t, p.Has("email"))

	var age int
	require.NoError(t, p.Unmarshal("age", &age))
	require.Equal(t, 30, age)

	var name string
	require.NoError(t, p.Unmarshal("name", &name))
	require.Equal(t, "Ada", name)

	// Absent fields leave the destination untouched.
	email := "keep"
	require.NoError(t, p.Unmarshal("email", &email))
	require.Equal(t, "keep", email)
}
