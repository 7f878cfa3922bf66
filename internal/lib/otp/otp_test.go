package otp

import (
	"testing"
	"time"

	"internship_portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Range(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.GreaterOrEqual(t, code, 100000)
		require.LessOrEqual(t, code, 999999)
	}
}

func TestParseCode(t *testing.T) {
	t.Parallel()

	code, err := ParseCode("123456")
	require.NoError(t, err)
	assert.Equal(t, 123456, code)

	_, err = ParseCode("12a456")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = ParseCode("")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = ParseCode("-123456")
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	code := 654321
	future := now.Add(5 * time.Minute)
	past := now.Add(-time.Minute)

	assert.NoError(t, Validate(&code, &future, 654321, now))

	assert.ErrorIs(t, Validate(nil, nil, 654321, now), ErrInvalid)
	assert.ErrorIs(t, Validate(&code, &future, 111111, now), ErrInvalid)
	assert.ErrorIs(t, Validate(&code, &past, 654321, now), ErrExpired)

	// expiry is checked before the code comparison
	assert.ErrorIs(t, Validate(&code, &past, 111111, now), ErrExpired)
}

func TestClear(t *testing.T) {
	t.Parallel()

	code := 123456
	expires := time.Now().Add(Window)

	u := models.User{OTPCode: &code, OTPExpiresAt: &expires}

	Clear(&u)

	assert.Nil(t, u.OTPCode)
	assert.Nil(t, u.OTPExpiresAt)
}
