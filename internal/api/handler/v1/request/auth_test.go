package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() SignupRequest {
	return SignupRequest{
		Email:           "student@example.com",
		Password:        "passw0rd1",
		ConfirmPassword: "passw0rd1",
		Name:            "Alex",
	}
}

func TestSignupRequest_Validate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req := validSignup()

		require.NoError(t, req.Validate())
	})

	t.Run("invalid email", func(t *testing.T) {
		req := validSignup()
		req.Email = "not-an-email"

		require.Error(t, req.Validate())
	})

	t.Run("password rules", func(t *testing.T) {
		cases := map[string]string{
			"too short":  "a1b2c3",
			"no digits":  "abcdefgh",
			"no letters": "12345678",
		}
		for name, password := range cases {
			t.Run(name, func(t *testing.T) {
				req := validSignup()
				req.Password = password
				req.ConfirmPassword = password

				assert.ErrorIs(t, req.Validate(), errInvalidPassword)
			})
		}
	})

	t.Run("confirm mismatch", func(t *testing.T) {
		req := validSignup()
		req.ConfirmPassword = "different1"

		assert.ErrorIs(t, req.Validate(), errConfirmPasswordMismatch)
	})
}

func TestLoginRequest_Validate(t *testing.T) {
	require.NoError(t, (&LoginRequest{Email: "a@b.com", Password: "x"}).Validate())
	require.Error(t, (&LoginRequest{Email: "", Password: "x"}).Validate())
	require.Error(t, (&LoginRequest{Email: "a@b.com", Password: ""}).Validate())
}
