package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/southcentralhub/supportdesk/internal/auth"
	"github.com/southcentralhub/supportdesk/internal/config"
)

func TestPasswordVerifierPlaintext(t *testing.T) {
	req := require.New(t)
	verifier := auth.NewPasswordVerifier(config.AuthConfig{StaffPassword: "hub-staff-pass"})

	req.True(verifier.Verify("hub-staff-pass"))
	req.False(verifier.Verify("wrong"))
	req.False(verifier.Verify(""))
}

func TestPasswordVerifierBcryptHashTakesPrecedence(t *testing.T) {
	req := require.New(t)
	hash, err := auth.HashPassword("hub-staff-pass", 4)
	req.NoError(err)

	verifier := auth.NewPasswordVerifier(config.AuthConfig{
		StaffPassword:     "something-else",
		StaffPasswordHash: hash,
	})
	req.True(verifier.Verify("hub-staff-pass"))
	req.False(verifier.Verify("something-else"))
}

func TestPasswordVerifierUnconfiguredAlwaysFails(t *testing.T) {
	req := require.New(t)
	verifier := auth.NewPasswordVerifier(config.AuthConfig{})
	req.False(verifier.Verify(""))
	req.False(verifier.Verify("anything"))
}

func TestStaffTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	tokens := auth.NewTokenManager("test-secret", 10)

	token, expiresAt, err := tokens.GenerateStaffToken()
	req.NoError(err)
	req.NotEmpty(token)
	req.False(expiresAt.IsZero())

	req.NoError(tokens.ValidateStaffToken(token))

	other := auth.NewTokenManager("other-secret", 10)
	req.Error(other.ValidateStaffToken(token))
	req.Error(tokens.ValidateStaffToken("not-a-token"))
}
