package token

import (
	"testing"
	"time"

	"application-auth/internal/roles"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testCrypto(t *testing.T) *Crypto {
	t.Helper()
	c, err := NewCrypto("unit-test-secret", "application-auth", []string{"api"})
	require.NoError(t, err)
	return c
}

func TestNewCrypto_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewCrypto("", "application-auth", []string{"api"})
	require.Error(t, err)
}

func TestSign_Parse_RoundTrip(t *testing.T) {
	t.Parallel()

	c := testCrypto(t)
	now := time.Now().UTC()
	rs := roles.NewSet(roles.User, roles.Admin)

	raw, err := c.Sign(42, rs, false, now, 15*time.Minute)
	require.NoError(t, err)

	claims, err := c.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.False(t, claims.IsRefresh)
	require.True(t, claims.Roles.Has(roles.User))
	require.True(t, claims.Roles.Has(roles.Admin))
	require.False(t, claims.Roles.Has(roles.SuperAdmin))
	require.WithinDuration(t, now.Add(15*time.Minute), claims.ExpiresAt, 2*time.Second)
}

func TestSign_Parse_RefreshFlagSurvives(t *testing.T) {
	t.Parallel()

	c := testCrypto(t)
	now := time.Now().UTC()

	raw, err := c.Sign(7, roles.NewSet(roles.User), true, now, time.Hour)
	require.NoError(t, err)

	claims, err := c.Parse(raw)
	require.NoError(t, err)
	require.True(t, claims.IsRefresh)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	c := testCrypto(t)
	now := time.Now().UTC()

	// Срок уже в прошлом, с запасом больше leeway.
	raw, err := c.Sign(1, roles.NewSet(roles.User), false, now.Add(-time.Hour), time.Minute)
	require.NoError(t, err)

	_, err = c.Parse(raw)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrExpired)
}

func TestParse_WrongAlg_WrongIssuer_WrongAudience(t *testing.T) {
	t.Parallel()

	c := testCrypto(t)
	secret := []byte("unit-test-secret")
	now := time.Now().UTC()

	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"uid":       "1",
			"roles":     []string{"User"},
			"isRefresh": false,
			"iss":       "application-auth",
			"sub":       "1",
			"aud":       []string{"api"},
			"exp":       now.Add(time.Hour).Unix(),
			"iat":       now.Unix(),
		}
	}

	t.Run("wrong alg", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, base()).SignedString(secret)
		require.NoError(t, err)

		_, err = c.Parse(signed)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := base()
		claims["iss"] = "another-issuer"
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)

		_, err = c.Parse(signed)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := base()
		claims["aud"] = []string{"unexpected"}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)

		_, err = c.Parse(signed)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	c := testCrypto(t)
	other, err := NewCrypto("another-secret", "application-auth", []string{"api"})
	require.NoError(t, err)

	raw, err := other.Sign(1, roles.NewSet(roles.User), false, time.Now().UTC(), time.Hour)
	require.NoError(t, err)

	_, err = c.Parse(raw)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()

	c := testCrypto(t)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := c.Parse(raw)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestParse_UnknownRoleClaim(t *testing.T) {
	t.Parallel()

	c := testCrypto(t)
	now := time.Now().UTC()

	claims := jwt.MapClaims{
		"uid":       "1",
		"roles":     []string{"Root"},
		"isRefresh": false,
		"iss":       "application-auth",
		"sub":       "1",
		"aud":       []string{"api"},
		"exp":       now.Add(time.Hour).Unix(),
		"iat":       now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)

	_, err = c.Parse(signed)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParse_NonNumericUID(t *testing.T) {
	t.Parallel()

	c := testCrypto(t)
	now := time.Now().UTC()

	claims := jwt.MapClaims{
		"uid":       "not-a-number",
		"roles":     []string{"User"},
		"isRefresh": false,
		"iss":       "application-auth",
		"sub":       "x",
		"aud":       []string{"api"},
		"exp":       now.Add(time.Hour).Unix(),
		"iat":       now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)

	_, err = c.Parse(signed)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalid)
}
