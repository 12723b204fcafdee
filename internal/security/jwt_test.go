package security

import (
	"AuthSessionService/internal/model"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec("test-secret", "HS256", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return codec
}

func testProfile() model.UserProfile {
	return model.UserProfile{
		UUID:        uuid.New(),
		Username:    "alice",
		Email:       "a@x.com",
		IsSuperuser: true,
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNewTokenCodec_RejectsBadConfig(t *testing.T) {
	_, err := NewTokenCodec("", "HS256", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenCodec("secret", "RS256", time.Minute, time.Hour)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неподдерживаемый алгоритм")

	_, err = NewTokenCodec("secret", "HS512", 0, time.Hour)
	assert.Error(t, err)
}

func TestEncodeDecode_AccessRoundTrip(t *testing.T) {
	codec := testCodec(t)
	profile := testProfile()
	refreshJTI := uuid.NewString()

	claims := codec.NewAccessClaims(profile, refreshJTI, time.Now())
	token, err := codec.Encode(claims)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)

	assert.Equal(t, claims.ID, decoded.ID)
	assert.Equal(t, profile.UUID, decoded.UserUUID)
	assert.Equal(t, model.AccessToken, decoded.Type)
	assert.Equal(t, refreshJTI, decoded.RefreshJTI)
	assert.Equal(t, "alice", decoded.Username)
	assert.Equal(t, "a@x.com", decoded.Email)
	assert.True(t, decoded.IsSuperuser)
	assert.Equal(t, "2024-01-02T03:04:05Z", decoded.CreatedAt)
}

func TestEncodeDecode_RefreshRoundTrip(t *testing.T) {
	codec := testCodec(t)
	userUUID := uuid.New()
	jti := uuid.NewString()

	token, err := codec.Encode(codec.NewRefreshClaims(userUUID, jti, time.Now()))
	require.NoError(t, err)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, jti, decoded.ID)
	assert.Equal(t, userUUID, decoded.UserUUID)
	assert.Equal(t, model.RefreshToken, decoded.Type)
	assert.Empty(t, decoded.RefreshJTI)
	assert.Empty(t, decoded.Username)
}

func TestNewClaims_TemporalOrdering(t *testing.T) {
	codec := testCodec(t)
	now := time.Now()

	for _, claims := range []*Claims{
		codec.NewAccessClaims(testProfile(), uuid.NewString(), now),
		codec.NewRefreshClaims(uuid.New(), uuid.NewString(), now),
	} {
		assert.Equal(t, claims.IssuedAt.Unix(), claims.NotBefore.Unix())
		assert.True(t, claims.NotBefore.Before(claims.ExpiresAt.Time))
	}

	access := codec.NewAccessClaims(testProfile(), uuid.NewString(), now)
	assert.Equal(t, 15*time.Minute, access.ExpiresAt.Sub(access.IssuedAt.Time))
	refresh := codec.NewRefreshClaims(uuid.New(), uuid.NewString(), now)
	assert.Equal(t, 24*time.Hour, refresh.ExpiresAt.Sub(refresh.IssuedAt.Time))
}

func TestNewAccessClaims_FreshJTI(t *testing.T) {
	codec := testCodec(t)
	profile := testProfile()
	refreshJTI := uuid.NewString()
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		claims := codec.NewAccessClaims(profile, refreshJTI, time.Now())
		_, duplicate := seen[claims.ID]
		assert.False(t, duplicate)
		seen[claims.ID] = struct{}{}
	}
}

func TestEncode_RejectsBrokenClaims(t *testing.T) {
	codec := testCodec(t)
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(claims *Claims)
	}{
		{"unknown type", func(claims *Claims) { claims.Type = "id" }},
		{"nil user", func(claims *Claims) { claims.UserUUID = uuid.Nil }},
		{"bad jti", func(claims *Claims) { claims.ID = "not-a-uuid" }},
		{"exp before nbf", func(claims *Claims) { claims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour)) }},
		{"nbf before iat", func(claims *Claims) { claims.NotBefore = jwt.NewNumericDate(now.Add(-time.Hour)) }},
		{"access without refresh id", func(claims *Claims) { claims.RefreshJTI = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := codec.NewAccessClaims(testProfile(), uuid.NewString(), now)
			tt.mutate(claims)
			_, err := codec.Encode(claims)
			assert.Error(t, err)
		})
	}
}

func TestDecode_TamperedSignatureEveryPosition(t *testing.T) {
	for _, algorithm := range []string{"HS256", "HS384", "HS512"} {
		t.Run(algorithm, func(t *testing.T) {
			codec, err := NewTokenCodec("test-secret", algorithm, 15*time.Minute, 24*time.Hour)
			require.NoError(t, err)
			token, err := codec.Encode(codec.NewAccessClaims(testProfile(), uuid.NewString(), time.Now()))
			require.NoError(t, err)

			parts := strings.Split(token, ".")
			for position := range parts[2] {
				signature := []byte(parts[2])
				if signature[position] == 'A' {
					signature[position] = 'B'
				} else {
					signature[position] = 'A'
				}
				tampered := parts[0] + "." + parts[1] + "." + string(signature)

				_, err := codec.Decode(tampered)
				assert.True(t, errors.Is(err, model.ErrInvalidToken), "позиция %d", position)
			}
		})
	}
}

func TestDecode_TamperedPayload(t *testing.T) {
	codec := testCodec(t)
	token, err := codec.Encode(codec.NewRefreshClaims(uuid.New(), uuid.NewString(), time.Now()))
	require.NoError(t, err)

	other, err := codec.Encode(codec.NewRefreshClaims(uuid.New(), uuid.NewString(), time.Now()))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	_, err = codec.Decode(parts[0] + "." + otherParts[1] + "." + parts[2])
	assert.True(t, errors.Is(err, model.ErrInvalidToken))
}

func TestDecode_Expired(t *testing.T) {
	codec := testCodec(t)
	past := time.Now().Add(-2 * time.Hour)
	token, err := codec.Encode(codec.NewAccessClaims(testProfile(), uuid.NewString(), past))
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.True(t, errors.Is(err, model.ErrInvalidToken))
}

func TestDecode_NotYetValid(t *testing.T) {
	codec := testCodec(t)
	future := time.Now().Add(time.Hour)
	token, err := codec.Encode(codec.NewRefreshClaims(uuid.New(), uuid.NewString(), future))
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.True(t, errors.Is(err, model.ErrInvalidToken))

	shifted := codec.WithClock(func() time.Time { return future.Add(time.Minute) })
	_, err = shifted.Decode(token)
	assert.NoError(t, err)
}

func TestDecode_WrongSecretOrAlgorithm(t *testing.T) {
	codec := testCodec(t)
	token, err := codec.Encode(codec.NewRefreshClaims(uuid.New(), uuid.NewString(), time.Now()))
	require.NoError(t, err)

	otherSecret, err := NewTokenCodec("other-secret", "HS256", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	_, err = otherSecret.Decode(token)
	assert.True(t, errors.Is(err, model.ErrInvalidToken))

	otherAlgorithm, err := NewTokenCodec("test-secret", "HS512", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	_, err = otherAlgorithm.Decode(token)
	assert.True(t, errors.Is(err, model.ErrInvalidToken))
}

func TestDecode_Malformed(t *testing.T) {
	codec := testCodec(t)

	for _, token := range []string{"", "abc", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := codec.Decode(token)
		assert.True(t, errors.Is(err, model.ErrInvalidToken), token)
	}
}
