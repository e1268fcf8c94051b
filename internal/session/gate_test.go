package session

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestGate(t *testing.T) {
	var zero Gate
	assert.False(t, zero.AuthChecked())
	assert.False(t, zero.IsAuthenticated())

	anon := Anonymous()
	assert.True(t, anon.AuthChecked())
	assert.False(t, anon.IsAuthenticated())

	g := Authenticated(models.User{ID: "u1", Role: "user"}, "tok")
	assert.True(t, g.IsAuthenticated())
	user, ok := g.User()
	assert.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "tok", g.Token())

	r := Rejected(ErrInvalidToken)
	assert.True(t, r.AuthChecked())
	assert.False(t, r.IsAuthenticated())
	assert.Equal(t, "invalid token", r.Reason())
}

func TestFromHeader(t *testing.T) {
	_, err := FromHeader("")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = FromHeader("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = FromHeader("Bearer ")
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := FromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)
}

func TestParseVerified(t *testing.T) {
	p := NewTokenParser("secret")
	future := time.Now().Add(time.Hour).Unix()

	testCases := []struct {
		name     string
		token    string
		wantErr  bool
		expectID string
		role     string
	}{
		{
			name:     "stellar burgers id claim",
			token:    sign(t, "secret", jwt.MapClaims{"id": "64a1", "exp": future}),
			expectID: "64a1",
			role:     "user",
		},
		{
			name:     "numeric uid with admin role",
			token:    sign(t, "secret", jwt.MapClaims{"uid": float64(7), "role": "admin", "exp": future}),
			expectID: "7",
			role:     "admin",
		},
		{
			name:     "subject",
			token:    sign(t, "secret", jwt.MapClaims{"sub": "abc"}),
			expectID: "abc",
			role:     "user",
		},
		{
			name:    "wrong secret",
			token:   sign(t, "other", jwt.MapClaims{"id": "x", "exp": future}),
			wantErr: true,
		},
		{
			name:    "expired",
			token:   sign(t, "secret", jwt.MapClaims{"id": "x", "exp": time.Now().Add(-time.Minute).Unix()}),
			wantErr: true,
		},
		{
			name:    "no id",
			token:   sign(t, "secret", jwt.MapClaims{"exp": future}),
			wantErr: true,
		},
		{
			name:    "unknown role",
			token:   sign(t, "secret", jwt.MapClaims{"id": "x", "role": "root"}),
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   "not-a-jwt",
			wantErr: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			user, err := p.Parse(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectID, user.ID)
			assert.Equal(t, tt.role, user.Role)
		})
	}
}

func TestParseUnverified(t *testing.T) {
	p := NewUpstreamTokenParser()
	assert.False(t, p.Verifies())

	token := sign(t, "whatever-upstream-uses", jwt.MapClaims{"id": "u9", "exp": time.Now().Add(time.Hour).Unix()})
	user, err := p.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u9", user.ID)

	expired := sign(t, "x", jwt.MapClaims{"id": "u9", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err = p.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = p.Issue(models.User{ID: "dev", Role: "user"}, time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestVerifyingParserRejectsForgedTokens(t *testing.T) {
	forged := sign(t, "attacker-key", jwt.MapClaims{
		"id":   "victim",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		secret string
	}{
		{"empty secret", ""},
		{"different secret", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewTokenParser(tt.secret)
			assert.True(t, p.Verifies())

			_, err := p.Parse(forged)
			assert.ErrorIs(t, err, ErrInvalidToken)

			_, err = p.Owner("Bearer " + forged)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := NewTokenParser("").Issue(models.User{ID: "dev", Role: "user"}, time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestIssueRoundTrip(t *testing.T) {
	p := NewTokenParser("secret")
	token, err := p.Issue(models.User{ID: "dev", Role: "admin", Email: "dev@example.com"}, time.Hour)
	require.NoError(t, err)

	user, err := p.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "dev", user.ID)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, "dev@example.com", user.Email)

	owner, err := p.Owner("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "dev", owner)
}
