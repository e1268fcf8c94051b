// Package session derives the caller's identity from a bearer token.
//
// Accounts, login and token refresh belong to the external auth provider.
// This package only reads what a token says and exposes it as a Gate.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken means the request carried no bearer token
	ErrNoToken = errors.New("no bearer token")
	// ErrInvalidToken wraps every reason a token is rejected
	ErrInvalidToken = errors.New("invalid token")
	// ErrNoSecret means the parser has no key to sign or verify with
	ErrNoSecret = errors.New("no signing secret configured")
)

// Gate is the read-only session view used to gate protected operations
type Gate struct {
	checked bool
	user    *models.User
	token   string
	reason  string
}

// Anonymous is a checked session without a user
func Anonymous() Gate {
	return Gate{checked: true}
}

// Authenticated is a checked session for user, carrying the raw token so
// it can be forwarded to the kitchen.
func Authenticated(user models.User, token string) Gate {
	return Gate{checked: true, user: &user, token: token}
}

// Rejected is a checked session whose token was refused
func Rejected(err error) Gate {
	return Gate{checked: true, reason: err.Error()}
}

// IsAuthenticated reports whether a valid token identified a user
func (g Gate) IsAuthenticated() bool {
	return g.user != nil
}

// User returns the identified user
func (g Gate) User() (models.User, bool) {
	if g.user == nil {
		return models.User{}, false
	}
	return *g.user, true
}

// AuthChecked reports whether the request's credentials were examined.
// Protected operations must not decide before this is true.
func (g Gate) AuthChecked() bool {
	return g.checked
}

// Token returns the raw bearer token of an authenticated session
func (g Gate) Token() string {
	return g.token
}

// Reason explains why a presented token was refused
func (g Gate) Reason() string {
	return g.reason
}

// TokenParser turns bearer tokens into users. A parser from NewTokenParser
// verifies HS256 signatures and is the token authority of the local
// kitchen. A parser from NewUpstreamTokenParser only decodes the claims
// and checks their time bounds; the upstream API checks the signature of
// every call the token is forwarded with.
type TokenParser struct {
	secret []byte
	verify bool
	now    func() time.Time
}

// NewTokenParser creates a verifying parser. An empty secret rejects every
// token.
func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret), verify: true, now: time.Now}
}

// NewUpstreamTokenParser creates a parser that trusts the upstream API to
// verify signatures. Only the remote backend may use it.
func NewUpstreamTokenParser() *TokenParser {
	return &TokenParser{now: time.Now}
}

// Verifies reports whether signatures are checked
func (p *TokenParser) Verifies() bool {
	return p.verify
}

// FromHeader extracts the token from an Authorization header value
func FromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", fmt.Errorf("%w: authorization header must use the Bearer scheme", ErrInvalidToken)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("%w: bearer token is empty", ErrInvalidToken)
	}
	return token, nil
}

// Parse validates token and returns the user it identifies
func (p *TokenParser) Parse(token string) (models.User, error) {
	claims, err := p.claims(token)
	if err != nil {
		return models.User{}, err
	}
	if err := p.checkTimes(claims); err != nil {
		return models.User{}, err
	}

	id, err := userID(claims)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{ID: id, Role: "user"}
	if role, ok := claims["role"].(string); ok && role != "" {
		if role != "user" && role != "admin" {
			return models.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
		}
		user.Role = role
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	return user, nil
}

// Owner returns the user id of token. It is the owner key of local orders.
func (p *TokenParser) Owner(token string) (string, error) {
	user, err := p.Parse(strings.TrimPrefix(token, "Bearer "))
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (p *TokenParser) claims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if !p.verify {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return claims, nil
	}
	if len(p.secret) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, ErrNoSecret)
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC keys are accepted for a shared secret
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: token is invalid", ErrInvalidToken)
	}
	return claims, nil
}

func (p *TokenParser) checkTimes(claims jwt.MapClaims) error {
	now := p.now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: invalid exp claim", ErrInvalidToken)
	}
	if exp != nil && exp.Before(now) {
		return fmt.Errorf("%w: token has expired", ErrInvalidToken)
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return fmt.Errorf("%w: invalid nbf claim", ErrInvalidToken)
	}
	if nbf != nil && nbf.After(now) {
		return fmt.Errorf("%w: token not yet valid", ErrInvalidToken)
	}
	return nil
}

// userID reads "id" (Stellar Burgers tokens), then "uid", then "sub"
func userID(claims jwt.MapClaims) (string, error) {
	for _, key := range []string{"id", "uid", "sub"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			if v > 0 {
				return strconv.FormatInt(int64(v), 10), nil
			}
		}
	}
	return "", fmt.Errorf("%w: token carries no user id claim", ErrInvalidToken)
}

// Issue signs a short-lived HS256 token for user. It backs the development
// token endpoint and needs a verifying parser with a secret.
func (p *TokenParser) Issue(user models.User, ttl time.Duration) (string, error) {
	if !p.verify || len(p.secret) == 0 {
		return "", ErrNoSecret
	}
	now := p.now()
	claims := jwt.MapClaims{
		"id":   user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if user.Email != "" {
		claims["email"] = user.Email
	}
	if user.Name != "" {
		claims["name"] = user.Name
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
