// Package tokens issues and verifies the signed credentials of the auth
// core: short lived access tokens and longer lived refresh tokens. Both are
// RS256 JWTs; only refresh tokens have server side state (see storage).
package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	typeClaim   = "typ"
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// issuer, wrong type, expired, malformed subject. Callers must not be able
// to tell these apart.
var ErrInvalidToken = errors.New("invalid token")

// Issuer is injected into the auth service so tests can swap in a fake.
type Issuer interface {
	IssueAccess(userID uint64) (string, error)
	IssueRefresh(userID uint64, ttl time.Duration) (string, error)
	VerifyAccess(token string) (uint64, error)
	// IdentityFromRefresh proves the bearer once held a validly signed
	// refresh token. It does not prove the token is still active; that
	// requires the refresh store lookup.
	IdentityFromRefresh(token string) (uint64, error)
}

type RS256Issuer struct {
	issuer    string
	accessTTL time.Duration

	privateKey jwk.Key
	publicKey  jwk.Key
}

func NewRS256Issuer(privateKeyPEM, issuer string, accessTTL time.Duration) (*RS256Issuer, error) {
	priv, err := jwk.ParseKey([]byte(privateKeyPEM), jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	pub, err := priv.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", err)
	}

	return &RS256Issuer{
		issuer:     issuer,
		accessTTL:  accessTTL,
		privateKey: priv,
		publicKey:  pub,
	}, nil
}

func (i *RS256Issuer) IssueAccess(userID uint64) (string, error) {
	return i.sign(userID, typeAccess, i.accessTTL)
}

func (i *RS256Issuer) IssueRefresh(userID uint64, ttl time.Duration) (string, error) {
	return i.sign(userID, typeRefresh, ttl)
}

func (i *RS256Issuer) sign(userID uint64, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Issuer(i.issuer).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Subject(strconv.FormatUint(userID, 10)).
		JwtID(uuid.New().String()).
		Claim(typeClaim, typ).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build %s token claims: %v", typ, err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256(), i.privateKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %v", typ, err)
	}

	return string(signed), nil
}

func (i *RS256Issuer) VerifyAccess(token string) (uint64, error) {
	return i.verify(token, typeAccess)
}

func (i *RS256Issuer) IdentityFromRefresh(token string) (uint64, error) {
	return i.verify(token, typeRefresh)
}

func (i *RS256Issuer) verify(token, wantType string) (uint64, error) {
	// Parse checks signature and expiration.
	verified, err := jwt.Parse([]byte(token), jwt.WithKey(jwa.RS256(), i.publicKey))
	if err != nil {
		return 0, ErrInvalidToken
	}

	iss, ok := verified.Issuer()
	if !ok || iss != i.issuer {
		return 0, ErrInvalidToken
	}

	var typ string
	if err := verified.Get(typeClaim, &typ); err != nil || typ != wantType {
		// An access token presented as a refresh token (or vice versa) is
		// invalid, not merely the wrong flavor.
		return 0, ErrInvalidToken
	}

	sub, ok := verified.Subject()
	if !ok {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}

	return userID, nil
}
