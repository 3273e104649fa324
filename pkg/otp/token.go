package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose distinguishes challenge tokens from proof-of-verification tokens.
type Purpose string

const (
	PurposeChallenge    Purpose = "challenge"
	PurposeVerification Purpose = "verification"
)

const tokenIssuer = "church-events-otp"

var (
	ErrMalformed = errors.New("otp: malformed token")
	ErrSignature = errors.New("otp: bad token signature")
	ErrExpired   = errors.New("otp: token expired")
	ErrPurpose   = errors.New("otp: wrong token purpose")
)

// Claims is the signed payload of a challenge or verification token.
type Claims struct {
	Purpose  Purpose `json:"purpose"`
	Email    string  `json:"email"`
	Nonce    string  `json:"nonce"`
	CodeHash string  `json:"code_hash,omitempty"`
	jwt.RegisteredClaims
}

// Expiry returns the expiry as a time.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time.UTC()
}

// Signer issues and checks HS256 JWTs. Nothing is stored server side beyond
// the key: a challenge token carries a keyed hash of the code, so the raw
// code never has to leave the mailbox it was sent to.
type Signer struct {
	key []byte
	now func() time.Time
}

// NewSigner builds a signer keyed with secret.
func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret), now: time.Now}
}

// IssueChallenge binds code to email for ttl and returns the token and its claims.
func (s *Signer) IssueChallenge(email, code string, ttl time.Duration) (string, Claims, error) {
	claims, err := s.newClaims(PurposeChallenge, email, ttl)
	if err != nil {
		return "", Claims{}, err
	}
	claims.CodeHash = s.codeHash(claims.Email, claims.Nonce, code)
	token, err := s.sign(claims)
	return token, claims, err
}

// IssueVerification returns a token proving email was verified, valid for ttl.
func (s *Signer) IssueVerification(email string, ttl time.Duration) (string, Claims, error) {
	claims, err := s.newClaims(PurposeVerification, email, ttl)
	if err != nil {
		return "", Claims{}, err
	}
	token, err := s.sign(claims)
	return token, claims, err
}

// Parse checks the signature, purpose and expiry of token. An expired token
// of the right purpose returns its claims along with ErrExpired.
func (s *Signer) Parse(token string, purpose Purpose) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		if claims.Purpose != purpose {
			return Claims{}, ErrPurpose
		}
		return claims, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrSignature
	default:
		return Claims{}, ErrMalformed
	}
	if claims.Purpose != purpose {
		return Claims{}, ErrPurpose
	}
	return claims, nil
}

// MatchCode reports, in constant time, whether code is the one bound to claims.
func (s *Signer) MatchCode(claims Claims, code string) bool {
	want := s.codeHash(claims.Email, claims.Nonce, code)
	return hmac.Equal([]byte(want), []byte(claims.CodeHash))
}

func (s *Signer) newClaims(purpose Purpose, email string, ttl time.Duration) (Claims, error) {
	nonce, err := newNonce()
	if err != nil {
		return Claims{}, err
	}
	now := s.now()
	return Claims{
		Purpose: purpose,
		Email:   NormalizeEmail(email),
		Nonce:   nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}, nil
}

func (s *Signer) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *Signer) codeHash(email, nonce, code string) string {
	h := hmac.New(sha256.New, s.key)
	_, _ = h.Write([]byte("code|" + email + "|" + nonce + "|" + code))
	return hex.EncodeToString(h.Sum(nil))
}

func newNonce() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NormalizeEmail trims and lower-cases an address for token binding.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
