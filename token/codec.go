package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSignature is returned when a credential fails structural or
// signature verification.
var ErrInvalidSignature = errors.New("invalid credential signature")

// ErrExpired is returned when a credential's embedded expiration is in the
// past, regardless of whether its signature would otherwise verify.
var ErrExpired = errors.New("credential expired")

// SigningMethod selects the credential signing algorithm.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodHS256 signs credentials with a single process-wide shared secret.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs credentials with an Ed25519 private key.
	MethodEd25519 SigningMethod = "ed25519"
)

// Config holds codec construction parameters. The secret (or key pair) is
// injected here once at process start and is read-only afterwards.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	Secret        []byte
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Claims is the credential payload: subject identity, email claim, issued-at,
// and expiration.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed, time-limited credentials binding a user
// identity to an expiration.
//
// Codec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a [Codec].
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) == 0 {
			return nil, errors.New("hs256 requires a secret")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires a public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Codec{config: cfg}, nil
}

// Issue produces a signed credential string for identity with the given email
// claim. The expiration is now + ttl; ttl <= 0 falls back to the configured
// TTL. Issue has no side effects beyond serialization.
func (c *Codec) Issue(identity, email string, ttl time.Duration) (string, error) {
	if identity == "" {
		return "", errors.New("empty identity")
	}
	if ttl <= 0 {
		ttl = c.config.TTL
	}

	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.config.Issuer,
		},
	}
	if c.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{c.config.Audience}
	}

	tok := jwt.NewWithClaims(c.getMethod(), claims)

	signKey, err := c.getSignKey()
	if err != nil {
		return "", err
	}

	return tok.SignedString(signKey)
}

// Verify checks the credential signature and expiration and returns the
// decoded [Claims] on success.
//
// Failures are classified as [ErrExpired] when the embedded expiration is in
// the past — regardless of signature validity — and [ErrInvalidSignature] for
// everything else. Callers treat both identically (session invalid); the
// distinction exists for operator diagnostics only and must never be surfaced
// to end users.
func (c *Codec) Verify(credential string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.getMethod().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}
	if c.config.Audience != "" {
		options = append(options, jwt.WithAudience(c.config.Audience))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.getVerifyKey()
	})
	if err != nil {
		return nil, c.classify(credential, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, jwt.ErrTokenInvalidClaims)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSignature)
	}

	return claims, nil
}

// classify maps parser failures onto the two-kind taxonomy. Expiration wins
// over signature validity: a tampered-but-expired credential reports
// [ErrExpired], matching the contract that expiry is checked on the embedded
// value rather than gated behind signature verification.
func (c *Codec) classify(credential string, parseErr error) error {
	if errors.Is(parseErr, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: %v", ErrExpired, parseErr)
	}

	if expiredUnverified(credential) {
		return fmt.Errorf("%w: %v", ErrExpired, parseErr)
	}

	return fmt.Errorf("%w: %v", ErrInvalidSignature, parseErr)
}

// DecodeUnverified extracts claims without checking the signature or the
// expiration. The result must never be trusted for authorization; it exists
// so revocation paths can recover the subject from a credential that no
// longer verifies (a logout carrying an expired credential still needs to
// clear server-side state).
func DecodeUnverified(credential string) (*Claims, error) {
	parser := jwt.NewParser()
	var claims Claims
	if _, _, err := parser.ParseUnverified(credential, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSignature)
	}
	return &claims, nil
}

func expiredUnverified(credential string) bool {
	claims, err := DecodeUnverified(credential)
	if err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

func (c *Codec) getMethod() jwt.SigningMethod {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (c *Codec) getSignKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(c.config.PrivateKey)
	default:
		return c.config.Secret, nil
	}
}

func (c *Codec) getVerifyKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(c.config.PublicKey)
	default:
		return c.config.Secret, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
