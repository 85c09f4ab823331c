package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("token does not grant access")
)

// Scope is what a token allows on its document.
type Scope string

const (
	ScopeView Scope = "view"
	ScopeEdit Scope = "edit"
)

// AnyDocument as a token's document grants access to every file.
const AnyDocument = "*"

const DefaultTokenTTL = 24 * time.Hour

type Claims struct {
	Subject  string `json:"sub"`
	Document string `json:"doc"`
	Scope    Scope  `json:"scope"`
}

// Allows reports whether the claims grant scope on docID.
func (c Claims) Allows(docID string, scope Scope) bool {
	if c.Document != AnyDocument && c.Document != docID {
		return false
	}
	return scope == ScopeView || c.Scope == ScopeEdit
}

type Service struct {
	jwtSecret []byte
	ttl       time.Duration
	public    map[string]bool
	now       func() time.Time
}

type Option func(*Service)

// WithPublicDocuments lets anyone view and edit the given documents without
// a token.
func WithPublicDocuments(ids ...string) Option {
	return func(s *Service) {
		for _, id := range ids {
			s.public[id] = true
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func NewService(jwtSecret string, opts ...Option) *Service {
	s := &Service{
		jwtSecret: []byte(jwtSecret),
		ttl:       DefaultTokenTTL,
		public:    make(map[string]bool),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) IsPublic(docID string) bool {
	return s.public[docID]
}

// IssueToken signs a token granting subject scope on docID.
func (s *Service) IssueToken(subject, docID string, scope Scope) (string, error) {
	if scope != ScopeView && scope != ScopeEdit {
		return "", fmt.Errorf("unknown scope %q", scope)
	}
	if docID == "" {
		return "", errors.New("document is required")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"doc":   docID,
		"scope": string(scope),
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) ValidateToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	c.Subject, _ = mc["sub"].(string)
	c.Document, _ = mc["doc"].(string)
	scope, _ := mc["scope"].(string)
	c.Scope = Scope(scope)
	if c.Document == "" || (c.Scope != ScopeView && c.Scope != ScopeEdit) {
		return Claims{}, fmt.Errorf("%w: missing document or scope", ErrInvalidToken)
	}
	return c, nil
}
