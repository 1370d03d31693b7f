package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/storage"
)

// GuestIDPrefix prefixes every guest principal id.
const GuestIDPrefix = "guest-"

// sessionTTL is how long a guest session token stays valid before the
// device mints a fresh identity.
const sessionTTL = 365 * 24 * time.Hour

type guestClaims struct {
	Anonymous bool `json:"anon"`
	jwt.RegisteredClaims
}

// GuestAuthenticator issues anonymous guest principals. The identity is
// wrapped in an HS256 session token persisted in the device KV store; a
// missing, invalid, or expired token silently becomes a new guest.
type GuestAuthenticator struct {
	kv     storage.KV
	secret []byte
	now    func() time.Time
}

// NewGuestAuthenticator creates a guest authenticator. The secret signs
// session tokens and must be non-empty.
func NewGuestAuthenticator(kv storage.KV, secret []byte) (*GuestAuthenticator, error) {
	if len(secret) == 0 {
		return nil, errors.NewConfigError("auth", "session secret is required", nil)
	}
	return &GuestAuthenticator{kv: kv, secret: secret, now: time.Now}, nil
}

// Current returns the device's guest principal, minting and persisting a
// new identity if no valid session exists.
func (g *GuestAuthenticator) Current(ctx context.Context) (Principal, error) {
	if data, err := g.kv.Get(ctx, storage.KeyGuestSession); err == nil {
		if id, ok := g.verify(string(data)); ok {
			return Principal{ID: id, Anonymous: true}, nil
		}
		logging.Ctx(ctx).Debug().Msg("Invalid guest session, minting a new one")
	} else if !errors.IsNotFound(err) {
		return Principal{}, errors.WrapStorage("get", storage.KeyGuestSession, err)
	}

	id := GuestIDPrefix + uuid.NewString()
	token, err := g.mint(id)
	if err != nil {
		return Principal{}, err
	}
	if err := g.kv.Set(ctx, storage.KeyGuestSession, []byte(token)); err != nil {
		return Principal{}, errors.WrapStorage("set", storage.KeyGuestSession, err)
	}

	logging.Ctx(ctx).Info().Str("user_id", id).Msg("Minted guest identity")
	return Principal{ID: id, Anonymous: true}, nil
}

func (g *GuestAuthenticator) mint(id string) (string, error) {
	now := g.now()
	claims := guestClaims{
		Anonymous: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", errors.NewConfigError("auth", "failed to sign session token", err)
	}
	return token, nil
}

func (g *GuestAuthenticator) verify(token string) (string, bool) {
	claims := &guestClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

var _ Authenticator = (*GuestAuthenticator)(nil)
