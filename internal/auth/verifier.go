package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

// ErrInvalidToken is returned for any token that does not yield a verified actor.
var ErrInvalidToken = errors.New("invalid token")

// actorTypes maps the userType claim onto the two ride parties.
var actorTypes = map[string]domain.ActorType{
	"user":    domain.ActorRider,
	"rider":   domain.ActorRider,
	"captain": domain.ActorDriver,
	"driver":  domain.ActorDriver,
}

// Verifier checks HS256 bearer tokens issued by the account service.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the shared signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses the token and returns the actor it was issued to.
func (v *Verifier) Verify(tokenString string) (domain.Actor, error) {
	if tokenString == "" || len(v.secret) == 0 {
		return domain.Actor{}, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Actor{}, ErrInvalidToken
	}

	id, _ := claims["id"].(string)
	if id == "" {
		id, _ = claims.GetSubject()
	}
	userType, _ := claims["userType"].(string)
	actorType, known := actorTypes[userType]
	if id == "" || !known {
		return domain.Actor{}, ErrInvalidToken
	}

	return domain.Actor{ID: id, Type: actorType}, nil
}
