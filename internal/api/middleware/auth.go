package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	CompetitorIDKey contextKey = "competitorID"
)

// Auth validates bearer tokens minted by the account service and puts
// the competitor id from the subject claim into the request context.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Printf("ERROR [middleware.Auth] missing authorization header")
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Printf("ERROR [middleware.Auth] invalid authorization header format")
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			sub, ok := claims["sub"].(string)
			if !ok {
				log.Printf("ERROR [middleware.Auth] missing 'sub' claim in token")
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			competitorID, err := uuid.Parse(sub)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] failed to parse competitor ID: %v", err)
				http.Error(w, "Invalid competitor ID", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CompetitorIDKey, competitorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCompetitorID pulls the authenticated competitor id from the
// request context.
func GetCompetitorID(ctx context.Context) (uuid.UUID, bool) {
	competitorID, ok := ctx.Value(CompetitorIDKey).(uuid.UUID)
	return competitorID, ok
}
