package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-filevault/internal/application"
	"github.com/oksasatya/go-ddd-filevault/internal/domain/entity"
	"github.com/oksasatya/go-ddd-filevault/pkg/helpers"
	"github.com/oksasatya/go-ddd-filevault/pkg/response"
)

const bearerPrefix = "Bearer "

var (
	ErrMissingBearer = errors.New("missing or malformed authorization header")
	ErrInvalidToken  = errors.New("invalid token")
)

// TokenVerifier checks identity tokens.
type TokenVerifier interface {
	Verify(token string) (*helpers.Claims, error)
}

// IdentityResolver turns an Authorization header into an authenticated identity.
type IdentityResolver struct {
	Tokens TokenVerifier
	Logger *logrus.Logger
}

func NewIdentityResolver(tokens TokenVerifier, logger *logrus.Logger) *IdentityResolver {
	return &IdentityResolver{Tokens: tokens, Logger: logger}
}

// Resolve requires exactly "Bearer <token>". Errors wrap ErrMissingBearer or ErrInvalidToken;
// the latter also wraps the token service reason.
func (r *IdentityResolver) Resolve(header string) (entity.Identity, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return entity.Identity{}, ErrMissingBearer
	}
	token := header[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return entity.Identity{}, ErrMissingBearer
	}
	claims, err := r.Tokens.Verify(token)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return entity.Identity{UserID: claims.UserID(), Email: claims.Email, Role: claims.Role}, nil
}

// IdentityHandler is a handler that runs only for authenticated requests.
type IdentityHandler func(c *gin.Context, id entity.Identity)

// Protect resolves the caller before h runs and hands the identity over explicitly.
// Every failure gets the same 401 body.
func (r *IdentityResolver) Protect(h IdentityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := r.Resolve(c.GetHeader("Authorization"))
		if err != nil {
			if r.Logger != nil {
				r.Logger.WithError(err).WithFields(logrus.Fields{
					"path":       c.FullPath(),
					"request_id": c.GetString("request_id"),
				}).Debug("request rejected")
			}
			response.Error(c, http.StatusUnauthorized, application.Unauthorized(application.MsgInvalidToken).Error())
			return
		}
		h(c, id)
	}
}
