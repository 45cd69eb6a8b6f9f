package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const principalKey = "auth_principal"

// Generic message returned for every authentication failure. The internal
// failure kind never reaches the client; differentiated messages would let a
// caller probe which accounts exist.
const unauthorizedMessage = "could not validate credentials"

// Principal represents the authenticated caller together with the token it
// presented.
type Principal struct {
	User  *domain.User
	Token *TokenIdentity
}

// Middleware validates bearer tokens, consults the revocation list and
// resolves the subject against the credential store.
type Middleware struct {
	authority *Authority
	users     repository.UserRepository
	revoked   RevocationList
	logger    *zap.Logger
}

// NewMiddleware constructs middleware.
func NewMiddleware(authority *Authority, users repository.UserRepository, revoked RevocationList, logger *zap.Logger) *Middleware {
	return &Middleware{authority: authority, users: users, revoked: revoked, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	tokenStr, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized(unauthorizedMessage)
	}

	identity, err := m.authority.Verify(tokenStr)
	if err != nil {
		m.logger.Warn("token rejected",
			zap.String("failure", string(FailureKindOf(err))),
			zap.Error(err))
		return apperrors.NewUnauthorized(unauthorizedMessage)
	}

	if m.revoked != nil && identity.TokenID != "" {
		revoked, err := m.revoked.IsRevoked(c.UserContext(), identity.TokenID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if revoked {
			m.logger.Warn("token rejected",
				zap.String("failure", string(FailureRevoked)),
				zap.String("token_id", identity.TokenID))
			return apperrors.NewUnauthorized(unauthorizedMessage)
		}
	}

	user, err := m.users.GetByID(c.UserContext(), identity.SubjectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			// A deleted subject is indistinguishable from a bad token outside
			// of the logs.
			m.logger.Warn("token rejected",
				zap.String("failure", string(FailureSubjectNotFound)),
				zap.String("subject_id", identity.SubjectID))
			return apperrors.NewUnauthorized(unauthorizedMessage)
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Token: identity})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
