package auth

import (
	"context"
	"errors"

	authsvc "postmarket-backend/internal/application/auth"
	usersvc "postmarket-backend/internal/application/user"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/middleware"
	"postmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Users      *usersvc.Service
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

var registerStatus = map[error]int{
	usersvc.ErrUsernameInvalid: fiber.StatusBadRequest,
	usersvc.ErrEmailInvalid:    fiber.StatusBadRequest,
	usersvc.ErrPasswordInvalid: fiber.StatusBadRequest,
	usersvc.ErrEmailTaken:      fiber.StatusConflict,
	usersvc.ErrUsernameTaken:   fiber.StatusConflict,
}

// Register POST /api/v1/auth/register: create user, start a session, set cookie, 201 with data.user.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req usersvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	u, err := h.Users.Register(c.Context(), req)
	if err != nil {
		if code, ok := registerStatus[err]; ok {
			return response.Error(c, err.Error(), code, nil)
		}
		log.Error().Err(err).Msg("register failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	if err := h.startSession(c, u); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": u}, nil)
}

// Login POST /api/v1/auth/login: authenticate by username or email, create session, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil || req.Identifier == "" || req.Password == "" {
		return response.Error(c, authsvc.ErrCredentialsRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByCredentials(req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrCredentialsRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrUnknownUser), errors.Is(err, authsvc.ErrIncorrectPassword):
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	if err := h.startSession(c, user); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"user_id":  user.UserID.String(),
			"username": user.Username,
			"email":    user.Email,
		},
	}, nil)
}

// startSession rotates the session id, stores the user, tracks the session under
// user_sessions:<id> and sets the cookie.
func (h *Handlers) startSession(c *fiber.Ctx, u *domain.User) error {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   u.UserID.String(),
		Username: u.Username,
		Email:    u.Email,
	})
	if h.Rdb != nil {
		if err := h.Rdb.SAdd(context.Background(), middleware.UserSessionsPrefix+u.UserID.String(), sessionID).Err(); err != nil {
			log.Error().Err(err).Msg("session tracking failed")
			return err
		}
	}
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
	return nil
}

// Me GET /api/v1/auth/me: return current session user in standard success format.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		if middleware.GetSessionID(c) != "" {
			log.Debug().Str("path", "/auth/me").Msg("session id present but no user in session data")
		}
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout POST /api/v1/auth/logout: SRem user_sessions:user_id, Del session key, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := context.Background()

	if h.Rdb != nil && sessionID != "" {
		if id, ok := middleware.ActorID(c); ok {
			_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+id.String(), sessionID).Err()
		}
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}

// LogoutAll POST /api/v1/auth/logout-all: ends every session of the current user, this one included.
func (h *Handlers) LogoutAll(c *fiber.Ctx) error {
	id, ok := middleware.ActorID(c)
	if !ok {
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	n, err := authsvc.DestroyUserSessions(c.Context(), h.Rdb, id.String())
	if err != nil {
		log.Error().Err(err).Str("user_id", id.String()).Msg("session invalidation failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	middleware.DestroySession(c)
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out of all sessions", fiber.Map{"sessions": n}, nil)
}
