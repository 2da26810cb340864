package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/config"
	"github.com/GTDGit/stockcentral/internal/utils"
)

const contextKey = "session"

// Manager binds Store entries to signed browser cookies.
type Manager struct {
	store  Store
	secret string
	cfg    config.SessionConfig
}

// NewManager creates a Manager. secret signs the cookie value.
func NewManager(store Store, secret string, cfg config.SessionConfig) *Manager {
	return &Manager{store: store, secret: secret, cfg: cfg}
}

// Start resolves the session of the request, creating one with a fresh CSRF
// token when the cookie is absent, tampered or expired. The session TTL is
// refreshed on every call.
func (m *Manager) Start(c *gin.Context) (*Data, error) {
	ctx := c.Request.Context()

	if raw, err := c.Cookie(m.cfg.CookieName); err == nil {
		if id, ok := utils.VerifySignedValue(raw, m.secret); ok {
			data, err := m.store.Load(ctx, id)
			switch {
			case err == nil:
				if err := m.store.Save(ctx, data, m.cfg.TTL); err != nil {
					return nil, err
				}
				return data, nil
			case !errors.Is(err, utils.ErrSessionNotFound):
				return nil, err
			}
		} else {
			log.Debug().Str("ip", c.ClientIP()).Msg("discarding session cookie with bad signature")
		}
	}

	data, err := m.create(ctx)
	if err != nil {
		return nil, err
	}
	m.setCookie(c, utils.SignValue(data.ID, m.secret), int(m.cfg.TTL.Seconds()))
	return data, nil
}

func (m *Manager) create(ctx context.Context) (*Data, error) {
	id, err := utils.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	token, err := utils.GenerateCSRFToken()
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}
	data := &Data{ID: id, CSRFToken: token, CreatedAt: time.Now()}
	if err := m.store.Save(ctx, data, m.cfg.TTL); err != nil {
		return nil, err
	}
	return data, nil
}

// Destroy drops the session of the request and expires its cookie.
func (m *Manager) Destroy(c *gin.Context) error {
	if data := FromContext(c); data != nil {
		if err := m.store.Destroy(c.Request.Context(), data.ID); err != nil {
			return err
		}
	}
	m.setCookie(c, "", -1)
	return nil
}

// AddNotice queues a flash notice on the session.
func (m *Manager) AddNotice(ctx context.Context, data *Data, kind, message string) error {
	return m.store.AddNotice(ctx, data.ID, Notice{Kind: kind, Message: message}, m.cfg.TTL)
}

// PopNotices returns and clears the queued notices. Store failures are logged
// and yield no notices.
func (m *Manager) PopNotices(ctx context.Context, data *Data) []Notice {
	notices, err := m.store.PopNotices(ctx, data.ID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read session notices")
		return nil
	}
	return notices
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, value, maxAge, "/", "", m.cfg.SecureCookies, true)
}

// Middleware attaches the session to the gin context.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := m.Start(c)
		if err != nil {
			log.Error().Err(err).Msg("session store unavailable")
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Set(contextKey, data)
		c.Next()
	}
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(c *gin.Context) *Data {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	data, _ := v.(*Data)
	return data
}
