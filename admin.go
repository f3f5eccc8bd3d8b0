// admin.go - privacy-conscious visitor tracking and the admin area
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mwedajie/portfolio/internal/config"
	"github.com/mwedajie/portfolio/internal/store"
)

const adminCookie = "admin_token"

// adminAuth holds the per-process admin token and the salt used to hash
// client addresses. Both are regenerated on every start.
type adminAuth struct {
	username     string
	password     string
	passwordHash string
	token        string
	salt         string
}

func newAdminAuth(cfg *config.Config, log zerolog.Logger) (*adminAuth, error) {
	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	salt, err := randomToken()
	if err != nil {
		return nil, err
	}
	a := &adminAuth{
		username:     cfg.AdminUsername,
		password:     cfg.AdminPassword,
		passwordHash: cfg.AdminPasswordHash,
		token:        token,
		salt:         salt,
	}

	switch {
	case a.passwordHash != "":
	case a.password != "":
		log.Warn().Msg("ADMIN_PASSWORD is plain text; prefer ADMIN_PASSWORD_HASH (argon2id)")
	case cfg.IsDevelopment():
		a.password = "admin123"
		log.Warn().Msg("using default admin password. Set ADMIN_PASSWORD_HASH")
	default:
		log.Info().Msg("admin login disabled: no ADMIN_PASSWORD_HASH configured")
	}
	log.Info().Msg("privacy: visitor tracking enabled with hashed IP addresses")
	return a, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashIP hashes an address for privacy compliance (consistent per IP for the
// lifetime of the process).
func (a *adminAuth) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (a *adminAuth) enabled() bool {
	return a.password != "" || a.passwordHash != ""
}

func (a *adminAuth) check(username, password string) (bool, error) {
	if !a.enabled() {
		return false, nil
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	if a.passwordHash != "" {
		ok, err := argon2id.ComparePasswordAndHash(password, a.passwordHash)
		if err != nil {
			return false, err
		}
		return userOK && ok, nil
	}
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK, nil
}

// Middleware to check admin authentication
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// trackedPath reports whether a request path counts as a page view.
func trackedPath(path string) bool {
	for _, prefix := range []string{"/static/", "/certificates/", "/admin", "/contact", "/favicon", "/privacy", "/metrics", "/healthz"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// Privacy-conscious visitor tracking middleware
func (s *server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if s.visitors == nil || c.Request.Method != http.MethodGet || !trackedPath(path) {
			c.Next()
			return
		}
		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := store.Visit{
			HashedIP:  s.admin.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: s.now(),
		}
		s.background(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.visitors.Record(ctx, visit); err != nil {
				s.log.Error().Err(err).Msg("record visitor")
			}
		})
		c.Next()
	}
}

// cleanupVisitors purges old visit rows now and then daily.
func (s *server) cleanupVisitors(ctx context.Context) {
	if s.visitors == nil {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		s.purgeVisitors(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *server) purgeVisitors(ctx context.Context) {
	removed, err := s.visitors.Cleanup(ctx, s.now(), s.cfg.VisitorRetention)
	if err != nil {
		s.log.Error().Err(err).Msg("clean up old visitor data")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Dur("retention", s.cfg.VisitorRetention).Msg("privacy cleanup")
	}
}

// Setup all admin routes
func (s *server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login", "disabled": !s.admin.enabled()})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		ok, err := s.admin.check(c.PostForm("username"), c.PostForm("password"))
		if err != nil {
			s.log.Error().Err(err).Msg("verify admin password")
		}
		if !ok {
			s.log.Warn().Str("client", s.admin.hashIP(c.ClientIP())).Msg("failed admin login attempt")
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title":    "Admin Login",
				"error":    "Invalid credentials",
				"disabled": !s.admin.enabled(),
			})
			return
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, s.admin.token, 3600*24, "/admin", "", s.cfg.CookieSecure, true)
		s.log.Info().Str("client", s.admin.hashIP(c.ClientIP())).Msg("admin login")
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", s.cfg.CookieSecure, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(s.admin.middleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.visitorStats(c.Request.Context())
		if err != nil {
			s.log.Error().Err(err).Msg("load admin stats")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats, "sessions": s.sessions.Len()})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.visitorStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		if s.visitors == nil {
			c.HTML(http.StatusServiceUnavailable, "admin-error.html", gin.H{"error": "Visitor tracking is disabled"})
			return
		}
		visitors, err := s.visitors.Recent(c.Request.Context(), 200)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load visitors"})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"visitors": visitors})
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		if s.visitors == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visitor tracking is disabled"})
			return
		}
		s.purgeVisitors(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete"})
	})

	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.visitorStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		c.JSON(http.StatusOK, stats)
	})
}

var errTrackingDisabled = errors.New("visitor tracking is disabled")

func (s *server) visitorStats(ctx context.Context) (*store.Stats, error) {
	if s.visitors == nil {
		return nil, errTrackingDisabled
	}
	return s.visitors.Stats(ctx, s.now())
}
