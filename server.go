package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/mwedajie/portfolio/internal/config"
	"github.com/mwedajie/portfolio/internal/contact"
	"github.com/mwedajie/portfolio/internal/obs"
	"github.com/mwedajie/portfolio/internal/portfolio"
	"github.com/mwedajie/portfolio/internal/session"
	"github.com/mwedajie/portfolio/internal/store"
)

// server wires the site's dependencies into a gin engine.
type server struct {
	cfg      *config.Config
	log      zerolog.Logger
	content  *portfolio.Source
	sessions *session.Store
	visitors *store.VisitorStore
	metrics  *obs.Metrics
	registry *prometheus.Registry
	admin    *adminAuth
	now      func() time.Time

	// background runs fire-and-forget work such as visit recording.
	background func(func())
}

func newServer(cfg *config.Config, log zerolog.Logger, content *portfolio.Source, visitors *store.VisitorStore) (*server, error) {
	admin, err := newAdminAuth(cfg, log)
	if err != nil {
		return nil, err
	}
	s := &server{
		cfg:        cfg,
		log:        log,
		content:    content,
		visitors:   visitors,
		registry:   prometheus.NewRegistry(),
		admin:      admin,
		now:        time.Now,
		background: func(fn func()) { go fn() },
	}
	s.sessions = session.NewStore(cfg.SessionTTL, s.newController)
	s.metrics = obs.NewMetrics("portfolio", s.registry, func() float64 { return float64(s.sessions.Len()) })
	return s, nil
}

// recipient is the address the contact form writes to. Configuration wins
// over the content file.
func (s *server) recipient() string {
	if s.cfg.ContactRecipient != "" {
		return s.cfg.ContactRecipient
	}
	return s.content.Current().Contact.Recipient
}

func (s *server) newController() *contact.Controller {
	return contact.New(s.recipient(), contact.WithClock(s.now))
}

func (s *server) routes() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), obs.RequestLogger(s.log), s.metrics.Middleware(), s.visitorTracking())

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	r.Static("/static", s.cfg.StaticDir)
	r.Static("/certificates", s.cfg.CertificatesDir)

	r.GET("/", s.handleHome)
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{"title": "Privacy Policy", "profile": s.content.Current()})
	})
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	rate, err := limiter.NewRateFromFormatted(s.cfg.ContactRateLimit)
	if err != nil {
		return nil, err
	}
	limited := mgin.NewMiddleware(limiter.New(memory.NewStore(), rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.String(http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again.")
		}))

	contactGroup := r.Group("/")
	contactGroup.Use(limited)
	contactGroup.GET("/contact-form", s.handleContactForm)
	contactGroup.POST("/contact/fields", s.handleUpdateFields)
	contactGroup.POST("/contact/attachments", s.handleAddAttachments)
	contactGroup.DELETE("/contact/attachments/:index", s.handleRemoveAttachment)
	contactGroup.POST("/contact", s.handleSubmit)

	s.setupAdminRoutes(r)
	return r, nil
}

// run serves until ctx is cancelled, then drains connections.
func (s *server) run(ctx context.Context) error {
	engine, err := s.routes()
	if err != nil {
		return err
	}

	go s.sessions.Run(ctx, time.Minute)
	go s.cleanupVisitors(ctx)
	if s.cfg.WatchContent {
		go func() {
			if err := s.content.Watch(ctx); err != nil {
				s.log.Error().Err(err).Msg("content watcher stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("portfolio listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *server) handleHome(c *gin.Context) {
	s.metrics.PageViews.Inc()
	// A full page load starts a fresh form, as a reload does in the browser.
	var view contactView
	s.withContact(c, func(ctrl *contact.Controller) {
		ctrl.Reset()
		view = s.snapshot(ctrl, "")
	})
	s.renderPage(c, view)
}

func (s *server) renderPage(c *gin.Context, view contactView) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"profile": s.content.Current(),
		"contact": view,
		"year":    s.now().Year(),
	})
}
