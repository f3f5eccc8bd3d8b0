package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mwedajie/portfolio/internal/contact"
)

const sessionCookie = "portfolio_session"

// contactView is everything the contact form template needs.
type contactView struct {
	State          contact.ViewState
	Notifications  []contact.Notification
	MailtoURI      string
	Accept         string
	MaxAttachments int
	DismissMS      int64
}

func (s *server) snapshot(ctrl *contact.Controller, mailtoURI string) contactView {
	return contactView{
		State:          ctrl.State(),
		Notifications:  ctrl.Notifications(),
		MailtoURI:      mailtoURI,
		Accept:         strings.Join(contact.AllowedExtensions, ","),
		MaxAttachments: contact.MaxAttachments,
		DismissMS:      contact.NotificationTTL.Milliseconds(),
	}
}

// withContact runs fn against the visitor's contact form and refreshes the
// session cookie when a new session had to be started.
func (s *server) withContact(c *gin.Context, fn func(*contact.Controller)) {
	id, _ := c.Cookie(sessionCookie)
	used := s.sessions.Do(id, fn)
	if used != id {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, used, int(s.cfg.SessionTTL/time.Second), "/", "", s.cfg.CookieSecure, true)
	}
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func (s *server) renderContact(c *gin.Context, view contactView) {
	if isHTMX(c) {
		c.HTML(http.StatusOK, "contact-form.html", view)
		return
	}
	s.renderPage(c, view)
}

// HTMX contact form endpoint - returns just the form HTML
func (s *server) handleContactForm(c *gin.Context) {
	var view contactView
	s.withContact(c, func(ctrl *contact.Controller) {
		view = s.snapshot(ctrl, "")
	})
	c.HTML(http.StatusOK, "contact-form.html", view)
}

// applyFields copies any posted form inputs into the controller and reports
// how many were present.
func applyFields(c *gin.Context, ctrl *contact.Controller) int {
	n := 0
	for _, f := range []contact.Field{contact.FieldName, contact.FieldEmail, contact.FieldMessage} {
		if v, ok := c.GetPostForm(string(f)); ok {
			ctrl.UpdateField(f, v)
			n++
		}
	}
	return n
}

func (s *server) handleUpdateFields(c *gin.Context) {
	updated := 0
	s.withContact(c, func(ctrl *contact.Controller) {
		updated = applyFields(c, ctrl)
	})
	if updated == 0 {
		c.String(http.StatusBadRequest, "no form fields given")
		return
	}
	c.Status(http.StatusNoContent)
}

// attachmentsForm carries file descriptors picked in the browser. File
// contents are never sent.
type attachmentsForm struct {
	Names []string `form:"name"`
	Sizes []int64  `form:"size"`
}

func (s *server) handleAddAttachments(c *gin.Context) {
	var form attachmentsForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid attachment list")
		return
	}
	if len(form.Names) != len(form.Sizes) {
		c.String(http.StatusBadRequest, "attachment names and sizes do not match")
		return
	}
	candidates := make([]contact.Attachment, len(form.Names))
	for i := range form.Names {
		if form.Sizes[i] < 0 {
			c.String(http.StatusBadRequest, "attachment size must not be negative")
			return
		}
		candidates[i] = contact.Attachment{Name: form.Names[i], SizeBytes: form.Sizes[i]}
	}

	var view contactView
	s.withContact(c, func(ctrl *contact.Controller) {
		err := ctrl.AddAttachments(candidates)
		for _, e := range contact.Split(err) {
			s.metrics.AttachmentRejects.WithLabelValues(contact.Reason(e)).Inc()
		}
		view = s.snapshot(ctrl, "")
	})
	s.renderContact(c, view)
}

func (s *server) handleRemoveAttachment(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.String(http.StatusBadRequest, "attachment index must be a number")
		return
	}
	var view contactView
	s.withContact(c, func(ctrl *contact.Controller) {
		ctrl.RemoveAttachment(index)
		view = s.snapshot(ctrl, "")
	})
	s.renderContact(c, view)
}

// Handle contact form submission with HTMX
func (s *server) handleSubmit(c *gin.Context) {
	var view contactView
	s.withContact(c, func(ctrl *contact.Controller) {
		applyFields(c, ctrl)
		uri, err := ctrl.Submit(browserHandoff{c: c, maxLen: s.cfg.MaxMailtoLength})
		outcome := "handed_off"
		if err != nil {
			outcome = contact.Reason(err)
		}
		s.metrics.ContactOutcomes.WithLabelValues(outcome).Inc()
		view = s.snapshot(ctrl, uri)
	})
	s.renderContact(c, view)
}

// browserHandoff passes the mailto URI back to the visitor's browser, which
// opens it with the default mail client.
type browserHandoff struct {
	c      *gin.Context
	maxLen int
}

func (h browserHandoff) Open(uri string) error {
	if h.maxLen > 0 && len(uri) > h.maxLen {
		return fmt.Errorf("mailto URI is %d bytes, limit is %d", len(uri), h.maxLen)
	}
	if isHTMX(h.c) {
		trigger, err := json.Marshal(map[string]any{"mailto-handoff": map[string]string{"uri": uri}})
		if err != nil {
			return err
		}
		h.c.Header("HX-Trigger", string(trigger))
	}
	return nil
}
