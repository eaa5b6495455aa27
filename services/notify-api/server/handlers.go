package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/postpress/cnotify/internal/campaign"
	"github.com/postpress/cnotify/internal/directory"
	"github.com/postpress/cnotify/internal/notice"
	"github.com/postpress/cnotify/internal/store"
	"github.com/postpress/cnotify/pkg/logx"
)

type pipelineAPI interface {
	Submit(ctx context.Context, notices campaign.NoticeSink, req campaign.SubmitRequest) error
}

type draftsAPI interface {
	Load(ctx context.Context, subjectID string) (store.Draft, error)
}

type archiveAPI interface {
	List(ctx context.Context, subjectID string) ([]store.SentCampaign, error)
}

type directoryAPI interface {
	Roles(ctx context.Context) ([]string, error)
	ReceiveNotifications(ctx context.Context, userID int64) (bool, error)
	SetReceiveNotifications(ctx context.Context, userID int64, enabled bool) error
}

type settingsAPI interface {
	Load(ctx context.Context) (store.Settings, error)
	Save(ctx context.Context, settings store.Settings) error
	DeleteAll(ctx context.Context) error
}

type Handlers struct {
	Pipeline  pipelineAPI
	Drafts    draftsAPI
	Archive   archiveAPI
	Directory directoryAPI
	Settings  settingsAPI
}

type submitBody struct {
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Groups    []string `json:"groups"`
	Confirmed bool     `json:"confirm"`
}

type sentCampaignItem struct {
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Groups  []string  `json:"groups"`
	SentAt  time.Time `json:"sent_at"`
}

type preferenceBody struct {
	ReceiveNotifications *bool `json:"receive_notifications" binding:"required"`
}

type settingsBody struct {
	FromEmail string `json:"from_email" binding:"required,email"`
	FromName  string `json:"from_name" binding:"required"`
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// SubmitNotification runs one compose-form submission through the
// pipeline. Validation verdicts come back to the author as notices, so
// a rejected composition is still a 202 here.
func (h *Handlers) SubmitNotification(c *gin.Context) {
	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groups := make([]campaign.GroupID, 0, len(body.Groups))
	for _, g := range body.Groups {
		groups = append(groups, campaign.GroupID(g))
	}
	req := campaign.SubmitRequest{
		SubjectID: c.Param("id"),
		Subject:   body.Subject,
		Body:      body.Body,
		Groups:    groups,
		Confirmed: body.Confirmed,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := h.Pipeline.Submit(ctx, NoticesFrom(c), req); err != nil {
		var unknown *directory.UnknownGroupError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Error()})
			return
		}
		logx.L().Errorw("submit_error", "subject_id", req.SubjectID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *Handlers) GetDraft(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	draft, err := h.Drafts.Load(ctx, c.Param("id"))
	if err != nil {
		logx.L().Errorw("draft_load_error", "subject_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "draft unavailable"})
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *Handlers) ListSent(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	sent, err := h.Archive.List(ctx, c.Param("id"))
	if err != nil {
		logx.L().Errorw("sent_list_error", "subject_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "archive unavailable"})
		return
	}

	out := make([]sentCampaignItem, 0, len(sent))
	for _, s := range sent {
		out = append(out, sentCampaignItem{
			Subject: s.Subject,
			Body:    s.Body,
			Groups:  s.Groups,
			SentAt:  s.SentAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// DrainNotices hands every undisplayed notice to the consuming surface
// and clears them from the store.
func (h *Handlers) DrainNotices(c *gin.Context) {
	q := NoticesFrom(c)
	success := q.Drain(notice.TypeSuccess)
	errs := q.Drain(notice.TypeError)
	if success == nil {
		success = []string{}
	}
	if errs == nil {
		errs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": success, "error": errs})
}

func (h *Handlers) ListRoles(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	roles, err := h.Directory.Roles(ctx)
	if err != nil {
		logx.L().Errorw("roles_list_error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "directory unavailable"})
		return
	}
	if roles == nil {
		roles = []string{}
	}
	c.JSON(http.StatusOK, roles)
}

func (h *Handlers) GetPreference(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	enabled, err := h.Directory.ReceiveNotifications(ctx, userID)
	if err != nil {
		logx.L().Errorw("preference_get_error", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "directory unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receive_notifications": enabled})
}

func (h *Handlers) SetPreference(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var body preferenceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Directory.SetReceiveNotifications(ctx, userID, *body.ReceiveNotifications); err != nil {
		logx.L().Errorw("preference_set_error", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "directory unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receive_notifications": *body.ReceiveNotifications})
}

func (h *Handlers) GetSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.Settings.Load(ctx)
	if err != nil {
		logx.L().Errorw("settings_load_error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings unavailable"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handlers) SaveSettings(c *gin.Context) {
	var body settingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	settings := store.Settings{FromEmail: body.FromEmail, FromName: body.FromName}
	if err := h.Settings.Save(ctx, settings); err != nil {
		logx.L().Errorw("settings_save_error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings unavailable"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// DeleteSettings wipes every record this subsystem owns: drafts, sent
// archives, notice state and the settings themselves.
func (h *Handlers) DeleteSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Settings.DeleteAll(ctx); err != nil {
		logx.L().Errorw("settings_delete_error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}
