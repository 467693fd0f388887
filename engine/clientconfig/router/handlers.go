package clientconfigrouter

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/floworx/floworx/engine/clientconfig"
	"github.com/floworx/floworx/engine/clientconfig/uc"
	"github.com/floworx/floworx/engine/infra/server/router"
	"github.com/floworx/floworx/pkg/logger"
)

const ActorHeader = "X-Actor"

// Handler serves the client configuration endpoints.
type Handler struct {
	get          *uc.Get
	update       *uc.Update
	history      *uc.History
	defaultActor string
}

type Option func(*Handler)

// WithDefaultActor sets the updated_by value used when X-Actor is absent.
func WithDefaultActor(actor string) Option {
	return func(h *Handler) {
		if strings.TrimSpace(actor) != "" {
			h.defaultActor = strings.TrimSpace(actor)
		}
	}
}

func NewHandler(get *uc.Get, update *uc.Update, history *uc.History, opts ...Option) *Handler {
	h := &Handler{get: get, update: update, history: history, defaultActor: uc.DefaultActor}
	for _, o := range opts {
		o(h)
	}
	return h
}

// getConfig handles GET /clients/:id/config.
func (h *Handler) getConfig(c *gin.Context) {
	clientID := c.Param("id")
	out, err := h.get.Execute(c.Request.Context(), &uc.GetInput{ClientID: clientID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("ETag", router.VersionETag(out.Config.Version))
	router.RespondOK(c, out.Config)
}

// putConfig handles PUT /clients/:id/config.
func (h *Handler) putConfig(c *gin.Context) {
	clientID := c.Param("id")
	if !clientconfig.ValidClientID(clientID) {
		respondError(c, uc.ErrInvalidClientID)
		return
	}
	ifMatch, err := router.ParseVersionETag(c.GetHeader("If-Match"))
	if err != nil {
		router.RespondBadRequest(c, router.ErrBadRequestCode, "invalid If-Match header", nil)
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			router.RespondWithError(c, http.StatusRequestEntityTooLarge, router.NewServerError(
				router.ErrPayloadTooLargeCode,
				router.ErrBodyTooLarge.Error(),
			))
			return
		}
		router.RespondBadRequest(c, router.ErrBadRequestCode, "failed to read request body", nil)
		return
	}
	patch, err := clientconfig.DecodePatch(body)
	if err != nil {
		respondError(c, err)
		return
	}
	actor := strings.TrimSpace(c.GetHeader(ActorHeader))
	if actor == "" {
		actor = h.defaultActor
	}
	out, err := h.update.Execute(c.Request.Context(), &uc.UpdateInput{
		ClientID: clientID,
		Patch:    patch,
		IfMatch:  ifMatch,
		Actor:    actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("ETag", router.VersionETag(out.Version))
	router.RespondOK(c, UpdateResponse{OK: true, Version: out.Version, Overrides: out.Overrides})
}

// getHistory handles GET /clients/:id/config/history.
func (h *Handler) getHistory(c *gin.Context) {
	clientID := c.Param("id")
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			router.RespondBadRequest(c, router.ErrBadRequestCode, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}
	out, err := h.history.Execute(c.Request.Context(), &uc.HistoryInput{ClientID: clientID, Limit: limit})
	if err != nil {
		respondError(c, err)
		return
	}
	router.RespondOK(c, toHistoryResponse(strings.TrimSpace(clientID), out.Entries))
}

func respondError(c *gin.Context, err error) {
	var verrs clientconfig.ValidationErrors
	var conflict *clientconfig.ConflictError
	switch {
	case errors.Is(err, uc.ErrInvalidClientID):
		router.RespondBadRequest(c, router.ErrInvalidClientIDCode, "client id must not be blank", nil)
	case errors.As(err, &verrs):
		router.RespondBadRequest(c, router.ErrValidationFailedCode, "configuration failed validation", verrs)
	case errors.Is(err, uc.ErrInvalidPatch), errors.Is(err, uc.ErrInvalidInput):
		router.RespondBadRequest(c, router.ErrBadRequestCode, err.Error(), nil)
	case errors.As(err, &conflict):
		router.RespondWithError(c, http.StatusConflict, &router.Error{
			Code:    router.ErrVersionConflictCode,
			Message: "configuration was modified concurrently; re-read and retry",
			Details: gin.H{"expected_version": conflict.Expected, "current_version": conflict.Current},
		})
	case errors.Is(err, uc.ErrVersionConflict):
		router.RespondWithError(c, http.StatusConflict, router.NewServerError(
			router.ErrVersionConflictCode,
			"configuration was modified concurrently; re-read and retry",
		))
	default:
		logger.FromContext(c.Request.Context()).Error("client configuration request failed", "error", err)
		router.RespondWithServerError(c, router.ErrInternalCode, "internal server error", nil)
	}
}
