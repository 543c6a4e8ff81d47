package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/journal/internal/config"
	"github.com/geocoder89/journal/internal/domain/entry"
	"github.com/geocoder89/journal/internal/http/middlewares"
	"github.com/geocoder89/journal/internal/observability"
	"github.com/geocoder89/journal/internal/service"
	"github.com/gin-gonic/gin"
)

type Ledger interface {
	Submit(ctx context.Context, userID, promptID int64, text string) (int64, error)
	EditableNow(ctx context.Context, entryID, userID int64) (bool, error)
	Update(ctx context.Context, entryID, userID int64, text string) error
	List(ctx context.Context, userID int64, q service.ListQuery) (entry.Page, error)
}

type EntriesHandler struct {
	ledger Ledger
	prom   *observability.Prom
}

func NewEntriesHandler(ledger Ledger, prom *observability.Prom) *EntriesHandler {
	return &EntriesHandler{ledger: ledger, prom: prom}
}

type SubmitRequest struct {
	QuestionID int64  `json:"question_id" binding:"required,gt=0"`
	Text       string `json:"text" binding:"required"`
	AnswerID   *int64 `json:"answer_id"`
}

type ListEntriesQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=0"`
	Limit      int    `form:"limit" binding:"omitempty,min=0"`
	Search     string `form:"search"`
	SearchType string `form:"searchType"`
}

func (h *EntriesHandler) CanEdit(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	entryID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || entryID <= 0 {
		RespondBadRequest(ctx, "Invalid answer id", gin.H{"id": ctx.Param("id")})
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	editable, err := h.ledger.EditableNow(cctx, entryID, userID)
	if err != nil {
		RespondServiceError(ctx, err, "Could not check entry")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"canEdit": editable})
}

// Submit creates an entry, or edits one when answer_id is present.
func (h *EntriesHandler) Submit(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req SubmitRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	op := "create"
	var err error

	if req.AnswerID != nil {
		op = "update"
		err = h.ledger.Update(cctx, *req.AnswerID, userID, req.Text)
	} else {
		_, err = h.ledger.Submit(cctx, userID, req.QuestionID, req.Text)
	}

	if err != nil {
		h.prom.IncEntryWrite(op, "error")
		RespondServiceError(ctx, err, "Could not save entry")
		return
	}

	h.prom.IncEntryWrite(op, "ok")
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *EntriesHandler) List(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var q ListEntriesQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(ctx, "Invalid query parameters", parseBindError(err, &q))
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	page, err := h.ledger.List(cctx, userID, service.ListQuery{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
		Scope:  entry.ParseScope(q.SearchType),
	})
	if err != nil {
		RespondServiceError(ctx, err, "Could not list entries")
		return
	}

	respondWithETag(ctx, entriesETag(page), page)
}
