package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/aptfolio/backend/api/transport"
	"github.com/aptfolio/backend/domain"
	"github.com/aptfolio/backend/pkg/httpcontext"
	escalationUC "github.com/aptfolio/backend/usecase/escalation"
)

type EscalationHandler struct {
	baseHandler
	engine     *escalationUC.Engine
	runTimeout time.Duration
}

func NewEscalationHandler(engine *escalationUC.Engine, adapter *httpcontext.Adapter, logger *zap.Logger, runTimeout time.Duration) *EscalationHandler {
	if runTimeout <= 0 {
		runTimeout = 10 * time.Minute
	}
	return &EscalationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
		runTimeout:  runTimeout,
	}
}

// @Summary Trigger a rent escalation run
// @Tags escalations
// @Router /api/v1/escalations/run [post]
func (h *EscalationHandler) Run(ctx *fasthttp.RequestCtx) {
	runDate := time.Time{}
	if raw := string(ctx.QueryArgs().Peek("run_date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed run_date", nil))
			return
		}
		runDate = parsed
	}

	// A full scan can outlive the request budget, so it gets its own deadline
	// instead of the adapter's per-request one.
	stdCtx, cancel := h.runContext()
	defer cancel()

	report, err := h.engine.Run(stdCtx, runDate, escalationUC.TriggerManual)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, report)
}

// @Summary List recent escalation run reports
// @Tags escalations
// @Router /api/v1/escalations/runs [get]
func (h *EscalationHandler) Runs(ctx *fasthttp.RequestCtx) {
	limit := 20
	if raw := string(ctx.QueryArgs().Peek("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reports, err := h.engine.RecentRuns(stdCtx, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reports)
}

func (h *EscalationHandler) runContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.runTimeout)
}
