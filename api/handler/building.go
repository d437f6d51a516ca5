package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/aptfolio/backend/api/transport"
	"github.com/aptfolio/backend/domain"
	"github.com/aptfolio/backend/pkg/httpcontext"
	buildingUC "github.com/aptfolio/backend/usecase/building"
)

type BuildingHandler struct {
	baseHandler
	uc *buildingUC.UseCase
}

func NewBuildingHandler(uc *buildingUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *BuildingHandler {
	return &BuildingHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create a building with its fixed apartment set
// @Tags buildings
// @Router /api/v1/buildings [post]
func (h *BuildingHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.BuildingCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	building, err := h.uc.CreateBuilding(stdCtx, buildingUC.CreateInput{
		Name:               req.Name,
		Number:             req.Number,
		Location:           req.Location,
		ApartmentCount:     req.ApartmentCount,
		ApartmentsPerFloor: req.ApartmentsPerFloor,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, building)
}

// @Summary List building summaries
// @Tags buildings
// @Router /api/v1/buildings [get]
func (h *BuildingHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summaries, err := h.uc.ListBuildings(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, summaries)
}

// @Summary Get one building with all apartments
// @Tags buildings
// @Router /api/v1/buildings/{id} [get]
func (h *BuildingHandler) Get(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	building, err := h.uc.GetBuilding(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, building)
}

// @Summary Patch a single apartment
// @Tags buildings
// @Router /api/v1/buildings/{id}/apartments/{apartmentNumber} [put]
func (h *BuildingHandler) UpdateApartment(ctx *fasthttp.RequestCtx) {
	id, apartmentNumber, ok := h.apartmentPath(ctx)
	if !ok {
		return
	}

	patch, err := transport.DecodeApartmentPatch(ctx.PostBody())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	apartment, err := h.uc.UpdateApartment(stdCtx, id, apartmentNumber, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, apartment)
}

// @Summary Clear an apartment back to vacant defaults
// @Tags buildings
// @Router /api/v1/buildings/{id}/apartments/{apartmentNumber} [delete]
func (h *BuildingHandler) ClearApartment(ctx *fasthttp.RequestCtx) {
	id, apartmentNumber, ok := h.apartmentPath(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	apartment, err := h.uc.ClearApartment(stdCtx, id, apartmentNumber)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, apartment)
}

func (h *BuildingHandler) apartmentPath(ctx *fasthttp.RequestCtx) (string, int, bool) {
	id, _ := ctx.UserValue("id").(string)
	raw, _ := ctx.UserValue("apartmentNumber").(string)
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "malformed apartment number", nil))
		return "", 0, false
	}
	return id, number, true
}
