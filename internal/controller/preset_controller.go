package controller

import (
	"net/http"
	"strconv"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
	"audit-log-search/internal/service"

	"github.com/gin-gonic/gin"
)

type PresetController struct {
	presetService service.PresetService
}

func NewPresetController(presetService service.PresetService) *PresetController {
	return &PresetController{
		presetService: presetService,
	}
}

func RegisterPresetRoutes(router *gin.Engine, controller *PresetController) {
	presets := router.Group("/api/v1/logs/presets")
	{
		presets.GET("", controller.ListPresets)
		presets.POST("", controller.CreatePreset)
		presets.GET("/:id", controller.GetPreset)
		presets.DELETE("/:id", controller.DeletePreset)
	}
}

// ListPresets godoc
// @Summary      List saved searches
// @Tags         presets
// @Produce      json
// @Success      200  {array}   dto.PresetResponse
// @Failure      500  {object}  model.Response
// @Router       /api/v1/logs/presets [get]
func (c *PresetController) ListPresets(ctx *gin.Context) {
	presets, err := c.presetService.List(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err, "Failed to list saved searches")
		return
	}
	ctx.JSON(http.StatusOK, presets)
}

// CreatePreset godoc
// @Summary      Save a search
// @Tags         presets
// @Accept       json
// @Produce      json
// @Param        preset  body      dto.PresetRequest  true  "Saved search"
// @Success      201     {object}  dto.PresetResponse
// @Failure      400     {object}  model.Response
// @Failure      409     {object}  model.Response "Name already in use"
// @Router       /api/v1/logs/presets [post]
func (c *PresetController) CreatePreset(ctx *gin.Context) {
	var req dto.PresetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}
	preset, err := c.presetService.Create(ctx.Request.Context(), req)
	if err != nil {
		writeError(ctx, err, "Failed to save search")
		return
	}
	ctx.JSON(http.StatusCreated, preset)
}

// GetPreset godoc
// @Summary      Get a saved search
// @Tags         presets
// @Produce      json
// @Param        id   path      int  true  "Preset ID"
// @Success      200  {object}  dto.PresetResponse
// @Failure      404  {object}  model.Response
// @Router       /api/v1/logs/presets/{id} [get]
func (c *PresetController) GetPreset(ctx *gin.Context) {
	id, ok := presetID(ctx)
	if !ok {
		return
	}
	preset, err := c.presetService.Get(ctx.Request.Context(), id)
	if err != nil {
		writeError(ctx, err, "Failed to get saved search")
		return
	}
	ctx.JSON(http.StatusOK, preset)
}

// DeletePreset godoc
// @Summary      Delete a saved search
// @Tags         presets
// @Param        id   path  int  true  "Preset ID"
// @Success      204
// @Failure      404  {object}  model.Response
// @Router       /api/v1/logs/presets/{id} [delete]
func (c *PresetController) DeletePreset(ctx *gin.Context) {
	id, ok := presetID(ctx)
	if !ok {
		return
	}
	if err := c.presetService.Delete(ctx.Request.Context(), id); err != nil {
		writeError(ctx, err, "Failed to delete saved search")
		return
	}
	ctx.Status(http.StatusNoContent)
}

func presetID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("invalid preset id", nil))
		return 0, false
	}
	return uint(id), true
}
