package controller

import (
	"net/http"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
	"audit-log-search/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	sessionService service.SessionService
}

func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

func RegisterSessionRoutes(router *gin.Engine, controller *SessionController) {
	sessions := router.Group("/api/v1/console/sessions")
	{
		sessions.POST("", controller.CreateSession)
		sessions.GET("/:id", controller.GetSession)
		sessions.PUT("/:id/filter", controller.ApplyFilter)
		sessions.PUT("/:id/sort", controller.ApplySort)
		sessions.POST("/:id/load", controller.Load)
		sessions.POST("/:id/next", controller.Next)
		sessions.POST("/:id/columns/:column", controller.ToggleColumn)
		sessions.DELETE("/:id", controller.DeleteSession)
	}
}

// CreateSession godoc
// @Summary      Open a console search session
// @Description  Creates a server-held search session with the given filter, time range and sort. Nothing is fetched until load is called.
// @Tags         console
// @Accept       json
// @Produce      json
// @Param        session  body      dto.SessionRequest  false  "Initial filter, time range and sort"
// @Success      201      {object}  dto.SessionView
// @Failure      400      {object}  model.Response
// @Failure      429      {object}  model.Response "Too many open sessions"
// @Router       /api/v1/console/sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.SessionRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
			return
		}
	}
	view, err := c.sessionService.Create(ctx.Request.Context(), req)
	if err != nil {
		writeError(ctx, err, "Failed to create session")
		return
	}
	ctx.JSON(http.StatusCreated, view)
}

// GetSession godoc
// @Summary      Get the view of a session
// @Tags         console
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.SessionView
// @Failure      404  {object}  model.Response
// @Router       /api/v1/console/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	view, err := c.sessionService.View(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err, "Failed to get session")
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// ApplyFilter godoc
// @Summary      Replace the filter and time range
// @Description  Resets the page cursor when the filter changed; the next load or next call starts a fresh search.
// @Tags         console
// @Accept       json
// @Produce      json
// @Param        id      path      string              true  "Session ID"
// @Param        filter  body      dto.SessionRequest  true  "Filter and time range"
// @Success      200     {object}  dto.SessionView
// @Failure      400     {object}  model.Response
// @Failure      404     {object}  model.Response
// @Router       /api/v1/console/sessions/{id}/filter [put]
func (c *SessionController) ApplyFilter(ctx *gin.Context) {
	var req dto.SessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}
	view, err := c.sessionService.ApplyFilter(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		writeError(ctx, err, "Failed to apply filter")
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// ApplySort godoc
// @Summary      Change the sort direction
// @Description  Resets the session and reloads page 0.
// @Tags         console
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Session ID"
// @Param        sort  body      dto.SortRequest  true  "Sort direction"
// @Success      200   {object}  dto.PageResponse
// @Failure      400   {object}  model.Response
// @Failure      404   {object}  model.Response
// @Router       /api/v1/console/sessions/{id}/sort [put]
func (c *SessionController) ApplySort(ctx *gin.Context) {
	var req dto.SortRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}
	page, err := c.sessionService.ApplySort(ctx.Request.Context(), ctx.Param("id"), req.Direction)
	if err != nil {
		writeError(ctx, err, "Failed to apply sort")
		return
	}
	ctx.JSON(http.StatusOK, page)
}

// Load godoc
// @Summary      Start the search from page 0
// @Tags         console
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.PageResponse
// @Failure      404  {object}  model.Response
// @Router       /api/v1/console/sessions/{id}/load [post]
func (c *SessionController) Load(ctx *gin.Context) {
	page, err := c.sessionService.Load(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err, "Failed to load session")
		return
	}
	ctx.JSON(http.StatusOK, page)
}

// Next godoc
// @Summary      Load the next page
// @Description  Outcome is busy when a fetch of the session is still pending.
// @Tags         console
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.PageResponse
// @Failure      404  {object}  model.Response
// @Router       /api/v1/console/sessions/{id}/next [post]
func (c *SessionController) Next(ctx *gin.Context) {
	page, err := c.sessionService.Next(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeError(ctx, err, "Failed to load next page")
		return
	}
	ctx.JSON(http.StatusOK, page)
}

// ToggleColumn godoc
// @Summary      Toggle a visible column
// @Tags         console
// @Produce      json
// @Param        id      path      string  true  "Session ID"
// @Param        column  path      string  true  "Column ID"
// @Success      200     {object}  dto.SessionView
// @Failure      400     {object}  model.Response
// @Failure      404     {object}  model.Response
// @Router       /api/v1/console/sessions/{id}/columns/{column} [post]
func (c *SessionController) ToggleColumn(ctx *gin.Context) {
	view, err := c.sessionService.ToggleColumn(ctx.Request.Context(), ctx.Param("id"), ctx.Param("column"))
	if err != nil {
		writeError(ctx, err, "Failed to toggle column")
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// DeleteSession godoc
// @Summary      Close a session
// @Tags         console
// @Param        id   path  string  true  "Session ID"
// @Success      204
// @Failure      404  {object}  model.Response
// @Router       /api/v1/console/sessions/{id} [delete]
func (c *SessionController) DeleteSession(ctx *gin.Context) {
	if err := c.sessionService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		writeError(ctx, err, "Failed to delete session")
		return
	}
	ctx.Status(http.StatusNoContent)
}
