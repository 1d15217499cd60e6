package controller

import (
	"net/http"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/logquery"
	"audit-log-search/internal/model"
	"audit-log-search/internal/service"

	"github.com/gin-gonic/gin"
)

type LogController struct {
	logQueryService service.LogQueryService
}

func NewLogController(logQueryService service.LogQueryService) *LogController {
	return &LogController{
		logQueryService: logQueryService,
	}
}

func RegisterLogRoutes(router *gin.Engine, controller *LogController) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/logs/search", controller.SearchLogs)
		v1.GET("/session/features", controller.GetFeatures)
	}
}

// SearchLogs godoc
// @Summary      Search audit logs
// @Description  Returns one page of request-info audit records matching every filter pair, ordered by time.
// @Tags         logs
// @Produce      json
// @Param        q          query     string    false  "Search kind, only reqinfo is served" Enums(reqinfo)
// @Param        fp         query     []string  false  "Filter pair field:pattern; * matches any run, . one character, \ escapes" collectionFormat(multi)
// @Param        pageSize   query     int       false  "Records per page (default: 100, max: 1000)" minimum(1) maximum(1000)
// @Param        pageNo     query     int       false  "Zero-based page index; the page must end within the first 10000 records" minimum(0)
// @Param        order      query     string    false  "Sort order (default: timeDesc)" Enums(timeAsc, timeDesc)
// @Param        timeStart  query     string    false  "Inclusive start, ISO 8601 or epoch milliseconds"
// @Param        timeEnd    query     string    false  "Inclusive end, ISO 8601 or epoch milliseconds"
// @Success      200        {object}  dto.LogSearchResponse
// @Failure      400        {object}  model.Response "Invalid query parameters"
// @Failure      503        {object}  model.Response "Log search is not enabled"
// @Failure      500        {object}  model.Response "Internal server error"
// @Router       /api/v1/logs/search [get]
func (c *LogController) SearchLogs(ctx *gin.Context) {
	req, err := logquery.Decode(ctx.Request.URL.Query())
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse(err.Error(), nil))
		return
	}

	result, err := c.logQueryService.Search(ctx.Request.Context(), req)
	if err != nil {
		writeError(ctx, err, "Failed to search audit logs")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetFeatures godoc
// @Summary      List enabled features
// @Tags         session
// @Produce      json
// @Success      200  {object}  dto.FeaturesResponse
// @Router       /api/v1/session/features [get]
func (c *LogController) GetFeatures(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.FeaturesResponse{Features: c.logQueryService.Features()})
}
