package controller

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
	"audit-log-search/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxAuditBody = 8 << 20

type AuditController struct {
	ingestService service.AuditIngestService
	apiKey        string
}

func NewAuditController(ingestService service.AuditIngestService, apiKey string) *AuditController {
	return &AuditController{
		ingestService: ingestService,
		apiKey:        apiKey,
	}
}

func RegisterAuditRoutes(router *gin.Engine, controller *AuditController) {
	router.POST("/api/v1/audit", controller.requireAPIKey, controller.IngestAudit)
}

// requireAPIKey accepts the key either raw or as a bearer token. No key
// configured means no check.
func (c *AuditController) requireAPIKey(ctx *gin.Context) {
	if c.apiKey == "" {
		ctx.Next()
		return
	}
	token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(c.apiKey)) != 1 {
		ctx.AbortWithStatusJSON(http.StatusForbidden, model.NewResponse("invalid audit token", nil))
		return
	}
	ctx.Next()
}

// IngestAudit godoc
// @Summary      Ingest audit entries
// @Description  Webhook for an object storage HTTP audit target. Accepts one entry or a JSON array of entries; an empty object is accepted as a probe.
// @Tags         audit
// @Accept       json
// @Produce      json
// @Param        entry  body      dto.AuditEntry  true  "Audit entry"
// @Success      202    {object}  dto.IngestResponse
// @Failure      400    {object}  model.Response "Malformed entry"
// @Failure      403    {object}  model.Response "Invalid token"
// @Failure      500    {object}  model.Response "Internal server error"
// @Security     Bearer
// @Router       /api/v1/audit [post]
func (c *AuditController) IngestAudit(ctx *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxAuditBody))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("failed to read body", nil))
		return
	}

	entries, err := decodeAuditEntries(body)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected malformed audit payload")
		ctx.JSON(http.StatusBadRequest, model.NewResponse("malformed audit entry: "+err.Error(), nil))
		return
	}

	accepted, err := c.ingestService.Ingest(ctx.Request.Context(), entries)
	if err != nil {
		writeError(ctx, err, "Failed to ingest audit entries")
		return
	}
	ctx.JSON(http.StatusAccepted, dto.IngestResponse{Accepted: accepted})
}

func decodeAuditEntries(body []byte) ([]dto.AuditEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var entries []dto.AuditEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	var entry dto.AuditEntry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return nil, err
	}
	return []dto.AuditEntry{entry}, nil
}
