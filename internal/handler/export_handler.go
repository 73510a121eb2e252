package handler

import (
	"bytes"
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/roster-sync-api/internal/service"
	"github.com/rosterd/roster-sync-api/pkg/response"
)

var exportContentTypes = map[service.ExportFormat]string{
	service.ExportCSV: "text/csv",
	service.ExportPDF: "application/pdf",
}

// ExportHandler streams roster and catalog documents.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Roster godoc
// @Summary Download the student roster
// @Tags Exports
// @Produce text/csv
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /exports/roster [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	h.serve(c, h.exports.Roster)
}

// Catalog godoc
// @Summary Download the course catalog
// @Tags Exports
// @Produce text/csv
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /exports/catalog [get]
func (h *ExportHandler) Catalog(c *gin.Context) {
	h.serve(c, h.exports.Catalog)
}

type renderFunc func(ctx context.Context, format service.ExportFormat, w io.Writer) (string, error)

func (h *ExportHandler) serve(c *gin.Context, render renderFunc) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))

	var buf bytes.Buffer
	filename, err := render(c.Request.Context(), format, &buf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, exportContentTypes[format], buf.Bytes())
}
