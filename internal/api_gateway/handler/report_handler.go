package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wallet-ledger/internal/api_gateway/service"
)

const defaultReportWindow = 24 * time.Hour

type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
	now           func() time.Time
}

func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, logger: logger, now: time.Now}
}

// ArchivedLogs serves the MongoDB copy of the transaction log for a time window.
func (h *ReportHandler) ArchivedLogs(c *gin.Context) {
	var (
		p PaginationParams
		r TimeRangeParams
	)
	if err := c.ShouldBindQuery(&p); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}
	if err := c.ShouldBindQuery(&r); err != nil {
		RespondBadRequest(c, "Invalid time range")
		return
	}

	to := h.now().UTC()
	if r.To != "" {
		t, err := time.Parse(time.RFC3339, r.To)
		if err != nil {
			RespondBadRequest(c, "to must be an RFC 3339 timestamp")
			return
		}
		to = t
	}
	from := to.Add(-defaultReportWindow)
	if r.From != "" {
		t, err := time.Parse(time.RFC3339, r.From)
		if err != nil {
			RespondBadRequest(c, "from must be an RFC 3339 timestamp")
			return
		}
		from = t
	}

	entries, total, err := h.reportService.ArchivedLogs(c.Request.Context(), from, to, p.Limit(), p.Offset())
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	out, err := mapEntries(entries)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	RespondWithPaginatedData(c, http.StatusOK, out, p, total)
}
