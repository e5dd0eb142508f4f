package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/smb-finance-ledger/internal/core/service"
)

// ReportHandler serves profit and loss reports
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// PnL handles GET /reports/pnl?scope=company&from=2024-01-01&to=2024-01-31
func (h *ReportHandler) PnL(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var query PnLQuery
	if !bindQuery(c, h.logger, &query) {
		return
	}

	report, err := h.reportService.ProfitAndLoss(c.Request.Context(), caller, service.Scope(query.Scope), parseDate(query.From), parseDate(query.To))
	if err != nil {
		RespondWithServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, report)
}
