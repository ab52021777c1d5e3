package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/solterra/ventas-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func sendDownload(c *gin.Context, data []byte, filename, contentType string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// @Summary Overdue Report
// @Description Download the overdue installment portfolio as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file
// @Router /reports/overdue [get]
func (h *ReportHandler) OverdueCSV(c *gin.Context) {
	data, filename, err := h.reportService.GenerateOverdueCSV(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	sendDownload(c, data, filename, "text/csv")
}

// @Summary Collection Report
// @Description Download payments collected in a month as XLSX
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /reports/collection [get]
func (h *ReportHandler) CollectionXLSX(c *gin.Context) {
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))

	data, filename, err := h.reportService.GenerateCollectionXLSX(c.Request.Context(), month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	sendDownload(c, data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// @Summary Case Statement
// @Description Download the account statement of a case as PDF
// @Tags Reports
// @Produce application/pdf
// @Param case_id path int true "Case ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Router /reports/cases/{case_id}/statement [get]
func (h *ReportHandler) CaseStatementPDF(c *gin.Context) {
	data, filename, err := h.reportService.GenerateCaseStatementPDF(c.Request.Context(), paramUint(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendDownload(c, data, filename, "application/pdf")
}
