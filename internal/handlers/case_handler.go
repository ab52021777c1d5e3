package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/services"
)

type CaseHandler struct {
	caseService *services.CaseService
}

func NewCaseHandler(caseService *services.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// CreateCaseRequest is the JSON payload for opening a sale case
type CreateCaseRequest struct {
	UnitID              uint            `json:"unit_id" binding:"required"`
	ClientID            uint            `json:"client_id" binding:"required"`
	SalePrice           decimal.Decimal `json:"sale_price" binding:"required"`
	PlanName            string          `json:"plan_name"`
	DownPaymentPct      decimal.Decimal `json:"down_payment_pct"`
	DownPaymentAmount   decimal.Decimal `json:"down_payment_amount"`
	MonthlyCount        int             `json:"monthly_count"`
	MonthlyAmount       decimal.Decimal `json:"monthly_amount"`
	FinalPaymentPct     decimal.Decimal `json:"final_payment_pct"`
	FinalPaymentAmount  decimal.Decimal `json:"final_payment_amount"`
	BrokerName          *string         `json:"broker_name"`
	BrokerCommissionPct decimal.Decimal `json:"broker_commission_pct"`
	Notes               *string         `json:"notes"`
}

// @Summary List Cases
// @Description Get a paginated list of sale cases
// @Tags Cases
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by case number, client or unit"
// @Param status query string false "Filter by status"
// @Param client_id query string false "Filter by client"
// @Param unit_id query string false "Filter by unit"
// @Success 200 {object} map[string]interface{}
// @Router /cases [get]
func (h *CaseHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["status"] = c.Query("status")
	query.Filters["client_id"] = c.Query("client_id")
	query.Filters["unit_id"] = c.Query("unit_id")

	cases, total, err := h.caseService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for i := range cases {
		responses = append(responses, cases[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"cases": responses, "pagination": paginationResponse(query, total)})
}

// @Summary Get Case
// @Description Get a sale case with its schedule, payments and summary
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} models.CaseResponse
// @Failure 404 {object} map[string]string
// @Router /cases/{case_id} [get]
func (h *CaseHandler) Show(c *gin.Context) {
	saleCase, summary, err := h.caseService.FindByIDWithDetails(c.Request.Context(), paramUint(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := saleCase.ToResponse()
	resp.Summary = summary

	c.JSON(http.StatusOK, gin.H{"case": resp})
}

// @Summary Create Case
// @Description Open a sale case for a unit and client, reserving the unit
// @Tags Cases
// @Accept json
// @Produce json
// @Param request body CreateCaseRequest true "Case Data"
// @Success 201 {object} models.CaseResponse
// @Failure 409 {object} map[string]string
// @Router /cases [post]
func (h *CaseHandler) Create(c *gin.Context) {
	var req CreateCaseRequest
	if err := BindNestedOrFlat(c, "case", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saleCase, err := h.caseService.Create(c.Request.Context(), services.CreateCaseInput{
		UnitID:              req.UnitID,
		ClientID:            req.ClientID,
		SalePrice:           req.SalePrice,
		PlanName:            req.PlanName,
		DownPaymentPct:      req.DownPaymentPct,
		DownPaymentAmount:   req.DownPaymentAmount,
		MonthlyCount:        req.MonthlyCount,
		MonthlyAmount:       req.MonthlyAmount,
		FinalPaymentPct:     req.FinalPaymentPct,
		FinalPaymentAmount:  req.FinalPaymentAmount,
		BrokerName:          req.BrokerName,
		BrokerCommissionPct: req.BrokerCommissionPct,
		Notes:               req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"case": saleCase.ToResponse()})
}

// @Summary Update Case
// @Description Update the editable fields of a sale case
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body object true "Case Data"
// @Success 200 {object} models.CaseResponse
// @Router /cases/{case_id} [put]
func (h *CaseHandler) Update(c *gin.Context) {
	saleCase, err := h.caseService.FindByID(c.Request.Context(), paramUint(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		PlanName            *string          `json:"plan_name"`
		BrokerName          *string          `json:"broker_name"`
		BrokerCommissionPct *decimal.Decimal `json:"broker_commission_pct"`
		Notes               *string          `json:"notes"`
	}
	if err := BindNestedOrFlat(c, "case", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Financial terms and status are immutable here; transitions have their own routes
	if req.PlanName != nil {
		saleCase.PlanName = *req.PlanName
	}
	if req.BrokerName != nil {
		saleCase.BrokerName = req.BrokerName
	}
	if req.BrokerCommissionPct != nil {
		saleCase.BrokerCommissionPct = *req.BrokerCommissionPct
	}
	if req.Notes != nil {
		saleCase.Notes = req.Notes
	}

	if err := h.caseService.Update(c.Request.Context(), saleCase); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": saleCase.ToResponse()})
}

// @Summary Activate Case
// @Description Activate a pending case, generating its payment schedule. Also serves resume: an on-hold case returns to active keeping its schedule.
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body object false "Optional schedule start date"
// @Success 200 {object} models.CaseResponse
// @Failure 422 {object} map[string]string
// @Router /cases/{case_id}/activate [post]
// @Router /cases/{case_id}/resume [post]
func (h *CaseHandler) Activate(c *gin.Context) {
	var req struct {
		ScheduleStart string `json:"schedule_start"`
	}
	// Body is optional; ignore bind errors on an empty body
	_ = c.ShouldBindJSON(&req)

	var start time.Time
	if req.ScheduleStart != "" {
		parsed, err := time.Parse("2006-01-02", req.ScheduleStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fecha de inicio inválida, use YYYY-MM-DD"})
			return
		}
		start = parsed
	}

	saleCase, err := h.caseService.Activate(c.Request.Context(), paramUint(c, "case_id"), start)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": saleCase.ToResponse()})
}

// @Summary Generate Contract
// @Description Mark an active case as having its contract generated
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} models.CaseResponse
// @Failure 422 {object} map[string]string
// @Router /cases/{case_id}/generate-contract [post]
func (h *CaseHandler) GenerateContract(c *gin.Context) {
	var req struct {
		DocumentPath *string `json:"document_path"`
	}
	_ = c.ShouldBindJSON(&req)

	saleCase, err := h.caseService.GenerateContract(c.Request.Context(), paramUint(c, "case_id"), req.DocumentPath)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": saleCase.ToResponse()})
}

// @Summary Execute Case
// @Description Execute a contract-generated case, marking the unit as sold
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} models.CaseResponse
// @Failure 422 {object} map[string]string
// @Router /cases/{case_id}/execute [post]
func (h *CaseHandler) Execute(c *gin.Context) {
	saleCase, err := h.caseService.Execute(c.Request.Context(), paramUint(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": saleCase.ToResponse()})
}

// @Summary Cancel Case
// @Description Cancel an open case, releasing its unit back to inventory
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body object false "Optional cancellation reason"
// @Success 200 {object} models.CaseResponse
// @Failure 422 {object} map[string]string
// @Router /cases/{case_id}/cancel [post]
func (h *CaseHandler) Cancel(c *gin.Context) {
	var req struct {
		Reason *string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	saleCase, err := h.caseService.Cancel(c.Request.Context(), paramUint(c, "case_id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": saleCase.ToResponse()})
}

// @Summary Hold Case
// @Description Place a pending or active case on hold
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} models.CaseResponse
// @Failure 422 {object} map[string]string
// @Router /cases/{case_id}/hold [post]
func (h *CaseHandler) Hold(c *gin.Context) {
	saleCase, err := h.caseService.Hold(c.Request.Context(), paramUint(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": saleCase.ToResponse()})
}

// @Summary List Installments
// @Description Get the payment schedule of a case ordered by sequence
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} map[string]interface{}
// @Router /cases/{case_id}/installments [get]
func (h *CaseHandler) Installments(c *gin.Context) {
	installments, err := h.caseService.ListInstallments(c.Request.Context(), paramUint(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for i := range installments {
		responses = append(responses, installments[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"installments": responses})
}

// @Summary Waive Installment
// @Description Forgive an unpaid installment of a case
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param installment_id path int true "Installment ID"
// @Success 200 {object} models.InstallmentResponse
// @Failure 422 {object} map[string]string
// @Router /cases/{case_id}/installments/{installment_id}/waive [post]
func (h *CaseHandler) WaiveInstallment(c *gin.Context) {
	installment, err := h.caseService.WaiveInstallment(
		c.Request.Context(), paramUint(c, "case_id"), paramUint(c, "installment_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"installment": installment.ToResponse()})
}

// @Summary Case Summary
// @Description Get recomputed financial totals for a case
// @Tags Cases
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} models.CaseSummary
// @Failure 404 {object} map[string]string
// @Router /cases/{case_id}/summary [get]
func (h *CaseHandler) Summary(c *gin.Context) {
	summary, err := h.caseService.Summary(c.Request.Context(), paramUint(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
