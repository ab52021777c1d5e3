package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/solterra/ventas-api/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest is the JSON payload for submitting a payment
type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaidAt        string          `json:"paid_at" binding:"required"`
	Category      string          `json:"category" binding:"required"`
	InstallmentID *uint           `json:"installment_id"`
	Channel       *string         `json:"channel"`
	Reference     *string         `json:"reference"`
	ProofPaths    *string         `json:"proof_paths"`
	Notes         *string         `json:"notes"`
}

// @Summary List Payments
// @Description Get a paginated list of payments across cases
// @Tags Payments
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by case number, client or reference"
// @Param case_id query string false "Filter by case"
// @Param category query string false "Filter by category"
// @Param verified query string false "Filter by verification"
// @Param from query string false "Paid from date (YYYY-MM-DD)"
// @Param to query string false "Paid to date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := parseListQuery(c)
	query.Filters["case_id"] = c.Query("case_id")
	query.Filters["category"] = c.Query("category")
	query.Filters["verified"] = c.Query("verified")
	query.Filters["from"] = c.Query("from")
	query.Filters["to"] = c.Query("to")

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"payments": responses, "pagination": paginationResponse(query, total)})
}

// @Summary Get Payment
// @Description Get a payment by ID
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	payment, err := h.paymentService.FindByID(c.Request.Context(), paramUint(c, "payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Record Payment
// @Description Record a payment against a case, optionally allocating it to an installment
// @Tags Payments
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Param request body RecordPaymentRequest true "Payment Data"
// @Success 201 {object} models.PaymentResponse
// @Failure 409 {object} map[string]string
// @Router /cases/{case_id}/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req RecordPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paidAt, err := time.Parse("2006-01-02", req.PaidAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fecha de pago inválida, use YYYY-MM-DD"})
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), paramUint(c, "case_id"), services.PaymentInput{
		Amount:        req.Amount,
		PaidAt:        paidAt,
		Category:      req.Category,
		InstallmentID: req.InstallmentID,
		Channel:       req.Channel,
		Reference:     req.Reference,
		ProofPaths:    req.ProofPaths,
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment.ToResponse()})
}

// @Summary Case Payments
// @Description Get all payments of a case in chronological order
// @Tags Payments
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} map[string]interface{}
// @Router /cases/{case_id}/payments [get]
func (h *PaymentHandler) ByCase(c *gin.Context) {
	payments, err := h.paymentService.FindByCase(c.Request.Context(), paramUint(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"payments": responses})
}

// @Summary Verify Payment
// @Description Mark a payment as verified against a bank statement
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Router /payments/{payment_id}/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	payment, err := h.paymentService.Verify(c.Request.Context(), paramUint(c, "payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Next Unpaid Installment
// @Description Get the lowest-sequence unpaid installment of a case
// @Tags Payments
// @Accept json
// @Produce json
// @Param case_id path int true "Case ID"
// @Success 200 {object} models.InstallmentResponse
// @Router /cases/{case_id}/installments/next-unpaid [get]
func (h *PaymentHandler) NextUnpaid(c *gin.Context) {
	installment, err := h.paymentService.NextUnpaidInstallment(c.Request.Context(), paramUint(c, "case_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if installment == nil {
		c.JSON(http.StatusOK, gin.H{"installment": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"installment": installment.ToResponse()})
}
