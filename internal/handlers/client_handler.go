package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/solterra/ventas-api/internal/models"
	"github.com/solterra/ventas-api/internal/services"
)

type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// @Summary List Clients
// @Description Get a paginated list of clients
// @Tags Clients
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name, identity or email"
// @Success 200 {object} map[string]interface{}
// @Router /clients [get]
func (h *ClientHandler) Index(c *gin.Context) {
	query := parseListQuery(c)

	clients, total, err := h.clientService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	var responses []interface{}
	for i := range clients {
		responses = append(responses, clients[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"clients": responses, "pagination": paginationResponse(query, total)})
}

// @Summary Get Client
// @Description Get a client by ID
// @Tags Clients
// @Accept json
// @Produce json
// @Param client_id path int true "Client ID"
// @Success 200 {object} models.ClientResponse
// @Failure 404 {object} map[string]string
// @Router /clients/{client_id} [get]
func (h *ClientHandler) Show(c *gin.Context) {
	client, err := h.clientService.FindByID(c.Request.Context(), paramUint(c, "client_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client.ToResponse()})
}

// @Summary Create Client
// @Description Register a new client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body models.Client true "Client Data"
// @Success 201 {object} models.ClientResponse
// @Failure 409 {object} map[string]string
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var client models.Client
	if err := BindNestedOrFlat(c, "client", &client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.clientService.Create(c.Request.Context(), &client); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"client": client.ToResponse()})
}

// @Summary Update Client
// @Description Update an existing client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client_id path int true "Client ID"
// @Param request body models.Client true "Client Data"
// @Success 200 {object} models.ClientResponse
// @Router /clients/{client_id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	client, err := h.clientService.FindByID(c.Request.Context(), paramUint(c, "client_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := BindNestedOrFlat(c, "client", client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.clientService.Update(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client.ToResponse()})
}

// @Summary Delete Client
// @Description Delete a client that has no sale cases
// @Tags Clients
// @Accept json
// @Produce json
// @Param client_id path int true "Client ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /clients/{client_id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.clientService.Delete(c.Request.Context(), paramUint(c, "client_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cliente eliminado"})
}
