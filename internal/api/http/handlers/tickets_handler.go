package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-tickets/internal/api/dto"
	"github.com/spec-kit/support-tickets/internal/auth"
	"github.com/spec-kit/support-tickets/internal/domain"
	"github.com/spec-kit/support-tickets/internal/service"
	apperrors "github.com/spec-kit/support-tickets/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service  *service.TicketService
	validate *RequestValidator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, validate *RequestValidator) *TicketsHandler {
	return &TicketsHandler{service: ticketService, validate: validate}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	ticket, effects, err := h.service.CreateTicket(c.UserContext(), service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		UserID:      principal.SubjectID,
	})
	if err != nil && !effects.Persisted {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":         ticketDetail(ticket),
		"side_effects": sideEffects(effects),
	})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseQueryInt(c.Query("page"), 1)
	pageSize := parseQueryInt(c.Query("page_size"), 20)

	tickets, err := h.service.ListUserTickets(c.UserContext(), principal.SubjectID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	if principal.Role != domain.RoleAdmin && ticket.UserID != principal.SubjectID {
		return apperrors.NewForbidden("access denied")
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ChangeStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	ticket, effects, err := h.service.ChangeStatus(c.UserContext(), ticketID, req.Status)
	if err != nil && !effects.Persisted {
		return err
	}
	return c.JSON(fiber.Map{
		"data":         ticketDetail(ticket),
		"side_effects": sideEffects(effects),
	})
}

// ChangePriority PATCH /api/tickets/:id/priority.
func (h *TicketsHandler) ChangePriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.ChangePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	ticket, effects, err := h.service.ChangePriority(c.UserContext(), ticketID, req.Priority, req.Justification, principal.Role)
	if err != nil && !effects.Persisted {
		return err
	}
	return c.JSON(fiber.Map{
		"data":         ticketDetail(ticket),
		"side_effects": sideEffects(effects),
	})
}

// AddResponse POST /api/tickets/:id/responses.
func (h *TicketsHandler) AddResponse(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.CreateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	response, effects, err := h.service.AddResponse(c.UserContext(), ticketID, req.Text, principal.SubjectID)
	if err != nil && !effects.Persisted {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":         responseResponse(response),
		"side_effects": sideEffects(effects),
	})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	effects, err := h.service.DeleteTicket(c.UserContext(), ticketID)
	if err != nil && !effects.Persisted {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func ticketIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func parseQueryInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:        ticket.ID,
		Title:     ticket.Title,
		Status:    ticket.Status,
		Priority:  ticket.Priority,
		UserID:    ticket.UserID,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	responses := make([]dto.ResponseResponse, 0, len(ticket.Responses))
	for i := range ticket.Responses {
		responses = append(responses, responseResponse(&ticket.Responses[i]))
	}
	return dto.TicketDetailResponse{
		ID:                    ticket.ID,
		Title:                 ticket.Title,
		Description:           ticket.Description,
		Status:                ticket.Status,
		Priority:              ticket.Priority,
		PriorityJustification: ticket.PriorityJustification,
		UserID:                ticket.UserID,
		Responses:             responses,
		CreatedAt:             ticket.CreatedAt,
		UpdatedAt:             ticket.UpdatedAt,
	}
}

func responseResponse(resp *domain.AdminResponse) dto.ResponseResponse {
	return dto.ResponseResponse{
		ID:        resp.ID,
		Text:      resp.Text,
		AdminID:   resp.AdminID,
		CreatedAt: resp.CreatedAt,
	}
}

func sideEffects(effects service.SideEffects) dto.SideEffectsResponse {
	return dto.SideEffectsResponse{Persisted: effects.Persisted, Published: effects.Published}
}
