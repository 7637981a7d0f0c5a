package handler

import (
	"errors"
	"net/http"

	"github.com/eventify/eventify-api/internal/dto"
	"github.com/eventify/eventify-api/internal/middleware"
	"github.com/eventify/eventify-api/internal/models"
	"github.com/eventify/eventify-api/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TicketHandler struct {
	svc service.TicketService
}

func NewTicketHandler(svc service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func (h *TicketHandler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	tickets := api.Group("/tickets", authn)
	tickets.POST("", h.Purchase, middleware.RequireRole(models.RoleBuyer))
	tickets.GET("", h.ListMyTickets)
	tickets.GET("/:id", h.GetTicket)
	tickets.DELETE("/:id", h.CancelTicket)
}

func (h *TicketHandler) Purchase(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)

	var req dto.PurchaseTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EventID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id is required")
	}

	ticket, err := h.svc.Purchase(c.Request().Context(), req.EventID, id.UserID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCapacityExceeded):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrBusy):
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to purchase ticket")
		}
	}

	return c.JSON(http.StatusCreated, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) ListMyTickets(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)

	tickets, err := h.svc.ListUserTickets(c.Request().Context(), id.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list tickets")
	}

	resp := make([]dto.TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = dto.ToTicketResponse(&t)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid ticket id")
	}

	ticket, err := h.svc.GetTicket(c.Request().Context(), ticketID, id.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load ticket")
		}
	}

	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) CancelTicket(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid ticket id")
	}

	ticket, err := h.svc.Cancel(c.Request().Context(), ticketID, id.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to cancel ticket")
		}
	}

	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}
