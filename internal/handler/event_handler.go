package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/eventify/eventify-api/internal/dto"
	"github.com/eventify/eventify-api/internal/middleware"
	"github.com/eventify/eventify-api/internal/models"
	"github.com/eventify/eventify-api/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	events := api.Group("/events")
	events.GET("", h.ListEvents)
	events.GET("/:id", h.GetEvent)

	organizer := events.Group("", authn, middleware.RequireRole(models.RoleOrganizer))
	organizer.POST("", h.CreateEvent)
	organizer.PUT("/:id", h.UpdateEvent)
	organizer.DELETE("/:id", h.DeleteEvent)
	organizer.GET("/mine", h.ListMyEvents)
	organizer.GET("/:id/stats", h.EventStats)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)

	var req dto.EventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	event, err := h.svc.CreateEvent(c.Request().Context(), id.UserID, eventInput(req))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create event")
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	eventID, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event, err := h.svc.GetEvent(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load event")
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListEvents(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events")
	}

	resp := make([]dto.EventResponse, len(events))
	for i, e := range events {
		resp[i] = dto.ToEventResponse(&e)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) ListMyEvents(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)

	events, err := h.svc.ListOrganizerEvents(c.Request().Context(), id.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events")
	}

	resp := make([]dto.EventResponse, len(events))
	for i, e := range events {
		resp[i] = dto.ToEventResponse(&e)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)

	eventID, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	var req dto.EventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	event, err := h.svc.UpdateEvent(c.Request().Context(), eventID, id.UserID, eventInput(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			return echo.NewHTTPError(http.StatusForbidden, "you don't have permission to edit this event")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to update event")
		}
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)

	eventID, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	if err := h.svc.DeleteEvent(c.Request().Context(), eventID, id.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			return echo.NewHTTPError(http.StatusForbidden, "you don't have permission to delete this event")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete event")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) EventStats(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)

	eventID, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	stats, err := h.svc.EventStats(c.Request().Context(), eventID, id.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			return echo.NewHTTPError(http.StatusForbidden, "you don't have permission to view these stats")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load stats")
		}
	}

	return c.JSON(http.StatusOK, stats)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func eventInput(req dto.EventRequest) service.EventInput {
	return service.EventInput{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		TotalTickets: req.TotalTickets,
	}
}
