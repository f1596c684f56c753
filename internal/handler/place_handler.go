package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wanderstay/service-booking/internal/application"
	"github.com/wanderstay/service-booking/internal/auth"
	"github.com/wanderstay/service-booking/internal/middleware"
	"github.com/wanderstay/service-booking/internal/response"
)

// PlaceHandler handles HTTP requests for listing operations.
type PlaceHandler struct {
	service  *application.PlaceService
	bookings *application.BookingService
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(service *application.PlaceService, bookings *application.BookingService) *PlaceHandler {
	return &PlaceHandler{service: service, bookings: bookings}
}

// RegisterRoutes registers all place routes on the given router group.
// Browsing and the availability probe are public; mutations require auth.
func (h *PlaceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	places := r.Group("/api/v1/places")
	{
		places.GET("", h.ListPlaces)
		places.GET("/:id", h.GetPlace)
		places.GET("/:id/availability", h.CheckAvailability)
	}

	mine := r.Group("/api/v1/places")
	mine.Use(authMW)
	{
		mine.POST("", h.CreatePlace)
		mine.GET("/mine/all", h.ListMyPlaces)
		mine.PUT("/:id", h.UpdatePlace)
		mine.POST("/:id/archive", h.ArchivePlace)
	}
}

// ListPlaces handles GET /api/v1/places.
func (h *PlaceHandler) ListPlaces(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListPlaces(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetPlace handles GET /api/v1/places/:id.
func (h *PlaceHandler) GetPlace(c *gin.Context) {
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place ID")
		return
	}

	result, err := h.service.GetPlace(c.Request.Context(), placeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CheckAvailability handles GET /api/v1/places/:id/availability?check_in=...&check_out=...
func (h *PlaceHandler) CheckAvailability(c *gin.Context) {
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place ID")
		return
	}

	checkIn, ok := parseDateParam(c, "check_in")
	if !ok {
		response.BadRequest(c, "check_in must be a YYYY-MM-DD date")
		return
	}
	checkOut, ok := parseDateParam(c, "check_out")
	if !ok {
		response.BadRequest(c, "check_out must be a YYYY-MM-DD date")
		return
	}

	available, err := h.bookings.CheckAvailability(c.Request.Context(), placeID, checkIn, checkOut)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"available": available})
}

// CreatePlace handles POST /api/v1/places.
func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePlace(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListMyPlaces handles GET /api/v1/places/mine/all.
func (h *PlaceHandler) ListMyPlaces(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ListHostPlaces(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePlace handles PUT /api/v1/places/:id.
func (h *PlaceHandler) UpdatePlace(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place ID")
		return
	}

	var req application.UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdatePlace(c.Request.Context(), actor, placeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessMessage(c, "place updated", result)
}

// ArchivePlace handles POST /api/v1/places/:id/archive.
func (h *PlaceHandler) ArchivePlace(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place ID")
		return
	}

	if err := h.service.ArchivePlace(c.Request.Context(), actor, placeID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessMessage(c, "place archived", nil)
}
