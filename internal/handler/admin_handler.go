package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wanderstay/service-booking/internal/application"
	"github.com/wanderstay/service-booking/internal/auth"
	"github.com/wanderstay/service-booking/internal/middleware"
	"github.com/wanderstay/service-booking/internal/response"
)

// AdminHandler handles administrative HTTP endpoints.
type AdminHandler struct {
	bookings *application.BookingService
	payments *application.PaymentService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, payments *application.PaymentService) *AdminHandler {
	return &AdminHandler{bookings: bookings, payments: payments}
}

// RegisterRoutes registers admin routes. Everything here requires the admin role.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.POST("/bookings/:id/complete", h.CompleteBooking)
		admin.POST("/bookings/:id/refund", h.RefundBooking)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/stats/revenue", h.RevenueStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// CompleteBooking handles POST /api/v1/admin/bookings/:id/complete.
func (h *AdminHandler) CompleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.bookings.CompleteBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessMessage(c, "booking completed", result)
}

// RefundBooking handles POST /api/v1/admin/bookings/:id/refund.
func (h *AdminHandler) RefundBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.payments.RefundBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessMessage(c, "booking refunded", result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	result, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RevenueStats handles GET /api/v1/admin/stats/revenue.
func (h *AdminHandler) RevenueStats(c *gin.Context) {
	result, err := h.payments.GetRevenueStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
