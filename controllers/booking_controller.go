package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rese02/pradell-booking-sub000/models"
	"github.com/rese02/pradell-booking-sub000/services"
	"github.com/rese02/pradell-booking-sub000/utils"
)

// BookingController exposes the administrative booking endpoints.
type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

func bookingIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking id")
		return 0, false
	}
	return uint(id), true
}

// CreateBooking (POST /api/bookings)
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	booking, fieldErrs, err := ctrl.BookingSvc.CreateBooking(c.Request.Context(), req)
	if err != nil {
		log.Printf("CreateBooking error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "failed to create booking")
		return
	}
	if !fieldErrs.Empty() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "fieldErrors": fieldErrs})
		return
	}

	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// GetBookings (GET /api/bookings?status=&search=)
func (ctrl *BookingController) GetBookings(c *gin.Context) {
	filter := services.BookingFilter{
		Status: models.BookingStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	list, err := ctrl.BookingSvc.ListBookings(c.Request.Context(), filter)
	if err != nil {
		log.Printf("GetBookings error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "failed to retrieve bookings")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, list)
}

// GetBookingDetails (GET /api/bookings/:id)
func (ctrl *BookingController) GetBookingDetails(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	booking, err := ctrl.BookingSvc.GetBooking(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking not found")
			return
		}
		log.Printf("GetBookingDetails error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "failed to retrieve booking")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, booking)
}

// CancelBooking (POST /api/bookings/:id/cancel)
func (ctrl *BookingController) CancelBooking(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	booking, err := ctrl.BookingSvc.CancelBooking(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking not found")
			return
		}
		log.Printf("CancelBooking error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel booking")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, booking)
}

// DeleteBooking (DELETE /api/bookings/:id)
// Removes the booking and cascades deletion of its uploaded artifacts.
func (ctrl *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.BookingSvc.DeleteBooking(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking not found")
			return
		}
		log.Printf("DeleteBooking error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete booking")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": id})
}

// GetBookingStats (GET /api/bookings/stats)
func (ctrl *BookingController) GetBookingStats(c *gin.Context) {
	stats, err := ctrl.BookingSvc.Stats(c.Request.Context())
	if err != nil {
		log.Printf("GetBookingStats error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	utils.JSONSuccess(c, http.StatusOK, stats)
}
