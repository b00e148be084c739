package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rese02/pradell-booking-sub000/services"
)

// IntakeController is the guest-facing surface: loading the intake session
// behind the single-use link and submitting one step of the form.
type IntakeController struct {
	IntakeSvc *services.IntakeService
}

func NewIntakeController(svc *services.IntakeService) *IntakeController {
	return &IntakeController{IntakeSvc: svc}
}

// GetSession (GET /api/guest/:token)
// Returns the stay facts and the persisted guest record so the client state
// machine can resume where the guest left off.
func (ctrl *IntakeController) GetSession(c *gin.Context) {
	token := c.Param("token")

	booking, err := ctrl.IntakeSvc.Session(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found, please contact the hotel"})
			return
		}
		log.Printf("GetSession error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guestName":  booking.GuestName,
		"priceTotal": booking.PriceTotal,
		"checkIn":    booking.CheckIn,
		"checkOut":   booking.CheckOut,
		"rooms":      booking.Rooms,
		"status":     booking.Status,
		"guestData":  booking.GuestData,
		"totalSteps": services.TotalSteps,
	})
}

// readUploads pulls every file field of the multipart form fully into memory
// before the coordinator runs, so a broken upload stream can never interrupt
// a half-done artifact replacement. Reads are capped just past the artifact
// size limit; the schema rejects oversized payloads with a field error.
func readUploads(c *gin.Context) (map[string]*services.FileUpload, error) {
	files := map[string]*services.FileUpload{}

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return files, nil
		}
		return nil, err
	}

	for field, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, services.MaxArtifactSize+1))
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue // empty file part means "keep the existing artifact"
		}
		files[field] = &services.FileUpload{
			Data:        data,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		}
	}
	return files, nil
}

// SubmitStep (POST /api/guest/:token/steps/:step)
// Accepts the step's form fields plus zero or more file fields as multipart
// form data and returns the structured submission outcome.
func (ctrl *IntakeController) SubmitStep(c *gin.Context) {
	token := c.Param("token")

	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step"})
		return
	}

	files, err := readUploads(c)
	if err != nil {
		log.Printf("SubmitStep: reading multipart form failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	formValues := map[string]string{}
	if parseErr := c.Request.ParseForm(); parseErr == nil {
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				formValues[k] = v[0]
			}
		}
	}
	if mf, mfErr := c.MultipartForm(); mfErr == nil && mf != nil {
		for k, v := range mf.Value {
			if len(v) > 0 {
				formValues[k] = v[0]
			}
		}
	}

	outcome, err := ctrl.IntakeSvc.SubmitStep(c.Request.Context(), token, step, formValues, files)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found, please contact the hotel"})
		case errors.Is(err, services.ErrInvalidStep):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step"})
		default:
			// The outcome still carries the action token for correlation;
			// never leak internals to the guest.
			log.Printf("SubmitStep error (action=%s): %v", outcome.ActionToken, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":     false,
				"message":     "unexpected error, please try again",
				"actionToken": outcome.ActionToken,
			})
		}
		return
	}

	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, outcome)
}
