package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// Step indices of the intake workflow. A step is either not yet committed or
// fully committed; there is no in-progress state.
const (
	StepContact    = 0
	StepIdentity   = 1
	StepCompanions = 2
	StepPayment    = 3
	StepConsent    = 4

	TotalSteps = 5
)

// File upload limits shared by every file field of the workflow.
const MaxArtifactSize = 10 << 20 // 10 MB

var allowedArtifactTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// FieldErrors collects one or more messages per offending field name.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// ContactFields — step 0.
type ContactFields struct {
	Salutation string `form:"salutation" validate:"required,oneof=Herr Frau Divers"`
	FirstName  string `form:"firstName" validate:"required,min=2,max=100"`
	LastName   string `form:"lastName" validate:"required,min=2,max=100"`
	Email      string `form:"email" validate:"required,email"`
	Phone      string `form:"phone" validate:"required"`
}

// IdentityFields — step 1. The document images are file fields and validated
// separately via ValidateArtifactUpload.
type IdentityFields struct {
	DateOfBirth  string `form:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	DocumentType string `form:"documentType" validate:"required,oneof=passport idcard"`
}

// CompanionInput is one entry of the client-declared roster on step 2.
type CompanionInput struct {
	ID        string `json:"id" form:"id" validate:"required,max=64"`
	FirstName string `json:"firstName" form:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" form:"lastName" validate:"required,max=100"`
}

// PaymentFields — step 3. Payment method is fixed to bank transfer; the
// amount is derived server-side from the booking price.
type PaymentFields struct {
	PaymentOption string `form:"paymentOption" validate:"required,oneof=deposit full"`
	PaymentDate   string `form:"paymentDate" validate:"required,datetime=2006-01-02"`
}

// ConsentFields — step 4 (final). The coordinator enforces that both are
// literally affirmative before confirming the booking.
type ConsentFields struct {
	AgbAkzeptiert         bool
	DatenschutzAkzeptiert bool
}

// StepValues carries the validated values of exactly one step.
type StepValues struct {
	Step       int
	Contact    *ContactFields
	Identity   *IdentityFields
	Companions []CompanionInput
	Payment    *PaymentFields
	Consent    *ConsentFields
}

var validate = newStepValidator()

func newStepValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the form field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationMessage turns a validator error into a user-facing message.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return "must be a date in the format YYYY-MM-DD"
	default:
		return "is invalid"
	}
}

func collectFieldErrors(err error, fe FieldErrors, prefix string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.Add("_form", "invalid input")
		return
	}
	for _, v := range verrs {
		fe.Add(prefix+v.Field(), validationMessage(v))
	}
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// ValidateStep runs the step's declarative schema over the raw form values
// and returns either the typed values or field-keyed errors. Nothing is
// partially applied: on any error the returned StepValues must be discarded.
func ValidateStep(step int, form map[string]string) (StepValues, FieldErrors) {
	fe := FieldErrors{}
	vals := StepValues{Step: step}
	get := func(k string) string { return strings.TrimSpace(form[k]) }

	switch step {
	case StepContact:
		c := ContactFields{
			Salutation: get("salutation"),
			FirstName:  get("firstName"),
			LastName:   get("lastName"),
			Email:      get("email"),
			Phone:      get("phone"),
		}
		if err := validate.Struct(c); err != nil {
			collectFieldErrors(err, fe, "")
		}
		if c.Phone != "" {
			num, err := phonenumbers.Parse(c.Phone, "DE")
			if err != nil || !phonenumbers.IsValidNumber(num) {
				fe.Add("phone", "must be a valid phone number")
			} else {
				c.Phone = phonenumbers.Format(num, phonenumbers.E164)
			}
		}
		vals.Contact = &c

	case StepIdentity:
		id := IdentityFields{
			DateOfBirth:  get("dateOfBirth"),
			DocumentType: get("documentType"),
		}
		if err := validate.Struct(id); err != nil {
			collectFieldErrors(err, fe, "")
		}
		if dob, err := time.Parse("2006-01-02", id.DateOfBirth); err == nil {
			if !dob.Before(time.Now()) {
				fe.Add("dateOfBirth", "must be in the past")
			}
		}
		vals.Identity = &id

	case StepCompanions:
		raw := get("companions")
		roster := []CompanionInput{}
		if raw != "" && raw != "[]" {
			if err := json.Unmarshal([]byte(raw), &roster); err != nil {
				fe.Add("companions", "must be a valid companion list")
			}
		}
		seen := map[string]bool{}
		for i, c := range roster {
			if err := validate.Struct(c); err != nil {
				collectFieldErrors(err, fe, fmt.Sprintf("companions[%d].", i))
			}
			if c.ID != "" && seen[c.ID] {
				fe.Add("companions", fmt.Sprintf("duplicate companion id %q", c.ID))
			}
			seen[c.ID] = true
		}
		vals.Companions = roster

	case StepPayment:
		p := PaymentFields{
			PaymentOption: get("paymentOption"),
			PaymentDate:   get("paymentDate"),
		}
		if err := validate.Struct(p); err != nil {
			collectFieldErrors(err, fe, "")
		}
		vals.Payment = &p

	case StepConsent:
		vals.Consent = &ConsentFields{
			AgbAkzeptiert:         truthy(form["agbAkzeptiert"]),
			DatenschutzAkzeptiert: truthy(form["datenschutzAkzeptiert"]),
		}

	default:
		fe.Add("_form", fmt.Sprintf("unknown step %d", step))
	}

	return vals, fe
}

// FileUpload is one fully-read file field of a submission.
type FileUpload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// EffectiveContentType prefers the declared type and falls back to sniffing
// the payload.
func (f *FileUpload) EffectiveContentType() string {
	ct := strings.TrimSpace(f.ContentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(f.Data)
		if i := strings.Index(ct, ";"); i >= 0 {
			ct = strings.TrimSpace(ct[:i])
		}
	}
	return ct
}

// ValidateArtifactUpload applies the shared file rules: size cap and MIME
// whitelist. An absent file is handled by the caller (existing artifacts are
// retained), so f is never nil here.
func ValidateArtifactUpload(f *FileUpload) []string {
	var msgs []string
	if len(f.Data) == 0 {
		msgs = append(msgs, "file is empty")
		return msgs
	}
	if len(f.Data) > MaxArtifactSize {
		msgs = append(msgs, "file exceeds the 10 MB limit")
	}
	if ct := f.EffectiveContentType(); !allowedArtifactTypes[ct] {
		msgs = append(msgs, fmt.Sprintf("unsupported file type %q (allowed: JPEG, PNG, WEBP, PDF)", ct))
	}
	return msgs
}
