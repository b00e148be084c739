package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContactStep(t *testing.T) {
	vals, fe := ValidateStep(StepContact, map[string]string{
		"salutation": "Frau",
		"firstName":  "  Erika  ",
		"lastName":   "Musterfrau",
		"email":      "erika@example.com",
		"phone":      "0151 23456789", // national format, default region DE
	})
	require.True(t, fe.Empty(), "unexpected errors: %v", fe)
	require.NotNil(t, vals.Contact)
	assert.Equal(t, "Erika", vals.Contact.FirstName)
	assert.Equal(t, "+4915123456789", vals.Contact.Phone)
}

func TestValidateContactStepErrorsUseFormNames(t *testing.T) {
	_, fe := ValidateStep(StepContact, map[string]string{
		"salutation": "Captain",
		"firstName":  "X",
		"email":      "nope",
		"phone":      "123",
	})
	assert.Contains(t, fe, "salutation")
	assert.Contains(t, fe, "firstName")
	assert.Contains(t, fe, "lastName")
	assert.Contains(t, fe, "email")
	assert.Contains(t, fe, "phone")
}

func TestValidateIdentityStep(t *testing.T) {
	_, fe := ValidateStep(StepIdentity, map[string]string{
		"dateOfBirth":  "1985-12-24",
		"documentType": "idcard",
	})
	assert.True(t, fe.Empty())

	_, fe = ValidateStep(StepIdentity, map[string]string{
		"dateOfBirth":  "2099-01-01",
		"documentType": "passport",
	})
	assert.Contains(t, fe, "dateOfBirth")

	_, fe = ValidateStep(StepIdentity, map[string]string{
		"dateOfBirth":  "24.12.1985",
		"documentType": "driverslicense",
	})
	assert.Contains(t, fe, "dateOfBirth")
	assert.Contains(t, fe, "documentType")
}

func TestValidateCompanionsStep(t *testing.T) {
	vals, fe := ValidateStep(StepCompanions, map[string]string{
		"companions": `[{"id":"c1","firstName":"Anna","lastName":"Alt"}]`,
	})
	require.True(t, fe.Empty())
	require.Len(t, vals.Companions, 1)
	assert.Equal(t, "c1", vals.Companions[0].ID)

	// An empty roster is a valid submission (no companions).
	vals, fe = ValidateStep(StepCompanions, map[string]string{"companions": "[]"})
	assert.True(t, fe.Empty())
	assert.Empty(t, vals.Companions)

	_, fe = ValidateStep(StepCompanions, map[string]string{"companions": "{broken"})
	assert.Contains(t, fe, "companions")

	_, fe = ValidateStep(StepCompanions, map[string]string{
		"companions": `[{"id":"c1","firstName":"A","lastName":"B"},{"id":"c1","firstName":"C","lastName":"D"}]`,
	})
	assert.Contains(t, fe, "companions")

	_, fe = ValidateStep(StepCompanions, map[string]string{
		"companions": `[{"id":"c1","firstName":"","lastName":"B"}]`,
	})
	assert.Contains(t, fe, "companions[0].firstName")
}

func TestValidatePaymentStep(t *testing.T) {
	_, fe := ValidateStep(StepPayment, map[string]string{
		"paymentOption": "deposit",
		"paymentDate":   "2026-09-01",
	})
	assert.True(t, fe.Empty())

	_, fe = ValidateStep(StepPayment, map[string]string{
		"paymentOption": "cash",
		"paymentDate":   "soon",
	})
	assert.Contains(t, fe, "paymentOption")
	assert.Contains(t, fe, "paymentDate")
}

func TestValidateConsentStepParsesTruthy(t *testing.T) {
	vals, fe := ValidateStep(StepConsent, map[string]string{
		"agbAkzeptiert":         "on",
		"datenschutzAkzeptiert": "TRUE",
	})
	require.True(t, fe.Empty())
	assert.True(t, vals.Consent.AgbAkzeptiert)
	assert.True(t, vals.Consent.DatenschutzAkzeptiert)

	vals, _ = ValidateStep(StepConsent, map[string]string{"agbAkzeptiert": "nope"})
	assert.False(t, vals.Consent.AgbAkzeptiert)
	assert.False(t, vals.Consent.DatenschutzAkzeptiert)
}

func TestValidateStepUnknownIndex(t *testing.T) {
	_, fe := ValidateStep(99, map[string]string{})
	assert.Contains(t, fe, "_form")
}

func TestEffectiveContentType(t *testing.T) {
	f := &FileUpload{Data: []byte("x"), ContentType: "image/jpeg; charset=binary"}
	assert.Equal(t, "image/jpeg", f.EffectiveContentType())

	// Undeclared or generic types fall back to sniffing.
	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	f = &FileUpload{Data: pngHeader, ContentType: "application/octet-stream"}
	assert.Equal(t, "image/png", f.EffectiveContentType())
}

func TestValidateArtifactUpload(t *testing.T) {
	ok := &FileUpload{Data: []byte("data"), Filename: "a.pdf", ContentType: "application/pdf"}
	assert.Empty(t, ValidateArtifactUpload(ok))

	empty := &FileUpload{Filename: "a.jpg", ContentType: "image/jpeg"}
	assert.NotEmpty(t, ValidateArtifactUpload(empty))

	wrong := &FileUpload{Data: []byte("#!/bin/sh"), Filename: "a.sh", ContentType: "text/x-sh"}
	msgs := ValidateArtifactUpload(wrong)
	require.NotEmpty(t, msgs)
	assert.True(t, strings.Contains(msgs[0], "unsupported file type"))
}
