package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// SendGuestLinkEmail sends the guest the single-use intake link for their
// booking. When SMTP is not configured the send degrades to a mock log line,
// so environments without a mail relay still complete booking creation.
func SendGuestLinkEmail(recipientEmail, guestName, guestLink, checkInDate, checkOutDate string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	fromName := EnvOrDefault("SMTP_FROM_NAME", "Hotel Pradell")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		log.Printf("[MOCK EMAIL] to:%s link:%s checkin:%s checkout:%s",
			MaskEmail(recipientEmail), guestLink, checkInDate, checkOutDate)
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	guestName = safe(guestName)
	checkInDate = safe(checkInDate)
	checkOutDate = safe(checkOutDate)
	guestLink = safe(guestLink)

	if !(strings.HasPrefix(guestLink, "http://") || strings.HasPrefix(guestLink, "https://")) {
		guestLink = "https://" + strings.TrimLeft(guestLink, "/")
	}

	from := fmt.Sprintf("%s <%s>", fromName, smtpUser)
	to := []string{recipientEmail}
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	subject := "Your booking — complete your guest information"
	boundary := "----=_PRADELL_EMAIL_BOUNDARY"

	plainBody := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Thank you for booking with us! Please complete your guest information:\n\n"+
			"Check-In: %s\n"+
			"Check-Out: %s\n\n"+
			"Your personal link: %s\n\n"+
			"The link is tied to your booking, please do not share it.\n\n"+
			"Best regards,\n%s",
		guestName, checkInDate, checkOutDate, guestLink, fromName,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Guest Information</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:700px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.label { font-weight:700; width:160px; display:inline-block; vertical-align:top; }
.btn { display:inline-block; padding:12px 20px; background:#0b74ff; color:#fff;
       text-decoration:none; border-radius:6px; margin-top:18px; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Complete Your Guest Information</h2>
    <p>Dear %s,</p>
    <p>Thank you for choosing our hotel. Below are your stay details:</p>

    <p><span class="label">Check-In:</span> %s</p>
    <p><span class="label">Check-Out:</span> %s</p>

    <a class="btn" href="%s" target="_blank">Open Guest Form</a>
    <p>The link is tied to your booking, please do not share it.</p>
    <p>Best regards,<br>%s</p>
  </div>
</div>
</body>
</html>`,
		guestName, checkInDate, checkOutDate, guestLink, fromName,
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipientEmail))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, smtpUser, to, []byte(sb.String())); err != nil {
		log.Printf("❌ Failed to send email to %s: %v", MaskEmail(recipientEmail), err)
		return err
	}

	log.Printf("📨 Guest link email sent to %s", MaskEmail(recipientEmail))
	return nil
}
