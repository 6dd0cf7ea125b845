package utils

import (
	"fmt"

	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	log "github.com/sirupsen/logrus"
)

// SendEmail sends an email using SendGrid
func SendEmail(toName, toEmail, subject, textContent, htmlContent string) error {
	if config.SendGridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set in environment variables")
	}

	from := mail.NewEmail("Shopify Product Exporter", "no-reply@shopify-exporter.dev")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)
	client := sendgrid.NewSendClient(config.SendGridAPIKey)

	response, err := client.Send(message)
	if err != nil {
		log.WithError(err).WithField("to", toEmail).Error("Error sending email")
		return err
	}

	if response.StatusCode >= 400 {
		log.WithFields(log.Fields{"status": response.StatusCode, "body": response.Body}).Error("SendGrid API error")
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	log.WithFields(log.Fields{"to": toEmail, "status": response.StatusCode}).Info("Email sent")
	return nil
}

// ExportNotification renders the subject and bodies of the mail sent when an
// export finishes.
func ExportNotification(rec *models.ExportRecord, downloadURL string) (subject, text, html string) {
	if rec.Status != "completed" {
		subject = fmt.Sprintf("Export of %s failed", rec.StoreURL)
		text = fmt.Sprintf("The %s export of %s failed: %s", rec.Mode, rec.StoreURL, rec.Error)
		html = fmt.Sprintf("<p>The %s export of <b>%s</b> failed: %s</p>", rec.Mode, rec.StoreURL, rec.Error)
		return
	}

	subject = fmt.Sprintf("Export of %s is ready", rec.StoreURL)
	text = fmt.Sprintf("%d products from %s were exported to %s.", rec.ProductCount, rec.StoreURL, rec.Filename)
	html = fmt.Sprintf("<p>%d products from <b>%s</b> were exported to %s.</p>", rec.ProductCount, rec.StoreURL, rec.Filename)
	if downloadURL != "" {
		text += "\nDownload: " + downloadURL
		html += fmt.Sprintf(`<p><a href="%s">Download the CSV</a> (link valid for one hour)</p>`, downloadURL)
	}
	return
}

// SendExportNotification mails NOTIFY_EMAIL about a finished export. It does
// nothing when no recipient is configured.
func SendExportNotification(rec *models.ExportRecord, downloadURL string) error {
	if config.NotifyEmail == "" {
		return nil
	}
	subject, text, html := ExportNotification(rec, downloadURL)
	return SendEmail("", config.NotifyEmail, subject, text, html)
}
