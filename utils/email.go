package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

func SendWelcomeEmail(email, name string) {
	go func() {
		subject := "Welcome to Stampcard!"
		body := fmt.Sprintf(`<h2>Welcome, %s!</h2>
<p>Your loyalty card is ready. From now on:</p>
<ul>
<li>Show your QR code at the counter to collect stamps</li>
<li>Complete an offer to unlock its reward</li>
<li>Redeem rewards straight from the app</li>
</ul>
<p>Happy collecting!</p>
<p>The Stampcard Team</p>`, strings.Split(name, " ")[0])
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}()
}

func SendPasswordResetEmail(email, name, token, frontendURL string) {
	go func() {
		resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(frontendURL, "/"), token)
		subject := "Reset your Stampcard password"
		body := fmt.Sprintf(`<h2>Hi %s,</h2>
<p>We received a request to reset your password. Click the link below to choose a new one:</p>
<p><a href="%s">Reset password</a></p>
<p>The link expires in 1 hour. If you didn't request this, you can ignore this email.</p>
<p>The Stampcard Team</p>`, strings.Split(name, " ")[0], resetURL)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send password reset email to %s: %v", email, err)
		}
	}()
}
