package service

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/gigmarket/account-security/internal/core/domain"
	"github.com/gigmarket/account-security/internal/core/ports"
)

func greeting(identity *domain.Identity) string {
	if identity.Name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", identity.Name)
}

func passwordResetEmail(identity *domain.Identity, baseURL, token string) ports.EmailMessage {
	link := strings.TrimRight(baseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	return ports.EmailMessage{
		To:      identity.Email,
		Subject: "Reset your password",
		Text: fmt.Sprintf("%s\n\nUse the link below to choose a new password. It expires in %d minutes.\n\n%s\n\nIf you did not ask for this, ignore this email.\n",
			greeting(identity), int(resetTokenTTL.Minutes()), link),
		HTML: fmt.Sprintf(`<p>%s</p><p>Use the link below to choose a new password. It expires in %d minutes.</p><p><a href="%s">Reset password</a></p><p>If you did not ask for this, ignore this email.</p>`,
			html.EscapeString(greeting(identity)), int(resetTokenTTL.Minutes()), html.EscapeString(link)),
	}
}

func verificationEmail(identity *domain.Identity, code string) ports.EmailMessage {
	return ports.EmailMessage{
		To:      identity.Email,
		Subject: "Your verification code",
		Text: fmt.Sprintf("%s\n\nYour verification code is %s. It expires in %d minutes.\n",
			greeting(identity), code, int(verificationCodeTTL.Minutes())),
		HTML: fmt.Sprintf(`<p>%s</p><p>Your verification code is <strong>%s</strong>. It expires in %d minutes.</p>`,
			html.EscapeString(greeting(identity)), code, int(verificationCodeTTL.Minutes())),
	}
}
