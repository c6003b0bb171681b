package services

import (
	"fmt"
	"html"
	"time"

	"github.com/zakdoc/blog-backend/models"
)

// DraftSavedEmail is sent to the author after a blog is created as a draft
func DraftSavedEmail(author *models.User, blog *models.Blog) (subject, body string) {
	subject = "Blog saved as Draft"
	body = fmt.Sprintf(
		"<p>Hi %s,</p><p>Your blog <strong>%s</strong> has been saved as a draft. Publish it whenever you are ready.</p>",
		html.EscapeString(author.Name), html.EscapeString(blog.Title),
	)
	return subject, body
}

// PublishedEmail is sent to the author when a blog goes live
func PublishedEmail(author *models.User, blog *models.Blog) (subject, body string) {
	subject = "Blog Published"
	body = fmt.Sprintf(
		"<p>Hi %s,</p><p>Your blog <strong>%s</strong> is now published and visible to readers.</p>",
		html.EscapeString(author.Name), html.EscapeString(blog.Title),
	)
	return subject, body
}

func OTPEmail(name, code string, purpose models.OTPPurpose, ttl time.Duration) (subject, body string) {
	action := "verify your email address"
	subject = "Verify your email"
	if purpose == models.OTPResetPassword {
		action = "reset your password"
		subject = "Reset your password"
	}
	body = fmt.Sprintf(
		"<p>Hi %s,</p><p>Use <strong>%s</strong> to %s. The code expires in %d minutes.</p>",
		html.EscapeString(name), code, action, int(ttl.Minutes()),
	)
	return subject, body
}
