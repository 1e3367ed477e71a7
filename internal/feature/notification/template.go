package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"blog_backend/internal/feature/auth/domain/entity"
)

// mailCopy は用途ごとのメール文面です。
type mailCopy struct {
	Subject     string
	Title       string
	Description string
	Footer      string
	Greeting    string
}

var mailCopies = map[entity.Purpose]mailCopy{
	entity.PurposeRegister: {
		Subject:     "Welcome to Our Service",
		Title:       "Verify Your Email",
		Description: "Please verify your email address to complete the registration process.",
		Footer:      "Thank you for joining us!",
		Greeting:    "Welcome",
	},
	entity.PurposeEmailVerification: {
		Subject:     "Verify Your Email",
		Title:       "Verify Your Email",
		Description: "Use the following OTP to confirm your email address.",
		Footer:      "If you did not request this, please ignore this email.",
		Greeting:    "Hello",
	},
	entity.PurposeLogin: {
		Subject:     "Your OTP for Verification",
		Title:       "Login Verification",
		Description: "Use the following OTP to log in to your account.",
		Footer:      "If you did not request this, please ignore this email.",
		Greeting:    "Hello",
	},
}

var otpEmailTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Title}}</h2>
  <p>{{.Greeting}}{{if .Name}} {{.Name}}{{end}},</p>
  <p>{{.Description}}</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Otp}}</p>
  <p>This code expires in {{.ExpiresInMinutes}} minutes.</p>
  <p style="color: #888;">{{.Footer}}</p>
</body>
</html>
`))

type otpEmailView struct {
	Title            string
	Greeting         string
	Description      string
	Footer           string
	Name             string
	Otp              string
	ExpiresInMinutes int
}

// otpExpiresInMinutes はメール本文に表示するOTPの有効期間（分）です。
const otpExpiresInMinutes = 5

// RenderOTPEmail は用途に応じた件名とHTML本文を返します。
func RenderOTPEmail(p OTPEmailPayload) (subject, html string, err error) {
	c, ok := mailCopies[p.Purpose]
	if !ok {
		return "", "", fmt.Errorf("no mail template for purpose %q", p.Purpose)
	}

	var buf bytes.Buffer
	err = otpEmailTemplate.Execute(&buf, otpEmailView{
		Title:            c.Title,
		Greeting:         c.Greeting,
		Description:      c.Description,
		Footer:           c.Footer,
		Name:             p.Name,
		Otp:              p.Otp,
		ExpiresInMinutes: otpExpiresInMinutes,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to render otp email: %w", err)
	}
	return c.Subject, buf.String(), nil
}
