package usecase

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
)

// CreateUserInput は新規登録の入力です。
type CreateUserInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,password"`
	Name     string `validate:"required,min=3,max=100"`
}

// SignInInput はサインインの入力です。
type SignInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// SendOtpInput はOTP再送の入力です。
type SendOtpInput struct {
	Identifier string         `validate:"required,email"`
	Purpose    entity.Purpose `validate:"required,purpose"`
}

// VerifyOtpInput はOTP検証の入力です。
type VerifyOtpInput struct {
	Otp        string         `validate:"required,len=6,numeric"`
	Identifier string         `validate:"required,email"`
	Purpose    entity.Purpose `validate:"required,purpose"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 登録済みタグ名の重複はないため、エラーは起こりません。
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("purpose", func(fl validator.FieldLevel) bool {
		return entity.Purpose(fl.Field().String()).Valid()
	})
	return v
}

// isStrongPassword はASCIIの英数字のみで構成され、小文字・大文字・数字をそれぞれ1文字以上含むかを判定します。
func isStrongPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			return false
		}
	}
	return lower && upper && digit
}

// violationMessages は "Field.tag" からクライアント向けメッセージへの対応表です。
// フィールド名のみのキーは、そのフィールドの他のタグのフォールバックです。
var violationMessages = map[string]string{
	"Email":             "Invalid email format",
	"Identifier":        "Invalid email format",
	"Password.required": "Password is required",
	"Password.min":      "Password must be at least 6 characters long",
	"Password.password": "Password must contain at least one uppercase letter, one lowercase letter, and one number",
	"Name.max":          "Name must be at most 100 characters long",
	"Name":              "Name must be at least 3 characters long",
	"Otp":               "OTP must be exactly 6 digits",
	"Purpose":           "Purpose must be one of REGISTER, LOGIN, EMAIL_VERIFICATION",
}

func violationMessage(fe validator.FieldError) string {
	if msg, ok := violationMessages[fe.StructField()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := violationMessages[fe.StructField()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// validateInput は構造体を検証し、すべての違反を1つのInvalidInputエラーにまとめて返します。
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Wrap(domain.KindInvalidInput, domain.ErrInvalidInput.Message, err)
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, violationMessage(fe))
	}
	return domain.InvalidInput(details)
}
