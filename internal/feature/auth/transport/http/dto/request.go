// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
//
// リクエストDTOにはbindingタグを付けません。入力検証はユースケース側で行い、
// 違反をまとめて返します。
package dto

// RegisterReq は POST /auth/register のリクエストボディです。
type RegisterReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SignInReq は POST /auth/signin のリクエストボディです。
type SignInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SendOtpReq は POST /auth/otp/send のリクエストボディです。
type SendOtpReq struct {
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
}

// VerifyOtpReq は POST /auth/otp/verify のリクエストボディです。
type VerifyOtpReq struct {
	Otp        string `json:"otp"`
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
}
