// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

// リポジトリ層のセンチネルエラーです。adaptersはこれらを返し、usecaseがdomainの分類に変換します。
var (
	// ErrUserNotFound はメールアドレスまたはIDでユーザーが見つからない場合に返されます。
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists は既に存在するメールアドレスでユーザーを作成しようとした場合に返されます。
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrOtpResetLimitReached はOTP発行回数が既に上限に達している場合に返されます。
	ErrOtpResetLimitReached = errors.New("otp reset limit reached")
)
