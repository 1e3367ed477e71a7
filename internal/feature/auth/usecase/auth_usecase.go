package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
)

// DefaultOtpResetLimit はユーザーごとのOTP発行回数の上限です。
const DefaultOtpResetLimit = 5

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// MarkVerified はユーザーのisVerifiedをtrueにします。
	MarkVerified(ctx context.Context, id uint) error

	// IncrementOtpResetCount はotpResetCountがlimit未満の場合に限り1つ増やします。
	// 上限に達している場合、ErrOtpResetLimitReachedを返します。
	IncrementOtpResetCount(ctx context.Context, id uint, limit int) error
}

// PasswordHasher はパスワードのハッシュ化と検証を抽象化します。
type PasswordHasher interface {
	Hash(password string) (salt, hash string, err error)
	Verify(password, salt, hash string) bool
}

// TokenService はセッショントークンの発行と検証を抽象化します。
type TokenService interface {
	Sign(claims entity.SessionClaims) (string, error)
	Verify(token string) (*entity.SessionClaims, error)
}

// OtpGenerator はOTPと有効期限を生成します。
type OtpGenerator interface {
	Generate() (entity.OtpRecord, error)
}

// OtpStore はpurpose:identifierごとにOTPレコードを保持します。
type OtpStore interface {
	Save(ctx context.Context, purpose entity.Purpose, identifier string, rec entity.OtpRecord) error
	Throttle(ctx context.Context, purpose entity.Purpose, identifier string) error
	Verify(ctx context.Context, purpose entity.Purpose, identifier, candidate string) error
}

// NotificationDispatcher はOTP配信タスクを非同期キューに登録します。
// 戻り値はキュー登録の成否のみで、配信結果は含みません。
type NotificationDispatcher interface {
	DispatchOtp(ctx context.Context, n entity.OtpNotification) error
}

// Config はauthUsecaseの設定です。
type Config struct {
	// OtpResetLimit 以上のotpResetCountを持つユーザーにはOTPを発行しません。
	OtpResetLimit int
}

// Deps はauthUsecaseが依存するコンポーネントをまとめたものです。
type Deps struct {
	Users      UserRepository
	Hasher     PasswordHasher
	Tokens     TokenService
	Otps       OtpStore
	Generator  OtpGenerator
	Dispatcher NotificationDispatcher
	Logger     *zap.Logger
}

// CreateUserResult は登録結果です。
type CreateUserResult struct {
	Token   string
	User    *entity.User
	Message string
}

// SignInResult はサインイン結果です。トークンはOTP検証後に発行されます。
type SignInResult struct {
	Message string
}

// SendOtpResult はOTP再送の結果です。
type SendOtpResult struct {
	Success bool
	Message string
}

// VerifyOtpResult はOTP検証の結果です。UserとTokenはLOGINの場合のみ設定されます。
type VerifyOtpResult struct {
	Success bool
	Message string
	User    *entity.User
	Token   string
}

const (
	msgRegistered  = "User registered successfully. Please verify the OTP sent to your email."
	msgSignInOtp   = "OTP sent to your email. Verify it to complete sign in."
	msgOtpSent     = "OTP sent successfully"
	msgOtpVerified = "OTP verified successfully"
)

// dummyPassword はダミーのハッシュを作るためだけに使うパスワードです。
const dummyPassword = "dummy-password-for-timing"

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users      UserRepository
	hasher     PasswordHasher
	tokens     TokenService
	otps       OtpStore
	generator  OtpGenerator
	dispatcher NotificationDispatcher
	cfg        Config
	logger     *zap.Logger

	// dummySalt/dummyHash はユーザーが存在しない場合にも同じ鍵導出を実行するためのダミー値です。
	// hasherのパラメータで生成するため、鍵長を変更しても処理時間が揃います。
	dummySalt string
	dummyHash string
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(d Deps, cfg Config) *authUsecase {
	if cfg.OtpResetLimit <= 0 {
		cfg.OtpResetLimit = DefaultOtpResetLimit
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dummySalt, dummyHash, err := d.Hasher.Hash(dummyPassword)
	if err != nil {
		// 乱数源の失敗時のみ。Verifyは形式に関わらず鍵導出を行います。
		logger.Warn("failed to derive dummy password hash", zap.Error(err))
	}
	return &authUsecase{
		dummySalt:  dummySalt,
		dummyHash:  dummyHash,
		users:      d.Users,
		hasher:     d.Hasher,
		tokens:     d.Tokens,
		otps:       d.Otps,
		generator:  d.Generator,
		dispatcher: d.Dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreateUser はユーザーを登録し、セッショントークンを発行してREGISTER用のOTPを送信します。
// OTP発行に失敗してもユーザーは削除されません。
func (u *authUsecase) CreateUser(ctx context.Context, in CreateUserInput) (*CreateUserResult, error) {
	res, err := u.createUser(ctx, in)
	if err != nil {
		return nil, u.fail("createUser", err)
	}
	return res, nil
}

func (u *authUsecase) createUser(ctx context.Context, in CreateUserInput) (*CreateUserResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	salt, hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := u.tokens.Sign(claimsFor(user))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := u.issueOtp(ctx, user, entity.PurposeRegister); err != nil {
		return nil, err
	}

	u.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return &CreateUserResult{Token: token, User: user, Message: msgRegistered}, nil
}

// SignIn は資格情報を検証し、LOGIN用のOTPを送信します。
// ユーザーの存在有無を漏らさないため、未登録とパスワード不一致は同じエラーになります。
func (u *authUsecase) SignIn(ctx context.Context, in SignInInput) (*SignInResult, error) {
	res, err := u.signIn(ctx, in)
	if err != nil {
		return nil, u.fail("signIn", err)
	}
	return res, nil
}

func (u *authUsecase) signIn(ctx context.Context, in SignInInput) (*SignInResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, findErr := u.users.FindByEmail(ctx, in.Email)
	if findErr != nil && !errors.Is(findErr, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", findErr)
	}

	// タイミング攻撃防止のため、ユーザーが存在しない場合も鍵導出を実行します。
	salt, hash := u.dummySalt, u.dummyHash
	if findErr == nil {
		salt, hash = user.PasswordSalt, user.PasswordHash
	}
	ok := u.hasher.Verify(in.Password, salt, hash)

	if findErr != nil || !ok || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	if err := u.issueOtp(ctx, user, entity.PurposeLogin); err != nil {
		return nil, err
	}
	return &SignInResult{Message: msgSignInOtp}, nil
}

// SendOtp はOTPを再送します。LOGIN以外では認証済みの本人宛てのみ許可されます。
func (u *authUsecase) SendOtp(ctx context.Context, bearerToken string, in SendOtpInput) (*SendOtpResult, error) {
	res, err := u.sendOtp(ctx, bearerToken, in)
	if err != nil {
		return nil, u.fail("sendOtp", err)
	}
	return res, nil
}

func (u *authUsecase) sendOtp(ctx context.Context, bearerToken string, in SendOtpInput) (*SendOtpResult, error) {
	in.Identifier = normalizeEmail(in.Identifier)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := u.resolveTarget(ctx, bearerToken, in.Purpose, in.Identifier,
		"You may only resend OTP for your own account")
	if err != nil {
		return nil, err
	}

	if err := u.issueOtp(ctx, user, in.Purpose); err != nil {
		return nil, err
	}
	return &SendOtpResult{Success: true, Message: msgOtpSent}, nil
}

// VerifyOtp はOTPを検証してユーザーを認証済みにします。LOGINの場合はセッショントークンも発行します。
func (u *authUsecase) VerifyOtp(ctx context.Context, bearerToken string, in VerifyOtpInput) (*VerifyOtpResult, error) {
	res, err := u.verifyOtp(ctx, bearerToken, in)
	if err != nil {
		return nil, u.fail("verifyOtp", err)
	}
	return res, nil
}

func (u *authUsecase) verifyOtp(ctx context.Context, bearerToken string, in VerifyOtpInput) (*VerifyOtpResult, error) {
	in.Identifier = normalizeEmail(in.Identifier)
	in.Otp = strings.TrimSpace(in.Otp)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := u.resolveTarget(ctx, bearerToken, in.Purpose, in.Identifier,
		"You may only verify OTP for your own account")
	if err != nil {
		return nil, err
	}

	if err := u.otps.Verify(ctx, in.Purpose, in.Identifier, in.Otp); err != nil {
		return nil, err
	}

	// LOGINの検証でもisVerifiedを立てます。
	if err := u.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to mark user verified: %w", err)
	}
	user.IsVerified = true

	res := &VerifyOtpResult{Success: true, Message: msgOtpVerified}
	if in.Purpose == entity.PurposeLogin {
		token, err := u.tokens.Sign(claimsFor(user))
		if err != nil {
			return nil, fmt.Errorf("failed to sign token: %w", err)
		}
		res.User = user
		res.Token = token
		u.logger.Info("user signed in", zap.Uint("user_id", user.ID))
	}
	return res, nil
}

// CurrentUser はトークンから得たユーザーIDでユーザーを取得します。
// ユーザーが削除済みの場合はUnauthorizedを返します。
func (u *authUsecase) CurrentUser(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			err = domain.ErrUnauthorized
		}
		return nil, u.fail("currentUser", err)
	}
	return user, nil
}

// resolveTarget はOTP操作の対象ユーザーを決定します。
// LOGINは認証前のためメールアドレスで検索し、それ以外はBearerトークンの本人とidentifierの一致を要求します。
func (u *authUsecase) resolveTarget(ctx context.Context, bearerToken string, purpose entity.Purpose, identifier, mismatchMsg string) (*entity.User, error) {
	if purpose == entity.PurposeLogin {
		user, err := u.users.FindByEmail(ctx, identifier)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, domain.ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		return user, nil
	}

	claims, err := u.tokens.Verify(bearerToken)
	if err != nil {
		return nil, err
	}
	user, err := u.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.Email != identifier {
		return nil, domain.New(domain.KindUnauthorized, mismatchMsg)
	}
	return user, nil
}

// fail はerrを正規化して記録します。内部エラーとキュー障害は原因付きでError、
// 想定されたクライアントエラーはDebugで記録します。
func (u *authUsecase) fail(op string, err error) error {
	de := domain.Normalize(err)
	switch de.Kind {
	case domain.KindInternal, domain.KindQueueUnavailable:
		u.logger.Error("auth operation failed",
			zap.String("op", op),
			zap.String("code", de.Kind.Code()),
			zap.Error(err),
		)
	default:
		if ce := u.logger.Check(zap.DebugLevel, "auth operation rejected"); ce != nil {
			ce.Write(zap.String("op", op), zap.String("code", de.Kind.Code()))
		}
	}
	return de
}

func claimsFor(user *entity.User) entity.SessionClaims {
	return entity.SessionClaims{UserID: user.ID, Name: user.Name, Email: user.Email}
}
