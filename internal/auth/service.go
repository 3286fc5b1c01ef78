package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/internal/sms"
	pkgauth "github.com/mechanix-app/mechanix-backend/pkg/auth"
	"github.com/mechanix-app/mechanix-backend/pkg/config"
	"github.com/mechanix-app/mechanix-backend/pkg/db"
	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
	"github.com/mechanix-app/mechanix-backend/pkg/redis"
	"github.com/mechanix-app/mechanix-backend/pkg/security"
)

const (
	otpPurposeSignup = "signup"
	otpPurposeReset  = "reset"

	otpLength         = 6
	minPasswordLength = 8
)

// phonePattern accepts E.164 numbers: a plus sign and 8 to 14 further digits.
var phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,13}$`)

type usersRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Activate(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) error
}

type revocationRepository interface {
	Revoke(ctx context.Context, token *models.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type otpPublisher interface {
	PublishOTP(ctx context.Context, kind, phone, code string) error
}

// Service covers account lifecycle and session management.
type Service interface {
	Signup(ctx context.Context, input SignupInput) (*Profile, error)
	VerifySignup(ctx context.Context, input VerifySignupInput) (*TokenPair, error)
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, input PasswordResetRequestInput) error
	ConfirmPasswordReset(ctx context.Context, input PasswordResetConfirmInput) error
	Profile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*Profile, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

type service struct {
	users     usersRepository
	revoked   revocationRepository
	otps      redis.OTPStore
	publisher otpPublisher
	jwtCfg    config.JWTConfig
	otpCfg    config.OTPConfig
	pwCfg     config.PasswordConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the auth service. The publisher may be nil in worker-less
// environments; one-time codes are then stored but never texted.
func NewService(
	users usersRepository,
	revoked revocationRepository,
	otps redis.OTPStore,
	publisher otpPublisher,
	jwtCfg config.JWTConfig,
	otpCfg config.OTPConfig,
	pwCfg config.PasswordConfig,
	logg *logger.Logger,
) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if revoked == nil {
		return nil, fmt.Errorf("revocation repository required")
	}
	if otps == nil {
		return nil, fmt.Errorf("otp store required")
	}
	if jwtCfg.Secret == "" || jwtCfg.Issuer == "" {
		return nil, fmt.Errorf("jwt config incomplete")
	}
	return &service{
		users:     users,
		revoked:   revoked,
		otps:      otps,
		publisher: publisher,
		jwtCfg:    jwtCfg,
		otpCfg:    otpCfg,
		pwCfg:     pwCfg,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) Signup(ctx context.Context, input SignupInput) (*Profile, error) {
	phone := strings.TrimSpace(input.PhoneNumber)
	if !phonePattern.MatchString(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone_number must be E.164")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name and last_name are required")
	}

	// Throttle before touching the account so a rejected resend leaves the
	// pending registration untouched.
	if err := s.ensureNoPendingOTP(ctx, otpPurposeSignup, phone); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	existing, err := s.users.FindByPhone(ctx, phone)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	var user *models.User
	switch {
	case existing == nil:
		user, err = s.users.Create(ctx, &models.User{
			PhoneNumber:  phone,
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
			Avatar:       input.Avatar,
			Role:         enums.UserRoleUser,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
	case existing.IsActive:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")
	default:
		// Re-signup before verification replaces the pending registration.
		existing.PasswordHash = hash
		existing.FirstName = strings.TrimSpace(input.FirstName)
		existing.LastName = strings.TrimSpace(input.LastName)
		existing.Avatar = input.Avatar
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pending user")
		}
		user = existing
	}

	if err := s.issueOTP(ctx, otpPurposeSignup, sms.KindSignupOTP, phone); err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

func (s *service) VerifySignup(ctx context.Context, input VerifySignupInput) (*TokenPair, error) {
	phone := strings.TrimSpace(input.PhoneNumber)
	if phone == "" || strings.TrimSpace(input.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone_number and code are required")
	}

	if err := s.redeemOTP(ctx, otpPurposeSignup, phone, input.Code); err != nil {
		return nil, err
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	if !user.IsActive {
		if err := s.users.Activate(ctx, user.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate user")
		}
	}
	return s.mintPair(user.ID, user.Role)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	phone := strings.TrimSpace(input.PhoneNumber)
	if phone == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone_number and password are required")
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentialsError()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, invalidCredentialsError()
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is not verified")
	}

	return s.mintPair(user.ID, user.Role)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check revocation")
	}
	if revoked {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token revoked")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer available")
	}

	// Rotation. The presented token is burned before the new pair goes out.
	if err := s.revokeJTI(ctx, user.ID, claims.ID); err != nil {
		return nil, err
	}
	return s.mintPair(user.ID, user.Role)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.revokeJTI(ctx, claims.UserID, claims.ID)
}

func (s *service) RequestPasswordReset(ctx context.Context, input PasswordResetRequestInput) error {
	phone := strings.TrimSpace(input.PhoneNumber)
	if phone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone_number is required")
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown phones get the same 204 as known ones.
			if s.logg != nil {
				s.logg.Warn(ctx, "password reset requested for unknown phone")
			}
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	return s.issueOTP(ctx, otpPurposeReset, sms.KindResetOTP, user.PhoneNumber)
}

func (s *service) ConfirmPasswordReset(ctx context.Context, input PasswordResetConfirmInput) error {
	phone := strings.TrimSpace(input.PhoneNumber)
	if phone == "" || strings.TrimSpace(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone_number and code are required")
	}
	if len(input.NewPassword) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	if err := s.redeemOTP(ctx, otpPurposeReset, phone, input.Code); err != nil {
		return err
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	hash, err := security.HashPassword(input.NewPassword, s.pwCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*Profile, error) {
	if input.FirstName == nil && input.LastName == nil && input.Avatar == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name cannot be empty")
		}
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "last_name cannot be empty")
		}
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Avatar != nil {
		user.Avatar = input.Avatar
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return toProfile(user), nil
}

func (s *service) DeleteAccount(ctx context.Context, userID int64) error {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *service) loadUser(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	return user, nil
}

// issueOTP stores a fresh code under the purpose and queues the text message.
// The configured debug phone receives a fixed code and no real SMS.
// ensureNoPendingOTP enforces one pending code per phone and purpose; resends
// wait out the TTL.
func (s *service) ensureNoPendingOTP(ctx context.Context, purpose, phone string) error {
	if _, err := s.otps.GetOTP(ctx, purpose, phone); err == nil {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "a code was already sent, wait before requesting another")
	} else if !errors.Is(err, redis.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending otp")
	}
	return nil
}

func (s *service) issueOTP(ctx context.Context, purpose, kind, phone string) error {
	if err := s.ensureNoPendingOTP(ctx, purpose, phone); err != nil {
		return err
	}

	code, debug, err := s.generateCode(phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}

	if err := s.otps.StoreOTP(ctx, purpose, phone, code, s.otpCfg.TTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}

	if debug || s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishOTP(ctx, kind, phone, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue otp sms")
	}
	return nil
}

func (s *service) generateCode(phone string) (string, bool, error) {
	if s.otpCfg.DebugPhone != "" && phone == s.otpCfg.DebugPhone {
		return fmt.Sprintf("%06d", s.otpCfg.DebugCode), true, nil
	}
	code, err := security.GenerateOTP(otpLength)
	return code, false, err
}

// redeemOTP compares the presented code against the stored one and burns it on
// success. Expired and absent codes read the same as wrong ones.
func (s *service) redeemOTP(ctx context.Context, purpose, phone, code string) error {
	stored, err := s.otps.GetOTP(ctx, purpose, phone)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return invalidCodeError()
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		return invalidCodeError()
	}
	if err := s.otps.DeleteOTP(ctx, purpose, phone); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "burn otp")
	}
	return nil
}

func (s *service) mintPair(userID int64, role enums.UserRole) (*TokenPair, error) {
	now := s.now()
	access, err := pkgauth.MintToken(s.jwtCfg, now, pkgauth.TokenPayload{
		UserID: userID, Role: role, TokenType: enums.TokenTypeAccess,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := pkgauth.MintToken(s.jwtCfg, now, pkgauth.TokenPayload{
		UserID: userID, Role: role, TokenType: enums.TokenTypeRefresh,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) parseRefresh(refreshToken string) (*pkgauth.Claims, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refresh_token is required")
	}
	claims, err := pkgauth.ParseToken(s.jwtCfg, refreshToken, enums.TokenTypeRefresh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	return claims, nil
}

func (s *service) revokeJTI(ctx context.Context, userID int64, jti string) error {
	err := s.revoked.Revoke(ctx, &models.RevokedToken{UserID: userID, JTI: jti})
	if err != nil {
		// Revoking twice is a no-op, not an error.
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke token")
	}
	return nil
}

func invalidCredentialsError() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid phone number or password")
}

func invalidCodeError() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
}
