package auth

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/internal/sms"
	pkgauth "github.com/mechanix-app/mechanix-backend/pkg/auth"
	"github.com/mechanix-app/mechanix-backend/pkg/config"
	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/redis"
)

type stubUserRepo struct {
	nextID  int64
	byID    map[int64]*models.User
	byPhone map[string]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: map[int64]*models.User{}, byPhone: map[string]*models.User{}}
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now().UTC()
	s.byID[user.ID] = user
	s.byPhone[user.PhoneNumber] = user
	return user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok || user.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubUserRepo) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	user, ok := s.byPhone[phone]
	if !ok || user.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	s.byID[user.ID] = user
	s.byPhone[user.PhoneNumber] = user
	return nil
}

func (s *stubUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	if user, ok := s.byID[id]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

func (s *stubUserRepo) Activate(_ context.Context, id int64) error {
	if user, ok := s.byID[id]; ok {
		user.IsActive = true
	}
	return nil
}

func (s *stubUserRepo) SoftDelete(_ context.Context, id int64) error {
	if user, ok := s.byID[id]; ok {
		user.IsDeleted = true
	}
	return nil
}

type stubRevocations struct {
	revoked map[string]bool
}

func (s *stubRevocations) Revoke(_ context.Context, token *models.RevokedToken) error {
	s.revoked[token.JTI] = true
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], nil
}

type stubOTPStore struct {
	codes map[string]string
}

func (s *stubOTPStore) key(purpose, phone string) string { return purpose + "|" + phone }

func (s *stubOTPStore) StoreOTP(_ context.Context, purpose, phone, code string, _ time.Duration) error {
	s.codes[s.key(purpose, phone)] = code
	return nil
}

func (s *stubOTPStore) GetOTP(_ context.Context, purpose, phone string) (string, error) {
	code, ok := s.codes[s.key(purpose, phone)]
	if !ok {
		return "", redis.ErrNotFound
	}
	return code, nil
}

func (s *stubOTPStore) DeleteOTP(_ context.Context, purpose, phone string) error {
	delete(s.codes, s.key(purpose, phone))
	return nil
}

type stubPublisher struct {
	published []string
}

func (s *stubPublisher) PublishOTP(_ context.Context, kind, phone, _ string) error {
	s.published = append(s.published, kind+"|"+phone)
	return nil
}

type fixture struct {
	svc       Service
	users     *stubUserRepo
	revoked   *stubRevocations
	otps      *stubOTPStore
	publisher *stubPublisher
	jwtCfg    config.JWTConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := newStubUserRepo()
	revoked := &stubRevocations{revoked: map[string]bool{}}
	otps := &stubOTPStore{codes: map[string]string{}}
	publisher := &stubPublisher{}
	jwtCfg := config.JWTConfig{
		Secret:               "test-secret",
		Issuer:               "mechanix-test",
		AccessExpiryMinutes:  30,
		RefreshExpiryMinutes: 43200,
	}
	otpCfg := config.OTPConfig{TTL: 2 * time.Minute, DebugPhone: "+15550000000", DebugCode: 555555}

	svc, err := NewService(users, revoked, otps, publisher, jwtCfg, otpCfg, config.PasswordConfig{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, users: users, revoked: revoked, otps: otps, publisher: publisher, jwtCfg: jwtCfg}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func validSignup() SignupInput {
	return SignupInput{
		PhoneNumber: "+15551234567",
		Password:    "correct-horse",
		FirstName:   "Ada",
		LastName:    "Lovelace",
	}
}

func TestSignupAndVerifyFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profile, err := f.svc.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if profile.IsActive {
		t.Fatal("account should start inactive")
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0] != sms.KindSignupOTP+"|+15551234567" {
		t.Fatalf("unexpected publishes: %v", f.publisher.published)
	}

	code := f.otps.codes["signup|+15551234567"]
	if len(code) != otpLength {
		t.Fatalf("unexpected otp %q", code)
	}

	// Wrong code first.
	_, err = f.svc.VerifySignup(ctx, VerifySignupInput{PhoneNumber: "+15551234567", Code: "000000x"})
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	pair, err := f.svc.VerifySignup(ctx, VerifySignupInput{PhoneNumber: "+15551234567", Code: code})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	claims, err := pkgauth.ParseToken(f.jwtCfg, pair.AccessToken, enums.TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != profile.ID || claims.Role != enums.UserRoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// The code is burned.
	_, err = f.svc.VerifySignup(ctx, VerifySignupInput{PhoneNumber: "+15551234567", Code: code})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestSignupValidationAndConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := validSignup()
	bad.PhoneNumber = "5551234567"
	_, err := f.svc.Signup(ctx, bad)
	expectCode(t, err, pkgerrors.CodeValidation)

	bad = validSignup()
	bad.Password = "short"
	_, err = f.svc.Signup(ctx, bad)
	expectCode(t, err, pkgerrors.CodeValidation)

	if _, err := f.svc.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Resending while a code is pending is throttled.
	_, err = f.svc.Signup(ctx, validSignup())
	expectCode(t, err, pkgerrors.CodeRateLimit)

	// After the code expires, unverified accounts can re-register, replacing
	// the pending one.
	delete(f.otps.codes, "signup|+15551234567")
	again := validSignup()
	again.FirstName = "Grace"
	profile, err := f.svc.Signup(ctx, again)
	if err != nil {
		t.Fatalf("re-signup: %v", err)
	}
	if profile.FirstName != "Grace" {
		t.Fatalf("pending registration not replaced: %+v", profile)
	}

	// Verified accounts cannot.
	code := f.otps.codes["signup|+15551234567"]
	if _, err := f.svc.VerifySignup(ctx, VerifySignupInput{PhoneNumber: "+15551234567", Code: code}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	_, err = f.svc.Signup(ctx, validSignup())
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestSignupDebugPhoneSkipsSMS(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := validSignup()
	input.PhoneNumber = "+15550000000"
	if _, err := f.svc.Signup(ctx, input); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if len(f.publisher.published) != 0 {
		t.Fatalf("debug phone should not publish sms: %v", f.publisher.published)
	}
	if code := f.otps.codes["signup|+15550000000"]; code != "555555" {
		t.Fatalf("expected fixed debug code, got %q", code)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Not verified yet.
	_, err := f.svc.Login(ctx, LoginInput{PhoneNumber: "+15551234567", Password: "correct-horse"})
	expectCode(t, err, pkgerrors.CodeForbidden)

	code := f.otps.codes["signup|+15551234567"]
	if _, err := f.svc.VerifySignup(ctx, VerifySignupInput{PhoneNumber: "+15551234567", Code: code}); err != nil {
		t.Fatalf("verify: %v", err)
	}

	_, err = f.svc.Login(ctx, LoginInput{PhoneNumber: "+15551234567", Password: "wrong-password"})
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = f.svc.Login(ctx, LoginInput{PhoneNumber: "+15559999999", Password: "correct-horse"})
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	pair, err := f.svc.Login(ctx, LoginInput{PhoneNumber: "+15551234567", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("incomplete pair: %+v", pair)
	}
}

func activeUserPair(t *testing.T, f *fixture) *TokenPair {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("signup: %v", err)
	}
	code := f.otps.codes["signup|+15551234567"]
	pair, err := f.svc.VerifySignup(ctx, VerifySignupInput{PhoneNumber: "+15551234567", Code: code})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	return pair
}

func TestRefreshRotation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pair := activeUserPair(t, f)

	rotated, err := f.svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// The old token is burned.
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	// An access token is not a refresh token.
	_, err = f.svc.Refresh(ctx, rotated.AccessToken)
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	// The new one still works.
	if _, err := f.svc.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pair := activeUserPair(t, f)

	if err := f.svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err := f.svc.Refresh(ctx, pair.RefreshToken)
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	activeUserPair(t, f)

	// Unknown phones are not distinguishable.
	if err := f.svc.RequestPasswordReset(ctx, PasswordResetRequestInput{PhoneNumber: "+15559999999"}); err != nil {
		t.Fatalf("reset request for unknown phone: %v", err)
	}
	if _, ok := f.otps.codes["reset|+15559999999"]; ok {
		t.Fatal("no code should be stored for unknown phones")
	}

	if err := f.svc.RequestPasswordReset(ctx, PasswordResetRequestInput{PhoneNumber: "+15551234567"}); err != nil {
		t.Fatalf("reset request: %v", err)
	}
	code := f.otps.codes["reset|+15551234567"]
	if len(code) != otpLength {
		t.Fatalf("unexpected reset code %q", code)
	}

	// A signup code cannot confirm a reset.
	err := f.svc.ConfirmPasswordReset(ctx, PasswordResetConfirmInput{
		PhoneNumber: "+15551234567", Code: "123456", NewPassword: "brand-new-pass",
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	if err := f.svc.ConfirmPasswordReset(ctx, PasswordResetConfirmInput{
		PhoneNumber: "+15551234567", Code: code, NewPassword: "brand-new-pass",
	}); err != nil {
		t.Fatalf("confirm reset: %v", err)
	}

	if _, err := f.svc.Login(ctx, LoginInput{PhoneNumber: "+15551234567", Password: "correct-horse"}); err == nil {
		t.Fatal("old password should no longer work")
	}
	if _, err := f.svc.Login(ctx, LoginInput{PhoneNumber: "+15551234567", Password: "brand-new-pass"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestProfileLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	activeUserPair(t, f)

	profile, err := f.svc.Profile(ctx, 1)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.PhoneNumber != "+15551234567" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	first := "Grace"
	updated, err := f.svc.UpdateProfile(ctx, 1, UpdateProfileInput{FirstName: &first})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FirstName != "Grace" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	_, err = f.svc.UpdateProfile(ctx, 1, UpdateProfileInput{})
	expectCode(t, err, pkgerrors.CodeValidation)

	if err := f.svc.DeleteAccount(ctx, 1); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	_, err = f.svc.Profile(ctx, 1)
	expectCode(t, err, pkgerrors.CodeNotFound)

	// Deleted accounts cannot log in.
	_, err = f.svc.Login(ctx, LoginInput{PhoneNumber: "+15551234567", Password: "correct-horse"})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}
