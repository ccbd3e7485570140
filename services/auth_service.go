package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type RegisterInput struct {
	FullName     string      `json:"full_name"`
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	Role         models.Role `json:"role"`
	RestaurantID string      `json:"restaurant_id"`
}

type AuthService struct {
	DB      *gorm.DB
	Tokens  *utils.TokenIssuer
	Revoker utils.TokenRevoker
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenIssuer, revoker utils.TokenRevoker) *AuthService {
	if revoker == nil {
		revoker = utils.NewMemoryRevoker()
	}
	return &AuthService{DB: db, Tokens: tokens, Revoker: revoker}
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Login exchanges credentials for a bearer token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	token, claims, err := s.Tokens.GenerateToken(user.ID, string(user.Role), user.RestaurantID)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        &user,
	}, nil
}

// ResolveSession turns a bearer token into a Session. The token must be
// valid, unrevoked, and belong to a user that still exists.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (Session, error) {
	claims, err := s.Tokens.ParseToken(token)
	if err != nil {
		return Session{}, utils.Unauthorized("%v", err)
	}

	revoked, err := s.Revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, utils.Unauthorized("token has been revoked")
	}

	var user models.User
	err = s.DB.WithContext(ctx).Where("id = ?", claims.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, utils.Unauthorized("user no longer exists")
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}

	// Role and restaurant come from the row, not the token.
	sess := Session{
		UserID:    user.ID,
		Role:      user.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if user.RestaurantID != nil {
		sess.RestaurantID = *user.RestaurantID
	}
	return sess, nil
}

// Logout revokes the session's token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, sess Session) error {
	if err := s.Revoker.Revoke(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
		return err
	}
	utils.InfoLogger.Printf("User %s logged out", sess.UserID)
	return nil
}

func (s *AuthService) Me(ctx context.Context, sess Session) (*models.User, error) {
	var user models.User
	if err := first(s.DB.WithContext(ctx), &user, sess.UserID, "user"); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register lets an admin add a staff account. Admin accounts cannot be
// created through the API.
func (s *AuthService) Register(ctx context.Context, sess Session, in RegisterInput) (*models.User, error) {
	if err := Authorize(sess, ResourceUser, ActionCreate, in.RestaurantID); err != nil {
		return nil, err
	}
	if in.Role == models.RoleAdmin || !in.Role.Valid() {
		return nil, utils.Unprocessable("role must be owner, kitchen or cashier")
	}
	if in.RestaurantID == "" {
		return nil, utils.Unprocessable("restaurant_id is required")
	}

	var user *models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadRestaurant(tx, in.RestaurantID); err != nil {
			return err
		}
		restaurantID := in.RestaurantID
		created, err := createUser(tx, StaffInput{FullName: in.FullName, Email: in.Email, Password: in.Password}, in.Role, &restaurantID)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	return user, nil
}

// StaffInput is the account part of restaurant creation and registration.
type StaffInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func createUser(tx *gorm.DB, in StaffInput, role models.Role, restaurantID *string) (*models.User, error) {
	email := models.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, utils.Unprocessable("a valid email is required for the %s account", role)
	}
	if len(in.Password) < minPasswordLength {
		return nil, utils.Unprocessable("password for %s must be at least %d characters", email, minPasswordLength)
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, utils.Conflict("email %s is already registered", email)
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		name = defaultStaffName(role)
	}

	user := models.User{
		FullName:     name,
		Email:        email,
		Password:     hashed,
		Role:         role,
		RestaurantID: restaurantID,
	}
	if err := tx.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, utils.Conflict("email %s is already registered", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func defaultStaffName(role models.Role) string {
	switch role {
	case models.RoleOwner:
		return "Owner"
	case models.RoleKitchen:
		return "Kitchen"
	case models.RoleCashier:
		return "Cashier"
	}
	return "Staff"
}
