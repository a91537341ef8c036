package services

import (
	"errors"
	"time"

	"github.com/haidang/taskhive/backend/internal/models"
	"github.com/haidang/taskhive/backend/internal/utils"
	"github.com/haidang/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db         *gorm.DB
	expireHour int
}

func NewAuthService(db *gorm.DB, expireHour int) *AuthService {
	if expireHour <= 0 {
		expireHour = 24
	}
	return &AuthService{db: db, expireHour: expireHour}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, response.NewServerError("failed to hash password")
	}

	user := models.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   hash,
		Role:       models.GlobalMember,
		LastActive: time.Now(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("email already in use")
		}
		return nil, response.NewServerError("failed to create user")
	}

	return s.issueToken(&user)
}

// Login verifies credentials and touches last_active. The error message
// never says whether the email or the password was wrong.
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, response.NewServerError("failed to load user")
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	s.db.Model(&user).Update("last_active", time.Now())

	return s.issueToken(&user)
}

func (s *AuthService) issueToken(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateToken(user.ID, user.Name, string(user.Role), s.expireHour)
	if err != nil {
		return nil, response.NewServerError("failed to generate token")
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// GetUserByID returns the user's profile.
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, response.NewServerError("failed to load user")
	}
	return &user, nil
}

// UpdateProfile changes the user's display name and/or password.
func (s *AuthService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, response.NewBadRequest("password must be at least 8 characters")
		}
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, response.NewServerError("failed to hash password")
		}
		updates["password"] = hash
	}
	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, response.NewServerError("failed to update profile")
		}
	}
	return user, nil
}

// SearchUsers finds users by name or email prefix for the add-member flow.
func (s *AuthService) SearchUsers(query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var users []models.User
	like := "%" + query + "%"
	if err := s.db.Where("name LIKE ? OR email LIKE ?", like, like).
		Limit(limit).Find(&users).Error; err != nil {
		return nil, response.NewServerError("failed to search users")
	}
	return users, nil
}
