package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calorielog/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUsernameTaken 在注册的用户名已存在时返回
	ErrUsernameTaken = errors.New("username already taken")
	// ErrBadCredentials 在用户名不存在或密码错误时返回，二者不可区分
	ErrBadCredentials = errors.New("invalid username or password")
	// ErrEmptyCredentials 在用户名或密码为空时返回
	ErrEmptyCredentials = errors.New("username and password are required")
	// ErrUserNotFound 在指定用户不存在时返回
	ErrUserNotFound = errors.New("user not found")
)

// IdentityService 负责用户与管理员两类主体的注册、验证与密码维护。
// 管理员不开放注册，由 db.EnsureAdmin 在部署时种子化。
type IdentityService struct {
	db *gorm.DB
}

// NewIdentityService 构造 IdentityService
func NewIdentityService(gdb *gorm.DB) *IdentityService {
	return &IdentityService{db: gdb}
}

// SignupUser 注册新用户，密码只存 bcrypt 哈希。
// 用户名查重交给唯一索引，并发注册同名也只会成功一个。
func (s *IdentityService) SignupUser(username, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Username:   username,
		Password:   string(hashed),
		TargetKcal: db.DefaultTargetKcal,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// AuthenticateUser 校验用户凭证并返回用户 ID。
// 用户名不存在与密码错误必须返回同一个错误，防止枚举账号。
func (s *IdentityService) AuthenticateUser(username, password string) (uint, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrBadCredentials
		}
		return 0, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return 0, ErrBadCredentials
	}
	return user.ID, nil
}

// AuthenticateAdmin 校验管理员凭证并返回管理员 ID
func (s *IdentityService) AuthenticateAdmin(username, password string) (uint, error) {
	var admin db.Admin
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrBadCredentials
		}
		return 0, fmt.Errorf("lookup admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return 0, ErrBadCredentials
	}
	return admin.ID, nil
}

// UserByID 返回指定用户，用于 whoami 展示
func (s *IdentityService) UserByID(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// AdminByID 返回指定管理员
func (s *IdentityService) AdminByID(id uint) (*db.Admin, error) {
	var admin db.Admin
	if err := s.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}

// ChangePassword 替换用户密码哈希，不要求校验旧密码
func (s *IdentityService) ChangePassword(userID uint, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyCredentials
	}

	var user db.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
