package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"stockroom/internal/auth"
	"stockroom/internal/models"
)

type UserInput struct {
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	FullName   string      `json:"full_name"`
	Email      string      `json:"email"`
	Department string      `json:"department"`
	Role       models.Role `json:"role"`
}

// UserPatch changes only the fields that are set.
type UserPatch struct {
	Password   *string      `json:"password,omitempty"`
	FullName   *string      `json:"full_name,omitempty"`
	Email      *string      `json:"email,omitempty"`
	Department *string      `json:"department,omitempty"`
	Role       *models.Role `json:"role,omitempty"`
	Active     *bool        `json:"active,omitempty"`
}

func (s *Store) CreateUser(ctx context.Context, in UserInput) (models.User, error) {
	var u models.User
	in.Username = strings.TrimSpace(in.Username)
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	switch {
	case in.Username == "":
		return u, invalid("username", "required")
	case len(in.Password) < 6:
		return u, invalid("password", "must be at least 6 characters")
	case !in.Role.Valid():
		return u, invalid("role", fmt.Sprintf("unknown role %q", in.Role))
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return u, fmt.Errorf("hash password: %w", err)
	}
	err = s.write(ctx, func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.User{}, "username", in.Username)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("user %s: %w", in.Username, ErrDuplicateKey)
		}
		u = models.User{
			Username:     in.Username,
			PasswordHash: hash,
			FullName:     in.FullName,
			Email:        in.Email,
			Department:   in.Department,
			Role:         in.Role,
			Active:       true,
			CreatedAt:    s.now(),
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := s.read(ctx).Order("id asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, username string) (models.User, error) {
	var u models.User
	if err := s.read(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return u, notFound(err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, username string, p UserPatch) (models.User, error) {
	var u models.User
	if p.Role != nil && !p.Role.Valid() {
		return u, invalid("role", fmt.Sprintf("unknown role %q", *p.Role))
	}
	var hash string
	if p.Password != nil {
		if len(*p.Password) < 6 {
			return u, invalid("password", "must be at least 6 characters")
		}
		var err error
		if hash, err = auth.HashPassword(*p.Password); err != nil {
			return u, fmt.Errorf("hash password: %w", err)
		}
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).First(&u).Error; err != nil {
			return notFound(err)
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		if p.FullName != nil {
			u.FullName = *p.FullName
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.Department != nil {
			u.Department = *p.Department
		}
		if p.Role != nil {
			u.Role = *p.Role
		}
		if p.Active != nil {
			u.Active = *p.Active
		}
		return tx.Save(&u).Error
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Authenticate checks the credentials of an active user and stamps the
// login time. Unknown users, inactive users and wrong passwords are not
// told apart. The hash comparison runs outside the write lock.
func (s *Store) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var u models.User
	if err := s.read(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return u, ErrInvalidCredentials
		}
		return u, err
	}
	if !u.Active || auth.CheckPassword(u.PasswordHash, password) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	now := s.now()
	err := s.write(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND active = ? AND password_hash = ?", u.ID, true, u.PasswordHash).
			Update("last_login", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidCredentials
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	u.LastLogin = &now
	return u, nil
}
