package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"landslide-monitor/models"
)

const msgInvalidCredentials = "Invalid credentials"

// Moderators stores moderator accounts and issues their tokens.
type Moderators struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewModerators(db *gorm.DB, secret string, ttl time.Duration) *Moderators {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Moderators{db: db, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Create adds a moderator with a bcrypt hashed password.
func (m *Moderators) Create(ctx context.Context, username, password string) (*models.Moderator, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 8 {
		return nil, validationError("Username is required and password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, persistenceError("hash password", err)
	}
	mod := models.Moderator{Username: username, Password: string(hash)}
	if err := m.db.WithContext(ctx).Create(&mod).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationError("Moderator already exists")
		}
		return nil, persistenceError("create moderator", err)
	}
	return &mod, nil
}

// Login checks the credentials and returns a signed HS256 token.
func (m *Moderators) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	var mod models.Moderator
	if err := m.db.WithContext(ctx).Where("username = ?", req.Username).First(&mod).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", unauthorizedError(msgInvalidCredentials)
		}
		return "", persistenceError("find moderator", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(mod.Password), []byte(req.Password)); err != nil {
		return "", unauthorizedError(msgInvalidCredentials)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  mod.ID,
		"username": mod.Username,
		"exp":      m.now().Add(m.ttl).Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", persistenceError("sign token", err)
	}
	return signed, nil
}
