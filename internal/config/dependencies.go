package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"task-manager-api/configs"
	"task-manager-api/internal/auth"
	"task-manager-api/internal/service"
	"task-manager-api/internal/websocket"
	"task-manager-api/pkg/crypto"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
)

// Dependencies is everything the HTTP layer needs, built once at startup.
type Dependencies struct {
	Validate *validator.Validate
	Tokens   *auth.TokenService
	Resolver *auth.Resolver
	Auth     *service.AuthService
	Users    *service.UserService
	Tasks    *service.TaskService
	Hub      *websocket.Hub
	Hasher   *crypto.Hasher
}

// Stores are the persistence backends the services run on.
type Stores struct {
	Users service.UserStore
	Tasks service.TaskStore
	// nil disables token revocation
	Redis redis.UniversalClient
}

func NewDependencies(ctx context.Context, cfg configs.Config, stores Stores) (*Dependencies, error) {
	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecretKey), cfg.JWTAlgorithm, cfg.AccessTokenTTL())
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	var denylist auth.Denylist = auth.NopDenylist{}
	if stores.Redis != nil {
		denylist = auth.NewRedisDenylist(stores.Redis)
	}
	resolver := auth.NewResolver(tokens, stores.Users, denylist)

	hasher := crypto.NewHasher(cfg.HashCost, cfg.HashWorkers)
	users, err := service.NewUserService(ctx, stores.Users, hasher)
	if err != nil {
		return nil, err
	}
	hub := websocket.NewHub(resolver)
	users.AnnounceCascade(stores.Tasks, hub)

	return &Dependencies{
		Validate: NewValidator(),
		Tokens:   tokens,
		Resolver: resolver,
		Auth:     service.NewAuthService(users, tokens, resolver),
		Users:    users,
		Tasks:    service.NewTaskService(stores.Tasks, hub),
		Hub:      hub,
		Hasher:   hasher,
	}, nil
}

// NewValidator returns a validator that reports json field names and knows
// the "password" rule: 8 to 72 bytes with at least one letter and one digit.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

// StrongPassword is the password rule applied on registration and password change.
func StrongPassword(p string) bool {
	if len([]rune(p)) < 8 || len(p) > 72 {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
