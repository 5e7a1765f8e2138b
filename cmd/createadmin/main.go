// Command createadmin seeds an administrator account.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/storefront-api/internal/application/user"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/infrastructure/dynamo"
	"github.com/storefront-api/internal/pkg/logger"
)

type seed struct {
	AdminID  string `env:"ADMIN_ID" env-default:"admin01"`
	Name     string `env:"ADMIN_NAME" env-default:"Super Admin"`
	Email    string `env:"ADMIN_EMAIL" env-default:"admin@example.com"`
	Password string `env:"ADMIN_PASSWORD" env-required:"true"`
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	var s seed
	if err := cleanenv.ReadEnv(&s); err != nil {
		log.Fatalf("read admin seed: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.IsDevelopment()); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	lg := logger.WithModule("createadmin")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		lg.Fatal("dynamodb client", zap.Error(err))
	}
	if err := dynamo.Bootstrap(ctx, client, cfg.DynamoTables); err != nil {
		lg.Fatal("bootstrap tables", zap.Error(err))
	}

	svc := user.NewService(user.ServiceDeps{UserRepo: dynamo.NewUserRepo(client, cfg.DynamoTables.Users)})
	u, err := svc.CreateAdmin(ctx, user.CreateAdminRequest{
		AdminID:  s.AdminID,
		Name:     s.Name,
		Email:    s.Email,
		Password: s.Password,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		lg.Info("admin user already exists", zap.String("email", s.Email), zap.String("admin_id", s.AdminID))
		return
	}
	if err != nil {
		lg.Fatal("create admin", zap.Error(err))
	}
	lg.Info("admin created", zap.String("user_id", u.UserID), zap.String("admin_id", u.AdminID), zap.String("email", u.Email))
}
