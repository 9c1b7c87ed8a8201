package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apihttp "drinkpass/internal/backend/http"
	"drinkpass/internal/backend/repository"
	"drinkpass/internal/backend/service"
	"drinkpass/internal/config"
	"drinkpass/internal/db"
	"drinkpass/internal/domain"
	"drinkpass/internal/email"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		userRepo     repository.UserRepository
		shopRepo     repository.ShopRepository
		favoriteRepo repository.FavoriteRepository
		couponRepo   repository.CouponRepository
		usageRepo    repository.UsageRepository
	)

	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		userRepo = repository.NewPgUserRepository(pool)
		shopRepo = repository.NewPgShopRepository(pool)
		favoriteRepo = repository.NewPgFavoriteRepository(pool)
		couponRepo = repository.NewPgCouponRepository(pool)
		usageRepo = repository.NewPgUsageRepository(pool)
	} else {
		logger.Info("no DATABASE_URL, using in-memory repositories with demo data")
		users := repository.NewMemoryUserRepository()
		shops := repository.NewMemoryShopRepository()
		coupons := repository.NewMemoryCouponRepository()
		seedDemoData(ctx, logger, users, shops, coupons)
		userRepo = users
		shopRepo = shops
		couponRepo = coupons
		favoriteRepo = repository.NewMemoryFavoriteRepository()
		usageRepo = repository.NewMemoryUsageRepository()
	}

	emailSender := email.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var otpLimiter service.OTPRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}

	secret := cfg.SessionSecret
	if secret == "" {
		logger.Warn("session secret not configured, using a random one (sessions die on restart)")
		secret = uuid.NewString()
	}
	tokens := service.NewSessionTokenService(secret, time.Duration(cfg.SessionTTLHours)*time.Hour)

	authSvc := service.NewAuthService(logger, userRepo, emailSender, otpLimiter)
	couponSvc := service.NewCouponService(logger, shopRepo, couponRepo, favoriteRepo, usageRepo)

	cookieTTL := cfg.SessionTTLHours * 3600
	authHandler := apihttp.NewAuthHandler(logger, authSvc, tokens, userRepo, cookieTTL)
	shopHandler := apihttp.NewShopHandler(logger, couponSvc)
	couponHandler := apihttp.NewCouponHandler(logger, couponSvc, userRepo)
	router := apihttp.NewRouter(logger, tokens, authHandler, shopHandler, couponHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

// seedDemoData carga un usuario y un par de locales con cupones para poder
// recorrer el flujo completo sin base de datos.
func seedDemoData(ctx context.Context, logger *zap.Logger, users *repository.MemoryUserRepository, shops *repository.MemoryShopRepository, coupons *repository.MemoryCouponRepository) {
	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("seed password hash", zap.Error(err))
	}
	birth := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	demoUser := domain.User{
		ID:           uuid.NewString(),
		Email:        "demo@example.com",
		DisplayName:  "Demo",
		BirthDate:    &birth,
		PasswordHash: string(hash),
		Plan: &domain.Plan{
			ID:        uuid.NewString(),
			Name:      "monthly",
			Status:    domain.PlanStatusActive,
			StartedAt: time.Now().UTC(),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := users.Create(ctx, demoUser); err != nil {
		logger.Fatal("seed user", zap.Error(err))
	}

	demoShops := []domain.Shop{
		{ID: uuid.NewString(), Name: "Golden Gai Stand", Area: "shinjuku", Genre: "bar"},
		{ID: uuid.NewString(), Name: "Ebisu Craft Corner", Area: "ebisu", Genre: "craft_beer",
			UsageWindow: &domain.UsageWindow{Days: []int{1, 2, 3, 4, 5}, StartTime: "17:00", EndTime: "23:30"}},
	}
	for _, shop := range demoShops {
		if err := shops.Create(ctx, shop); err != nil {
			logger.Fatal("seed shop", zap.Error(err))
		}
		for _, drink := range []string{domain.DrinkTypeAlcohol, domain.DrinkTypeSoftDrink} {
			coupon := domain.Coupon{
				ID:        uuid.NewString(),
				ShopID:    shop.ID,
				Title:     "One free " + drink,
				DrinkType: drink,
				Status:    domain.CouponStatusApproved,
				IsPublic:  true,
				CreatedAt: time.Now().UTC(),
			}
			if err := coupons.Create(ctx, coupon); err != nil {
				logger.Fatal("seed coupon", zap.Error(err))
			}
		}
	}
	logger.Info("demo data ready", zap.String("email", demoUser.Email), zap.String("password", "demo1234"))
}
