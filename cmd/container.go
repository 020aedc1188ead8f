// cmd/container.go
//
// Root composition root. Owns infrastructure (DB, Redis, email provider)
// and wires the account and OTP modules. This is the only place that
// knows about all modules.
package main

import (
	"context"
	"time"

	"github.com/cloudeforte/accounts/pkg/account/accountapi"
	"github.com/cloudeforte/accounts/pkg/account/accountinfra"
	"github.com/cloudeforte/accounts/pkg/account/accountsrv"
	"github.com/cloudeforte/accounts/pkg/config"
	"github.com/cloudeforte/accounts/pkg/logx"
	"github.com/cloudeforte/accounts/pkg/notifx"
	"github.com/cloudeforte/accounts/pkg/notifx/notifxconsole"
	"github.com/cloudeforte/accounts/pkg/notifx/notifxses"
	"github.com/cloudeforte/accounts/pkg/otp/otpinfra"
	"github.com/cloudeforte/accounts/pkg/otp/otpsrv"
	"github.com/cloudeforte/accounts/pkg/token"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the composed modules.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	DB    *sqlx.DB
	Redis *redis.Client
	Mail  *notifx.Client

	// Modules
	TokenIssuer     *token.Issuer
	AuthMiddleware  *token.Middleware
	AccountService  *accountsrv.Service
	AccountHandlers *accountapi.Handlers
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("Database connected")

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	logx.Info("Redis connected")

	c.initMailProvider()
}

func (c *Container) initMailProvider() {
	switch c.Config.Notifx.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO(),
			awsConfig.WithRegion(c.Config.Notifx.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		provider := notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), c.Config.Notifx.FromAddress)
		c.Mail = notifx.NewClient(provider)
		logx.Infof("SES email provider configured (region: %s)", c.Config.Notifx.AWSRegion)

	case "console":
		c.Mail = notifx.NewClient(notifxconsole.NewConsoleProvider())
		logx.Info("Console email provider configured")

	default:
		logx.Fatalf("Unknown NOTIFX_PROVIDER: %s (use 'console' or 'ses')", c.Config.Notifx.Provider)
	}
}

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	auth := c.Config.Auth

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  auth.JWTSecret,
		RefreshSecret: auth.JWTRefreshSecret,
		AccessTTL:     auth.AccessTokenTTL,
		RefreshTTL:    auth.RefreshTokenTTL,
		Issuer:        auth.Issuer,
	})
	if err != nil {
		logx.Fatalf("Failed to configure token issuer: %v", err)
	}
	c.TokenIssuer = issuer
	c.AuthMiddleware = token.NewMiddleware(issuer)

	notifier, err := otpinfra.NewEmailNotifier(c.Mail, c.Config.Notifx.FromAddress,
		int(auth.OTPTTL/time.Minute))
	if err != nil {
		logx.Fatalf("Failed to configure OTP mailer: %v", err)
	}

	challenges := otpsrv.NewChallengeService(
		otpinfra.NewRedisChallengeStore(c.Redis),
		notifier,
		otpsrv.Config{CodeDigits: auth.OTPDigits, TTL: auth.OTPTTL},
	)

	c.AccountService = accountsrv.NewService(
		accountinfra.NewPostgresAccountRepository(c.DB),
		accountinfra.NewBcryptHasher(auth.BcryptCost),
		challenges,
		issuer,
		auth.LoginPolicy,
	)
	c.AccountHandlers = accountapi.NewHandlers(c.AccountService, c.AuthMiddleware, auth.DebugEchoOTP)

	logx.Infof("Account module initialized (login policy: %s)", auth.LoginPolicy)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		}
	}

	logx.Info("Cleanup complete")
}
