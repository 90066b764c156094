// Package api contains all endpoints available
package api

import (
	"context"
	"fmt"
	"io"
	"time"

	"storeit/backend/config"
	"storeit/backend/db"
	"storeit/backend/internal/service"
	"storeit/backend/middleware"
	"storeit/backend/pkg/security"
	"storeit/backend/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var cacheStore = persist.NewMemoryStore(time.Minute)

// ObjectStore is the slice of the bucket client the handlers need
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	ObjectURL(key string) string
}

// PasscodeMailer delivers one-time sign-in codes
type PasscodeMailer interface {
	SendPasscode(sendTo, code string) error
}

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Hasher *security.ArgonHash
	Store  ObjectStore
	Mail   PasscodeMailer
}

func NewRouter() (*API, error) {
	a := &API{
		Hasher: security.New(),
		Mail:   service.NewMailer(),
	}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	s3, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}
	a.Store = s3

	a.registerRoutes()

	service.PasscodeCleanup(time.Hour, a.DB)
	service.SessionCleanup(time.Hour, a.DB)

	if _, err := service.StartUploadReconciler(a.DB, s3, config.ReconcileNow()); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *API) registerRoutes() {
	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{viper.GetString("host.cors_origin")},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("accountID"); v != "" {
					fields = append(fields, zap.String("accountID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	session := middleware.NewSessionMiddleware(a.DB)
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a session cookie
		main.HEAD("/validate", session, a.Validate)
	}

	auth := main.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		rps := viper.GetInt("ratelimit.requests_per_second")
		if rps <= 0 {
			rps = 1
		}

		burst := viper.GetInt("ratelimit.burst")
		if burst <= 0 {
			burst = 3
		}

		passcodeLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: rps,
			Burst:             burst,
		})

		// POST /api/auth/sign-up	-> Creates an account and mails a passcode
		auth.POST("/sign-up", passcodeLimiter, a.AuthSignUp)

		// POST /api/auth/sign-in	-> Re-issues a passcode for an existing account
		auth.POST("/sign-in", passcodeLimiter, a.AuthSignIn)

		// POST /api/auth/verify	-> Exchanges a passcode for a session cookie
		auth.POST("/verify", a.AuthVerify)

		// POST /api/auth/sign-out	-> Revokes the session and clears the cookie
		auth.POST("/sign-out", session, a.AuthSignOut)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/users/me		-> Resolves the session to its user document
		users.GET("/me", session, a.UserCurrent)
	}

	files := main.Group("/files")
	{
		// GET /api/files		-> Lists files owned by or shared with the caller
		files.GET("", session, a.FileFetch)

		// POST /api/files		-> Uploads a new file and stores its metadata
		files.POST("", session, middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files/:id/view	-> Redirects to the stored object
		files.GET("/:id/view", cacheFor(60), a.FileServe)

		// PATCH /api/files/:id/name	-> Renames a file
		files.PATCH("/:id/name", session, a.FileRename)

		// PUT /api/files/:id/users	-> Replaces a file's sharing list
		files.PUT("/:id/users", session, a.FileShare)

		// DELETE /api/files/:id	-> Deletes a file owned by the caller
		files.DELETE("/:id", session, a.FileDelete)
	}

	// GET /api/usage			-> Per-category storage usage against the quota
	main.GET("/usage", session, a.Usage)
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
}

// bustCache drops a cached GET response after a mutation touches the
// data behind it
func bustCache(uri string) {
	if err := cacheStore.Delete(uri); err != nil && err != persist.ErrCacheMiss {
		zap.L().Debug("Failed to bust cache entry", zap.String("uri", uri), zap.Error(err))
	}
}
