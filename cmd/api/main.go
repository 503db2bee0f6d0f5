package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/ironoak/config"
	"github.com/jordanlanch/ironoak/pkg/agent"
	"github.com/jordanlanch/ironoak/pkg/api/handlers"
	"github.com/jordanlanch/ironoak/pkg/backup"
	"github.com/jordanlanch/ironoak/pkg/billing"
	"github.com/jordanlanch/ironoak/pkg/cache"
	"github.com/jordanlanch/ironoak/pkg/calendar"
	"github.com/jordanlanch/ironoak/pkg/email"
	"github.com/jordanlanch/ironoak/pkg/followup"
	"github.com/jordanlanch/ironoak/pkg/jobs"
	"github.com/jordanlanch/ironoak/pkg/leadlifecycle"
	"github.com/jordanlanch/ironoak/pkg/logger"
	"github.com/jordanlanch/ironoak/pkg/metrics"
	custommiddleware "github.com/jordanlanch/ironoak/pkg/middleware"
	"github.com/jordanlanch/ironoak/pkg/secrets"
	"github.com/jordanlanch/ironoak/pkg/slack"
	"github.com/jordanlanch/ironoak/pkg/store"
	"github.com/jordanlanch/ironoak/pkg/telephony"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	secretManager, err := secrets.NewManager(secrets.Config{
		Backend:       cfg.SecretsBackend,
		AWSRegion:     cfg.AWSRegion,
		CacheDuration: 5 * time.Minute,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize secrets backend: %v", err)
	}
	cfg.ResolveSecrets(ctx, secretManager)

	appLog := logger.New(cfg.LogLevel).With("service", "ironoak-api")

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Prometheus metrics
	prometheusMetrics := metrics.New(prometheus.DefaultRegisterer)
	log.Printf("✅ Prometheus metrics initialized")

	// Record store
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("❌ Failed to create data directory %s: %v", cfg.DataDir, err)
	}
	locks := store.NewPartitionLocks()
	locks.SetObserver(prometheusMetrics.RecordStoreOperation)
	leadStore := store.NewLeadStore(cfg.DataDir, locks)
	contactStore := store.NewContactStore(cfg.DataDir, locks)
	log.Printf("✅ Record store ready (dir: %s)", cfg.DataDir)

	// Redis is optional: webhook dedupe and durable follow-ups
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		log.Printf("ℹ️  Redis disabled (no REDIS_URL configured)")
	}

	// Gateways
	twilioClient := telephony.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	signatureValidator := telephony.NewValidator(cfg.TwilioAuthToken, cfg.BaseURL, cfg.TwilioValidate)
	agentClient := agent.NewClient(cfg.AgentRegisterURL, cfg.AgentAPIKey, cfg.AgentID)

	calendarStore, err := calendar.NewGoogleStore(ctx, cfg.GoogleServiceAccountKey, cfg.GoogleCalendarID)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Google Calendar: %v", err)
	}
	calendarService, err := calendar.NewService(calendarStore, cfg.CalendarTimezone)
	if err != nil {
		log.Fatalf("❌ Failed to initialize scheduling: %v", err)
	}

	stripeWebhook := billing.NewWebhook(cfg.StripeWebhookSecret)
	if redisClient != nil {
		stripeWebhook.SetDeduper(redisClient)
	}

	emailService := email.NewService(cfg.EmailFrom, cfg.EmailFromName, cfg.OperatorEmail, cfg.SendGridAPIKey)

	slackService := slack.NewService(nil)
	if cfg.SlackWebhookURL != "" {
		slackService = slack.NewService(slack.NewWebhookClient(cfg.SlackWebhookURL))
		log.Printf("✅ Slack notifications enabled")
	}

	// Lead lifecycle engine
	course := email.CourseDetails{Dates: cfg.CourseDates, Time: cfg.CourseTime, Location: cfg.CourseLocation}
	leadService := leadlifecycle.NewService(leadlifecycle.Dependencies{
		Leads:     leadStore,
		Contacts:  contactStore,
		Notifier:  twilioClient,
		Agent:     agentClient,
		Scheduler: calendarService,
		Alerter:   slackService,
		Mailer:    emailService,
		Recorder:  prometheusMetrics,
	}, leadlifecycle.Config{
		ProviderNumber:  cfg.TwilioPhoneNumber,
		OperatorPhone:   cfg.OperatorPhone,
		OperatorContact: cfg.OperatorContact,
		BaseURL:         cfg.BaseURL,
		BookingLink:     cfg.BookingLink,
		PaymentLink:     cfg.StripePaymentLink,
		Course:          course,
		CoursePrice:     cfg.CoursePrice,
		AgentName:       cfg.AgentName,
		MinCallSeconds:  cfg.MinCallSeconds,
		FollowUpMin:     time.Duration(cfg.FollowUpMinMinutes) * time.Minute,
		FollowUpMax:     time.Duration(cfg.FollowUpMaxMinutes) * time.Minute,
		Location:        calendarService.Location(),
	}, appLog)

	// Follow-up calls: asynq when Redis is available and requested, in-process timers otherwise
	backupSources := []backup.Source{leadStore.Collection(), contactStore.Collection()}
	var timerScheduler *followup.TimerScheduler
	var asynqScheduler *followup.AsynqScheduler
	if cfg.FollowUpBackend == "asynq" && cfg.RedisURL != "" {
		opt, err := followup.RedisClientOpt(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Invalid Redis URL for follow-ups: %v", err)
		}
		asynqScheduler = followup.NewAsynqScheduler(opt, cfg.FollowUpQueue)
		leadService.SetFollowUps(asynqScheduler)

		worker := followup.NewWorker(opt, cfg.FollowUpQueue, leadService, appLog)
		go func() {
			if err := worker.Run(ctx); err != nil {
				log.Printf("❌ Follow-up worker stopped: %v", err)
			}
		}()
		log.Printf("✅ Follow-up calls queued on asynq (queue: %s)", cfg.FollowUpQueue)
	} else {
		timerScheduler = followup.NewTimerScheduler(cfg.DataDir, locks, appLog)
		timerScheduler.SetRunner(leadService)
		leadService.SetFollowUps(timerScheduler)
		restored, err := timerScheduler.Restore(ctx)
		if err != nil {
			log.Printf("⚠️  Failed to restore pending follow-ups: %v", err)
		}
		backupSources = append(backupSources, timerScheduler.Collection())
		log.Printf("✅ Follow-up timers armed (%d restored)", restored)
	}

	// Backups
	var backupService *backup.Service
	var backupRunner jobs.BackupRunner
	if cfg.S3Bucket != "" {
		backupService, err = backup.NewService(backup.Config{
			AWSAccessKeyID:     cfg.AWSAccessKeyID,
			AWSSecretAccessKey: cfg.AWSSecretAccessKey,
			AWSRegion:          cfg.AWSRegion,
			S3Bucket:           cfg.S3Bucket,
			RetentionDays:      cfg.BackupRetentionDays,
		}, backupSources...)
		if err != nil {
			log.Printf("⚠️  Backups disabled: %v", err)
		} else {
			backupRunner = backupService
			log.Printf("✅ Backups enabled (bucket: %s, retention: %d days)", cfg.S3Bucket, cfg.BackupRetentionDays)
		}
	}

	cronManager := jobs.NewCronManager(backupRunner, leadService, slackService, calendarService.Location(), log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	publicLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	loginLimiter := custommiddleware.NewRateLimiter(5, 2)
	go publicLimiter.Cleanup(ctx, 5*time.Minute)
	go loginLimiter.Cleanup(ctx, 5*time.Minute)

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				appLog.Warn("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency_ms", v.Latency.Milliseconds(), "error", v.Error.Error())
				return nil
			}
			appLog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency_ms", v.Latency.Milliseconds())
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	securityHeaders := custommiddleware.DefaultSecurityHeadersConfig()
	if cfg.APIEnvironment == "production" {
		securityHeaders.HSTSMaxAge = 31536000
	}
	e.Use(custommiddleware.SecurityHeaders(securityHeaders))

	// Handlers
	intakeHandler := handlers.NewIntakeHandler(leadService)
	contactHandler := handlers.NewContactHandler(leadService, prometheusMetrics)
	twilioHandler := handlers.NewTwilioHandler(leadService, signatureValidator, prometheusMetrics, appLog)
	billingHandler := handlers.NewBillingHandler(leadService, stripeWebhook, prometheusMetrics, appLog)
	toolsHandler := handlers.NewToolsHandler(leadService)
	adminHandler := handlers.NewAdminHandler(leadService, handlers.AdminConfig{
		Email:           cfg.AdminEmail,
		APIKey:          cfg.AdminAPIKey,
		JWTSecret:       cfg.JWTSecret,
		ExpirationHours: cfg.JWTExpirationHours,
	}, prometheusMetrics)

	checks := map[string]handlers.Pinger{}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	healthHandler := handlers.NewHealthHandler(checks)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "Iron & Oak API",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public forms
	e.POST("/api/contact", contactHandler.Submit, publicLimiter.RateLimitMiddleware())
	e.POST("/api/ai/submit", intakeHandler.Submit, publicLimiter.RateLimitMiddleware())

	// Provider webhooks (signature-checked)
	e.POST("/api/ai/stripe/webhook", billingHandler.Webhook)
	e.POST("/api/ai/twilio/voice", twilioHandler.Voice)
	e.POST("/api/ai/twilio/status", twilioHandler.Status)
	e.POST("/api/ai/sms/inbound", twilioHandler.InboundSMS)

	// Voice agent tools
	tools := e.Group("/api/ai/tools", publicLimiter.RateLimitMiddleware())
	tools.POST("/check-availability", toolsHandler.CheckAvailability)
	tools.POST("/book-appointment", toolsHandler.BookAppointment)
	tools.POST("/reschedule-appointment", toolsHandler.RescheduleAppointment)
	tools.POST("/cancel-appointment", toolsHandler.CancelAppointment)
	tools.POST("/send-sms", toolsHandler.SendSMS)

	// Admin
	e.POST("/api/ai/admin/login", adminHandler.Login, loginLimiter.RateLimitMiddleware())
	admin := e.Group("/api/ai/admin", custommiddleware.AdminAuth(cfg.JWTSecret))
	admin.GET("/leads", adminHandler.List)
	admin.GET("/leads/download", adminHandler.Download)
	admin.GET("/leads/:id", adminHandler.Get)
	admin.PATCH("/leads/:id", adminHandler.Update)
	admin.DELETE("/leads/:id", adminHandler.Delete)
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/contacts", contactHandler.List)
	admin.GET("/contacts/download", contactHandler.Download)
	if backupService != nil {
		backupHandler := handlers.NewBackupHandler(backupService)
		admin.POST("/backups", backupHandler.CreateBackup)
		admin.GET("/backups", backupHandler.ListBackups)
	}

	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Iron & Oak API starting on %s", address)
	log.Printf("📝 Log level: %s", cfg.LogLevel)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Cron jobs: Daily 3AM (backup), Daily 8AM (lead stats)")

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	// Pending timers stay on disk and are re-armed by Restore on the next start
	stop()
	if timerScheduler != nil {
		timerScheduler.Stop()
	}
	if asynqScheduler != nil {
		if err := asynqScheduler.Close(); err != nil {
			log.Printf("⚠️  Failed to close follow-up queue: %v", err)
		}
	}

	log.Println("✅ Server gracefully stopped")
}
