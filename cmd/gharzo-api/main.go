package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vishaldhakad2025/GharZo-sub002/api/swagger"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/handler"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/middleware"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/models"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/registry"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/repository"
	"github.com/vishaldhakad2025/GharZo-sub002/internal/service"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/cache"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/config"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/database"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/export"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/jobs"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/logger"
	corsmiddleware "github.com/vishaldhakad2025/GharZo-sub002/pkg/middleware/cors"
	reqidmiddleware "github.com/vishaldhakad2025/GharZo-sub002/pkg/middleware/requestid"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/storage"
)

// @title Gharzo Admin API
// @version 1.0.0
// @description Property rental administration with document distribution and review reconciliation
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	uploadStorage, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	urlSigner := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	dueRepo := repository.NewDueRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	overlayRepo := repository.NewOverlayRepository(redisClient, cfg.Overlay.KeyPrefix, logr)

	registryClient := registry.NewClient(registry.Config{
		BaseURL:    cfg.Registry.BaseURL,
		Token:      cfg.Registry.Token,
		Timeout:    cfg.Registry.Timeout,
		MaxRetries: cfg.Registry.MaxRetries,
	}, logr)

	csvExporter := export.NewCSVExporter()
	pdfExporter := export.NewPDFExporter()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gharzo-api",
	})
	userService := service.NewUserService(userRepo, validate, logr)
	propertyService := service.NewPropertyService(propertyRepo, cacheRepo, cfg.Listings.CacheTTL, validate, logr)
	roomService := service.NewRoomService(roomRepo, propertyRepo, validate, logr)
	tenantService := service.NewTenantService(tenantRepo, roomRepo, validate, logr)
	expenseService := service.NewExpenseService(expenseRepo, csvExporter, validate, logr)
	announcementService := service.NewAnnouncementService(announcementRepo, validate, logr)
	complaintService := service.NewComplaintService(complaintRepo, uploadStorage, urlSigner, userRepo, validate, logr)
	dueService := service.NewDueService(dueRepo, csvExporter, pdfExporter, userRepo, cfg.Dues.ReceiptIssuer, validate, logr)
	visitService := service.NewVisitService(visitRepo, validate, logr)
	reviewService := service.NewPropertyReviewService(reviewRepo, validate, logr)
	documentService := service.NewDocumentService(registryClient, overlayRepo, validate, logr)
	metricsService := service.NewMetricsService()
	registryClient.SetMetrics(metricsService)
	propertyService.SetMetrics(metricsService)
	documentService.SetMetrics(metricsService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resyncQueue := jobs.NewQueue("review-resync", documentService.HandleResyncJob, jobs.QueueConfig{
		Workers:    cfg.Overlay.ResyncWorkers,
		BufferSize: 256,
		MaxRetries: cfg.Overlay.ResyncRetries,
		RetryDelay: cfg.Overlay.ResyncInterval,
		Logger:     logr,
	})
	documentService.SetResyncQueue(resyncQueue)
	resyncQueue.Start(ctx)
	defer resyncQueue.Stop()

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	roomHandler := handler.NewRoomHandler(roomService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	announcementHandler := handler.NewAnnouncementHandler(announcementService)
	complaintHandler := handler.NewComplaintHandler(complaintService)
	dueHandler := handler.NewDueHandler(dueService)
	visitHandler := handler.NewVisitHandler(visitService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	documentHandler := handler.NewDocumentHandler(documentService)
	fileHandler := handler.NewFileHandler(urlSigner, uploadStorage)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	public := api.Group("/public")
	{
		public.GET("/listings", propertyHandler.PublicListings)
		public.GET("/listings/:id", propertyHandler.PublicGet)
		public.GET("/reviews", reviewHandler.PublicList)
		public.POST("/reviews", reviewHandler.Submit)
		public.GET("/properties/:id/rating", reviewHandler.RatingSummary)
		public.POST("/visits", visitHandler.Schedule)
		public.GET("/files/:token", fileHandler.Download)
	}

	admin := api.Group("")
	admin.Use(middleware.JWT(authService))

	subAdmins := admin.Group("/sub-admins")
	subAdmins.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleLandlord))
	{
		subAdmins.GET("", userHandler.List)
		subAdmins.GET("/:id", userHandler.Get)
		subAdmins.POST("", userHandler.Create)
		subAdmins.PUT("/:id", userHandler.Update)
		subAdmins.DELETE("/:id", userHandler.Disable)
	}

	properties := admin.Group("/properties")
	properties.Use(middleware.Permission(models.PermissionProperties, userRepo))
	{
		properties.GET("", propertyHandler.List)
		properties.GET("/:id", propertyHandler.Get)
		properties.POST("", propertyHandler.Create)
		properties.PUT("/:id", propertyHandler.Update)
		properties.DELETE("/:id", propertyHandler.Unlist)
	}

	rooms := admin.Group("/rooms")
	rooms.Use(middleware.Permission(models.PermissionRooms, userRepo))
	{
		rooms.GET("", roomHandler.List)
		rooms.GET("/:id", roomHandler.Get)
		rooms.POST("", roomHandler.Create)
		rooms.PUT("/:id", roomHandler.Update)
		rooms.DELETE("/:id", roomHandler.Delete)
	}

	tenants := admin.Group("/tenants")
	tenants.Use(middleware.Permission(models.PermissionTenants, userRepo))
	{
		tenants.GET("", tenantHandler.List)
		tenants.GET("/:id", tenantHandler.Get)
		tenants.POST("", tenantHandler.Create)
		tenants.PUT("/:id", tenantHandler.Update)
		tenants.PUT("/:id/room", tenantHandler.AssignRoom)
		tenants.POST("/:id/move-out", tenantHandler.MoveOut)
	}

	expenses := admin.Group("/expenses")
	expenses.Use(middleware.Permission(models.PermissionExpenses, userRepo))
	{
		expenses.GET("", expenseHandler.List)
		expenses.GET("/summary", expenseHandler.Summary)
		expenses.GET("/export", expenseHandler.Export)
		expenses.GET("/:id", expenseHandler.Get)
		expenses.POST("", expenseHandler.Create)
		expenses.PUT("/:id", expenseHandler.Update)
		expenses.DELETE("/:id", expenseHandler.Delete)
	}

	announcements := admin.Group("/announcements")
	announcements.Use(middleware.Permission(models.PermissionAnnouncements, userRepo))
	{
		announcements.GET("", announcementHandler.List)
		announcements.GET("/:id", announcementHandler.Get)
		announcements.POST("", announcementHandler.Create)
		announcements.PUT("/:id", announcementHandler.Update)
		announcements.DELETE("/:id", announcementHandler.Delete)
	}

	complaints := admin.Group("/complaints")
	complaints.Use(middleware.Permission(models.PermissionComplaints, userRepo))
	{
		complaints.GET("", complaintHandler.List)
		complaints.GET("/:id", complaintHandler.Get)
		complaints.POST("", complaintHandler.Create)
		complaints.POST("/:id/photo", complaintHandler.AttachPhoto)
		complaints.GET("/:id/photo-url", complaintHandler.PhotoURL)
		complaints.PUT("/:id/status", complaintHandler.UpdateStatus)
	}

	documents := admin.Group("/documents")
	documents.Use(middleware.Permission(models.PermissionDocuments, userRepo))
	{
		documents.GET("", documentHandler.List)
		documents.GET("/:id", documentHandler.Get)
		documents.POST("", documentHandler.Create)
		documents.POST("/:id/review", middleware.Audit(userRepo, models.AuditActionDocumentReview, "document"), documentHandler.Review)
	}

	dues := admin.Group("/dues")
	dues.Use(middleware.Permission(models.PermissionDues, userRepo))
	{
		dues.GET("", dueHandler.List)
		dues.GET("/export", dueHandler.Export)
		dues.GET("/:id", dueHandler.Get)
		dues.POST("", dueHandler.Create)
		dues.POST("/:id/payments", dueHandler.RecordPayment)
		dues.GET("/:id/receipt", dueHandler.Receipt)
	}

	visits := admin.Group("/visits")
	visits.Use(middleware.Permission(models.PermissionVisits, userRepo))
	{
		visits.GET("", visitHandler.List)
		visits.PUT("/:id/status", visitHandler.UpdateStatus)
	}

	reviews := admin.Group("/reviews")
	reviews.Use(middleware.Permission(models.PermissionProperties, userRepo))
	{
		reviews.GET("", reviewHandler.List)
		reviews.PUT("/:id/moderate", reviewHandler.Moderate)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
