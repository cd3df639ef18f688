package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lucasperes/helpdesk-api/config"
	"github.com/lucasperes/helpdesk-api/controllers"
	"github.com/lucasperes/helpdesk-api/logger"
	"github.com/lucasperes/helpdesk-api/middleware"
	"github.com/lucasperes/helpdesk-api/models"
	"github.com/lucasperes/helpdesk-api/services"
	"github.com/lucasperes/helpdesk-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg := logger.New(cfg.GoEnv, cfg.LogLevel)

	db, err := config.Connect(cfg)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := migrate(db); err != nil {
		logg.Fatal().Err(err).Msg("database migration failed")
	}
	if err := seedAdmin(db, cfg, logg); err != nil {
		logg.Fatal().Err(err).Msg("admin seed failed")
	}

	images, err := newImageService(cfg, logg)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to initialize image storage")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(db, cfg, images, logg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logg.Info().Str("addr", srv.Addr).Msg("helpdesk api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logg.Error().Err(err).Msg("shutdown error")
	}
	logg.Info().Msg("shutdown complete")
}

// migrate creates or updates the schema for every entity
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Sector{}, &models.Ticket{})
}

// seedAdmin creates the initial Admin account when the user table is empty
// and ADMIN_EMAIL/ADMIN_PASSWORD are configured
func seedAdmin(db *gorm.DB, cfg *config.Config, logg zerolog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:         "Administrador",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logg.Info().Str("email", cfg.AdminEmail).Msg("seeded initial admin user")
	return nil
}

// newImageService selects the attachment storage backend: S3 when a bucket
// is configured, local disk otherwise
func newImageService(cfg *config.Config, logg zerolog.Logger) (services.ImageService, error) {
	if cfg.UseS3() {
		logg.Info().Str("bucket", cfg.AWSS3Bucket).Msg("using S3 image storage")
		return services.NewS3ImageService(cfg, logg)
	}
	return services.NewLocalImageService(cfg.UploadDir, logg), nil
}

// setupRouter wires middleware, controllers and every route
func setupRouter(db *gorm.DB, cfg *config.Config, images services.ImageService, logg zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logg))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.CORSOrigin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.CORSOrigin}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	ticketService := services.NewTicketService(db, images, logg)

	auth := controllers.NewAuthController(db, cfg, logg)
	users := controllers.NewUserController(db, cfg, logg)
	sectors := controllers.NewSectorController(db, cfg, logg)
	admin := controllers.NewAdminController(db, cfg, logg)
	tickets := controllers.NewTicketController(ticketService, images, cfg, logg)
	uploads := controllers.NewImageController(cfg.UploadDir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/clientes", auth.Register)
	router.POST("/login", auth.Login)
	router.PUT("/atualizar-perfil", auth.UpdateProfile)
	router.POST("/recuperar-senha", auth.RecoverPassword)

	router.GET("/usuarios", users.ListActive)
	router.GET("/setores", sectors.ListActive)

	router.GET("/ticket-metadata", tickets.Metadata)
	router.GET("/tickets", tickets.List)
	router.POST("/tickets", tickets.Create)
	router.GET("/tickets/:id", tickets.Get)
	router.PUT("/tickets/:id", tickets.Update)
	router.DELETE("/tickets/:id", tickets.Delete)
	router.PUT("/tickets/:id/imagens", tickets.AttachImages)

	adminGroup := router.Group("/admin")
	{
		adminGroup.GET("/usuarios", users.AdminList)
		adminGroup.POST("/usuarios", users.AdminCreate)
		adminGroup.PUT("/usuarios/:id", users.AdminUpdate)
		adminGroup.DELETE("/usuarios/:id", users.AdminDeactivate)

		adminGroup.GET("/setores", sectors.AdminList)
		adminGroup.POST("/setores", sectors.AdminCreate)
		adminGroup.DELETE("/setores/:id", sectors.AdminDeactivate)

		adminGroup.PUT("/reativar/:tipo/:id", admin.Reactivate)
	}

	router.GET("/uploads/:file", uploads.Serve)

	return router
}
