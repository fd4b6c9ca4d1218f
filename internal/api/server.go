package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/ubcma/membership-portal-api/docs"
	v1 "github.com/ubcma/membership-portal-api/internal/api/handler/v1"
	"github.com/ubcma/membership-portal-api/internal/api/middleware"
	"github.com/ubcma/membership-portal-api/internal/config"
	"github.com/ubcma/membership-portal-api/internal/payment"
	"github.com/ubcma/membership-portal-api/internal/repository"
	"github.com/ubcma/membership-portal-api/internal/repository/dao"
	"github.com/ubcma/membership-portal-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userSvc := s.initUserService(db)
	gateway := payment.NewStripeGateway(conf.Stripe)

	authHandler := s.initAuthHandler(db)
	userHandler := v1.NewUserHandler(userSvc)
	eventHandler := s.initEventHandler(db, userSvc)
	jobHandler := s.initJobHandler(db, userSvc)
	feedHandler := v1.NewLiveFeedHandler(userSvc)
	checkoutHandler := s.initCheckoutHandler(db, gateway, userSvc, feedHandler)

	// The feed hub runs for the life of the server.
	go feedHandler.Run()

	s.MountHandlers(userSvc, authHandler, userHandler, eventHandler, jobHandler, checkoutHandler, feedHandler)

	return s
}

func (s *Server) initUserService(db *gorm.DB) *service.UserService {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)

	return service.NewUserService(repo)
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB, userSvc *service.UserService) *v1.EventHandler {
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	svc := service.NewEventService(eventRepo, regRepo)
	handler := v1.NewEventHandler(svc, userSvc)

	return handler
}

func (s *Server) initJobHandler(db *gorm.DB, userSvc *service.UserService) *v1.JobHandler {
	repo := repository.NewJobRepository(dao.NewJobDAO(db))
	svc := service.NewJobService(repo)
	handler := v1.NewJobHandler(svc, userSvc)

	return handler
}

func (s *Server) initCheckoutHandler(db *gorm.DB, gateway *payment.StripeGateway, userSvc *service.UserService, feed *v1.LiveFeedHandler) *v1.CheckoutHandler {
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))

	svc := service.NewCheckoutService(eventRepo, userRepo, regRepo, gateway, gateway, s.Config.Stripe)
	eventSvc := service.NewEventService(eventRepo, regRepo)
	handler := v1.NewCheckoutHandler(svc, gateway, eventSvc, userSvc, feed)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	userSvc *service.UserService,
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	jobHandler *v1.JobHandler,
	checkoutHandler *v1.CheckoutHandler,
	feedHandler *v1.LiveFeedHandler,
) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey, s.Config.API.SessionCookieName)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)
		public.POST("/auth/logout", authHandler.HandleLogout)
		public.POST("/stripe/webhook", checkoutHandler.HandleStripeWebhook)
	}

	authed := s.Router.Group(basePath, authenticator.VerifySession())
	{
		authed.GET("/me", userHandler.HandleGetMe)
		authed.PUT("/me", userHandler.HandleUpdateMe)
		authed.POST("/me/onboarding", userHandler.HandleCompleteOnboarding)

		authed.GET("/events", eventHandler.HandleListEvents)
		authed.GET("/events/:slug", eventHandler.HandleGetEvent)
		authed.POST("/events/:slug/registrations/create", checkoutHandler.HandleCreateRegistration)

		authed.POST("/stripe/create-payment-intent", checkoutHandler.HandleCreatePaymentIntent)
		authed.POST("/stripe/confirm-payment", checkoutHandler.HandleConfirmPayment)

		authed.GET("/jobs", jobHandler.HandleListJobs)
		authed.GET("/jobs/:jobID", jobHandler.HandleGetJob)
	}

	admin := s.Router.Group(basePath+"/admin", authenticator.VerifySession(), middleware.RequireAdmin(userSvc))
	{
		admin.POST("/events", eventHandler.HandleCreateEvent)
		admin.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)
		admin.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)
		admin.GET("/events/:eventID/registrations", eventHandler.HandleListRegistrations)

		admin.POST("/jobs", jobHandler.HandleCreateJob)
		admin.DELETE("/jobs/:jobID", jobHandler.HandleDeleteJob)

		admin.GET("/registrations/live", feedHandler.HandleLiveFeed)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Membership Portal API"
	docs.SwaggerInfo.Description = "Membership, events and checkout API for the club portal."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
