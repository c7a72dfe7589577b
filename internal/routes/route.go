package routes

import (
	"net/http"

	"cablecalc/internal/auth"
	"cablecalc/internal/config"
	"cablecalc/internal/engine"
	"cablecalc/internal/handlers"
	"cablecalc/internal/logger"
	mdlwr "cablecalc/internal/middleware"
	"cablecalc/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

func NewRouter(db *bun.DB, cfg *config.Config, logr *logger.Logger, eng *engine.Engine) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// init JWT manager
	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, "cablecalc")
	if err != nil {
		logr.Fatal("failed to init jwt manager", zap.Error(err))
	}

	// auth service (service handles DB checks like token_version)
	authSvc := services.NewAuthService(db, jwtMgr, cfg, logr)
	projectSvc := services.NewProjectService(db)
	segmentSvc := services.NewSegmentService(db, eng)

	// create the auth middleware instance (pass dependencies)
	authMW := mdlwr.NewAuthMiddleware(jwtMgr.PublicKey(), authSvc, logr.Logger)

	authHandler := handlers.NewAuthHandler(authSvc, logr, cfg)
	projectHandler := handlers.NewProjectHandler(projectSvc, logr.Logger)
	segmentHandler := handlers.NewSegmentHandler(segmentSvc, logr.Logger)
	referenceHandler := handlers.NewReferenceHandler(eng)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/login", authHandler.Login)

			// Protected routes
			r.Group(func(r chi.Router) {
				// use the middleware instance's method as middleware
				r.Use(authMW.JWTAuth)
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Get("/reference/catalogues", referenceHandler.GetCatalogues)

		r.Route("/projects", func(r chi.Router) {
			r.Use(authMW.JWTAuth) // protect with JWT
			r.Get("/", projectHandler.ListProjects)
			r.Post("/", projectHandler.CreateProject)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", projectHandler.GetProject)
				r.Delete("/", projectHandler.DeleteProject)

				r.Route("/segments", func(r chi.Router) {
					r.Get("/", segmentHandler.ListSegments)
					r.Post("/", segmentHandler.AppendSegment)
					r.Delete("/", projectHandler.ClearSegments)
					r.Post("/preview", segmentHandler.PreviewSegment)
					r.Post("/optimize", segmentHandler.OptimizeSegment)
					r.Delete("/{segmentID}", segmentHandler.DeleteSegment)
				})
			})
		})

	})

	return r
}
