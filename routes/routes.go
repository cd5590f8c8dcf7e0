package routes

import (
	"net/http"

	_ "github.com/Dosada05/academy-system/docs"
	"github.com/Dosada05/academy-system/handlers"
	"github.com/Dosada05/academy-system/middleware"
	"github.com/Dosada05/academy-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	webSocketHandler *handlers.WebSocketHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	writers := middleware.RequireRole(models.RoleOwner, models.RoleCoach)

	router.Get("/healthz", healthHandler.Healthz)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	router.Route("/players", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", playerHandler.ListPlayers)
		r.With(writers).Post("/", playerHandler.CreatePlayer)

		r.Route("/{playerID}", func(r chi.Router) {
			r.Get("/", playerHandler.GetPlayer)
			r.With(writers).Patch("/", playerHandler.UpdatePlayer)
			r.With(middleware.RequireRole(models.RoleOwner)).Delete("/", playerHandler.DeletePlayer)
			r.With(writers).Post("/photo", playerHandler.UploadPlayerPhoto)
		})
	})

	router.With(middleware.AuthenticateQuery(opts.JWTSecret)).Get("/ws/academies/{academyID}", webSocketHandler.ServeWs)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
