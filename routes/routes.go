package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robostage/backend/handlers"
	"github.com/robostage/backend/middleware"
	"github.com/robostage/backend/models"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes mounts the full API surface. Reads are public; anything that
// mutates tournament state requires an organizer token.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	corsOrigins []string,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	tournamentHandler *handlers.TournamentHandler,
	stageHandler *handlers.StageHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	organizerOnly := func(r chi.Router) chi.Router {
		return r.With(auth.Authenticate, auth.Authorize(string(models.RoleOrganizer)))
	}

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Get("/{teamID}", teamHandler.GetByID)

		protected := organizerOnly(r)
		protected.Post("/", teamHandler.Create)
		protected.Post("/{teamID}/logo", teamHandler.UploadLogo)
		protected.Delete("/{teamID}", teamHandler.Delete)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/stages", tournamentHandler.ListStages)

		protected := organizerOnly(r)
		protected.Post("/", tournamentHandler.Create)
		protected.Put("/{tournamentID}/status", tournamentHandler.UpdateStatus)
		protected.Delete("/{tournamentID}", tournamentHandler.Delete)
	})

	router.Route("/stages", func(r chi.Router) {
		r.Get("/{stageID}", stageHandler.GetByID)
		r.Get("/{stageID}/bracket", stageHandler.Bracket)
		r.Get("/{stageID}/bracket/validation", stageHandler.Validation)
		r.Get("/{stageID}/bracket/stats", stageHandler.Stats)
		r.Get("/{stageID}/bracket/normalized", stageHandler.Normalized)
		r.Get("/{stageID}/bracket/render", stageHandler.Render)

		protected := organizerOnly(r)
		protected.Post("/", stageHandler.Create)
		protected.Post("/{stageID}/bracket/generate", stageHandler.GenerateBracket)
		protected.Post("/{stageID}/bracket/pair-swiss", stageHandler.PairSwissRound)
		protected.Post("/{stageID}/matches/{matchID}/result", stageHandler.RecordResult)
	})

	router.Get("/ws/stages/{stageID}", webSocketHandler.ServeStage)

	router.Get("/swagger/doc.json", handlers.SwaggerSpec)
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
