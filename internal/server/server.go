// Package server wires the dependency graph and defines every route.
//
// This is the composition root: main.go reads config and creates the
// logger; everything else (store, registry, session manager, pipeline,
// handlers) is assembled here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yogendram/career-compass/internal/advisor"
	"github.com/yogendram/career-compass/internal/auth"
	"github.com/yogendram/career-compass/internal/config"
	"github.com/yogendram/career-compass/internal/handler"
	"github.com/yogendram/career-compass/internal/middleware"
	"github.com/yogendram/career-compass/internal/quiz"
	"github.com/yogendram/career-compass/internal/recommend"
	"github.com/yogendram/career-compass/internal/registry"
	"github.com/yogendram/career-compass/internal/session"
	"github.com/yogendram/career-compass/internal/store"
)

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  *store.Store
}

// New assembles the full dependency graph.
//
// The Gemini-backed features degrade rather than fail: without an API key
// the pipeline falls back to the fixed recommendation and the chat reports
// itself unavailable.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("server: JWT_SECRET must be set")
	}

	ctx := context.Background()

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("server: opening store: %w", err)
	}

	reg, err := registry.New(ctx, st, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("server: loading registry: %w", err)
	}

	passwords := auth.NewPasswordService()
	sessions, err := session.New(ctx, st, reg, passwords, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("server: restoring session: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		st.Close()
		return nil, err
	}

	bank, err := quiz.NewBank(ctx, st, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("server: loading question bank: %w", err)
	}

	// Recommendation generator and advisor share one Gemini client.
	var gen recommend.Generator
	var adv *advisor.Advisor
	if cfg.GeminiAPIKey != "" {
		gemini, err := recommend.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("server: creating Gemini generator: %w", err)
		}
		gen = gemini
		adv = advisor.New(gemini.Client(), cfg.GeminiModel, logger)
	} else {
		logger.Warn("GEMINI_API_KEY not set; recommendations use the fallback, chat is disabled")
	}
	pipeline := recommend.New(gen, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  st,
	}
	s.setupRoutes(sessions, tokens, bank, pipeline, adv)

	return s, nil
}

func (s *Server) setupRoutes(
	sessions *session.Manager,
	tokens *auth.TokenService,
	bank *quiz.Bank,
	pipeline *recommend.Pipeline,
	adv *advisor.Advisor,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	authHandler := handler.NewAuthHandler(sessions, tokens, s.logger)
	userHandler := handler.NewUserHandler(sessions, s.logger)
	profileHandler := handler.NewProfileHandler(sessions, s.logger)
	appHandler := handler.NewApplicationHandler(sessions, s.logger)
	quizHandler := handler.NewQuizHandler(sessions, bank, pipeline, s.logger)
	collegeHandler := handler.NewCollegeHandler(sessions, s.logger)
	chatHandler := handler.NewChatHandler(adv, s.logger)

	requireAuth := auth.RequireAuth(tokens, sessions)
	optionalAuth := auth.OptionalAuth(tokens, sessions)

	s.router.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/verify/{id}", authHandler.HandleVerify)
		r.Get("/quiz/questions", quizHandler.HandleQuestions)
		r.Get("/colleges", collegeHandler.HandleList)
		r.Get("/chat", chatHandler.HandleStatus)

		// Search is public but counts toward progress when logged in.
		r.With(optionalAuth).Get("/colleges/search", collegeHandler.HandleSearch)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Put("/profile", profileHandler.HandleUpdate)
			r.Get("/profile/progress", profileHandler.HandleProgress)
			r.Get("/applications", appHandler.HandleList)
			r.Post("/applications", appHandler.HandleCreate)
			r.Put("/applications/{id}", appHandler.HandleUpdate)
			r.Delete("/applications/{id}", appHandler.HandleDelete)
			r.Post("/quiz/submit", quizHandler.HandleSubmit)
			r.Post("/chat", chatHandler.HandleSend)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(userHandler.RequireAdmin)
			r.Get("/admin/users", userHandler.HandleList)
			r.Post("/admin/users", userHandler.HandleAdd)
			r.Put("/admin/users/{id}", userHandler.HandleEdit)
			r.Delete("/admin/users/{id}", userHandler.HandleDelete)
			r.Post("/admin/users/{id}/verify", userHandler.HandleVerify)
			r.Post("/admin/quiz/questions", quizHandler.HandleAddQuestion)
			r.Put("/admin/quiz/questions/{id}", quizHandler.HandleEditQuestion)
			r.Delete("/admin/quiz/questions/{id}", quizHandler.HandleDeleteQuestion)
		})
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully and closes the store so the WAL is flushed.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // recommendation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
