package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/olegmz/verigate/internal/domain"
	"github.com/olegmz/verigate/internal/handler"
	"github.com/olegmz/verigate/internal/infra"
	"github.com/olegmz/verigate/internal/infra/auth"
)

type Server struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Проверка bearer-токенов (HS512)
	authValidator auth.TokenValidator

	// Обработчики бизнес-доменов
	authHandler         *handler.AuthHandler         // /auth/login
	verificationHandler *handler.VerificationHandler // /api/verification
	limitHandler        *handler.LimitHandler        // /api/actuaries
}

// NewServer инициализирует HTTP-сервер со всеми зависимостями
func NewServer(
	cfg *infra.Config,
	logger *zap.Logger,
	validator auth.TokenValidator,
	authH *handler.AuthHandler,
	verificationH *handler.VerificationHandler,
	limitH *handler.LimitHandler,
) *Server {
	s := &Server{
		router:              chi.NewRouter(),
		logger:              logger.Named("http-server"),
		cfg:                 cfg,
		authValidator:       validator,
		authHandler:         authH,
		verificationHandler: verificationH,
		limitHandler:        limitH,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TracingMiddleware)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		r.Post("/auth/login", s.authHandler.Login)

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (bearer-токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))

		r.Route("/api/verification", func(r chi.Router) {
			// Создание заявки — привилегированные роли, любой клиент
			r.With(auth.RequireRole(domain.RoleAgent, domain.RoleSupervisor, domain.RoleAdmin)).
				Post("/request", s.verificationHandler.Create)

			// Просмотр и решение — только с объявленного мобильного клиента
			r.Group(func(r chi.Router) {
				r.Use(auth.MobileGate)

				r.Get("/active-requests", s.verificationHandler.ListActive)
				r.Get("/history", s.verificationHandler.ListHistory)
				r.Post("/approve/{requestId}", s.verificationHandler.Approve)
				r.Post("/deny/{requestId}", s.verificationHandler.Deny)
			})
		})

		// Guardrail лимитов — управление только для супервизора/админа
		r.Route("/api/actuaries", func(r chi.Router) {
			r.Use(auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/limit", s.limitHandler.GetLimit)
				r.Put("/limit", s.limitHandler.ChangeLimit)
				r.Patch("/limit/reset", s.limitHandler.ResetUsage)
				r.Patch("/limit/used", s.limitHandler.RecordUsage)
				r.Put("/approval", s.limitHandler.SetApprovalFlag)
				r.Post("/promote", s.limitHandler.Promote)
				r.Post("/demote", s.limitHandler.Demote)
			})
		})
	})
}

// ServeHTTP позволяет использовать Server как стандартный http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
