package http

import (
	"net/http"

	"askme-quiz-service/internal/app"
	"askme-quiz-service/internal/domain"
	"askme-quiz-service/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	DefaultMode    domain.Mode
	AllowedOrigins []string
}

// NewRouter wires the page, the tab websocket and the preference API.
func NewRouter(quizzes *app.QuizService, themes *app.ThemeService, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	mode := opts.DefaultMode
	if mode == "" {
		mode = domain.ModeList
	}
	wsHandler := NewWSHandler(quizzes, mode)
	themeHandler := NewThemeHandler(themes)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", wsHandler.ServeWS)
	r.Get("/api/theme", themeHandler.Get)
	r.Put("/api/theme", themeHandler.Put)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.IndexHTML)
	})
	return r
}
