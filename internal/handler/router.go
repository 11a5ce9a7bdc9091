package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/erickai/companion/backend/internal/analysis/emotion"
	"github.com/erickai/companion/backend/internal/handler/chat"
	personaHandler "github.com/erickai/companion/backend/internal/handler/persona"
	"github.com/erickai/companion/backend/internal/handler/realtime"
	relayHandler "github.com/erickai/companion/backend/internal/handler/relay"
	"github.com/erickai/companion/backend/internal/handler/stream"
	"github.com/erickai/companion/backend/internal/handler/support"
	middlewarePkg "github.com/erickai/companion/backend/internal/middleware"
	personaModel "github.com/erickai/companion/backend/internal/model/persona"
	chatService "github.com/erickai/companion/backend/internal/service/chat"
	"github.com/erickai/companion/backend/pkg/utils"
)

// Dependencies groups what the router wires into handlers.
type Dependencies struct {
	Chat           *chatService.Service
	Analyzer       *emotion.Analyzer
	Persona        personaModel.Persona
	Model          relayHandler.Model
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "endpoint not found")
	})

	// Relay surface kept at the root for clients of the original server.
	relayHandler.New(deps.Model, logger.Named("relay")).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		chat.New(deps.Chat, logger.Named("chat")).RegisterRoutes(api)
		stream.New(deps.Chat, logger.Named("stream")).RegisterRoutes(api)
		realtime.NewWebSocketHandler(deps.Chat, originChecker(deps.AllowedOrigins), logger.Named("realtime")).RegisterRoutes(api)
		personaHandler.New(deps.Persona).RegisterRoutes(api)
		support.New(deps.Analyzer).RegisterRoutes(api)
	})

	return r
}

// originChecker accepts websocket upgrades from the CORS allow list.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return nil
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
