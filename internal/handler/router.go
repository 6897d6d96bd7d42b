package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"mocrs/internal/pkg/auth/guard"
	"mocrs/internal/pkg/auth/jwt"
	"mocrs/internal/pkg/limiter"
	"mocrs/internal/pkg/logx"
)

// Router builds the HTTP routing table. ctx bounds the background work of the rate limiters.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(deps.Config.RateLimitRPS), deps.Config.RateLimitBurst)
	wsLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(deps.Config.RateLimitRPS), deps.Config.RateLimitBurst)

	authenticator := jwt.NewAuthenticator(deps.Codec, deps.Metrics)
	guards := deps.Guards
	if guards == nil {
		guards = guard.New(deps.Metrics)
	}

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger(deps.Metrics))
	r.Use(middleware.Recoverer)

	r.NotFound(HandleNotFound)
	r.MethodNotAllowed(HandleMethodNotAllowed)

	r.Get("/health", HandleHealth(deps))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(authenticator.Middleware)
		api.NotFound(HandleNotFound)
		api.MethodNotAllowed(HandleMethodNotAllowed)

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)

			auth.Post("/token", HandleToken(deps))
			auth.Post("/login", HandleLogin(deps))
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/jtoken", HandleMeetingToken(deps))
		})

		api.Route("/users", func(users chi.Router) {
			users.With(guards.RequireAdmin).Post("/", HandleCreateUser(deps))
			users.With(guards.RequireAdmin).Get("/", HandleListUsers(deps))

			users.Route("/{username}", func(one chi.Router) {
				one.With(guards.RequireLoggedIn).Get("/avatar", HandleGetAvatar(deps))

				one.Group(func(self chi.Router) {
					self.Use(guards.RequireSelfOrAdmin("username"))

					self.Get("/", HandleGetUser(deps))
					self.Patch("/", HandleUpdateUser(deps))
					self.Delete("/", HandleDeleteUser(deps))
					self.Post("/avatar/presign", HandlePresignAvatar(deps))
					self.Post("/avatar/confirm", HandleConfirmAvatar(deps))
				})
			})
		})

		api.Route("/rooms", func(rooms chi.Router) {
			rooms.Get("/", HandleListRooms(deps.Rooms.List))
			rooms.Get("/public", HandleListRooms(deps.Rooms.ListPublic))
			rooms.With(guards.RequireLoggedIn).Get("/private", HandleListRooms(deps.Rooms.ListPrivate))
			rooms.Get("/user/{creatorId}", HandleListRoomsByCreator(deps))
			rooms.With(guards.RequireLoggedIn).Post("/", HandleCreateRoom(deps))

			rooms.Route("/{id}", func(one chi.Router) {
				one.Get("/", HandleGetRoom(deps))
				one.With(guards.RequireLoggedIn).Patch("/", HandleUpdateRoom(deps))
				one.With(guards.RequireLoggedIn).Delete("/", HandleDeleteRoom(deps))
				one.Post("/join", HandleJoinRoom(deps))
				one.Post("/leave", HandleLeaveRoom(deps))
			})
		})
	})

	r.Get("/ws/rooms/{id}", HandleWebSocket(deps, wsUpgrader, wsLimiter))

	return r
}
