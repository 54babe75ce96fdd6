package server

import (
	"context"
	"ctchen222/reversi/internal/api/controller"
	"ctchen222/reversi/internal/hub"
	"ctchen222/reversi/internal/hub/types"
	"ctchen222/reversi/internal/player"
	"ctchen222/reversi/internal/transport"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Server accepts game connections over websocket and plain TCP and serves
// the account API.
type Server struct {
	hub      *hub.Hub
	engine   *gin.Engine
	upgrader websocket.Upgrader
}

// Controllers are the API handlers mounted under /api.
type Controllers struct {
	Users *controller.UserController
	Saves *controller.SaveController
	Auth  gin.HandlerFunc
}

func NewServer(h *hub.Hub, api Controllers) *Server {
	s := &Server{
		hub:    h,
		engine: gin.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(gin.Recovery())
	s.registerHandlers(api)
	return s
}

// Engine returns the HTTP handler.
func (s *Server) Engine() http.Handler {
	return s.engine
}

func (s *Server) registerHandlers(api Controllers) {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/ws", s.handleWebSocket)

	if api.Users != nil {
		auth := s.engine.Group("/api/auth")
		auth.POST("/register", api.Users.Register)
		auth.POST("/login", api.Users.Login)
		auth.POST("/guest", api.Users.GuestLogin)
	}
	if api.Saves != nil && api.Auth != nil {
		saves := s.engine.Group("/api/saves", api.Auth)
		saves.POST("", api.Saves.Create)
		saves.GET("", api.Saves.List)
		saves.GET("/:id", api.Saves.Get)
		saves.DELETE("/:id", api.Saves.Delete)
	}
}

// handleWebSocket's only responsibility is to upgrade the connection and
// pass a registration request to the hub.
func (s *Server) handleWebSocket(c *gin.Context) {
	r := c.Request
	ctx, span := tracer.Start(r.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", r.URL.String()),
		attribute.String("http.method", r.Method),
	))
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, r, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	// Get playerID from URL, or generate a new one.
	playerID := c.Query("playerId")
	if playerID == "" {
		playerID = uuid.New().String()
	}
	mode := c.DefaultQuery("mode", hub.ModeHuman)
	difficulty := c.Query("difficulty")
	if mode == hub.ModeBot && difficulty == "" {
		difficulty = "easy"
	}
	span.SetAttributes(
		attribute.String("player.id", playerID),
		attribute.String("game.mode", mode),
		attribute.String("game.difficulty", difficulty),
	)

	s.register(ctx, player.NewPlayer(playerID, transport.NewWSConn(conn)), mode, difficulty)
}

// ServeTCP accepts line-protocol connections on ln until ctx is done. TCP
// players always join human matchmaking.
func (s *Server) ServeTCP(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.InfoContext(ctx, "TCP server started", "addr", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.WarnContext(ctx, "Failed to accept connection", "error", err)
			continue
		}

		connCtx, span := tracer.Start(ctx, "server.handleTCP", trace.WithAttributes(
			attribute.String("net.peer", conn.RemoteAddr().String()),
		))
		playerID := uuid.New().String()
		span.SetAttributes(attribute.String("player.id", playerID))
		s.register(connCtx, player.NewPlayer(playerID, transport.NewLineConn(conn)), hub.ModeHuman, "")
		span.End()
	}
}

func (s *Server) register(ctx context.Context, p *player.Player, mode, difficulty string) {
	req := &types.RegistrationRequest{
		Player:     p,
		Mode:       mode,
		Difficulty: difficulty,
		Ctx:        context.WithoutCancel(ctx),
	}
	select {
	case s.hub.Register() <- req:
	case <-ctx.Done():
		p.Conn.Close()
	}
}
