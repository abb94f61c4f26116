// Package devpeer is a local stand-in for the remote voice agent. It mints
// session tickets over HTTP and runs a scripted conversation on the
// websocket, so the engine can be exercised without the production backend.
package devpeer

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/logging"
)

// closeAuthRejected is the application close code for an invalid or expired
// session token. Sent after the upgrade so the client sees a close code, not
// a failed handshake.
const closeAuthRejected = 4001

const defaultTicketTTL = 60 * time.Second

// Options configures a dev peer.
type Options struct {
	Logger *logging.Logger
	// APIKey, when set, is the only bearer token the bootstrap accepts.
	// Empty accepts any non-empty token.
	APIKey string
	// Secret signs session tokens. Random when empty.
	Secret    []byte
	TicketTTL time.Duration
}

// Server hosts the bootstrap endpoint and the scripted voice channel.
type Server struct {
	logger   *logging.Logger
	apiKey   string
	secret   []byte
	ttl      time.Duration
	engine   *gin.Engine
	upgrader websocket.Upgrader
}

// New builds the server and its routes.
func New(opts Options) *Server {
	secret := opts.Secret
	if len(secret) == 0 {
		secret = []byte(uuid.NewString())
	}
	ttl := opts.TicketTTL
	if ttl <= 0 {
		ttl = defaultTicketTTL
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		logger: opts.Logger,
		apiKey: opts.APIKey,
		secret: secret,
		ttl:    ttl,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())
	engine.POST("/api/voice/session", s.mintTicket)
	engine.GET("/ws/voice", s.serveVoice)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine = engine
	return s
}

// Handler exposes the router for embedding in an http.Server or tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) mintTicket(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" || (s.apiKey != "" && token != s.apiKey) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}

	var body struct {
		Privileged bool `json:"privileged"`
	}
	_ = c.ShouldBindJSON(&body)

	claims := jwt.MapClaims{
		"sid": uuid.NewString(),
		"prv": body.Privileged,
		"exp": time.Now().Add(s.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ticket mint failed"})
		return
	}

	scheme := "ws"
	if c.Request.TLS != nil {
		scheme = "wss"
	}
	if s.logger != nil {
		s.logger.Info("[Peer] ticket minted (privileged=%t, ttl=%s)", body.Privileged, s.ttl)
	}
	c.JSON(http.StatusOK, gin.H{
		"url": fmt.Sprintf("%s://%s/ws/voice?token=%s", scheme, c.Request.Host, signed),
	})
}

func (s *Server) serveVoice(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	if !s.validToken(c.Query("token")) {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeAuthRejected, "invalid session token"), deadline)
		_ = conn.Close()
		if s.logger != nil {
			s.logger.Warn("[Peer] rejected connection with invalid token")
		}
		return
	}

	if s.logger != nil {
		s.logger.Info("[Peer] voice channel open")
	}
	newScriptedAgent(conn, s.logger).run()
}

func (s *Server) validToken(token string) bool {
	if token == "" {
		return false
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	return err == nil && parsed.Valid
}
