package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/resume-intake/api/controllers"
	"github.com/moyoez/resume-intake/api/middlewares"
	"github.com/moyoez/resume-intake/intake"
	"github.com/moyoez/resume-intake/notify"
	"github.com/moyoez/resume-intake/share"
	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/types"
)

// Deps are the pieces the server routes to. Hub may be nil to disable the websocket feed.
type Deps struct {
	Config    types.AppConfig
	Intake    *intake.Controller
	Store     *share.CandidateStore
	Uploader  intake.Uploader
	UploadURL string
	Hub       *notify.Hub
}

// Server is the local HTTP API for the upload view and the candidate table.
type Server struct {
	ctx    context.Context
	deps   Deps
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

// NewServer creates a server. Upload sessions started through it are bounded by ctx.
func NewServer(ctx context.Context, deps Deps) *Server {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Server{ctx: ctx, deps: deps}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(nil); err != nil {
		tool.DefaultLogger.Warnf("[Server] Failed to reset trusted proxies: %v", err)
	}
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(middlewares.AllowAllCORS())

	cfg := s.deps.Config
	intakeCtrl := controllers.NewIntakeController(s.ctx, s.deps.Intake, cfg.AcceptedExtensions)
	candidatesCtrl := controllers.NewCandidatesController(s.deps.Store, s.deps.Uploader, cfg.PageSize)
	qrCtrl := controllers.NewQRController(cfg.Port)
	statusCtrl := controllers.NewStatusController(cfg.ParserBaseURL, s.deps.UploadURL, s.deps.Hub)

	iv1 := engine.Group("/api/intake/v1", middlewares.OnlyAllowLocal)
	{
		iv1.GET("/pending", intakeCtrl.HandlePendingList)
		iv1.POST("/pending", intakeCtrl.HandlePendingAdd)
		iv1.DELETE("/pending", intakeCtrl.HandlePendingClear)
		iv1.DELETE("/pending/:index", intakeCtrl.HandlePendingRemove)
		iv1.PUT("/drag", intakeCtrl.HandleDrag)
		iv1.POST("/submit", intakeCtrl.HandleSubmit)
		iv1.GET("/session", intakeCtrl.HandleSession)
		iv1.GET("/status", statusCtrl.HandleStatus)
		iv1.GET("/config", controllers.HandleConfigGet)
		if s.deps.Hub != nil {
			iv1.GET("/notify-ws", notify.HandleWS(s.deps.Hub))
		}
	}

	// Reading the table and its QR code is open to the LAN, changing it is not.
	cv1 := engine.Group("/api/candidates/v1")
	{
		cv1.GET("", candidatesCtrl.HandleList)
		cv1.GET("/qr", qrCtrl.HandleQR)
		cv1.GET("/export", candidatesCtrl.HandleExport)
		cv1.POST("/import", middlewares.OnlyAllowLocal, candidatesCtrl.HandleImport)
		cv1.POST("/sort/:field", middlewares.OnlyAllowLocal, candidatesCtrl.HandleSort)
		cv1.POST("/upload", middlewares.OnlyAllowLocal, candidatesCtrl.HandleUpload)
		cv1.DELETE("", middlewares.OnlyAllowLocal, candidatesCtrl.HandleClear)
	}

	return engine
}

// Handler builds the router without listening, for tests and embedding.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		s.engine = s.setupRoutes()
	}
	return s.engine
}

// Start listens on the configured port until Shutdown.
func (s *Server) Start() error {
	handler := s.Handler()

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.deps.Config.Port),
		Handler: handler,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("[Server] Starting API server on http://0.0.0.0:%d", s.deps.Config.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
