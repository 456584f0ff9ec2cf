// Package web provides the oplog HTTP server: the JSON API, sessions and
// background jobs.
package web

import (
	"context"
	"embed"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/oplog/oplog/config"
	"github.com/oplog/oplog/logger"
	"github.com/oplog/oplog/util/common"
	"github.com/oplog/oplog/util/random"
	"github.com/oplog/oplog/web/controller"
	"github.com/oplog/oplog/web/job"
	"github.com/oplog/oplog/web/locale"
	"github.com/oplog/oplog/web/middleware"
	"github.com/oplog/oplog/web/service"
	"github.com/oplog/oplog/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

//go:embed translation/*
var i18nFS embed.FS

// Options configures a Server. Zero values are taken from the config package.
type Options struct {
	Listen          string
	Port            int
	Secret          string
	SessionMaxAge   int
	TutorPassphrase string
	MasterTOTP      string
	Lang            string
	Domain          string
	DBPath          string
	BackupCron      string
	BackupFolder    string
	BackupKeep      int
}

// OptionsFromConfig reads every option from the environment.
func OptionsFromConfig() Options {
	return Options{
		Listen:          config.GetListen(),
		Port:            config.GetPort(),
		Secret:          config.GetSecret(),
		SessionMaxAge:   config.GetSessionMaxAge(),
		TutorPassphrase: config.GetTutorPassphrase(),
		MasterTOTP:      config.GetMasterTOTP(),
		Lang:            config.GetLang(),
		Domain:          config.GetDomain(),
		DBPath:          config.GetDBPath(),
		BackupCron:      config.GetBackupCron(),
		BackupFolder:    config.GetBackupFolder(),
		BackupKeep:      config.GetBackupKeep(),
	}
}

// Server represents the oplog web server with its controllers and scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	db       *gorm.DB
	opts     Options
	services *service.Services

	index *controller.IndexController
	api   *controller.APIController

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer(db *gorm.DB, opts Options) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		db:       db,
		opts:     opts,
		services: service.NewServices(db, opts.TutorPassphrase, opts.MasterTOTP),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Handler builds the gin engine without starting a listener.
func (s *Server) Handler() (http.Handler, error) {
	return s.initRouter()
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	if s.opts.Domain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(s.opts.Domain))
	}

	secret := s.opts.Secret
	if secret == "" {
		logger.Warning("no session secret configured, sessions end with the process")
		secret = random.Seq(32)
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.opts.SessionMaxAge * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(session.CookieName, store))

	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/api/export/"}),
	))

	bundle, err := locale.NewBundle(i18nFS, "translation", s.opts.Lang)
	if err != nil {
		return nil, err
	}
	engine.Use(bundle.LocalizerMiddleware())

	g := engine.Group("/")
	s.index = controller.NewIndexController(g, s.services.Users, s.opts.SessionMaxAge)
	s.api = controller.NewAPIController(g, s.services, controller.DefaultLogSource)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "version": config.GetVersion()})
	})

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules background jobs.
func (s *Server) startTask() {
	if s.opts.BackupCron == "" {
		logger.Info("database backups disabled")
		return
	}
	backup := job.NewBackupJob(s.db, s.opts.DBPath, s.opts.BackupFolder, s.opts.BackupKeep)
	if _, err := s.cron.AddJob(s.opts.BackupCron, backup); err != nil {
		logger.Warningf("Add BackupJob error, Runtime[%s] invalid: %v", s.opts.BackupCron, err)
		return
	}
	logger.Infof("database backup scheduled at %s into %s", s.opts.BackupCron, s.opts.BackupFolder)
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New(cron.WithLocation(time.Local))
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.opts.Listen, strconv.Itoa(s.opts.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on ", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()
	return nil
}

// Stop gracefully shuts down the web server and cron jobs.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
		if err2 != nil && common.IsClosedConnError(err2) {
			err2 = nil
		}
	}
	return common.Combine(err1, err2)
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context { return s.ctx }

// GetCron returns the server's cron scheduler instance.
func (s *Server) GetCron() *cron.Cron { return s.cron }
