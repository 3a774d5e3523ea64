package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/leandro-lugaresi/hub"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/strandchat/strand/bus"
	gormrepo "github.com/strandchat/strand/repository/gorm"
	"github.com/strandchat/strand/router"
	"github.com/strandchat/strand/service/fanout"
	"github.com/strandchat/strand/service/presence"
	"github.com/strandchat/strand/service/ws"
)

// serveCommand サーバー起動コマンド
func serveCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "serve",
		Short: "Serve strand API",
		Run: func(cmd *cobra.Command, args []string) {
			// Logger
			logger := getLogger()
			defer logger.Sync()

			logger.Info(fmt.Sprintf("strand %s (revision %s)", Version, Revision))

			// Database
			logger.Info("connecting database...")
			engine, err := c.getDatabase(logger)
			if err != nil {
				logger.Fatal("failed to connect database", zap.Error(err))
			}
			db, err := engine.DB()
			if err != nil {
				logger.Fatal("failed to get *sql.DB", zap.Error(err))
			}
			defer db.Close()
			logger.Info("database connection was established")

			// Event Bus
			var b bus.Bus
			if c.Redis.Enabled {
				client := c.getRedis()
				if err := client.Ping(context.Background()).Err(); err != nil {
					logger.Fatal("failed to connect redis", zap.Error(err))
				}
				b = bus.NewRedis(client, logger)
				logger.Info("redis event bus was established")
			} else {
				b = bus.NewLocal(hub.New(), logger)
				logger.Info("running with in-process event bus")
			}

			// Repository
			logger.Info("setting up repository...")
			repo, init, err := gormrepo.NewGormRepository(engine, b, logger, true)
			if err != nil {
				logger.Fatal("failed to initialize repository", zap.Error(err))
			}
			if init {
				logger.Info("database was initialized")
			}
			logger.Info("repository was set up")

			// このインスタンスの識別子。接続レジストリの行に刻まれる
			serverID := uuid.Must(uuid.NewV4())
			logger.Info("server id was issued", zap.Stringer("serverId", serverID))

			// リアルタイム配信系
			presenceAgg := presence.NewAggregator(repo)
			streamer := ws.NewStreamer(serverID, repo, b, presenceAgg, logger)
			if _, err := fanout.NewDispatcher(serverID, repo, streamer, presenceAgg, b, logger); err != nil {
				logger.Fatal("failed to start fanout dispatcher", zap.Error(err))
			}

			// Routing
			e := router.Setup(repo, streamer, logger.Named("router"), provideRouterConfig(&c))

			server := &Server{
				L:      logger,
				Router: e,
				WS:     streamer,
				Bus:    b,
			}

			go func() {
				if err := server.Start(fmt.Sprintf(":%d", c.Port)); err != nil {
					logger.Info("shutting down the server")
				}
			}()

			logger.Info("strand started")
			waitSIGINT()
			logger.Info("strand shutting down...")

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.ShutdownTimeout)*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				logger.Warn("abnormal shutdown", zap.Error(err))
			}
			logger.Info("strand shutdown")
		},
	}
	return &cmd
}

type Server struct {
	L      *zap.Logger
	Router *echo.Echo
	WS     *ws.Streamer
	Bus    bus.Bus
}

func (s *Server) Start(address string) error {
	return s.Router.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := s.Router.Shutdown(ctx)
		s.L.Info("Router shutdown")
		return err
	})
	eg.Go(func() error {
		err := s.WS.Close()
		s.L.Info("WebSocket shutdown")
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	// バスの停止は全セッションを閉じ終えてから
	err := s.Bus.Close()
	s.L.Info("Event bus shutdown")
	return err
}

func waitSIGINT() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
}
