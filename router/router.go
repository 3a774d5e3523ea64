package router

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/strandchat/strand/repository"
	"github.com/strandchat/strand/router/middlewares"
	"github.com/strandchat/strand/service/ws"
)

// Config APIサーバー設定
type Config struct {
	// Development 開発モードかどうか
	Development bool
	// Version サーバーバージョン
	Version string
	// AccessLogging アクセスログを出力するかどうか
	AccessLogging bool
	// Gzipped レスポンスをGzip圧縮するかどうか
	Gzipped bool
	// JWTSecret 接続トークンの検証鍵
	JWTSecret []byte
}

// Setup APIサーバーハンドラを構築します
func Setup(repo repository.Repository, streamer *ws.Streamer, logger *zap.Logger, config *Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// ミドルウェア設定
	e.Use(middlewares.ServerVersion(config.Version))
	if config.AccessLogging {
		e.Use(middlewares.AccessLogging(logger.Named("access_log"), config.Development))
	}
	if config.Gzipped {
		// Hijack可能なResponseWriterが必要なため、アップグレードされる接続は圧縮しない
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Skipper: func(c echo.Context) bool { return c.IsWebSocket() },
		}))
	}
	e.Use(middlewares.RequestCounter())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		MaxAge:       3600,
	}))

	api := e.Group("/api")
	api.GET("/metrics", echoprometheus.NewHandler())
	api.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, http.StatusText(http.StatusOK)) })
	api.GET("/ws", echo.WrapHandler(streamer), middlewares.UserAuthenticate(repo, config.JWTSecret))

	return e
}
