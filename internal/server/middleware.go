package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alkime/radiopanel/internal/config"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// securityConfig is the header policy of the monitor.
//
// A monitor bound to loopback answers only to loopback host names. Any
// origin may open the websocket, so without the host check a page could
// rebind its own name onto 127.0.0.1 and read the panel.
func securityConfig(cfg *config.Config, logger *slog.Logger) secure.Config {
	var sts int64
	if cfg.Env == config.EnvProduction {
		sts = int64(cfg.HSTSMaxAge)
	}

	//nolint:exhaustruct // remaining checks stay off for a plain-HTTP local tool
	return secure.Config{
		AllowedHosts:          loopbackHosts(cfg.MonitorAddr),
		STSSeconds:            sts,
		STSIncludeSubdomains:  sts > 0,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: config.BuildCSP(cfg.CSPMode),
		BadHostHandler: func(c *gin.Context) {
			logger.Warn("monitor request for foreign host", "host", c.Request.Host, "client_ip", c.ClientIP())
			c.AbortWithStatus(http.StatusMisdirectedRequest)
		},
	}
}

// loopbackHosts lists the Host headers a loopback listener on addr can be
// reached by. Other listeners accept any host.
func loopbackHosts(addr string) []string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return nil
	}

	if host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			return nil
		}
	}

	return []string{
		net.JoinHostPort("localhost", port),
		net.JoinHostPort("127.0.0.1", port),
		net.JoinHostPort("::1", port),
	}
}

func setupSecurityMiddleware(router *gin.Engine, cfg *config.Config, logger *slog.Logger) {
	sc := securityConfig(cfg, logger)
	router.Use(secure.New(sc))

	logger.Debug("Configured security middleware",
		"hsts_enabled", sc.STSSeconds > 0,
		"csp_mode", cfg.CSPMode,
		"allowed_hosts", sc.AllowedHosts,
	)
}

// requestLogger logs each request through slog instead of gin's stdout
// logger. Websocket upgrades are long-lived, so they log on arrival.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.IsWebsocket() {
			logger.Debug("monitor websocket", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
			c.Next()

			return
		}

		start := time.Now()
		c.Next()

		logger.Debug("monitor request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
