package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"parley/internal/redaction"
	"parley/pkg/api"
	"parley/pkg/banner"
	"parley/pkg/brain"
	"parley/pkg/config"
	"parley/pkg/logger"
	"parley/pkg/security"
	"parley/pkg/shutdown"
	"parley/pkg/state"
	"parley/pkg/store"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	// Resolve config path (file flag wins over env)
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		logger.Init("")
		shutdown.Abort("failed to load config", err, "", 0)
	}
	logger.Init(cfg.Logging.Level)

	// Flags explicitly set win over env/config for addr and dbPath.
	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrVal
	}
	dbPath := dbVal
	if !setFlags["db"] && cfg.Storage.DBPath != "" {
		dbPath = cfg.Storage.DBPath
	}

	if err := state.EnsureStateDirs(dbPath); err != nil {
		shutdown.Abort("failed to prepare state dirs", err, dbPath, 0)
	}
	if err := logger.AttachAuditFileSink(state.PathsVar.Audit); err != nil {
		logger.Warn("audit_sink_unavailable", "error", err)
	}
	if err := store.Open(state.PathsVar.Store); err != nil {
		shutdown.Abort("failed to open store", err, dbPath, 0)
	}

	b := brain.Load(brain.Options{
		MaxTokens:    cfg.Brain.MaxTokens,
		PrefixTokens: cfg.Brain.PrefixTokens,
	})

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	stopSweeps, err := redaction.Start(ctx, b, cfg)
	if err != nil {
		shutdown.Abort("failed to start redaction scheduler", err, dbPath, 0)
	}
	go func() {
		<-ctx.Done()
		stopSweeps()
		// give in-flight handlers a moment before tearing the store down
		time.Sleep(500 * time.Millisecond)
		if err := store.Close(); err != nil {
			logger.Error("store_close_failed", "error", err)
		}
		os.Exit(0)
	}()

	// Determine config sources summary (flags/env/config)
	srcs := []string{}
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}
	verStr := version
	if commit != "none" {
		verStr = verStr + " (" + commit + ")"
	}
	if buildDate != "unknown" {
		verStr = verStr + " @ " + buildDate
	}
	banner.Print(addr, dbPath, strings.Join(srcs, ", "), verStr)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Serve Swagger UI at /docs and the OpenAPI spec at /openapi.yaml
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	mux.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))

	// API handler (catch-all under /)
	mux.Handle("/", api.Router(b))

	secCfg := security.SecConfig{
		BackendKeys: map[string]struct{}{},
		AdminKeys:   map[string]struct{}{},
	}
	secCfg.AllowedOrigins = append(secCfg.AllowedOrigins, cfg.Security.CORS.AllowedOrigins...)
	secCfg.RPS = cfg.Security.RateLimit.RPS
	secCfg.Burst = cfg.Security.RateLimit.Burst
	secCfg.IPWhitelist = append(secCfg.IPWhitelist, cfg.Security.IPWhitelist...)
	for _, k := range cfg.Security.APIKeys.Backend {
		secCfg.BackendKeys[k] = struct{}{}
	}
	for _, k := range cfg.Security.APIKeys.Admin {
		secCfg.AdminKeys[k] = struct{}{}
	}
	wrapped := security.AuthenticateRequestMiddleware(secCfg)(mux)

	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	var errServe error
	if cert != "" && key != "" {
		errServe = http.ListenAndServeTLS(addr, cert, key, wrapped)
	} else {
		errServe = http.ListenAndServe(addr, wrapped)
	}
	if errServe != nil {
		shutdown.Abort("http server exited", errServe, dbPath, 0)
	}
}
