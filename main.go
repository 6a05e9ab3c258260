package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/blossom-site/cliparse"
	"github.com/danielhkuo/blossom-site/db"
	"github.com/danielhkuo/blossom-site/middleware"
	"github.com/danielhkuo/blossom-site/router"
)

func main() {
	var err error

	// Seed the environment from .env when present
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		slog.Warn("unknown log level, using info", "level", cfg.LogLevel)
		level = slog.LevelInfo
	}
	slog.SetLogLoggerLevel(level)

	if cfg.PingbackKey == "" {
		slog.Warn("GTOP100_PINGBACK_KEY not set, vote pingbacks will be rejected")
	}

	// Connect to the game database
	dbConn, err := sql.Open(cfg.DriverName(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(cfg.DBPoolSize)
	dbConn.SetMaxIdleConns(cfg.DBPoolSize)

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "type", cfg.DatabaseType, "pool_size", cfg.DBPoolSize)

	// The game tables belong to the game server; only the vote log is ours
	if cfg.VoteAuditLog {
		if err := db.CreateSchema(dbConn); err != nil {
			slog.Error("schema creation failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Vote log table ready")
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("listen failed", "error", err)
		os.Exit(1)
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)

	// Start server
	slog.Info("Listening",
		"port", cfg.Port,
		"vote_points", cfg.VotePointsReward,
		"vote_nx", cfg.VoteNXReward,
		"game_api", cfg.GameAPIURL,
	)
	if err := serve(&server, ln, ctrlc, shutdownTimeout); err != nil {
		slog.Error("Server closed", "error", err)
		return
	}
	slog.Info("Server stopped")
}

const shutdownTimeout = 10 * time.Second

// serve runs server on ln until a signal arrives on stop, then drains
// in-flight requests. It returns only after Shutdown has finished, so
// callers can release the database afterwards.
func serve(server *http.Server, ln net.Listener, stop <-chan os.Signal, timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		slog.Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
			server.Close()
		}
	}()

	err := server.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
