package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/printroom/stockroom/internal/api"
	"github.com/printroom/stockroom/internal/auth"
	"github.com/printroom/stockroom/internal/config"
	"github.com/printroom/stockroom/internal/count"
	"github.com/printroom/stockroom/internal/db"
	"github.com/printroom/stockroom/internal/logging"
	"github.com/printroom/stockroom/internal/model"
	"github.com/printroom/stockroom/internal/store"
	"github.com/printroom/stockroom/internal/web"
)

func main() {
	fs := flag.NewFlagSet("stockroom", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var adminUser string
	fs.StringVar(&adminUser, "user", "admin", "")
	fs.StringVar(&adminUser, "u", "admin", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var envFile string
	fs.StringVar(&envFile, "env", ".env", "")
	fs.StringVar(&envFile, "e", ".env", "")

	var debug bool
	fs.BoolVar(&debug, "debug", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: stockroom [flags]

Serves the stock management web UI and JSON API.

Flags:
  -d, -db <path>          SQLite database path (default: $STOCKROOM_DB or inventory.db)
  -a, -addr <host:port>   listen address (default: $STOCKROOM_ADDR or :8080)
  -u, -user <name>        admin username created on first run (default: admin)
  -e, -env <path>         .env file to load (default: .env, optional)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
      -debug              enable debug logging
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := logging.Setup(logPath, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(dbPath, addr, adminUser, envFile, explicitFlag(fs, "env", "e")); err != nil {
		slog.Error("stockroom failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(dbPath, addr, adminUser, envFile string, envRequired bool) error {
	if err := config.LoadEnvFile(envFile, envRequired); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// Flags win over the environment.
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if addr != "" {
		cfg.Addr = addr
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureAdmin(ctx, database, cfg.DBPath, adminUser); err != nil {
		return err
	}

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	counts := count.NewManager(database, count.DefaultIdleTimeout)

	webRouter, err := web.NewRouter(database, jwtSecret, counts)
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(database, jwtSecret, counts))
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server started", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		counts.Run(gctx, 10*time.Minute)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				if n, err := store.PurgeExpiredTokens(gctx, database, now); err != nil {
					slog.Error("failed to purge revoked tokens", "error", err)
				} else if n > 0 {
					slog.Info("purged revoked tokens", "count", n)
				}
			}
		}
	})

	err = g.Wait()
	slog.Info("server stopped, closing database")
	return err
}

// ensureAdmin creates an admin account with a generated password when the
// database has none, and prints the credentials once.
func ensureAdmin(ctx context.Context, database *sql.DB, dbPath, username string) error {
	n, err := store.CountAdmins(ctx, database)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := store.CreateUser(ctx, database, username, hash, model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("admin account created", "user", username)
	printInitResult(dbPath, username, password)
	return nil
}

// printInitResult prints the first-run credentials to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("Change it under Settings after signing in.")
	fmt.Println()
}

// explicitFlag reports whether any of the named flags was set on the
// command line.
func explicitFlag(fs *flag.FlagSet, names ...string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		for _, n := range names {
			if f.Name == n {
				set = true
			}
		}
	})
	return set
}
