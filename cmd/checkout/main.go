package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/printroom/stockroom/internal/checkout"
	"github.com/printroom/stockroom/internal/config"
	"github.com/printroom/stockroom/internal/db"
	"github.com/printroom/stockroom/internal/logging"
	"github.com/printroom/stockroom/internal/notify"
)

// queueSize bounds the notifications waiting for the transport.
const queueSize = 64

func main() {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var removalLog string
	fs.StringVar(&removalLog, "removal-log", "", "")
	fs.StringVar(&removalLog, "r", "", "")

	var policy string
	fs.StringVar(&policy, "policy", "", "")
	fs.StringVar(&policy, "p", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var envFile string
	fs.StringVar(&envFile, "env", ".env", "")
	fs.StringVar(&envFile, "e", ".env", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: checkout [flags]

Scan station: reads one barcode per line from stdin and removes one unit of
that item from stock.

Flags:
  -d, -db <path>            SQLite database path (default: $STOCKROOM_DB or inventory.db)
  -r, -removal-log <path>   removal log (default: $STOCKROOM_REMOVAL_LOG or removal_log.txt)
  -p, -policy <name>        restock notification policy: per-item, once, every
                            (default: $NOTIFY_POLICY or per-item)
  -e, -env <path>           .env file to load (default: .env, optional)
  -l, -log <path>           log file path (default: no file, stdout/stderr only)
  -h, -help                 show this help and exit
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

	closeLog, err := logging.Setup(logPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	envRequired := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "env" || f.Name == "e" {
			envRequired = true
		}
	})

	if err := run(dbPath, removalLog, policy, envFile, envRequired); err != nil {
		slog.Error("checkout failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(dbPath, removalLog, policy, envFile string, envRequired bool) error {
	if err := config.LoadEnvFile(envFile, envRequired); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if removalLog != "" {
		cfg.RemovalLog = removalLog
	}
	if policy != "" {
		if cfg.NotifyPolicy, err = checkout.ParsePolicy(policy); err != nil {
			return err
		}
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	var transport notify.Notifier = notify.ConsoleNotifier{}
	if cfg.SMTP.Enabled() {
		smtp, err := notify.NewSMTPNotifier(cfg.SMTP)
		if err != nil {
			return fmt.Errorf("configuring smtp: %w", err)
		}
		transport = smtp
		slog.Info("restock notifications by email", "host", cfg.SMTP.Host, "recipients", len(cfg.SMTP.To))
	} else {
		slog.Warn("SMTP_HOST not set, restock notifications go to the log only")
	}
	dispatcher := notify.NewDispatcher(transport, queueSize, cfg.SMTP.Timeout)

	station := &checkout.Station{
		Service: &checkout.Service{
			DB:       database,
			Log:      checkout.NewRemovalLog(cfg.RemovalLog),
			Notifier: dispatcher,
			Policy:   cfg.NotifyPolicy,
		},
		In:     os.Stdin,
		Out:    os.Stdout,
		Prompt: "Scan barcode: ",
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Queued notifications get a grace period after the station stops.
	drainCtx, cancelDrain := context.WithCancel(context.Background())
	defer cancelDrain()

	slog.Info("scan station ready", "db", cfg.DBPath, "removal_log", cfg.RemovalLog, "policy", string(cfg.NotifyPolicy))

	var g errgroup.Group
	g.Go(func() error {
		return dispatcher.Run(drainCtx)
	})
	g.Go(func() error {
		err := station.Run(ctx)
		dispatcher.Close()
		time.AfterFunc(cfg.SMTP.Timeout+5*time.Second, cancelDrain)
		return err
	})

	return g.Wait()
}
