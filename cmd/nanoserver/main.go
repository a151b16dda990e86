// NanoServer - a zero-setup local PHP development server.
//
// NanoServer wraps PHP's built-in web server with lifecycle supervision,
// an ad-hoc SQLite query runner, and a small loopback HTTP API that a
// front-end (or curl) can drive. Preferences such as the last project
// root and selected database persist across runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/goAuD/NanoServer/internal/api"
	"github.com/goAuD/NanoServer/internal/infrastructure/config"
	"github.com/goAuD/NanoServer/internal/infrastructure/logging"
	"github.com/goAuD/NanoServer/internal/phpserver"
	"github.com/goAuD/NanoServer/internal/query"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "unknown"
)

// options holds the parsed command-line flags.
type options struct {
	configPath  string
	root        string
	port        int
	dbPath      string
	readOnly    bool
	noServe     bool
	showVersion bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses command-line arguments into options.
func parseFlags(args []string) (*options, error) {
	opts := &options{}

	flags := pflag.NewFlagSet("nanoserver", pflag.ContinueOnError)
	flags.StringVarP(&opts.configPath, "config", "c", "", "preference file path (default ~/.nanoserver/config.yaml)")
	flags.StringVarP(&opts.root, "root", "r", "", "document root to serve (defaults to the last-used project)")
	flags.IntVarP(&opts.port, "port", "p", 0, "PHP server port (falls forward when busy)")
	flags.StringVarP(&opts.dbPath, "db", "d", "", "SQLite file for the query runner")
	flags.BoolVar(&opts.readOnly, "read-only", false, "reject write queries against the database")
	flags.BoolVar(&opts.noServe, "no-serve", false, "do not start the PHP server; API only")
	flags.BoolVarP(&opts.showVersion, "version", "v", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Printf("nanoserver %s (%s)\n", version, commit)
		return nil
	}

	// Use default logger until config is loaded.
	log := logging.Default()

	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags beat preferences.
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.readOnly {
		cfg.Database.ReadOnly = true
	}
	root := opts.root
	if root == "" {
		root = cfg.Project.LastRoot
	}

	log = logging.New(cfg.Logging, version)
	log.Info("starting nanoserver",
		"version", version,
		"config", configPath,
	)

	prefs := config.NewStore(cfg, configPath)

	// Query engine over the selected SQLite store.
	engine := query.New(cfg.Database.Path)
	engine.SetLogger(log)
	engine.SetReadOnly(cfg.Database.ReadOnly)
	if cfg.Database.Path != "" {
		log.Info("database selected",
			"path", cfg.Database.Path,
			"read_only", cfg.Database.ReadOnly,
		)
	}

	// PHP supervisor. Output lines flow to the API's log stream; broadcast
	// is bound once the API server exists, before anything starts.
	var broadcast func(line string)
	php := phpserver.New(phpserver.Config{
		PHPBinary:       cfg.Server.PHPBinary,
		Host:            cfg.Server.Host,
		GracefulTimeout: cfg.GetGracefulTimeout(),
		OnLog: func(line string) {
			if broadcast != nil {
				broadcast(line)
			}
		},
	})
	php.SetLogger(log)

	if phpVersion, checkErr := phpserver.CheckPHP(cfg.Server.PHPBinary); checkErr != nil {
		log.Warn("php binary not usable; server start will fail",
			"binary", cfg.Server.PHPBinary,
			"error", checkErr,
		)
	} else {
		log.Info("php detected", "version", phpVersion)
	}

	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Engine:  engine,
		PHP:     php,
		Prefs:   prefs,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}
	broadcast = apiServer.LogHub().Broadcast

	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting api server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing api server", "error", closeErr)
		}
	}()

	// Serve immediately when a document root is known; otherwise wait for
	// a start request over the API.
	if !opts.noServe && root != "" {
		if err := php.Start(root, cfg.Server.Port); err != nil {
			return fmt.Errorf("starting php server: %w", err)
		}
		log.Info("serving project", "url", php.URL(), "root", root)

		if err := prefs.SetLastRoot(root); err != nil {
			log.Warn("failed to persist project root", "error", err)
		}
		if err := prefs.SetPort(php.Port()); err != nil {
			log.Warn("failed to persist port", "error", err)
		}
	} else if root == "" {
		log.Info("no project root set; waiting for start request")
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	if err := php.Stop(); err != nil {
		log.Error("error stopping php server", "error", err)
	}

	log.Info("nanoserver stopped")
	return nil
}
