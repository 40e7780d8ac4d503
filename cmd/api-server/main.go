package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/control-horario/jornada-tracker/internal/auth"
	"github.com/control-horario/jornada-tracker/internal/database"
	"github.com/control-horario/jornada-tracker/internal/env"
	"github.com/control-horario/jornada-tracker/internal/stats"
	"github.com/control-horario/jornada-tracker/internal/tracker"
	"github.com/control-horario/jornada-tracker/internal/version"
	"github.com/control-horario/jornada-tracker/internal/weather"
)

var (
	_cfgFile     = flag.String("cfg", "", "path to config file")
	_showVersion = flag.Bool("version", false, "display version and exit")
)

func init() {
	flag.Parse()
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

type config struct {
	httpHost string
	httpPort int
	db       struct {
		dsn         string
		automigrate bool
	}
	session struct {
		ttl time.Duration
	}
	workday struct {
		subtractPauses bool
	}
	weather struct {
		apiKey          string
		baseURL         string
		cacheTTL        time.Duration
		defaultLocation string
		defaultLang     string
	}
}

type application struct {
	config  config
	db      *database.DB
	logger  *slog.Logger
	auth    *auth.Service
	tracker *tracker.Tracker
	stats   *stats.Engine
	weather *weather.Service
	wg      sync.WaitGroup
}

func run(logger *slog.Logger) error {
	var cfg config

	if *_cfgFile != "" {
		err := env.Load(*_cfgFile)
		if err != nil {
			return err
		}
	}

	cfg.httpHost = env.GetString("HTTP_HOST", "localhost")
	cfg.httpPort = env.GetInt("HTTP_PORT", 8080)
	cfg.db.dsn = env.GetString("DB_DSN", "postgres:postgres@localhost:5432/postgres")
	cfg.db.automigrate = env.GetBool("DB_AUTOMIGRATE", true)
	cfg.session.ttl = env.GetDuration("SESSION_TTL", auth.DefaultSessionTTL)
	cfg.workday.subtractPauses = env.GetBool("WORKDAY_SUBTRACT_PAUSES", false)
	cfg.weather.apiKey = env.GetString("WEATHER_API_KEY", "")
	cfg.weather.baseURL = env.GetString("WEATHER_BASE_URL", weather.DefaultBaseURL)
	cfg.weather.cacheTTL = env.GetDuration("WEATHER_CACHE_TTL", weather.DefaultTTL)
	cfg.weather.defaultLocation = env.GetString("WEATHER_DEFAULT_LOCATION", "Lima")
	cfg.weather.defaultLang = env.GetString("WEATHER_DEFAULT_LANG", "es")

	if *_showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	db, err := database.New(cfg.db.dsn, cfg.db.automigrate)
	if err != nil {
		return err
	}
	defer db.Close()

	workdayDAO := database.NewWorkdayDAO(logger, db)
	pauseDAO := database.NewPauseDAO(logger, db)
	userDAO := database.NewUserDAO(logger, db)
	sessionDAO := database.NewSessionDAO(logger, db)

	app := &application{
		config:  cfg,
		db:      db,
		logger:  logger,
		auth:    auth.New(logger, userDAO, sessionDAO, cfg.session.ttl),
		tracker: tracker.New(logger, workdayDAO, pauseDAO),
		stats:   stats.NewEngine(logger, workdayDAO, pauseDAO, cfg.workday.subtractPauses),
		weather: weather.New(logger, cfg.weather.apiKey, cfg.weather.baseURL, cfg.weather.cacheTTL, nil),
	}

	return app.serveHTTP()
}
