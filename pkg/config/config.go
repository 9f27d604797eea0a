package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Planning PlanningConfig
	Layout   LayoutConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlanningConfig gates the planning endpoints and bounds request ranges.
type PlanningConfig struct {
	TimelineEnabled bool
	ReportsEnabled  bool
	CacheTTL        time.Duration
	MaxRangeDays    int
	DefaultDayWidth float64
}

// LayoutConfig carries the timeline pixel constants.
type LayoutConfig struct {
	MinBarWidthPx     float64
	BarHeightPx       float64
	BarSpacingPx      float64
	BasePaddingPx     float64
	MinRowHeightPx    float64
	MaxLanes          int
	VisibleMarginPx   float64
	StickyLookaheadPx float64
	StickyOffsetPx    float64
	MinLabelWidthPx   float64
}

// ExportsConfig toggles the report downloads and sizes the background export
// workers.
type ExportsConfig struct {
	Enabled         bool
	Title           string
	Dir             string
	SigningSecret   string
	ResultTTL       time.Duration
	Workers         int
	CleanupInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		SQLitePath:   v.GetString("SQLITE_PATH"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}
	if cfg.Database.Driver != DriverSQLite {
		cfg.Database.Driver = DriverPostgres
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxRange := v.GetInt("PLANNING_MAX_RANGE_DAYS")
	if maxRange <= 0 {
		maxRange = 731
	}
	dayWidth := v.GetFloat64("PLANNING_DEFAULT_DAY_WIDTH")
	if dayWidth <= 0 {
		dayWidth = 40
	}
	cfg.Planning = PlanningConfig{
		TimelineEnabled: v.GetBool("ENABLE_TIMELINE"),
		ReportsEnabled:  v.GetBool("ENABLE_OVERALLOCATION_REPORTS"),
		CacheTTL:        parseDuration(v.GetString("PLANNING_CACHE_TTL"), 2*time.Minute),
		MaxRangeDays:    maxRange,
		DefaultDayWidth: dayWidth,
	}

	cfg.Layout = LayoutConfig{
		MinBarWidthPx:     v.GetFloat64("LAYOUT_MIN_BAR_WIDTH_PX"),
		BarHeightPx:       v.GetFloat64("LAYOUT_BAR_HEIGHT_PX"),
		BarSpacingPx:      v.GetFloat64("LAYOUT_BAR_SPACING_PX"),
		BasePaddingPx:     v.GetFloat64("LAYOUT_BASE_PADDING_PX"),
		MinRowHeightPx:    v.GetFloat64("LAYOUT_MIN_ROW_HEIGHT_PX"),
		MaxLanes:          v.GetInt("LAYOUT_MAX_LANES"),
		VisibleMarginPx:   v.GetFloat64("LAYOUT_VISIBLE_MARGIN_PX"),
		StickyLookaheadPx: v.GetFloat64("LAYOUT_STICKY_LOOKAHEAD_PX"),
		StickyOffsetPx:    v.GetFloat64("LAYOUT_STICKY_OFFSET_PX"),
		MinLabelWidthPx:   v.GetFloat64("LAYOUT_MIN_LABEL_WIDTH_PX"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:         v.GetBool("ENABLE_EXPORTS"),
		Title:           v.GetString("EXPORT_TITLE"),
		Dir:             v.GetString("EXPORT_DIR"),
		SigningSecret:   v.GetString("EXPORT_SIGNING_SECRET"),
		ResultTTL:       parseDuration(v.GetString("EXPORT_RESULT_TTL"), 24*time.Hour),
		Workers:         v.GetInt("EXPORT_WORKERS"),
		CleanupInterval: parseDuration(v.GetString("EXPORT_CLEANUP_INTERVAL"), time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "staffplan")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "staffplan.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_TIMELINE", true)
	v.SetDefault("ENABLE_OVERALLOCATION_REPORTS", true)
	v.SetDefault("PLANNING_CACHE_TTL", "2m")
	v.SetDefault("PLANNING_MAX_RANGE_DAYS", 731)
	v.SetDefault("PLANNING_DEFAULT_DAY_WIDTH", 40)

	v.SetDefault("LAYOUT_MIN_BAR_WIDTH_PX", 80)
	v.SetDefault("LAYOUT_BAR_HEIGHT_PX", 28)
	v.SetDefault("LAYOUT_BAR_SPACING_PX", 4)
	v.SetDefault("LAYOUT_BASE_PADDING_PX", 8)
	v.SetDefault("LAYOUT_MIN_ROW_HEIGHT_PX", 48)
	v.SetDefault("LAYOUT_MAX_LANES", 4)
	v.SetDefault("LAYOUT_VISIBLE_MARGIN_PX", 200)
	v.SetDefault("LAYOUT_STICKY_LOOKAHEAD_PX", 240)
	v.SetDefault("LAYOUT_STICKY_OFFSET_PX", 8)
	v.SetDefault("LAYOUT_MIN_LABEL_WIDTH_PX", 60)

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORT_TITLE", "Overallocation report")
	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("EXPORT_SIGNING_SECRET", "")
	v.SetDefault("EXPORT_RESULT_TTL", "24h")
	v.SetDefault("EXPORT_WORKERS", 2)
	v.SetDefault("EXPORT_CLEANUP_INTERVAL", "1h")
}

// SetConfigFile on a missing path surfaces an fs error rather than
// ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
