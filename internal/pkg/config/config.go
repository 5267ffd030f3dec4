package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Atlas     AtlasConfig     `mapstructure:"atlas"`
	Map       MapConfig       `mapstructure:"map"`
	Tiles     TilesConfig     `mapstructure:"tiles"`
	Sequence  SequenceConfig  `mapstructure:"sequence"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
	FrameTTL  int    `mapstructure:"frame_ttl"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AtlasConfig names the two datasets shown on the map.
type AtlasConfig struct {
	DataDir     string             `mapstructure:"data_dir"`
	HTTPTimeout int                `mapstructure:"http_timeout"`
	Generated   domain.DatasetSpec `mapstructure:"generated"`
	Recovered   domain.DatasetSpec `mapstructure:"recovered"`
}

type MapConfig struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLon float64 `mapstructure:"center_lon"`
	Zoom      int     `mapstructure:"zoom"`
	MinZoom   int     `mapstructure:"min_zoom"`
	MaxZoom   int     `mapstructure:"max_zoom"`
	Width     int     `mapstructure:"width"`
	Height    int     `mapstructure:"height"`
}

// View returns the initial web-map viewport.
func (c *Config) View() domain.MapView {
	return domain.MapView{
		Center:      domain.GeoPoint{Lat: c.Map.CenterLat, Lon: c.Map.CenterLon},
		Zoom:        c.Map.Zoom,
		MinZoom:     c.Map.MinZoom,
		MaxZoom:     c.Map.MaxZoom,
		TileURL:     "/tiles/{z}/{x}/{y}",
		Attribution: c.Tiles.Attribution,
	}
}

type TilesConfig struct {
	UpstreamURL string `mapstructure:"upstream_url"`
	Attribution string `mapstructure:"attribution"`
	UserAgent   string `mapstructure:"user_agent"`
	CacheSize   int    `mapstructure:"cache_size"`
	CacheTTL    int    `mapstructure:"cache_ttl"`
}

type SequenceConfig struct {
	Autoplay bool `mapstructure:"autoplay"`
	Interval int  `mapstructure:"interval_ms"`
}

type TemporalConfig struct {
	HostPort        string `mapstructure:"host_port"`
	Namespace       string `mapstructure:"namespace"`
	TaskQueue       string `mapstructure:"task_queue"`
	RefreshInterval int    `mapstructure:"refresh_interval"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: WASTEATLAS_DATABASE_HOST → database.host
	v.SetEnvPrefix("WASTEATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "atlas")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "wasteatlas")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.key_prefix", "wasteatlas:")
	v.SetDefault("valkey.frame_ttl", 600)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("atlas.data_dir", "data")
	v.SetDefault("atlas.http_timeout", 30)
	v.SetDefault("atlas.generated.name", "generated")
	v.SetDefault("atlas.generated.kind", string(domain.KindGenerated))
	v.SetDefault("atlas.generated.source", "MSWKgPerCapita.geojson")
	v.SetDefault("atlas.generated.marker", "MSW")
	v.SetDefault("atlas.recovered.name", "recovered")
	v.SetDefault("atlas.recovered.kind", string(domain.KindRecovered))
	v.SetDefault("atlas.recovered.source", "MSWKgPerCapRecov.geojson")
	v.SetDefault("atlas.recovered.marker", "MSW")

	v.SetDefault("map.center_lat", 40.7)
	v.SetDefault("map.center_lon", -39.7)
	v.SetDefault("map.zoom", 3)
	v.SetDefault("map.min_zoom", 2)
	v.SetDefault("map.max_zoom", 6)
	v.SetDefault("map.width", 1024)
	v.SetDefault("map.height", 640)

	v.SetDefault("tiles.upstream_url", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("tiles.attribution", "&copy; OpenStreetMap contributors")
	v.SetDefault("tiles.user_agent", "wasteatlas/1.0")
	v.SetDefault("tiles.cache_size", 2048)
	v.SetDefault("tiles.cache_ttl", 3600)

	v.SetDefault("sequence.autoplay", false)
	v.SetDefault("sequence.interval_ms", 1500)

	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "wasteatlas-refresh")
	v.SetDefault("temporal.refresh_interval", 3600)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}

	for _, ds := range []struct {
		key  string
		spec domain.DatasetSpec
		kind domain.DatasetKind
	}{
		{"atlas.generated", c.Atlas.Generated, domain.KindGenerated},
		{"atlas.recovered", c.Atlas.Recovered, domain.KindRecovered},
	} {
		if ds.spec.Name == "" {
			errs = append(errs, ds.key+".name is required")
		}
		if ds.spec.Source == "" {
			errs = append(errs, ds.key+".source is required")
		}
		if ds.spec.Marker == "" {
			errs = append(errs, ds.key+".marker is required")
		}
		if ds.spec.Kind != ds.kind {
			errs = append(errs, fmt.Sprintf("%s.kind must be %q, got %q", ds.key, ds.kind, ds.spec.Kind))
		}
	}
	if c.Atlas.Generated.Name != "" && c.Atlas.Generated.Name == c.Atlas.Recovered.Name {
		errs = append(errs, "atlas.generated.name and atlas.recovered.name must differ")
	}

	if c.Map.MinZoom < 0 || c.Map.MinZoom > c.Map.MaxZoom {
		errs = append(errs, fmt.Sprintf("map zoom range invalid: min %d, max %d", c.Map.MinZoom, c.Map.MaxZoom))
	}
	if c.Map.Zoom < c.Map.MinZoom || c.Map.Zoom > c.Map.MaxZoom {
		errs = append(errs, fmt.Sprintf("map.zoom %d outside [%d,%d]", c.Map.Zoom, c.Map.MinZoom, c.Map.MaxZoom))
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		errs = append(errs, "map.width and map.height must be positive")
	}
	if c.Sequence.Autoplay && c.Sequence.Interval <= 0 {
		errs = append(errs, "sequence.interval_ms must be positive when autoplay is on")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
