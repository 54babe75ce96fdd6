package config

import (
	"ctchen222/reversi/internal/validator"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Log       Log       `yaml:"log"`
	Telemetry Telemetry `yaml:"telemetry"`
	Server    Server    `yaml:"server"`
	Redis     Redis     `yaml:"redis"`
	SQLite    SQLite    `yaml:"sqlite"`
	Auth      Auth      `yaml:"auth"`
	Client    Client    `yaml:"client"`
	Game      Game      `yaml:"game"`
}

type Log struct {
	Level     string `yaml:"level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	AddSource bool   `yaml:"add-source" env:"LOG_ADD_SOURCE" env-default:"true"`
}

type Telemetry struct {
	Enabled        bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	CollectorAddr  string `yaml:"collector-addr" env:"OTEL_COLLECTOR_ADDR" env-default:"otel-collector:4317" validate:"required_if=Enabled true"`
	ServiceName    string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"reversi"`
	ServiceVersion string `yaml:"service-version" env:"OTEL_SERVICE_VERSION" env-default:"v0.1.0"`
}

type Server struct {
	HTTPAddr          string        `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080" validate:"required"`
	TCPAddr           string        `yaml:"tcp-addr" env:"TCP_ADDR" env-default:":7777"`
	MoveTimeout       time.Duration `yaml:"move-timeout" env:"MOVE_TIMEOUT" env-default:"15s" validate:"gt=0"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env:"SERVER_HEARTBEAT_INTERVAL" env-default:"10s" validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost" validate:"required"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379" validate:"required"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0" validate:"min=0"`
}

type SQLite struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"./reversi.db" validate:"required"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt-secret" env:"JWT_SECRET" env-default:"change-me" validate:"required"`
	TokenTTL  time.Duration `yaml:"token-ttl" env:"JWT_TOKEN_TTL" env-default:"72h" validate:"gt=0"`
}

type Client struct {
	ServerAddr        string        `yaml:"server-addr" env:"REVERSI_SERVER" env-default:"localhost:7777" validate:"required,hostname_port"`
	Transport         string        `yaml:"transport" env:"REVERSI_TRANSPORT" env-default:"tcp" validate:"oneof=tcp ws"`
	Path              string        `yaml:"path" env:"REVERSI_WS_PATH" env-default:"/ws"`
	ConnectTimeout    time.Duration `yaml:"connect-timeout" env:"REVERSI_CONNECT_TIMEOUT" env-default:"10s" validate:"gt=0"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env:"REVERSI_HEARTBEAT_INTERVAL" env-default:"30s" validate:"gt=0"`
	HeartbeatTick     time.Duration `yaml:"heartbeat-tick" env:"REVERSI_HEARTBEAT_TICK" env-default:"1s" validate:"gt=0"`
	Difficulty        string        `yaml:"difficulty" env:"REVERSI_DIFFICULTY" env-default:"medium" validate:"difficulty"`
	Name              string        `yaml:"name" env:"REVERSI_NAME" env-default:"player"`
}

type Game struct {
	TurnTimeLimit time.Duration `yaml:"turn-time-limit" env:"TURN_TIME_LIMIT" env-default:"30s" validate:"gt=0"`
	Chances       int           `yaml:"chances" env:"TURN_CHANCES" env-default:"3" validate:"min=1"`
}

// MustLoad - load all configurations in the given yaml file, with environment overrides.
func MustLoad(path string) *Config {
	config, err := Read(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}
	return config
}

// Read loads the yaml file at path, applies environment overrides and validates the result.
func Read(path string) (*Config, error) {
	config := &Config{}
	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Load builds the configuration from the environment and defaults only.
func Load() (*Config, error) {
	config := &Config{}
	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (that *Config) Validate() error {
	if err := validator.GetValidator().Struct(that); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
