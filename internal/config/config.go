package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env-default:"local"`
	Tokens     `yaml:"tokens"`
	OTP        `yaml:"otp"`
	Captcha    `yaml:"captcha"`
	Email      `yaml:"email"`
	RabbitMQ   `yaml:"rabbitmq"`
	Postgres   `yaml:"postgres"`
	HTTPServer `yaml:"http_server"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env-default:"postgres"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"password" env-required:"true"`
	DBName   string `yaml:"dbname" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Tokens struct {
	Secret          string        `yaml:"secret" env:"TOKEN_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env-default:"168h"`
}

type OTP struct {
	TTL time.Duration `yaml:"ttl" env-default:"10m"`
}

type Captcha struct {
	VerifyURL string        `yaml:"verify_url" env-default:"https://www.google.com/recaptcha/api/siteverify"`
	Secret    string        `yaml:"secret" env:"RECAPTCHA_SECRET" env-required:"true"`
	Timeout   time.Duration `yaml:"timeout" env-default:"5s"`
}

// Email selects the delivery transport: "http" posts to the mail relay
// directly, "amqp" publishes to a queue consumed by a mail sender worker.
type Email struct {
	Transport string        `yaml:"transport" env-default:"http"`
	RelayURL  string        `yaml:"relay_url"`
	Secret    string        `yaml:"secret" env:"EMAIL_SECRET"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

type RabbitMQ struct {
	URL       string `yaml:"url"`
	QueueName string `yaml:"queue_name" env-default:"emails"`
}

func MustLoad(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("Config file does not exist" + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}
