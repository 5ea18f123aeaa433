package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	Tokens     `yaml:"tokens"`
	Password   `yaml:"password"`
	Mail       `yaml:"mail"`
	RabbitMQ   `yaml:"rabbitmq"`
	Postgres   `yaml:"postgres"`
	SMTP       `yaml:"smtp"`
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
	User     string `yaml:"user" env:"DB_USER" env-required:"true"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-required:"true"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

// Tokens holds the signing material for the issuer. Access and refresh
// secrets are independent so that leaking one does not let anyone forge the
// other kind.
type Tokens struct {
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl" env-default:"1h"`
	RefreshTokenTTL    time.Duration `yaml:"refresh_token_ttl" env-default:"336h"`
	AccessTokenSecret  string        `yaml:"access_token_secret" env:"JWT_ACCESS_TOKEN_SECRET" env-required:"true"`
	RefreshTokenSecret string        `yaml:"refresh_token_secret" env:"JWT_REFRESH_TOKEN_SECRET" env-required:"true"`
}

type Password struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"SALT_VALUE" env-default:"10"`
}

type Mail struct {
	CodeTTL time.Duration `yaml:"code_ttl" env-default:"3m"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env:"RABBITMQ_URL" env-required:"true"`
	QueueName string `yaml:"queue_name" env-default:"email_jobs"`
}

// SMTP is only read by the mail_sender worker.
type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
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
