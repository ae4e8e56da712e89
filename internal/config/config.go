// Package config предоставялет структуры и функции для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	Provider        `yaml:"provider"`
	HTTPServer      `yaml:"http_server"`
	RedisConnection `yaml:"redis_connection"`
	RabbitMQ        `yaml:"rabbitmq"`
	SMTP            `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Provider выбирает внешний сервис, в который уходят заявки, и хранит его учётные данные.
// Пустые ключи не мешают старту: ошибка конфигурации отдаётся на каждый запрос.
type Provider struct {
	Kind      string        `yaml:"kind" env:"PROVIDER" env-default:"airtable"`
	Timeout   time.Duration `yaml:"timeout" env:"PROVIDER_TIMEOUT" env-default:"10s"`
	Airtable  Airtable      `yaml:"airtable"`
	Mailchimp Mailchimp     `yaml:"mailchimp"`
}

// Airtable настройки табличного провайдера
type Airtable struct {
	APIKey    string `yaml:"api_key" env:"AIRTABLE_API_KEY"`
	BaseID    string `yaml:"base_id" env:"AIRTABLE_BASE_ID"`
	TableName string `yaml:"table_name" env:"AIRTABLE_TABLE_NAME" env-default:"Signups"`
	BaseURL   string `yaml:"base_url" env:"AIRTABLE_BASE_URL" env-default:"https://api.airtable.com/v0"`
}

// Mailchimp настройки email-маркетингового провайдера.
// BaseURL можно не задавать: он вычисляется из суффикса ключа (us6 и т.п.).
type Mailchimp struct {
	APIKey       string `yaml:"api_key" env:"MAILCHIMP_API_KEY"`
	ListID       string `yaml:"list_id" env:"MAILCHIMP_LIST_ID"`
	BaseURL      string `yaml:"base_url" env:"MAILCHIMP_BASE_URL"`
	MemberStatus string `yaml:"member_status" env:"MAILCHIMP_MEMBER_STATUS" env-default:"subscribed"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает статистику листа ожидания.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT"`
}

// RabbitMQ структура для публикации событий о новых заявках.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env:"RABBITMQ_MAX_RETRIES" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// SMTP структура для отправки приветственных писем
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
	SMTPFrom string `yaml:"from" env:"SMTP_FROM"`
}

// Load читает конфиг из файла CONFIG_PATH, если он задан, иначе только из окружения.
// Переменные окружения всегда перекрывают значения из файла.
func Load() (*Config, error) {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Provider:\n"+
			"  Kind: %s\n"+
			"  Timeout: %s\n"+
			"  Airtable: base=%s table=%s key=%s\n"+
			"  Mailchimp: list=%s key=%s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Redis: %s\n"+
			"RabbitMQ: %t\n",
		c.Env,
		c.Kind,
		c.Provider.Timeout,
		c.Airtable.BaseID,
		c.Airtable.TableName,
		secret(c.Airtable.APIKey),
		c.Mailchimp.ListID,
		secret(c.Mailchimp.APIKey),
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.RabbitMQURL != "",
	)
}

func secret(s string) string {
	if s == "" {
		return "<unset>"
	}
	return "<set>"
}
