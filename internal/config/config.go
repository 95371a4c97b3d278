// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	BlobStore               `yaml:"blob_store"`
	PaymentGateway          `yaml:"payment_gateway"`
	Push                    `yaml:"push"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ структура для настройки подключения к брокеру очередей
type RabbitMQ struct {
	AMQPURL        string        `yaml:"amqp_url" env:"AMQP_URL"`
	ConnectRetries int           `yaml:"connect_retries" env-default:"5"`
	ConnectDelay   time.Duration `yaml:"connect_delay" env-default:"3s"`
}

// BlobStore структура для настройки S3-совместимого хранилища изображений
type BlobStore struct {
	S3BaseEndpoint string `yaml:"s3_base_endpoint" env:"S3_BASE_ENDPOINT"`
	S3Region       string `yaml:"s3_region" env-default:"us-east-1"`
	S3Bucket       string `yaml:"s3_bucket" env-default:"atelier-images"`
	S3AccessKey    string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
	S3SecretKey    string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
	PublicBaseURL  string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

// PaymentGateway структура для настройки платежного шлюза
type PaymentGateway struct {
	GatewayBaseURL string `yaml:"gateway_base_url" env:"PAYMENT_GATEWAY_URL"`
	GatewaySecret  string `yaml:"gateway_secret" env:"PAYMENT_GATEWAY_SECRET"`
	Currency       string `yaml:"currency" env-default:"NGN"`
	RedirectURL    string `yaml:"redirect_url"`
}

// Push структура для настройки сервиса push-уведомлений
type Push struct {
	PushEndpoint  string `yaml:"push_endpoint" env:"PUSH_ENDPOINT"`
	PushServerKey string `yaml:"push_server_key" env:"PUSH_SERVER_KEY"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс,
// если файл отсутствует или не читается.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
