package config

import (
	"os"
)

type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
}

type SQSConfig struct {
	ResizeQueueURL string
	FacesQueueURL  string
	DeleteQueueURL string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type Config struct {
	Env         string
	DatabaseURL string
	FrontendURL string
	S3          S3Config
	SQS         SQSConfig
	Redis       RedisConfig
	Stripe      StripeConfig
}

func LoadConfig() *Config {
	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
	}

	cfg.S3.Region = getEnv("AWS_REGION", "us-east-1")
	cfg.S3.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.S3.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.S3.Bucket = os.Getenv("PHOTO_BUCKET")
	cfg.S3.PublicURL = os.Getenv("PHOTO_BUCKET_PUBLIC_URL")

	cfg.SQS.ResizeQueueURL = os.Getenv("RESIZE_QUEUE_URL")
	cfg.SQS.FacesQueueURL = os.Getenv("FACES_QUEUE_URL")
	cfg.SQS.DeleteQueueURL = os.Getenv("DELETE_QUEUE_URL")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
