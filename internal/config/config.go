package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port int

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string

	OpenAIKey   string
	OpenAIModel string

	AIDailyBudget float64
	RedisAddr     string

	CatalogPath    string
	VariationsPath string
}

func Load() *Config {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080 // fallback
	}

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432 // fallback
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	budget, err := strconv.ParseFloat(os.Getenv("AI_DAILY_BUDGET"), 64)
	if err != nil || budget < 0 {
		budget = 0.50 // dollars per day
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "data/catalog.csv"
	}

	variationsPath := os.Getenv("VARIATIONS_PATH")
	if variationsPath == "" {
		variationsPath = "data/variations.yaml"
	}

	return &Config{
		Port: port,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     dbPort,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret: secret,

		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: model,

		AIDailyBudget: budget,
		RedisAddr:     os.Getenv("REDIS_ADDR"),

		CatalogPath:    catalogPath,
		VariationsPath: variationsPath,
	}
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
