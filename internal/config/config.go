package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	LogLevel    string
	Debug       bool
	ServiceName string
	Environment string

	// WhatsApp Cloud API
	WhatsAppToken string
	PhoneNumberID string
	VerifyToken   string
	AppSecret     string

	// Protects /api/whatsapp/send and /api/analytics/*
	BasicToken string

	// AI fallback
	AIProvider    string
	GeminiAPIKeys []string
	AIModel       string

	// Lead store
	LeadsDSN        string
	TrackingEnabled bool
	WorkerCount     int
}

func LoadConfig() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	verifyToken := os.Getenv("META_VERIFY_TOKEN")
	if verifyToken == "" {
		// Insecure default, only meant for local bring-up.
		verifyToken = "pmx-verify-123"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "botpmx-backend"
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	aiModel := os.Getenv("AI_MODEL")
	if aiModel == "" {
		aiModel = "gemini-1.5-flash"
	}

	// GEMINI_API_KEY accepts a comma-separated list so requests can be
	// rotated across several keys.
	var geminiAPIKeys []string
	for _, key := range strings.Split(os.Getenv("GEMINI_API_KEY"), ",") {
		if key = strings.TrimSpace(key); key != "" {
			geminiAPIKeys = append(geminiAPIKeys, key)
		}
	}

	leadsDSN := os.Getenv("LEADS_DSN")
	if leadsDSN == "" {
		leadsDSN = "data.json"
	}

	trackingEnabled := true
	if te := os.Getenv("TRACKING_ENABLED"); te != "" {
		if parsed, err := strconv.ParseBool(te); err == nil {
			trackingEnabled = parsed
		}
	}

	workerCount := 4
	if wc := os.Getenv("WORKER_COUNT"); wc != "" {
		if parsed, err := strconv.Atoi(wc); err == nil && parsed > 0 {
			workerCount = parsed
		}
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		Debug:           os.Getenv("DEBUG") == "true",
		ServiceName:     serviceName,
		Environment:     environment,
		WhatsAppToken:   os.Getenv("WHATSAPP_TOKEN"),
		PhoneNumberID:   os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		VerifyToken:     verifyToken,
		AppSecret:       os.Getenv("META_APP_SECRET"),
		BasicToken:      os.Getenv("BASIC_TOKEN"),
		AIProvider:      strings.ToLower(os.Getenv("AI_PROVIDER")),
		GeminiAPIKeys:   geminiAPIKeys,
		AIModel:         aiModel,
		LeadsDSN:        leadsDSN,
		TrackingEnabled: trackingEnabled,
		WorkerCount:     workerCount,
	}, nil
}
