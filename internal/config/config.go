package config

import "os"

type Config struct {
	HTTPAddr             string
	MongoURI             string
	MongoDB              string
	JWTSecret            string
	AirtableClientID     string
	AirtableClientSecret string
	AirtableRedirectURI  string
	BackendURL           string
	FrontendURL          string
	GelfAddr             string
	RedisAddr            string
	RemoteTimeoutSeconds int
}

func Load() *Config {
	return &Config{
		HTTPAddr:             getEnv("FB_ADDR", ":5000"),
		MongoURI:             getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:              getEnv("MONGODB_DB", "formbridge"),
		JWTSecret:            getEnv("JWT_SECRET", "formbridge-dev-secret-change-me"),
		AirtableClientID:     getEnv("AIRTABLE_CLIENT_ID", ""),
		AirtableClientSecret: getEnv("AIRTABLE_CLIENT_SECRET", ""),
		AirtableRedirectURI:  getEnv("AIRTABLE_REDIRECT_URI", ""),
		BackendURL:           getEnv("BACKEND_URL", "http://localhost:5000"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		GelfAddr:             getEnv("GELF_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RemoteTimeoutSeconds: getEnvInt("FB_REMOTE_TIMEOUT", 15),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}
