package config

import "os"

// Config holds all server configuration, loaded from the environment.
type Config struct {
	MongoURI        string
	RedisAddr       string
	HTTPPort        string
	QuestionsFile   string
	TieBreakersFile string
	HostUsername    string
	HostPassword    string
	JWTSecret       string
}

func Load() *Config {
	return &Config{
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:        getEnv("PORT", "8080"),
		QuestionsFile:   getEnv("QUESTIONS_FILE", "./data/questions.json"),
		TieBreakersFile: getEnv("TIEBREAKERS_FILE", "./data/tiebreakers.json"),
		HostUsername:    getEnv("HOST_USERNAME", "admin"),
		HostPassword:    getEnv("HOST_PASSWORD", "admin"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
