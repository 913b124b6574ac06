package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go_jotto_server/game"
	"go_jotto_server/solo"
)

// Config is read once at startup from the environment (and .env if present).
type Config struct {
	Port             string
	AllowedOrigins   []string
	WordsFile        string
	RoomCodeLength   int
	KafkaBroker      string
	KafkaTopicPrefix string
	RateLimit        float64
	RateBurst        int
	PingInterval     time.Duration
	PongWait         time.Duration
	TLSCertFile      string
	TLSKeyFile       string
	LogLevel         string
	LogFormat        string
	SoloMaxGuesses   int
}

func loadConfig() Config {
	_ = godotenv.Load()
	return Config{
		Port:             getEnv("PORT", "3002"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "*")),
		WordsFile:        getEnv("WORDS_FILE", "five_letter_words.txt"),
		RoomCodeLength:   getEnvInt("ROOM_CODE_LENGTH", game.DefaultCodeLength),
		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "jotto-"),
		RateLimit:        getEnvFloat("RATE_LIMIT", 5),
		RateBurst:        getEnvInt("RATE_BURST", 10),
		PingInterval:     getEnvDuration("PING_INTERVAL", 30*time.Second),
		PongWait:         getEnvDuration("PONG_WAIT", 60*time.Second),
		TLSCertFile:      os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:       os.Getenv("TLS_KEY_FILE"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		SoloMaxGuesses:   getEnvInt("SOLO_MAX_GUESSES", solo.DefaultMaxGuesses),
	}
}

func (c Config) TLS() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// setupLogging configures the global zerolog logger.
func setupLogging(c Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "console") {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}
