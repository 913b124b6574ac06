package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"go_jotto_server/events"
	"go_jotto_server/game"
	"go_jotto_server/solo"
	"go_jotto_server/words"
)

func main() {
	cfg := loadConfig()
	setupLogging(cfg)

	dict := words.Load(cfg.WordsFile)
	log.Info().Int("words", dict.Len()).Str("file", cfg.WordsFile).Msg("dictionary loaded")

	registry := game.NewRegistry(dict, game.RandomCodes(cfg.RoomCodeLength))

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaBroker != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopicPrefix)
		log.Info().Str("broker", cfg.KafkaBroker).Msg("publishing room transcripts to kafka")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := NewHub(registry, publisher)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	practice := solo.NewHandler(solo.NewMemoryStore(), dict, cfg.SoloMaxGuesses)
	srv := NewServer(cfg, hub, registry, practice)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Bool("tls", cfg.TLS()).Msg("server is running")
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Hijacked websocket connections are not tracked by Shutdown; stopping
	// the hub closes them.
	stopHub()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	publisher.Shutdown()
}
