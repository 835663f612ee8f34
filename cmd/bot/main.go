package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Nikhil1914/EMA-BOT/internal/broker/fyers"
	"github.com/Nikhil1914/EMA-BOT/internal/config"
	"github.com/Nikhil1914/EMA-BOT/internal/engine"
	"github.com/Nikhil1914/EMA-BOT/internal/feed"
	"github.com/Nikhil1914/EMA-BOT/internal/logger"
	"github.com/Nikhil1914/EMA-BOT/internal/server"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Runtime.Log.Level,
		Format:     cfg.Runtime.Log.Format,
		Output:     cfg.Runtime.Log.File,
		MaxSize:    cfg.Runtime.Log.MaxSize,
		MaxBackups: cfg.Runtime.Log.MaxBackups,
		MaxAge:     cfg.Runtime.Log.MaxAge,
		Compress:   cfg.Runtime.Log.Compress,
	})

	log.Info("bot started")

	token, err := fyers.LoadAccessToken(cfg.Broker.AccessTokenFile)
	if err != nil {
		log.WithError(err).Fatal("failed to load access token")
	}

	client := fyers.New(cfg.Broker.BaseUrl, cfg.Broker.ClientID, token, log)

	feedURL := cfg.Broker.WSUrl + "?access_token=" + cfg.Broker.ClientID + ":" + token
	reconnectDelay := time.Duration(cfg.Session.ReconnectDelaySec) * time.Second
	newSession := func(instrument string, handler func(price float64, at time.Time)) engine.Session {
		return feed.New(feedURL, instrument, reconnectDelay, log, feed.Handler(handler))
	}

	eng, err := engine.New(cfg.Session, client, newSession, fyers.MapLiveSymbol, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build engine")
	}

	srv := server.New(eng, cfg.Strategy, log)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: srv.Router(),
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("control server failed")
		}
	}()
	log.WithFields(map[string]interface{}{"listen": cfg.Server.Listen}).Info("control server listening")

	<-sigCh

	eng.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)

	log.Info("bot stopped")
}
