package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/atotto/clipboard"

	"AnnotateBoard/internal/config"
	annotatenet "AnnotateBoard/internal/net"
	"AnnotateBoard/internal/ui"
)

const discoverTimeout = 3 * time.Second

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  annotate <image>   annotate a page image")
	fmt.Fprintln(os.Stderr, "  annotate serve     run an annotation store")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	args := os.Args
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	if args[1] == "serve" {
		runStore(cfg)
		return
	}
	runBoard(cfg, args[1])
}

func runStore(cfg *config.Config) {
	log.Println("Starting as STORE")
	store, err := annotatenet.NewStore(cfg.StoreDir, cfg.Reference, cfg.Token)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	advert, err := annotatenet.Advertise(cfg.Port)
	if err != nil {
		log.Printf("[MDNS] Not advertising: %v", err)
	} else {
		defer advert.Close()
	}

	shareURL := annotatenet.ShareURL(cfg.Port)
	log.Printf("Store listening on port %d, share %s", cfg.Port, shareURL)
	if err := clipboard.WriteAll(shareURL); err == nil {
		log.Println("Share URL copied to clipboard")
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: store.Handler(),
	}
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt)
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("[STORE] Shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func runBoard(cfg *config.Config, path string) {
	log.Println("Starting as BOARD")
	doc, err := ui.OpenDocument(path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", path, err)
	}

	endpoint := cfg.Gateway
	if endpoint == config.GatewayAuto {
		endpoint, err = annotatenet.Discover(discoverTimeout)
		if err != nil {
			log.Printf("[MDNS] %v, saving and loading disabled", err)
			endpoint = ""
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var gw annotatenet.Gateway
	liveURL := ""
	if endpoint != "" {
		gw = annotatenet.NewHTTPGateway(endpoint, cfg.Token)
		if liveURL, err = annotatenet.LiveURL(endpoint); err != nil {
			log.Printf("[LIVE] %v", err)
			liveURL = ""
		}
	}
	ui.RunApp(ctx, cfg, gw, doc, liveURL)
}
