package main

import (
	"flag"
	"log/slog"
	"os"

	"campusnav/config"
	"campusnav/mapview"
	"campusnav/mascot"
	"campusnav/models"
	"campusnav/nav"
	"campusnav/routes"
	"campusnav/storage"
	"campusnav/voice"
)

var (
	cfg      *config.Config
	logger   *slog.Logger
	logLevel = new(slog.LevelVar)
	store    storage.PlacesRepo
	narrator *voice.Narrator
	coord    *nav.Coordinator
	bridge   *mapview.Bridge
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	headless := flag.Bool("headless", false, "run the map bridge server only, no tui")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	cfg = config.LoadConfigOrDefault(*configPath)
	if *debug {
		logLevel.Set(slog.LevelDebug)
	}
	logfile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logfile = os.Stderr
	}
	logger = slog.New(slog.NewTextHandler(logfile, &slog.HandlerOptions{Level: logLevel}))

	sqlStore, err := storage.NewProviderSQL(cfg.DBPATH, logger)
	if err != nil {
		logger.Error("failed to open places db", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()
	store = sqlStore

	bridge = mapview.NewBridge()
	device := voice.NewBeepDevice(logger, cfg.TTS_LOCAL_BIN)
	narrator = voice.NewNarrator(logger, device, cfg)

	var provider routes.Provider = routes.NewClient(cfg.RouteAPI, logger)
	if cfg.RouteProvider == "google" && cfg.GoogleMapsKey != "" {
		gp, err := routes.NewGoogleProvider(cfg.GoogleMapsKey, logger)
		if err != nil {
			logger.Error("google provider unavailable, using campus backend", "error", err)
		} else {
			provider = gp
		}
	}

	coord = nav.NewCoordinator(logger, bridge, provider, narrator)

	srv := &Server{config: cfg, bridge: bridge, coord: coord}
	go srv.ListenToRequests(cfg.BridgePort)

	if *headless {
		select {}
	}

	initTUI()
	msct := mascot.New(tuiSurface{})
	narrator.SetVisual(msct)
	narrator.SetNotify(func(hint string) {
		app.QueueUpdateDraw(func() {
			statusLine.SetText(hint)
		})
	})
	coord.SetUI(tuiStatus{})
	coord.SetDirectionsObserver(renderDirections)
	coord.SetModeObserver(func(mode models.SelectionMode) {
		msct.ReactToMode(mode)
		app.QueueUpdateDraw(func() {
			updateStatusLine(speakingNow)
		})
	})

	pages.AddPage("main", flex, true, true)
	if err := app.SetRoot(pages,
		true).EnableMouse(true).EnablePaste(true).Run(); err != nil {
		logger.Error("failed to start tview app", "error", err)
		return
	}
}
