package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/milk9111/quadcollide/metrics"
)

func main() {
	configPath := flag.String("config", "", "collision config (yaml); embedded default when empty")
	scriptPath := flag.String("script", "", "coin contact script (tengo); embedded default when empty")
	metricsAddr := flag.String("metrics", "", "serve prometheus metrics on this address, e.g. :9100")
	debug := flag.Bool("debug", false, "log ignored proxy handles")
	flag.Parse()

	logger := log.New(os.Stderr, "sandbox: ", log.LstdFlags)

	var collector *metrics.Collector
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector = metrics.New(reg)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(reg))
			logger.Printf("metrics on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Printf("metrics server: %v", err)
			}
		}()
	}

	game, err := NewGame(Options{
		ConfigPath: *configPath,
		ScriptPath: *scriptPath,
		Debug:      *debug,
		Metrics:    collector,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal(err)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(int(game.width), int(game.height))
	ebiten.SetWindowTitle("quadcollide sandbox")

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal(err)
	}
}
