package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	wastescanner "github.com/menta2k/waste-scanner"
	"github.com/menta2k/waste-scanner/internal/config"
	"github.com/menta2k/waste-scanner/internal/utils"
	"github.com/menta2k/waste-scanner/pkg/capture"
	"github.com/menta2k/waste-scanner/pkg/capture/webcam"
	"github.com/menta2k/waste-scanner/pkg/livescan"
	"github.com/menta2k/waste-scanner/pkg/mapper"
	"github.com/menta2k/waste-scanner/pkg/model"
	"github.com/menta2k/waste-scanner/pkg/types"
)

func main() {
	var in, modelName, backend, url, rulesFile, configFile string
	var live bool
	var deviceID int
	var interval time.Duration
	var threshold float64

	flag.StringVar(&in, "in", "", "input image path (jpg/png/webp)")
	flag.BoolVar(&live, "live", false, "scan continuously from the webcam")
	flag.IntVar(&deviceID, "device", -1, "camera device ID for live mode")
	flag.StringVar(&modelName, "model", "", "vision model name")
	flag.StringVar(&backend, "backend", "", "backend to use: ollama or llamacpp")
	flag.StringVar(&url, "url", "", "server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&rulesFile, "rules", "", "YAML rule table (defaults to the built-in table)")
	flag.StringVar(&configFile, "config", "", "JSON config file (flags override it)")
	flag.DurationVar(&interval, "interval", 0, "live-scan sampling interval (e.g. 800ms)")
	flag.Float64Var(&threshold, "threshold", -1, "live-scan confidence threshold (0-1)")
	flag.Parse()

	if in == "" && !live {
		log.Fatalf("usage: %s -in input.jpg | -live [-backend ollama|llamacpp] [-model name] [-url server_url] [-rules rules.yaml]", filepath.Base(os.Args[0]))
	}

	cfg := loadConfig(configFile)
	if backend != "" {
		cfg.Model.Backend = backend
	}
	if modelName != "" {
		cfg.Model.Name = modelName
	}
	if url != "" {
		cfg.Model.URL = url
	}
	if rulesFile != "" {
		cfg.Mapper.RulesFile = rulesFile
	}
	if deviceID >= 0 {
		cfg.LiveScan.DeviceID = deviceID
	}
	if interval > 0 {
		cfg.LiveScan.IntervalMS = int(interval.Milliseconds())
	}
	if threshold >= 0 {
		cfg.LiveScan.MinConfidence = threshold
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	rules := mapper.DefaultRules()
	if cfg.Mapper.RulesFile != "" {
		var err error
		rules, err = mapper.LoadRules(cfg.Mapper.RulesFile)
		if err != nil {
			log.Fatalf("failed to load rules: %v", err)
		}
	}

	scanner, err := wastescanner.NewWithRules(loaderFor(cfg), rules)
	if err != nil {
		log.Fatalf("failed to create scanner: %v", err)
	}

	if live {
		runLive(scanner, cfg)
		return
	}

	runSingleShot(scanner, in)
}

// loaderFor picks the classifier backend from the configuration.
func loaderFor(cfg *config.Config) model.Loader {
	switch cfg.Model.Backend {
	case "llamacpp":
		if cfg.Model.URL == "" {
			cfg.Model.URL = "http://localhost:8080"
		}
		return wastescanner.LlamaCppLoader(cfg.Model.URL, cfg.Model.Name)
	default:
		if cfg.Model.URL == "" {
			cfg.Model.URL = "http://localhost:11434"
		}
		return wastescanner.OllamaLoader(cfg.Model.URL, cfg.Model.Name)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Load()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func runSingleShot(scanner *wastescanner.Scanner, in string) {
	if !utils.FileExists(in) {
		log.Fatalf("input file not found: %s", in)
	}
	if !utils.IsImageFile(in) {
		log.Fatalf("input does not look like an image: %s", in)
	}

	result, err := scanner.ClassifyFile(context.Background(), in)
	if err != nil {
		log.Fatalf("classification failed: %v", err)
	}

	js, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(js))
}

func runLive(scanner *wastescanner.Scanner, cfg *config.Config) {
	sink := func(result types.ClassificationResult) {
		log.Printf("%s  %q  conf=%.2f  %s",
			result.Category, result.Label, result.Confidence, result.DisposalInstructions)
	}

	scheduler := scanner.NewLiveScanner(webcam.New(), sink, livescan.Config{
		Interval:      time.Duration(cfg.LiveScan.IntervalMS) * time.Millisecond,
		MinConfidence: cfg.LiveScan.MinConfidence,
		Constraints: capture.Constraints{
			DeviceID: cfg.LiveScan.DeviceID,
			Width:    cfg.LiveScan.Width,
			Height:   cfg.LiveScan.Height,
		},
		OnError: func(err error) {
			log.Printf("frame skipped: %v", err)
		},
	})

	if err := scheduler.Start(context.Background()); err != nil {
		log.Fatalf("failed to start live scan: %v", err)
	}
	log.Printf("scanning on camera %d, press Ctrl+C to stop", cfg.LiveScan.DeviceID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := scheduler.Stop(); err != nil {
		log.Printf("stop error: %v", err)
	}
	log.Println("stopped")
}
