package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nandita/sightline/internal/app"
	"github.com/nandita/sightline/internal/config"
	"github.com/nandita/sightline/internal/server"
	"github.com/nandita/sightline/internal/store"
	"github.com/nandita/sightline/internal/tray"
)

func main() {
	fmt.Println("Sightline - Vision Assistant")

	_ = godotenv.Load()

	var (
		addrFlag   = flag.String("addr", "", "listen address (overrides SIGHTLINE_ADDR)")
		dbFlag     = flag.String("db", "", "database path (overrides SIGHTLINE_DB)")
		tuningFlag = flag.String("tuning", "", "tuning file path (overrides SIGHTLINE_TUNING)")
	)
	flag.Parse()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".sightline")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = envOr("SIGHTLINE_DB", filepath.Join(dataDir, "sightline.db"))
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	tuningPath := *tuningFlag
	if tuningPath == "" {
		tuningPath = os.Getenv("SIGHTLINE_TUNING")
	}
	var tuning *config.Tuning
	if tuningPath != "" {
		tuning, err = config.Load(tuningPath)
		if err != nil {
			log.Fatalf("Failed to load tuning file: %v", err)
		}
		fmt.Printf("Loaded tuning from: %s\n", tuningPath)
	}

	// Overrides saved from earlier /api/params updates win over the file.
	if saved, err := st.Settings().Get(store.SettingTuning); err == nil {
		var overrides config.Tuning
		if err := json.Unmarshal([]byte(saved), &overrides); err != nil {
			log.Printf("Ignoring saved tuning overrides: %v", err)
		} else if err := overrides.Validate(); err != nil {
			log.Printf("Ignoring saved tuning overrides: %v", err)
		} else if tuning == nil {
			tuning = &overrides
		} else {
			tuning.Merge(&overrides)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to load saved tuning: %v", err)
	}

	application := app.New(app.Config{
		Store:       st,
		Tuning:      tuning,
		PluginDir:   envOr("SIGHTLINE_PLUGINS", filepath.Join(dataDir, "plugins")),
		DepthDir:    os.Getenv("SIGHTLINE_DEPTH"),
		ModelDir:    envOr("SIGHTLINE_MODELS", filepath.Join(dataDir, "models")),
		OCRLanguage: os.Getenv("SIGHTLINE_OCR_LANG"),
	})
	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	// The assistant is live from the first frame; the tray starts on the
	// matching enabled state.
	application.SetEnabled(true)
	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer application.Stop()

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       application,
	})

	addr := *addrFlag
	if addr == "" {
		addr = envOr("SIGHTLINE_ADDR", ":8080")
	}
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// The tray owns the main goroutine; quitting it shuts everything down.
	tr := tray.New()
	tr.SetEnabled(application.IsEnabled())
	tr.OnToggle(func(enabled bool) {
		application.SetEnabled(enabled)
	})
	tr.OnMode(func(name string) {
		mode, err := app.ParseMode(name)
		if err != nil {
			log.Printf("Unknown mode from tray: %v", err)
			return
		}
		application.SetMode(mode)
	})
	settingsURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		settingsURL = "http://localhost" + addr
	}
	tr.OnSettings(func() {
		if err := openBrowser(settingsURL); err != nil {
			log.Printf("Failed to open settings: %v", err)
		}
	})
	tr.OnQuit(func() {
		application.Stop()
	})

	go func() {
		results, cancel := application.Subscribe()
		defer cancel()
		for res := range results {
			switch {
			case res.Directive != "":
				tr.SetLastAnnouncement(res.Directive)
			case len(res.Labels) > 0:
				tr.SetLastAnnouncement(res.Labels[0])
			case res.Text != "":
				tr.SetLastAnnouncement(res.Text)
			}
		}
	}()

	tr.Run()
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// envOr returns the environment variable value, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.sightline/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".sightline", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
