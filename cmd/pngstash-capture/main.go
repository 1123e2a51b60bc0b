package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kbinani/screenshot"

	"pngstash/internal/pngstash/ops"
	pngfile "pngstash/internal/pngstash/png"
)

// Config holds capture configuration
type Config struct {
	Dir       string
	ServerURL string
	Interval  time.Duration
	Display   int
	UserID    string
	ChunkType string
	Once      bool
}

// tag is the metadata embedded in each captured file.
type tag struct {
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Display   int    `json:"display"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

func main() {
	// Parse flags
	dir := flag.String("dir", getEnv("PNGSTASH_DIR", "captures"), "Directory for captured files")
	serverURL := flag.String("server", getEnv("PNGSTASH_URL", ""), "pngstashd URL; when set the daemon embeds the tag")
	interval := flag.Duration("interval", 30*time.Second, "Capture interval")
	display := flag.Int("display", 0, "Display number to capture")
	userID := flag.String("user", getEnv("USER", "unknown"), "User identifier")
	chunkType := flag.String("type", "stSh", "Chunk type for the embedded tag")
	once := flag.Bool("once", false, "Capture a single frame and exit")
	flag.Parse()

	config := Config{
		Dir:       *dir,
		ServerURL: *serverURL,
		Interval:  *interval,
		Display:   *display,
		UserID:    *userID,
		ChunkType: *chunkType,
		Once:      *once,
	}

	// Check display count
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		log.Fatal("No active displays found")
	}
	if config.Display >= n {
		log.Fatalf("Display %d not available (only %d displays)", config.Display, n)
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		log.Fatalf("Creating capture directory: %v", err)
	}

	if config.Once {
		if err := captureAndTag(config); err != nil {
			log.Fatalf("Capture error: %v", err)
		}
		return
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()

	log.Printf("pngstash-capture started (interval=%v, user=%s, display=%d)", config.Interval, config.UserID, config.Display)
	log.Printf("Writing to: %s", config.Dir)
	if config.ServerURL != "" {
		log.Printf("Tagging via: %s", config.ServerURL)
	}

	// Capture immediately on start
	if err := captureAndTag(config); err != nil {
		log.Printf("Initial capture error: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := captureAndTag(config); err != nil {
				log.Printf("Capture error: %v", err)
			}
		case <-stop:
			log.Println("Shutting down...")
			return
		}
	}
}

func captureAndTag(config Config) error {
	// Capture screenshot
	bounds := screenshot.GetDisplayBounds(config.Display)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	// Encode to PNG
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}

	now := time.Now()
	meta, err := json.Marshal(tag{
		User:      config.UserID,
		Timestamp: now.Format(time.RFC3339),
		Display:   config.Display,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	})
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	var tagged []byte
	if config.ServerURL != "" {
		tagged, err = embedViaServer(config, buf.Bytes(), string(meta))
	} else {
		tagged, err = embedLocal(config, buf.Bytes(), string(meta))
	}
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s_%d.png", config.UserID, now.UnixNano())
	path := filepath.Join(config.Dir, name)
	if err := os.WriteFile(path, tagged, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	log.Printf("Captured: %s (%dx%d, %d bytes)", path, bounds.Dx(), bounds.Dy(), buf.Len())
	return nil
}

// embedLocal re-parses the capture with our own container and embeds
// the tag chunk in process.
func embedLocal(config Config, raw []byte, meta string) ([]byte, error) {
	p, err := pngfile.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing capture: %w", err)
	}
	if _, err := ops.Encode(p, config.ChunkType, meta); err != nil {
		return nil, fmt.Errorf("embedding tag: %w", err)
	}
	return p.Bytes(), nil
}

// embedViaServer POSTs the capture to pngstashd and returns the tagged
// PNG from the response.
func embedViaServer(config Config, raw []byte, meta string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{
		"png":        base64.StdEncoding.EncodeToString(raw),
		"chunk_type": config.ChunkType,
		"message":    meta,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal failed: %w", err)
	}

	resp, err := http.Post(
		config.ServerURL+"/api/encode",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pngstashd returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var encResp struct {
		PNG string `json:"png"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&encResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	tagged, err := base64.StdEncoding.DecodeString(encResp.PNG)
	if err != nil {
		return nil, fmt.Errorf("decoding png: %w", err)
	}
	return tagged, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
