package mapcanvas

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the user-tunable settings read from ~/.mapeditrc. Engine
// thresholds not listed here are package constants on purpose; these are
// the knobs the host editor exposes.
type Config struct {
	SaveDirectory string
	MinScale      float64
	MaxScale      float64
	SnapThreshold float64
	FPS           int
	Confirmations bool
}

// LoadConfig reads ~/.mapeditrc (key = value, # comments). Missing file or
// unreadable entries fall back to defaults.
func LoadConfig() *Config {
	config := &Config{
		MinScale:      defaultMinScale,
		MaxScale:      defaultMaxScale,
		SnapThreshold: snapThreshold,
		FPS:           60,
		Confirmations: true,
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config
	}

	configPath := filepath.Join(homeDir, ".mapeditrc")
	file, err := os.Open(configPath)
	if err != nil {
		return config
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "savedirectory", "save_directory", "savedir":
			if strings.HasPrefix(value, "~") {
				value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
			}
			if !filepath.IsAbs(value) {
				if absPath, err := filepath.Abs(value); err == nil {
					value = absPath
				}
			}
			config.SaveDirectory = value
		case "minscale", "min_scale":
			if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
				config.MinScale = v
			}
		case "maxscale", "max_scale":
			if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
				config.MaxScale = v
			}
		case "snapthreshold", "snap_threshold", "snap":
			if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
				config.SnapThreshold = v
			}
		case "fps":
			if v, err := strconv.Atoi(value); err == nil && v >= 1 && v <= 240 {
				config.FPS = v
			}
		case "confirmations", "confirm":
			config.Confirmations = strings.ToLower(value) == "true"
		}
	}

	return config
}

// GetSavePath resolves a filename against the configured save directory.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

// Apply pushes the tunables onto the engine's services.
func (c *Config) Apply(vp *Viewport, snap *SnapService) {
	if vp != nil {
		if c.MinScale > 0 {
			vp.MinScale = c.MinScale
		}
		if c.MaxScale >= vp.MinScale {
			vp.MaxScale = c.MaxScale
		}
	}
	if snap != nil {
		snap.SetThreshold(c.SnapThreshold)
	}
}
