// Package config reads ~/.annotaterc.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const fileName = ".annotaterc"

// GatewayAuto makes the board look for a store on the local network.
const GatewayAuto = "auto"

// Breakpoint maps layouts narrower than MaxWidth to an annotation type. A zero
// MaxWidth matches every width.
type Breakpoint struct {
	Key      string
	MaxWidth float64
}

type Config struct {
	Gateway       string
	Token         string
	Reference     string
	StoreDir      string
	Port          int
	Confirmations bool
	Breakpoints   []Breakpoint
}

func Default() *Config {
	return &Config{
		Gateway:       GatewayAuto,
		Reference:     "annotation",
		StoreDir:      "annotations",
		Port:          8888,
		Confirmations: true,
		Breakpoints: []Breakpoint{
			{Key: "normal", MaxWidth: 992},
			{Key: "wide"},
		},
	}
}

// Load reads ~/.annotaterc on top of the defaults. A missing file is not an
// error.
func Load() (*Config, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config, nil
	}
	file, err := os.Open(filepath.Join(homeDir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}
	defer file.Close()

	if err := config.parse(file, homeDir); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return config, nil
}

func (c *Config) parse(r io.Reader, homeDir string) error {
	var breakpoints []Breakpoint

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
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
		case "gateway", "endpoint":
			c.Gateway = value
		case "token", "csrf_token":
			c.Token = value
		case "reference":
			c.Reference = value
		case "store_dir", "storedir":
			if strings.HasPrefix(value, "~") && homeDir != "" {
				value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
			}
			c.StoreDir = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("line %d: invalid port %q", lineNo, value)
			}
			c.Port = port
		case "confirmations", "confirm":
			c.Confirmations = strings.ToLower(value) == "true"
		case "breakpoint":
			bp, err := parseBreakpoint(value)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			breakpoints = append(breakpoints, bp)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if len(breakpoints) > 0 {
		c.Breakpoints = sortBreakpoints(breakpoints)
	}
	return nil
}

// parseBreakpoint reads "key" or "key:maxwidth".
func parseBreakpoint(value string) (Breakpoint, error) {
	key, width, found := strings.Cut(value, ":")
	bp := Breakpoint{Key: strings.TrimSpace(key)}
	if bp.Key == "" {
		return bp, fmt.Errorf("empty breakpoint key")
	}
	if found {
		w, err := strconv.ParseFloat(strings.TrimSpace(width), 64)
		if err != nil || w < 0 {
			return bp, fmt.Errorf("invalid breakpoint width %q", width)
		}
		bp.MaxWidth = w
	}
	return bp, nil
}

// sortBreakpoints orders bounded breakpoints narrowest first and keeps the
// unbounded one, if any, last.
func sortBreakpoints(bps []Breakpoint) []Breakpoint {
	sort.SliceStable(bps, func(i, j int) bool {
		a, b := bps[i].MaxWidth, bps[j].MaxWidth
		if a == 0 || b == 0 {
			return b == 0 && a != 0
		}
		return a < b
	})
	return bps
}

// KeyForWidth returns the annotation type for a layout of the given width.
func (c *Config) KeyForWidth(width float64) string {
	for _, bp := range c.Breakpoints {
		if bp.MaxWidth == 0 || width < bp.MaxWidth {
			return bp.Key
		}
	}
	if len(c.Breakpoints) == 0 {
		return ""
	}
	return c.Breakpoints[len(c.Breakpoints)-1].Key
}
