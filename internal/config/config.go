// Package config holds process configuration for rxtune. The Config is
// built once at startup and handed to every collaborator explicitly; it
// is the owner of the lazily-computed CPU feature detector.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"rxtune/internal/cpu"
	"rxtune/internal/errors"
)

// Config holds all configuration options
type Config struct {
	// Version information (set by ldflags through main)
	Version   string
	BuildTime string
	GitCommit string

	// Tuning inputs from the host
	Tune           bool  // attempt register tuning at all
	CacheQoS       bool  // request L3 cache partitioning
	HotCores       []int // core IDs running hashing threads
	ExceptionFrame bool  // install hot-loop fault recovery

	// Benchmark options
	BenchAlgo    string // "xxh3" or "blake3"
	BenchThreads int    // 0 = one per hot core, else one per CPU
	BenchSeconds int

	// Output options
	NoColor   bool
	Debug     bool
	LogLevel  string
	LogFormat string

	// CPU detection, shared by all commands
	CPUDetector *cpu.Detector
}

// New creates a configuration with environment-driven defaults
func New() *Config {
	return &Config{
		Tune:           getEnvBool("RXTUNE_MSR", true),
		CacheQoS:       getEnvBool("RXTUNE_CACHE_QOS", true),
		HotCores:       ParseCoreList(getEnvString("RXTUNE_HOT_CORES", "")),
		ExceptionFrame: getEnvBool("RXTUNE_EXCEPTION_FRAME", true),

		BenchAlgo:    getEnvString("RXTUNE_BENCH_ALGO", "xxh3"),
		BenchThreads: getEnvInt("RXTUNE_BENCH_THREADS", 0),
		BenchSeconds: getEnvInt("RXTUNE_BENCH_SECONDS", 10),

		NoColor:   getEnvBool("NO_COLOR", false),
		Debug:     getEnvBool("DEBUG", false),
		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "text"),

		CPUDetector: cpu.NewDetector(),
	}
}

// Validate checks collaborator-supplied inputs
func (c *Config) Validate() error {
	cores := cpu.LogicalCores()
	for _, id := range c.HotCores {
		if id < 0 || id >= cores {
			return errors.NewConfigError(errors.ErrCodeInvalidCores,
				fmt.Sprintf("Hot core %d is out of range (host has cores 0..%d)", id, cores-1),
				"Pass --hot-cores with core IDs that exist on this host, e.g. --hot-cores 0-3")
		}
	}
	switch c.BenchAlgo {
	case "", "xxh3", "blake3":
	default:
		return errors.NewConfigError(errors.ErrCodeInvalidOption,
			fmt.Sprintf("Unknown benchmark algorithm %q", c.BenchAlgo),
			"Supported algorithms: xxh3, blake3")
	}
	return nil
}

// ParseCoreList parses "0-3,5,7-9" into [0,1,2,3,5,7,8,9]
func ParseCoreList(s string) []int {
	var result []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			lo, err1 := strconv.Atoi(bounds[0])
			hi, err2 := strconv.Atoi(bounds[1])
			if err1 == nil && err2 == nil {
				for i := lo; i <= hi; i++ {
					result = append(result, i)
				}
			}
		} else {
			if v, err := strconv.Atoi(part); err == nil {
				result = append(result, v)
			}
		}
	}
	return result
}

// FormatCoreList renders a core list back to the compact "0-3,5" form
func FormatCoreList(cores []int) string {
	if len(cores) == 0 {
		return "none"
	}
	var sb strings.Builder
	for i := 0; i < len(cores); {
		j := i
		for j+1 < len(cores) && cores[j+1] == cores[j]+1 {
			j++
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		if j > i {
			fmt.Fprintf(&sb, "%d-%d", cores[i], cores[j])
		} else {
			fmt.Fprintf(&sb, "%d", cores[i])
		}
		i = j + 1
	}
	return sb.String()
}

// Environment helpers

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}
