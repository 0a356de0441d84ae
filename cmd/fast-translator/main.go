// Command fast-translator translates text from the command line using the
// same dispatch-and-cache core the interactive front end uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	fasttranslator "github.com/futurediffusion/fast-translator"
	"github.com/futurediffusion/fast-translator/cache"
	"github.com/futurediffusion/fast-translator/provider"
)

// envSettings are credentials and paths read from the environment.
type envSettings struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	CachePath    string `envconfig:"FAST_TRANSLATOR_CACHE"`
	RedisURL     string `envconfig:"FAST_TRANSLATOR_REDIS"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fast-translator", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Flags
	from := fs.String("from", "", "Source language code, or 'auto' to detect (default: es)")
	to := fs.String("to", "", "Target language code (default: en)")
	backend := fs.String("provider", "gemini", "Translate backend: gemini or openai")
	model := fs.String("model", "", "Model name (backend default if empty)")
	apiKey := fs.String("api-key", "", "API key (default: GEMINI_API_KEY / OPENAI_API_KEY env)")
	cachePath := fs.String("cache", "", "Cache snapshot path (default: user cache dir)")
	noCache := fs.Bool("no-cache", false, "Disable the translation cache")
	noDetect := fs.Bool("no-detect", false, "Disable language detection and auto-swap")
	spacing := fs.Duration("spacing", 200*time.Millisecond, "Minimum spacing between provider calls")
	workers := fs.Int("workers", 4, "Worker pool size")
	history := fs.Bool("history", false, "Print cached phrases by usage count and exit")
	clearCache := fs.Bool("clear-cache", false, "Clear the cache and exit")
	showVersion := fs.Bool("version", false, "Show version")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", fasttranslator.Name, fasttranslator.FullVersion())
		if fasttranslator.BuildDate != "unknown" && fasttranslator.BuildDate != "" {
			fmt.Fprintf(stdout, "  built: %s\n", fasttranslator.BuildDate)
		}
		return nil
	}

	var env envSettings
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	log := zerolog.Nop()
	if *verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}

	// Cache setup
	var freq *cache.FrequencyCache
	if !*noCache {
		store, err := buildStore(env, *cachePath)
		if err != nil {
			return err
		}
		freq = cache.NewFrequencyCache(0, cache.WithStore(store), cache.WithLogger(log))
	}

	if *history {
		if freq == nil {
			return fmt.Errorf("--history requires the cache")
		}
		return cache.WriteHistory(stdout, freq)
	}

	if *clearCache {
		if freq == nil {
			return fmt.Errorf("--clear-cache requires the cache")
		}
		freq.Clear()
		fmt.Fprintln(stderr, "cache cleared")
		return nil
	}

	// Get input
	var text string
	if fs.NArg() > 0 {
		text = strings.Join(fs.Args(), " ")
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	client, err := buildClient(*backend, *model, *apiKey, env)
	if err != nil {
		return err
	}

	opts := []fasttranslator.Option{
		fasttranslator.WithLogger(log),
	}
	if freq != nil {
		opts = append(opts, fasttranslator.WithCache(freq))
	}
	if !*noDetect {
		opts = append(opts, fasttranslator.WithDetector(fasttranslator.NewLinguaDetector()))
	}

	d := fasttranslator.New(client, fasttranslator.Config{
		DefaultSourceLang: *from,
		DefaultTargetLang: *to,
		Workers:           *workers,
		CallSpacing:       *spacing,
	}, opts...)
	defer d.Close()

	result, err := d.Translate(context.Background(), fasttranslator.Request{
		SourceLang: *from,
		TargetLang: *to,
		Text:       text,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, result)
	return nil
}

// buildStore picks the persistence backend: Redis when configured,
// otherwise a JSON snapshot in the user cache directory.
func buildStore(env envSettings, cachePath string) (cache.Store, error) {
	if env.RedisURL != "" {
		store, err := cache.NewRedisStore(cache.RedisConfig{URL: env.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, nil
	}

	path := cachePath
	if path == "" {
		path = env.CachePath
	}
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locating cache directory: %w", err)
		}
		path = filepath.Join(dir, "fast-translator", "cache.json")
	}
	return cache.NewFileStore(path), nil
}

func buildClient(backend, model, apiKey string, env envSettings) (provider.Client, error) {
	switch backend {
	case "gemini":
		key := apiKey
		if key == "" {
			key = env.GeminiAPIKey
		}
		if key == "" {
			return nil, fmt.Errorf("Gemini API key required (--api-key or GEMINI_API_KEY env)")
		}
		return provider.NewGeminiClient(provider.GeminiConfig{APIKey: key, Model: model}), nil
	case "openai":
		key := apiKey
		if key == "" {
			key = env.OpenAIAPIKey
		}
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key required (--api-key or OPENAI_API_KEY env)")
		}
		return provider.NewOpenAIClient(provider.OpenAIConfig{APIKey: key, Model: model}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want gemini or openai)", backend)
	}
}
