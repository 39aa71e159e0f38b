package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"inkwell/lineage/internal/config"
	"inkwell/lineage/internal/db"
	"inkwell/lineage/internal/lineage"
	"inkwell/lineage/internal/storage"
	"inkwell/lineage/internal/storage/bbolt"
)

var (
	dbPath      string
	backendFlag string
	docName     string
)

var rootCmd = &cobra.Command{
	Use:           "lineage",
	Short:         "Branching version history for documents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the lineage database (default: discover .lineage.db)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: sqlite or bbolt (default from LINEAGE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&docName, "doc", "", "Document name; selects a separate history in the same database")
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if backendFlag != "" {
		cfg.Backend = strings.ToLower(backendFlag)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func defaultFileName(backend string) string {
	if backend == "bbolt" {
		return ".lineage.bolt"
	}
	return ".lineage.db"
}

// DiscoverDB finds the database path using priority: flag/env > walk-up > new file in CWD
func DiscoverDB(cfg config.Config) (string, error) {
	// 1. Flag or LINEAGE_DB
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}

	name := defaultFileName(cfg.Backend)

	// 2. Walk up from CWD
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	start := dir
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// 3. Create next to the caller
	return filepath.Join(start, name), nil
}

// openKV opens the configured storage backend
func openKV(cfg config.Config) (storage.KV, error) {
	path, err := DiscoverDB(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Backend == "bbolt" {
		store, err := bbolt.Open(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	d, err := db.OpenDB(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// OpenStore opens storage and loads the selected document's history. The
// returned close func releases both.
func OpenStore(ctx context.Context) (*lineage.Store, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	kv, err := openKV(cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	store := lineage.New(kv, lineage.Options{
		Namespace: cfg.DocumentNamespace(docName),
		Logger:    logger,
	})
	if err := store.Load(ctx); err != nil {
		// refuse to run against unreadable history; the next write would replace it
		kv.Close()
		return nil, nil, err
	}
	return store, func() {
		store.Close()
		kv.Close()
	}, nil
}

// checkPersisted turns a silent persistence failure into a command error
func checkPersisted(store *lineage.Store) error {
	if err := store.PersistErr(); err != nil {
		return fmt.Errorf("change was not saved: %w", err)
	}
	return nil
}

// ResolveEvent finds an event by full ID, "vN" version, or unique ID prefix (>= 4 chars)
func ResolveEvent(store *lineage.Store, reference string) (lineage.Event, error) {
	// 1. Exact ID match
	if e, ok := store.GetByID(reference); ok {
		return e, nil
	}

	// 2. Version syntax
	if v, ok := strings.CutPrefix(reference, "v"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			if e, ok := store.GetByVersion(n); ok {
				return e, nil
			}
			return lineage.Event{}, fmt.Errorf("no event with version %d", n)
		}
	}

	// 3. ID prefix match
	if len(reference) >= 4 {
		var matches []lineage.Event
		for _, e := range store.Events() {
			if strings.HasPrefix(e.ID, reference) {
				matches = append(matches, e)
			}
		}
		switch len(matches) {
		case 1:
			return matches[0], nil
		case 0:
			// fall through to not found
		default:
			lines := make([]string, len(matches))
			for i, m := range matches {
				lines[i] = fmt.Sprintf("  %s v%d %s", truncID(m.ID), m.Version, m.Summary)
			}
			return lineage.Event{}, fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a full event ID instead.",
				reference, len(matches), strings.Join(lines, "\n"))
		}
	}

	return lineage.Event{}, fmt.Errorf("event not found: %s", reference)
}

// readContent returns the file's contents, or all of in when path is empty
func readContent(path string, in io.Reader) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func truncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Find a safe UTF-8 boundary
	truncated := s[:max]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "..."
}
