// Package bank retrieves raw question banks from files, URLs or the
// fixtures built into the binary.
package bank

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/quizdrill/internal/model"
)

// BuiltinPrefix marks a location served from the embedded fixtures.
const BuiltinPrefix = "builtin:"

//go:embed fixtures/*
var fixtureFS embed.FS

// ErrLoadFailure matches any *LoadError.
var ErrLoadFailure = errors.New("question bank load failed")

// LoadError reports a bank that could not be fetched or decoded.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load question bank %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoadFailure) succeed.
func (e *LoadError) Is(target error) bool { return target == ErrLoadFailure }

// Bank is a decoded question bank.
type Bank struct {
	Source    string
	Digest    string // hex SHA-256 of the payload
	Questions []model.RawQuestion
}

// Resolve picks the bank location for cfg. An explicit bank wins over the
// variant.
func Resolve(cfg model.QuizConfig) (string, error) {
	if cfg.Bank != "" {
		return cfg.Bank, nil
	}
	switch cfg.Variant {
	case model.VariantStandard, "":
		if cfg.BankStandard == "" {
			return BuiltinPrefix + string(model.VariantStandard), nil
		}
		return cfg.BankStandard, nil
	case model.VariantExtended:
		if cfg.BankExtended == "" {
			return BuiltinPrefix + string(model.VariantExtended), nil
		}
		return cfg.BankExtended, nil
	}
	return "", &LoadError{Source: string(cfg.Variant), Err: fmt.Errorf("unknown bank variant %q", cfg.Variant)}
}

// Loader fetches banks. The zero value uses http.DefaultClient.
type Loader struct {
	Client *http.Client
}

// Load retrieves and decodes the bank at location. Every failure is a
// *LoadError.
func (l *Loader) Load(ctx context.Context, location string) (*Bank, error) {
	data, name, err := l.fetch(ctx, location)
	if err != nil {
		return nil, &LoadError{Source: location, Err: err}
	}

	b, err := parse(location, name, data)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded question bank", "source", location, "count", len(b.Questions), "digest", b.Digest[:12])
	return b, nil
}

// Parse decodes an in-memory bank payload, such as an uploaded file. The
// extension of name selects the format.
func Parse(name string, data []byte) (*Bank, error) {
	return parse(name, name, data)
}

func parse(location, name string, data []byte) (*Bank, error) {
	questions, err := decode(data, name)
	if err != nil {
		return nil, &LoadError{Source: location, Err: err}
	}
	return &Bank{
		Source:    location,
		Digest:    sha256sum(data),
		Questions: questions,
	}, nil
}

// Load retrieves a bank with the default Loader.
func Load(ctx context.Context, location string) (*Bank, error) {
	var l Loader
	return l.Load(ctx, location)
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(location, BuiltinPrefix):
		return readFixture(strings.TrimPrefix(location, BuiltinPrefix))
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		data, err := l.fetchURL(ctx, location)
		return data, location, err
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", location, err)
	}
	return data, location, nil
}

func (l *Loader) fetchURL(ctx context.Context, url string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func readFixture(name string) ([]byte, string, error) {
	entries, err := fixtureFS.ReadDir("fixtures")
	if err != nil {
		return nil, "", fmt.Errorf("read fixtures: %w", err)
	}
	for _, e := range entries {
		if strings.TrimSuffix(e.Name(), path.Ext(e.Name())) != name {
			continue
		}
		data, err := fixtureFS.ReadFile("fixtures/" + e.Name())
		if err != nil {
			return nil, "", fmt.Errorf("read fixture %s: %w", e.Name(), err)
		}
		return data, e.Name(), nil
	}
	return nil, "", fmt.Errorf("no builtin bank named %q", name)
}

// Builtins lists the names of the embedded banks.
func Builtins() []string {
	entries, _ := fixtureFS.ReadDir("fixtures")
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	return names
}

func decode(data []byte, name string) ([]model.RawQuestion, error) {
	var questions []model.RawQuestion
	switch strings.ToLower(path.Ext(stripQuery(name))) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &questions); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&questions); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	}
	return questions, nil
}

func stripQuery(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		return name[:i]
	}
	return name
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
