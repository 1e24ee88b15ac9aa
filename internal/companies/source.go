package companies

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// ErrUnavailable wraps every failure to obtain the dataset document.
var ErrUnavailable = errors.New("companies: data source unavailable")

// Format names the encoding of a dataset document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Source supplies the raw dataset document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, Format, error)
}

// FileSource reads the dataset from a local file. JSON files may carry
// comments and trailing commas.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context) ([]byte, Format, error) {
	if strings.TrimSpace(s.Path) == "" {
		return nil, "", errors.New("companies: file path required")
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, "", err
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		return raw, FormatYAML, nil
	default:
		return raw, FormatJSON, nil
	}
}

// DefaultMaxDocumentBytes caps a downloaded dataset document.
const DefaultMaxDocumentBytes = 16 << 20

// ErrDocumentTooLarge is returned when a remote document exceeds the cap.
var ErrDocumentTooLarge = errors.New("companies: dataset document too large")

// HTTPSource downloads the dataset document. MaxBytes <= 0 means
// DefaultMaxDocumentBytes.
type HTTPSource struct {
	URL      string
	Client   *http.Client
	MaxBytes int64
}

// Fetch implements Source.
func (s HTTPSource) Fetch(ctx context.Context) ([]byte, Format, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("companies: unexpected status %d", resp.StatusCode)
	}
	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxDocumentBytes
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(raw)) > limit {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, limit)
	}
	format := FormatJSON
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "yaml") {
		format = FormatYAML
	}
	return raw, format, nil
}

// Loader turns a Source into a validated Dataset.
type Loader struct {
	source    Source
	validator *RecordValidator
	logger    *slog.Logger
	timeout   time.Duration
}

// NewLoader builds a Loader. A zero timeout disables the fetch deadline.
func NewLoader(source Source, logger *slog.Logger, timeout time.Duration) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, validator: NewRecordValidator(), logger: logger, timeout: timeout}
}

// Load fetches, decodes and validates the dataset.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if l == nil || l.source == nil {
		return nil, fmt.Errorf("%w: no source configured", ErrUnavailable)
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	raw, format, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	ds, err := Decode(raw, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	kept, rejected := l.validator.Filter(ds.Companies)
	for _, rej := range rejected {
		l.logger.Warn("drop invalid company record", slog.Int("index", rej.Index), slog.String("name", rej.Name), slog.Any("error", rej.Err))
	}
	ds.Companies = kept
	return ds, nil
}

// LoadOrEmpty loads the dataset and falls back to the empty dataset on any
// failure so that the dashboard always starts.
func (l *Loader) LoadOrEmpty(ctx context.Context) *Dataset {
	ds, err := l.Load(ctx)
	if err != nil {
		l.logger.Warn("dataset unavailable, using empty dataset", slog.Any("error", err))
		return Empty()
	}
	l.logger.Info("dataset loaded", slog.Int("companies", len(ds.Companies)), slog.String("fingerprint", ds.Fingerprint))
	return ds
}

// Decode parses a dataset document and stamps its fingerprint.
func Decode(raw []byte, format Format) (*Dataset, error) {
	var ds Dataset
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &ds); err != nil {
			return nil, fmt.Errorf("parse yaml dataset: %w", err)
		}
	default:
		standard, err := hujson.Standardize(raw)
		if err != nil {
			return nil, fmt.Errorf("parse json dataset: %w", err)
		}
		if err := json.Unmarshal(standard, &ds); err != nil {
			return nil, fmt.Errorf("parse json dataset: %w", err)
		}
	}
	if ds.Companies == nil {
		ds.Companies = []Record{}
	}
	sum := sha256.Sum256(raw)
	ds.Fingerprint = hex.EncodeToString(sum[:8])
	return &ds, nil
}
