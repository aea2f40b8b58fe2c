package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
	"sigs.k8s.io/yaml"

	"github.com/rocm-systems/package-planner/internal/utils/logger"
)

// Format selects which dependency declaration a record contributes to
// the dependency graph.
type Format int

const (
	FormatDeb Format = iota
	FormatRPM
)

// PackageRecord is one entry of the package manifest. Composite and
// Gfxarch keep their raw manifest value so that both string ("Yes",
// "True") and bare boolean spellings are accepted.
type PackageRecord struct {
	Name             string          `json:"Package"`
	Composite        json.RawMessage `json:"Composite,omitempty"`
	Includes         []string        `json:"Includes,omitempty"`
	DEBDepends       []string        `json:"DEBDepends,omitempty"`
	RPMRequires      []string        `json:"RPMRequires,omitempty"`
	Gfxarch          json.RawMessage `json:"Gfxarch,omitempty"`
	DisablePackaging json.RawMessage `json:"disablepackaging,omitempty"`
}

// IsComposite reports whether the record is a meta-package bundling
// other packages. The manifest convention is Composite: "Yes".
func (r PackageRecord) IsComposite() bool {
	return rawToken(r.Composite) == "yes"
}

// GfxArchSensitive reports whether the artifact filename embeds a GPU
// architecture family token.
func (r PackageRecord) GfxArchSensitive() bool {
	return rawToken(r.Gfxarch) == "true"
}

// Disabled reports whether packaging is switched off for this record.
// The manifest treats disablepackaging as a presence-only flag.
func (r PackageRecord) Disabled() bool {
	return len(r.DisablePackaging) > 0
}

// Depends returns the dependency names declared for the given format.
func (r PackageRecord) Depends(f Format) []string {
	if f == FormatRPM {
		return r.RPMRequires
	}
	return r.DEBDepends
}

// rawToken normalizes a raw manifest value ("Yes", true, 1) the way
// the manifest convention expects: stringified, trimmed, lowercased.
func rawToken(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
}

// ManifestError reports an unreadable or malformed package manifest.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// Store indexes the package records of one manifest. The record set
// is immutable for the duration of a planning run.
type Store struct {
	records []PackageRecord
	byName  map[string]PackageRecord
}

// Load reads and parses a manifest file. Files ending in .gz or .xz
// are decompressed transparently, so compressed CI artifacts can be
// planned without an extraction step.
func Load(path string) (*Store, error) {
	data, err := readManifestFile(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse decodes manifest data. JSON and YAML are both accepted; the
// root must be a list of package objects.
func Parse(path string, data []byte) (*Store, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, &ManifestError{Path: path, Err: fmt.Errorf("decoding manifest: %w", err)}
	}
	if err := validateSchema(jsonData); err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}

	var records []PackageRecord
	if err := json.Unmarshal(jsonData, &records); err != nil {
		return nil, &ManifestError{Path: path, Err: fmt.Errorf("decoding package records: %w", err)}
	}

	log := logger.Logger()
	store := &Store{byName: make(map[string]PackageRecord, len(records))}
	for _, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		if rec.Name == "" {
			log.Warnf("skipping manifest entry with blank package name")
			continue
		}
		if rec.Disabled() {
			log.Debugf("packaging disabled for %s, skipping", rec.Name)
			continue
		}
		store.records = append(store.records, rec)
		store.byName[rec.Name] = rec
	}
	return store, nil
}

func readManifestFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip manifest: %w", err)
		}
		defer gz.Close()
		return io.ReadAll(gz)
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening xz manifest: %w", err)
		}
		return io.ReadAll(xr)
	}
	return io.ReadAll(f)
}

// All returns the named, enabled records in manifest order.
func (s *Store) All() []PackageRecord {
	return s.records
}

// ByName looks up a record by package name.
func (s *Store) ByName(name string) (PackageRecord, bool) {
	rec, ok := s.byName[name]
	return rec, ok
}

// Classify partitions the manifest into non-composite and composite
// package names, both in manifest order. The two lists are disjoint
// and together cover every named, enabled record.
func (s *Store) Classify() (nonComposite, composite []string) {
	for _, rec := range s.records {
		if rec.IsComposite() {
			composite = append(composite, rec.Name)
		} else {
			nonComposite = append(nonComposite, rec.Name)
		}
	}
	return nonComposite, composite
}

// Subset returns the records for the given names, in the given order.
// Unknown names are skipped.
func (s *Store) Subset(names []string) []PackageRecord {
	records := make([]PackageRecord, 0, len(names))
	for _, name := range names {
		if rec, ok := s.byName[name]; ok {
			records = append(records, rec)
		}
	}
	return records
}
