package config

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/bardfile"
)

const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "bardfile.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultFieldName is the form name used when none is configured.
	DefaultFieldName = "attachment"

	// DefaultDataDir is where the badger store keeps its files.
	DefaultDataDir = ".bardfile/blobs"

	// DefaultCacheTTL is how long blob lookups are cached.
	DefaultCacheTTL = "5m"
)

// Blob store kinds.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreS3     = "s3"
)

// configFileNames are tried in order by Load and Exists.
var configFileNames = []string{ConfigFileName, "bardfile.yaml", "bardfile.yml"}

// Config represents the bardfile.json configuration file.
type Config struct {
	// Preview configures the preview server.
	Preview PreviewConfig `json:"preview" yaml:"preview"`

	// Field describes the bard-file element the preview mounts.
	Field FieldConfig `json:"field" yaml:"field"`

	// Blobs selects where blob metadata lives.
	Blobs BlobsConfig `json:"blobs" yaml:"blobs"`

	// configPath is where this config was loaded from.
	configPath string
}

// PreviewConfig contains preview server settings.
type PreviewConfig struct {
	// Port is the server port.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Host is the server host.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Live enables the /live websocket channel.
	Live bool `json:"live" yaml:"live"`

	// Markup is an HTML file holding the page fragment to mount. When empty
	// the fragment is built from Field.
	Markup string `json:"markup,omitempty" yaml:"markup,omitempty"`

	// Title is the page title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// NativeShadow renders hosts as if they had a native shadow root.
	NativeShadow bool `json:"nativeShadow,omitempty" yaml:"nativeShadow,omitempty"`
}

// FieldConfig mirrors the attributes of a bard-file element.
type FieldConfig struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
	Multiple     bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Required     bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Accepts      string `json:"accepts,omitempty" yaml:"accepts,omitempty"`
	Max          string `json:"max,omitempty" yaml:"max,omitempty"`
	DirectUpload string `json:"directUpload,omitempty" yaml:"directUpload,omitempty"`
}

// BlobsConfig contains blob store settings.
type BlobsConfig struct {
	// Store is one of memory, badger or s3.
	Store string `json:"store,omitempty" yaml:"store,omitempty"`

	// Dir is the badger data directory, relative to the config file.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// CacheTTL caches lookups for this long. "0" disables the cache.
	CacheTTL string `json:"cacheTTL,omitempty" yaml:"cacheTTL,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Preview: PreviewConfig{
			Port:  DefaultPort,
			Host:  DefaultHost,
			Live:  true,
			Title: "bard-file preview",
		},
		Field: FieldConfig{
			Name: DefaultFieldName,
		},
		Blobs: BlobsConfig{
			Store:    StoreMemory,
			Dir:      DefaultDataDir,
			CacheTTL: DefaultCacheTTL,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// bardfile.json, then bardfile.yaml and bardfile.yml.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.ErrInvalidConfig).
		WithDetail("No " + ConfigFileName + " found in " + dir).
		WithSuggestion("Create " + ConfigFileName + " or pass --config")
}

// LoadFile reads configuration from the specified file path. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrInvalidConfig).
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass --config")
		}
		return nil, errors.New(errors.ErrInvalidConfig).Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.ErrInvalidConfig).
			WithDetailf("Failed to parse %s: %v", filepath.Base(path), err).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + formatName(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.applyEnvOverrides(os.Getenv)

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, in YAML when the
// extension asks for it.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.ErrInvalidConfig).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.ErrInvalidConfig).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPort
	}
	if c.Preview.Host == "" {
		c.Preview.Host = DefaultHost
	}
	if c.Field.Name == "" {
		c.Field.Name = DefaultFieldName
	}
	if c.Blobs.Store == "" {
		c.Blobs.Store = StoreMemory
	}
	if c.Blobs.Dir == "" {
		c.Blobs.Dir = DefaultDataDir
	}
	if c.Blobs.CacheTTL == "" {
		c.Blobs.CacheTTL = DefaultCacheTTL
	}
}

// applyEnvOverrides lets BARDFILE_* variables win over the file.
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv("BARDFILE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Preview.Port = port
		}
	}
	if v := getenv("BARDFILE_HOST"); v != "" {
		c.Preview.Host = v
	}
	if v := getenv("BARDFILE_BLOB_STORE"); v != "" {
		c.Blobs.Store = v
	}
	if v := getenv("BARDFILE_BLOB_DIR"); v != "" {
		c.Blobs.Dir = v
	}
	if v := getenv("BARDFILE_S3_BUCKET"); v != "" {
		c.Blobs.Bucket = v
	}
	if v := getenv("BARDFILE_S3_REGION"); v != "" {
		c.Blobs.Region = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return errors.New(errors.ErrInvalidConfig).
			WithDetail("Port must be between 0 and 65535")
	}

	switch c.Blobs.Store {
	case StoreMemory, StoreBadger:
	case StoreS3:
		if c.Blobs.Bucket == "" {
			return errors.New(errors.ErrInvalidConfig).
				WithDetail("blobs.bucket is required for the s3 store")
		}
	default:
		return errors.New(errors.ErrInvalidConfig).
			WithDetailf("Unknown blob store %q", c.Blobs.Store).
			WithSuggestion("Use one of memory, badger or s3")
	}

	if _, err := c.MaxSize(); err != nil {
		return err
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if _, err := bardfile.ParseAccepts(c.Field.Accepts); err != nil {
		return errors.New(errors.ErrInvalidConfig).
			WithDetailf("field.accepts: %v", err).
			Wrap(err)
	}
	return nil
}

// MaxSize parses Field.Max. Zero means unlimited.
func (c *Config) MaxSize() (datasize.ByteSize, error) {
	var size datasize.ByteSize
	if c.Field.Max == "" {
		return 0, nil
	}
	if err := size.UnmarshalText([]byte(c.Field.Max)); err != nil {
		return 0, errors.New(errors.ErrInvalidConfig).
			WithDetailf("field.max %q is not a size", c.Field.Max).
			WithSuggestion(`Use a value such as "5MB"`).
			Wrap(err)
	}
	return size, nil
}

// CacheTTL parses Blobs.CacheTTL.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Blobs.CacheTTL == "" || c.Blobs.CacheTTL == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Blobs.CacheTTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrInvalidConfig).
			WithDetailf("blobs.cacheTTL %q is not a duration", c.Blobs.CacheTTL).
			WithSuggestion(`Use a value such as "5m"`)
	}
	return d, nil
}

// DataDir returns the badger directory, resolved against the config file.
func (c *Config) DataDir() string {
	if filepath.IsAbs(c.Blobs.Dir) {
		return c.Blobs.Dir
	}
	return filepath.Join(c.Dir(), c.Blobs.Dir)
}

// MarkupPath returns the absolute path of Preview.Markup, or "" when unset.
func (c *Config) MarkupPath() string {
	if c.Preview.Markup == "" {
		return ""
	}
	if filepath.IsAbs(c.Preview.Markup) {
		return c.Preview.Markup
	}
	return filepath.Join(c.Dir(), c.Preview.Markup)
}

// Address returns the address string for the preview server.
func (c *Config) Address() string {
	return c.Preview.Host + ":" + strconv.Itoa(c.Preview.Port)
}

// URL returns the full URL for the preview server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// FieldMarkup renders Field as a bard-file element, preceded by its label
// when both a label and an id are set.
func (c *Config) FieldMarkup() string {
	var b strings.Builder
	f := c.Field
	if f.Label != "" && f.ID != "" {
		fmt.Fprintf(&b, `<label for="%s">%s</label>`, html.EscapeString(f.ID), html.EscapeString(f.Label))
	}
	b.WriteString("<" + bardfile.Tag)
	attr := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, ` %s="%s"`, name, html.EscapeString(value))
		}
	}
	attr("name", f.Name)
	attr("id", f.ID)
	attr("accepts", f.Accepts)
	attr("max", f.Max)
	attr("directupload", f.DirectUpload)
	if f.Multiple {
		b.WriteString(" multiple")
	}
	if f.Required {
		b.WriteString(" required")
	}
	b.WriteString("></" + bardfile.Tag + ">")
	return b.String()
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.ErrInvalidConfig).
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Create " + ConfigFileName + " or pass --config")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
