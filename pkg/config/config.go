// Package config loads the build configuration driving an analysis run.
//
// Configuration is read from a YAML (.yaml, .yml) or TOML (.toml) file.
// Add-ons are enabled by listing them under "addons"; an add-on with no
// parameters is enabled with an empty mapping:
//
//	repositoryZip: quarkus-2.13.9-maven-repository.zip
//	extrasPath: extras
//	flow:
//	  repositoryGeneration:
//	    bomArtifactId: quarkus-product-bom
//	addons:
//	  quarkusCommunityDepAnalyzer:
//	    additionalRepository: https://maven.repository.redhat.com/ga/
//	    skippedExtensions: [quarkus-jdbc-oracle]
//	  quarkusPostBuildAnalyzer:
//	    stagingPath: https://download.example.com/staging/
//	    productName: quarkus-2.13
//
// Environment variables override file values after any .env files are loaded.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/depscan/pkg/errors"
	"github.com/matzehuels/depscan/pkg/extension"
	"github.com/matzehuels/depscan/pkg/maven"
)

// Add-on names as they appear under "addons".
const (
	CommunityDepAnalyzer = "quarkusCommunityDepAnalyzer"
	PostBuildAnalyzer    = "quarkusPostBuildAnalyzer"
)

// Environment overrides.
const (
	EnvMaven                = "DEPSCAN_MVN"
	EnvAdditionalRepository = "DEPSCAN_ADDITIONAL_REPOSITORY"
	EnvExtrasPath           = "DEPSCAN_EXTRAS_PATH"
)

// DefaultExtrasPath is where reports are written when none is configured.
const DefaultExtrasPath = "extras"

// Config is the build configuration.
type Config struct {
	// RepositoryZip is the product Maven repository archive.
	RepositoryZip string `yaml:"repositoryZip" toml:"repositoryZip"`
	// ExtrasPath receives the reports.
	ExtrasPath string `yaml:"extrasPath" toml:"extrasPath"`
	// VendorMarker is the version substring of vendor-rebuilt artifacts.
	VendorMarker string `yaml:"vendorMarker" toml:"vendorMarker"`
	// VendorNamespace is the repository path that holds the platform descriptor
	// and the product BOMs.
	VendorNamespace string `yaml:"vendorNamespace" toml:"vendorNamespace"`
	// Maven is the build tool executable.
	Maven string `yaml:"mvn" toml:"mvn"`

	Flow   Flow   `yaml:"flow" toml:"flow"`
	AddOns AddOns `yaml:"addons" toml:"addons"`
}

// Flow holds the settings of the repository generation flow.
type Flow struct {
	RepositoryGeneration RepositoryGeneration `yaml:"repositoryGeneration" toml:"repositoryGeneration"`
}

// RepositoryGeneration names the BOM the repository was generated from.
type RepositoryGeneration struct {
	BOMArtifactID string `yaml:"bomArtifactId" toml:"bomArtifactId"`
}

// AddOns holds the parameters of each add-on. A nil entry is disabled.
type AddOns struct {
	CommunityDeps *CommunityDeps `yaml:"quarkusCommunityDepAnalyzer" toml:"quarkusCommunityDepAnalyzer"`
	PostBuild     *PostBuild     `yaml:"quarkusPostBuildAnalyzer" toml:"quarkusPostBuildAnalyzer"`
}

// CommunityDeps configures the community dependency analyzer.
type CommunityDeps struct {
	AdditionalRepository string   `yaml:"additionalRepository" toml:"additionalRepository"`
	SkippedExtensions    []string `yaml:"skippedExtensions" toml:"skippedExtensions"`
	// CheckDeploymentBOMs also checks the deployment BOMs.
	CheckDeploymentBOMs bool `yaml:"checkDeploymentBoms" toml:"checkDeploymentBoms"`
}

// PostBuild configures the post-build comparison.
type PostBuild struct {
	StagingPath string `yaml:"stagingPath" toml:"stagingPath"`
	ProductName string `yaml:"productName" toml:"productName"`
}

// Default returns a configuration with defaults filled and no add-on enabled.
func Default() *Config {
	return &Config{
		ExtrasPath:      DefaultExtrasPath,
		VendorMarker:    maven.DefaultVendorMarker,
		VendorNamespace: extension.DefaultVendorNamespace,
		Flow: Flow{RepositoryGeneration: RepositoryGeneration{
			BOMArtifactID: extension.CommunityBOM,
		}},
	}
}

// Load reads the configuration file at path over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "configuration %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to read configuration %s", path)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data in the format selected by ext over the defaults.
// Unknown keys are rejected.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "malformed YAML configuration")
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "malformed TOML configuration")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown configuration key %q", undecoded[0].String())
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported configuration format %q (use .yaml, .yml or .toml)", ext)
	}
	return cfg, nil
}

// LoadEnvFiles loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are
// ignored.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to load %s", f)
		}
	}
	return nil
}

// ApplyEnv overrides file values with the non-empty environment variables
// returned by getenv. An additional repository only applies when the
// community analyzer is enabled.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvMaven)); v != "" {
		c.Maven = v
	}
	if v := strings.TrimSpace(getenv(EnvExtrasPath)); v != "" {
		c.ExtrasPath = v
	}
	if v := strings.TrimSpace(getenv(EnvAdditionalRepository)); v != "" && c.AddOns.CommunityDeps != nil {
		c.AddOns.CommunityDeps.AdditionalRepository = v
	}
}

// Validate checks the settings of every enabled add-on.
func (c *Config) Validate() error {
	if c.ExtrasPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "extrasPath must not be empty")
	}
	if c.AddOns.CommunityDeps != nil {
		if c.RepositoryZip == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "%s requires repositoryZip", CommunityDepAnalyzer)
		}
		for _, id := range c.AddOns.CommunityDeps.SkippedExtensions {
			if err := errors.ValidateArtifactID(id); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid skippedExtensions entry")
			}
		}
		if u := c.AddOns.CommunityDeps.AdditionalRepository; u != "" {
			if err := errors.ValidateURL(u); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid additionalRepository")
			}
		}
	}
	if pb := c.AddOns.PostBuild; pb != nil {
		if err := errors.ValidateURL(pb.StagingPath); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid stagingPath")
		}
		if pb.ProductName == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "%s requires productName", PostBuildAnalyzer)
		}
	}
	return nil
}

// Enabled returns the names of the enabled add-ons in the order they run.
func (c *Config) Enabled() []string {
	var names []string
	if c.AddOns.CommunityDeps != nil {
		names = append(names, CommunityDepAnalyzer)
	}
	if c.AddOns.PostBuild != nil {
		names = append(names, PostBuildAnalyzer)
	}
	return names
}

// ProductBOM reports whether the repository was generated from the product BOM.
func (c *Config) ProductBOM() bool {
	return extension.IsProductBOM(c.Flow.RepositoryGeneration.BOMArtifactID)
}
