// Package runtime renders the viper configuration into a typed Config
// shared by the commands.
package runtime

import (
	"github.com/spf13/viper"

	"github.com/nandakiran-r/TestPiper/internal/option"
)

// Config contains configuration details for running testpiper.
type Config struct {
	LogFile   string
	LogLevel  string
	Artifacts string
	// Release-specific fields
	Image        string
	Dockerfile   string
	BuildContext string
	NoCache      bool
	DryRun       bool
	Verify       bool
	DockerConfig string
	Insecure     bool
	// Serve-specific fields
	ListenAddr string
	ModelPath  string
	PiperBin   string
}

// NewConfigFrom returns a runtime.Config based on the stored inputs in
// the provided viper.Viper. Defaults should be set before this function
// is called.
func NewConfigFrom(vcfg viper.Viper) (*Config, error) {
	cfg := Config{}
	cfg.LogFile = vcfg.GetString("logfile")
	cfg.LogLevel = vcfg.GetString("loglevel")
	cfg.Artifacts = vcfg.GetString("artifacts")
	cfg.storeReleaseConfiguration(vcfg)
	cfg.storeServeConfiguration(vcfg)
	return &cfg, nil
}

// storeReleaseConfiguration reads release-specific config items in
// viper and stores them in Config.
func (c *Config) storeReleaseConfiguration(vcfg viper.Viper) {
	c.Image = vcfg.GetString("image")
	c.Dockerfile = vcfg.GetString("dockerfile")
	c.BuildContext = vcfg.GetString("context")
	c.NoCache = vcfg.GetBool("no_cache")
	c.DryRun = vcfg.GetBool("dry_run")
	c.Verify = vcfg.GetBool("verify")
	c.DockerConfig = vcfg.GetString("dockerConfig")
	c.Insecure = vcfg.GetBool("insecure")
}

// storeServeConfiguration reads serve-specific config items in viper
// and stores them in Config.
func (c *Config) storeServeConfiguration(vcfg viper.Viper) {
	c.ListenAddr = vcfg.GetString("listen")
	c.ModelPath = vcfg.GetString("model")
	c.PiperBin = vcfg.GetString("piper_bin")
}

// These satisfy the CraneConfig interface.
func (c *Config) CraneDockerConfig() string {
	return c.DockerConfig
}

func (c *Config) CraneInsecure() bool {
	return c.Insecure
}

var _ option.CraneConfig = &Config{}
