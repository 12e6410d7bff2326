package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/longscribe/logger"
)

// FileSystem abstracts the file operations of the loader for tests.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// DefaultEnvFiles are loaded in order. The first one wins for any variable
// because godotenv does not override.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Resolver finds config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config file and env files.
type ResolvedFiles struct {
	ConfigFile string
	EnvFiles   []string
}

// ResolveFiles returns explicit paths when provided, otherwise searches the
// standard locations for the service.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.findConfigFile(serviceName)
	}

	if len(opts.EnvFiles) > 0 {
		resolved.EnvFiles = opts.EnvFiles
	} else {
		resolved.EnvFiles = r.findEnvFiles(serviceName)
	}
	return resolved
}

func searchDirs(serviceName string) []string {
	return []string{
		".",
		filepath.Join("cmd", serviceName),
		"config",
		"..",
	}
}

func (r *Resolver) findConfigFile(serviceName string) string {
	names := []string{serviceName + ".yaml", serviceName + ".yml", "config.yaml", "config.yml"}
	for _, dir := range searchDirs(serviceName) {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if r.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// findEnvFiles returns, for each default env file name, the first match in
// the search directories.
func (r *Resolver) findEnvFiles(serviceName string) []string {
	var found []string
	for _, name := range DefaultEnvFiles {
		for _, dir := range searchDirs(serviceName) {
			path := filepath.Join(dir, name)
			if r.FileSystem.Exists(path) {
				found = append(found, path)
				break
			}
		}
	}
	return found
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFiles   []string
	// EnvAliases maps an environment variable name to a config key.
	EnvAliases map[string]string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets explicit env files, loaded in order. Empty paths are
// ignored.
func WithEnvFile(paths ...string) LoaderOption {
	return func(lc *LoaderConfig) {
		for _, p := range paths {
			if p != "" {
				lc.EnvFiles = append(lc.EnvFiles, p)
			}
		}
	}
}

// WithEnvAliases adds explicit environment variable to key bindings.
func WithEnvAliases(aliases map[string]string) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.EnvAliases == nil {
			lc.EnvAliases = make(map[string]string, len(aliases))
		}
		for k, v := range aliases {
			lc.EnvAliases[k] = v
		}
	}
}

// LoadConfig loads configuration for a service into cfg. It reads the YAML
// file, loads the env files, binds environment variables and unmarshals the
// result into cfg. Fields absent from every source keep their current value.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	return loadFromResolvedFiles(serviceName, cfg, files, lc)
}

func loadFromResolvedFiles(serviceName string, cfg any, files ResolvedFiles, lc LoaderConfig) error {
	v := viper.New()

	// 1. YAML file
	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			return fmt.Errorf("config file %s not found", files.ConfigFile)
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
		}
	}

	// 2. env files, then the process environment
	for _, path := range files.EnvFiles {
		if !lc.FileSystem.Exists(path) {
			continue
		}
		if err := lc.FileSystem.LoadEnv(path); err != nil {
			logger.L().Warn("env file skipped", logger.Fields(logger.FieldPath, path, logger.FieldError, err.Error()))
		}
	}
	v.AutomaticEnv()
	autoBindEnvVars(v, lc.EnvAliases)

	// 3. unmarshal
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// autoBindEnvVars binds every environment variable to the nested key
// variants generated from its name, plus any explicit aliases.
func autoBindEnvVars(v *viper.Viper, aliases map[string]string) {
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, value)
		}
		if alias, ok := aliases[key]; ok && value != "" {
			v.Set(alias, value)
		}
	}
}

// generateEnvKeyVariants creates the possible key variants for an
// environment variable.
//
//	DASHSCOPE_API_KEY      -> [dashscope_api_key, dashscope.api.key, dashscope.api_key]
//	DASHSCOPE_API_BASE_URL -> [..., dashscope.api_base_url, dashscope.api.base_url, ...]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Every split point: prefix joined by dots, suffix by underscores.
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	// The last split point repeats the fully dotted form.
	return variants[:len(variants)-1]
}
