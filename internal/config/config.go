package config

// Config represents the complete lambdalens configuration.
// It can be loaded from .lambdalens.yaml with environment variable overrides.
type Config struct {
	Namespaces NamespacesConfig `yaml:"namespaces" mapstructure:"namespaces"`
	SourceType string           `yaml:"source_type" mapstructure:"source_type"`
	Workers    int              `yaml:"workers" mapstructure:"workers"`
}

// NamespacesConfig controls which parts of the candidate surface are
// considered.
type NamespacesConfig struct {
	// Roots are the archive entry prefixes that mark public API namespaces.
	Roots []string `yaml:"roots" mapstructure:"roots"`
	// StreamPackage is the namespace excluded from results when the caller
	// asks to ignore the stream package.
	StreamPackage string `yaml:"stream_package" mapstructure:"stream_package"`
}

// Default returns a configuration with sensible defaults for JDK surfaces.
func Default() *Config {
	return &Config{
		Namespaces: NamespacesConfig{
			Roots:         []string{"java", "javax", "org"},
			StreamPackage: "java.util.stream",
		},
		SourceType: "java.util.stream.Stream",
		Workers:    0, // 0 means GOMAXPROCS
	}
}
