package config

// FileConfig represents the raw config.toml file contents. All fields are
// pointers to distinguish "not set" (fall through to default) from
// "explicitly set to the zero value".
type FileConfig struct {
	Network    *string `toml:"network"`
	DataDir    *string `toml:"data_dir"`
	NodeBinary *string `toml:"node_binary"`
	CLIBinary  *string `toml:"cli_binary"`
	NoColor    *bool   `toml:"no_color"`
	Verbose    *bool   `toml:"verbose"`
	JSON       *bool   `toml:"json"`

	Node      *FileNodeConfig      `toml:"node"`
	Update    *FileUpdateConfig    `toml:"update"`
	Mithril   *FileMithrilConfig   `toml:"mithril"`
	Resources *FileResourcesConfig `toml:"resources"`
}

// FileNodeConfig carries per-node socket/listen overrides.
type FileNodeConfig struct {
	Host       *string  `toml:"host"`
	Port       *int     `toml:"port"`
	SocketPath *string  `toml:"socket_path"`
	ExtraArgs  []string `toml:"extra_args"`
}

// FileUpdateConfig carries self-updater overrides.
type FileUpdateConfig struct {
	AutoCheck         *bool    `toml:"auto_check"`
	CheckIntervalHours *int    `toml:"check_interval_hours"`
	ManifestURL       *string  `toml:"manifest_url"`
	PublicKeyHex      *string  `toml:"public_key"`
	Mirrors           []string `toml:"mirrors"`
	MinVersion        *string  `toml:"min_version"`
}

// FileMithrilConfig carries snapshot-sync overrides.
type FileMithrilConfig struct {
	Enabled                *bool   `toml:"enabled"`
	AggregatorURL           *string `toml:"aggregator_url"`
	GenesisVerificationKey  *string `toml:"genesis_verification_key"`
}

// FileResourcesConfig carries RTS/runtime resource overrides passed to the
// node process via environment variables.
type FileResourcesConfig struct {
	MaxMemoryMB       *int  `toml:"max_memory_mb"`
	RTSThreads        *int  `toml:"rts_threads"`
	MemoryCompaction  *bool `toml:"memory_compaction"`
}

// IsEmpty reports whether no configuration values were set in the file at
// all, used to distinguish "no config.toml present" from "config.toml
// present but empty" for diagnostics.
func (f *FileConfig) IsEmpty() bool {
	return f.Network == nil && f.DataDir == nil && f.NodeBinary == nil &&
		f.CLIBinary == nil && f.NoColor == nil && f.Verbose == nil &&
		f.JSON == nil && f.Node == nil && f.Update == nil &&
		f.Mithril == nil && f.Resources == nil
}
