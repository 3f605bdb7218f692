package camera

// Preset names for common configurations
const (
	PresetDefault = "default"
	PresetHD      = "720p"
	PresetLow     = "low"
	PresetRaw     = "raw"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetHD:      HD720Config(),
		PresetLow:     LowPowerConfig(),
		PresetRaw:     RawConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetDefault,
		PresetHD,
		PresetLow,
		PresetRaw,
	}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	presets := Presets()
	if cfg, ok := presets[name]; ok {
		return &cfg
	}
	return nil
}

// HD720Config returns 720p HD configuration.
// Larger faces in frame give steadier eye centroids.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// LowPowerConfig returns a configuration for slow machines.
func LowPowerConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 320
	cfg.Height = 240
	cfg.Framerate = 15
	cfg.DetectHz = 8
	return cfg
}

// RawConfig returns the default configuration without mirroring.
func RawConfig() Config {
	cfg := DefaultConfig()
	cfg.Mirror = false
	return cfg
}
