package config

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Title:   "My Blog",
		BaseURL: "/",
		Profile: ProfileConfig{Name: "Anonymous"},
		Content: ContentConfig{Dir: "./content", AboutFile: "about.md"},
		Output:  OutputConfig{Dir: "./public"},
		Theme:   ThemeConfig{HideTip: "click to reveal"},
	}
}

// applyDefaults fills unset fields after unmarshal, so partial files stay
// valid.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Profile.Name == "" {
		cfg.Profile.Name = def.Profile.Name
	}
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = def.Content.Dir
	}
	if cfg.Content.AboutFile == "" {
		cfg.Content.AboutFile = def.Content.AboutFile
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = def.Output.Dir
	}
	if cfg.Theme.HideTip == "" {
		cfg.Theme.HideTip = def.Theme.HideTip
	}
}
