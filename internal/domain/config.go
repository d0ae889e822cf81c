package domain

// Config mirrors ~/.aish/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	Security            SecuritySettings  `yaml:"security"`
	Logging             LoggingSettings   `yaml:"logging"`
	Training            TrainingSettings  `yaml:"training"`
	History             HistorySettings   `yaml:"history"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel   string `yaml:"default_model"`
	TimeoutSeconds int    `yaml:"timeout"`
	Shell          string `yaml:"shell"`
}

// ModelDefinition describes an AI provider endpoint declared in the config.
type ModelDefinition struct {
	Name       string `yaml:"name"`
	Endpoint   string `yaml:"endpoint"`
	AuthEnvVar string `yaml:"auth_env_var"`
	ModelID    string `yaml:"model_id"`
	MaxTokens  int    `yaml:"max_tokens"`
}

// SecuritySettings defines classifier behavior. Booleans are pointers so an
// absent key keeps its default rather than collapsing to false.
type SecuritySettings struct {
	RequireConfirmation *bool    `yaml:"require_confirmation"`
	DangerousCommands   []string `yaml:"dangerous_commands"`
}

// ConfirmationRequired defaults to true when the key is absent.
func (s SecuritySettings) ConfirmationRequired() bool {
	return s.RequireConfirmation == nil || *s.RequireConfirmation
}

// LoggingSettings controls the audit log.
type LoggingSettings struct {
	AuditFile    string `yaml:"audit_file"`
	AuditEnabled *bool  `yaml:"audit_enabled"`
}

// Enabled defaults to true when the key is absent.
func (l LoggingSettings) Enabled() bool {
	return l.AuditEnabled == nil || *l.AuditEnabled
}

// TrainingSettings controls the feedback dataset.
type TrainingSettings struct {
	DatasetFile string `yaml:"dataset_file"`
	AutoLog     *bool  `yaml:"auto_log"`
}

// Logging defaults to true when the key is absent.
func (t TrainingSettings) Logging() bool {
	return t.AutoLog == nil || *t.AutoLog
}

// HistorySettings controls the SQLite command history.
type HistorySettings struct {
	File    string `yaml:"file"`
	Enabled *bool  `yaml:"enabled"`
}

// On defaults to true when the key is absent.
func (h HistorySettings) On() bool {
	return h.Enabled == nil || *h.Enabled
}

// FindModel looks a model definition up by name.
func (c Config) FindModel(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// DefaultModel resolves the configured default, falling back to the first
// declared model.
func (c Config) DefaultModel() (ModelDefinition, bool) {
	if c.Preferences.DefaultModel != "" {
		if model, ok := c.FindModel(c.Preferences.DefaultModel); ok {
			return model, true
		}
	}
	if len(c.Models) > 0 {
		return c.Models[0], true
	}
	return ModelDefinition{}, false
}
