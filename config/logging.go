package config

// LoggingConfig controls the structured event log.
type LoggingConfig struct {
	AppName     string `hcl:"app_name,optional"`     // log file basename (default: "CodeWizard")
	Dir         string `hcl:"dir,optional"`          // log directory (default: "logs")
	MaxBytes    int64  `hcl:"max_bytes,optional"`    // rotation threshold (default: 1 MiB)
	BackupCount int    `hcl:"backup_count,optional"` // rotated files to keep (default: 5)
	Level       string `hcl:"level,optional"`        // minimum severity (default: "info")
}

// Defaults fills in default values for unset fields
func (l *LoggingConfig) Defaults() {
	if l.AppName == "" {
		l.AppName = "CodeWizard"
	}
	if l.Dir == "" {
		l.Dir = "logs"
	}
	if l.MaxBytes == 0 {
		l.MaxBytes = 1024 * 1024
	}
	if l.BackupCount == 0 {
		l.BackupCount = 5
	}
	if l.Level == "" {
		l.Level = "info"
	}
}
