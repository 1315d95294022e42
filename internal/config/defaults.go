package config

const (
	defaultConfigPath     = "~/.config/usecasesync/config.toml"
	projectConfigName     = "usecasesync.toml"
	defaultCatalogPath    = "src/data/useCases.json"
	defaultRegistryPath   = "src/data/id_mapping.json"
	defaultStateDBPath    = "~/.local/share/usecasesync/state.db"
	defaultEnvFile        = ".env"
	defaultBackend        = BackendJSON
	defaultMode           = ModeRegistry
	defaultCatalogVersion = "3.0.0"
	defaultSourceLabel    = "usecasesync"
	defaultAuthor         = "DC team"
	defaultDate           = "2024-11-15"
	defaultDifficulty     = "Intermediate"
	defaultCategory       = "General"
	defaultRole           = "Professionals"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	dateLayout            = "2006-01-02"
	envPrefix             = "USECASESYNC_"
	envSource             = envPrefix + "SOURCE"
	envCatalog            = envPrefix + "CATALOG"
	envRegistry           = envPrefix + "REGISTRY"
	envStateDB            = envPrefix + "STATE_DB"
	envMode               = envPrefix + "MODE"
	envLogLevel           = envPrefix + "LOG_LEVEL"
)

func defaultIcons() []string {
	return []string{
		"FolderSearch", "FolderOrganize", "Code", "BarChart3", "Settings",
		"FileText", "Archive", "Shield", "Database", "TestTube",
		"Clock", "RefreshCw", "ArrowRightLeft", "Activity", "Search",
	}
}

func defaultIconMap() map[string]string {
	return map[string]string{
		"Code base exploration": "FolderSearch",
		"Development":           "Code",
		"Data Analytics":        "BarChart3",
		"DevOps":                "Settings",
		"Code optimization":     "Zap",
		"File Management":       "FolderOpen",
		"Content":               "FileText",
		"Automation":            "PlayCircle",
		"Documentation":         "BookOpen",
		"System architecture":   "Layers",
	}
}

func defaultTaskCategories() map[string]string {
	return map[string]string{
		"Set Up Development Environment":        "Environment Setup",
		"Set Up New Project Structure":          "Environment Setup",
		"Generate Dev Onboarding Guide":         "Environment Setup",
		"Create Team Onboarding Documentation":  "Environment Setup",
		"Understand Any Codebase":               "Environment Setup",
		"Create Project Context":                "Environment Setup",
		"Explore and Understand New Repository": "Environment Setup",
		"Analyze My Data File":                  "Database Management",
		"Get my IP address":                     "Server Configuration",
		"Configure System Settings":             "Server Configuration",
		"Set Up Cloud Infrastructure":           "Deploy Applications",
		"Build Personal Finance Tracker":        "Deploy Applications",
		"Set Up Smart Backups":                  "Monitor Systems",
		"Find Error Patterns in Logs":           "Monitor Systems",
		"Automated Competitor Research":         "Monitor Systems",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Catalog:  defaultCatalogPath,
			Registry: defaultRegistryPath,
			StateDB:  defaultStateDBPath,
			EnvFile:  defaultEnvFile,
		},
		Registry: Registry{
			Backend:         defaultBackend,
			Mode:            defaultMode,
			SeedFromCatalog: true,
		},
		Catalog: Catalog{
			Backup:      true,
			Version:     defaultCatalogVersion,
			SourceLabel: defaultSourceLabel,
		},
		Records: Records{
			DefaultAuthor:     defaultAuthor,
			DefaultDate:       defaultDate,
			DefaultDifficulty: defaultDifficulty,
			DefaultCategory:   defaultCategory,
			DefaultRoles:      []string{defaultRole},
			Icons:             defaultIcons(),
			IconMap:           defaultIconMap(),
			TaskCategories:    defaultTaskCategories(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
