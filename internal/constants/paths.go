package constants

// On-disk layout. Every persisted entity lives under the project-local
// .sdlc directory:
//
//	.sdlc/state.yaml
//	.sdlc/config.yaml
//	.sdlc/features/<slug>/manifest.yaml
//	.sdlc/milestones/<slug>/manifest.yaml
//	.sdlc/milestones/<slug>/wave_plan.yaml
//	.sdlc/logs/sdlc.log
const (
	// ProjectDir is the name of the project-local engine directory.
	ProjectDir = ".sdlc"

	// StateFileName is the name of the global State document.
	StateFileName = "state.yaml"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "config.yaml"

	// FeaturesDir is the directory holding feature entities.
	FeaturesDir = "features"

	// MilestonesDir is the directory holding milestone entities.
	MilestonesDir = "milestones"

	// ManifestFileName is the per-entity document name.
	ManifestFileName = "manifest.yaml"

	// WavePlanFileName is the milestone-scoped wave plan document name.
	WavePlanFileName = "wave_plan.yaml"

	// LogsDir is the directory holding the rotated engine log.
	LogsDir = "logs"

	// LogFileName is the engine log file name.
	LogFileName = "sdlc.log"
)

// Log rotation settings.
const (
	// LogMaxSizeMB is the size a log file may reach before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is how long rotated files are retained.
	LogMaxAgeDays = 30
)

// Identifier and sizing limits.
const (
	// SlugMaxLen is the maximum length of a feature or milestone slug.
	SlugMaxLen = 64

	// HistoryCap is the maximum number of retained State history
	// entries; older entries are trimmed on write.
	HistoryCap = 200
)

// EnvPrefix is the environment variable prefix for configuration
// overrides (e.g. SDLC_GATES_DEFAULT_TIMEOUT_SECONDS).
const EnvPrefix = "SDLC"
