package constants

// Strategy represents the pacing strategy of a plan
type Strategy string

// ResourceKind represents the kind of a learning resource
type ResourceKind string

const (
	AppName            = "hsplan"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/hsplan/hsplan.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "hsplan-"
	BackupFileSuffix = ".db"

	// Plan defaults and limits
	DefaultLookaheadDays  = 7
	DefaultMaxUnitsPerDay = 1
	MinPreviewDays        = 1
	MaxPreviewDays        = 365
	AllDaysMask           = 0b1111111
	WeekdaysMask          = 0b0011111
	WeekendMask           = 0b1100000

	// Strategy constants
	StrategyPush    Strategy = "push"
	StrategyCatchUp Strategy = "catchup"
	StrategySmart   Strategy = "smart"

	// Resource Kind constants
	ResourceKindBook   ResourceKind = "book"
	ResourceKindTime   ResourceKind = "time"
	ResourceKindCustom ResourceKind = "custom"

	// Environment variables
	EnvConfig       = "HSPLAN_CONFIG"
	EnvDebug        = "HSPLAN_DEBUG"
	EnvDBConnection = "HSPLAN_DB_CONNECTION"
)
