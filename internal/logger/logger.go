package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/hsplan/internal/constants"
)

// Logger is the process-wide logger. It stays nil until Init is called,
// and every helper below is a no-op in that state.
var Logger *log.Logger

type Config struct {
	Debug     bool
	ConfigDir string
}

// LogPath returns the rotating log file used for configDir.
func LogPath(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

// Init creates <ConfigDir>/logs and points Logger at a rotating file there.
// Debug mode lowers the level to debug, reports callers and mirrors output to stderr.
func Init(cfg Config) error {
	path := LogPath(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // MB
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}

	var out io.Writer = file
	level := log.WarnLevel
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, file)
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
	})
	return nil
}

// ForPlan returns a child logger tagged with the plan id, or nil before Init.
func ForPlan(planID string) *log.Logger {
	if Logger == nil {
		return nil
	}
	return Logger.With("plan", planID)
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs at fatal level when a logger exists and always exits with status 1.
func Fatal(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
