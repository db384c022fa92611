package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init initializes the global logger. Logs always go to stderr; when a
// writable log directory can be resolved they additionally go to a rotating
// file. Stdout is reserved for the JSON-RPC protocol and never logged to.
func Init(verbose bool) {
	// Load .env from the binary directory so LOGS_FOLDER is available even
	// though Init runs before config.Load.
	exePath, exeErr := os.Executable()
	if exeErr == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exePath), ".env"))
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	dir, ok := resolveLogDir(exePath, exeErr)

	writer := io.Writer(console)
	if ok {
		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "schedrisk-mcp.log"),
			MaxSize:    16, // megabytes
			MaxBackups: 8,
			MaxAge:     90, // days
			Compress:   true,
		}
		writer = zerolog.MultiLevelWriter(console, fileWriter)
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	if !ok {
		log.Warn().Msg("No writable log directory, file logging disabled")
	}
}

// resolveLogDir picks LOGS_FOLDER, else <binary dir>/logs, and verifies it is
// writable. File logging is skipped rather than fatal when it is not.
func resolveLogDir(exePath string, exeErr error) (string, bool) {
	dir := os.Getenv("LOGS_FOLDER")
	if dir == "" {
		if exeErr != nil {
			dir = "logs"
		} else {
			dir = filepath.Join(filepath.Dir(exePath), "logs")
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", false
	}

	probe := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return "", false
	}
	_ = os.Remove(probe)

	return dir, true
}
