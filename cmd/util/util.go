package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/fsSync/lib/common"
	"github.com/ValentinKolb/fsSync/lib/counter"
	"github.com/ValentinKolb/fsSync/lib/lockmgr"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStorageFlags adds the flags shared by all commands that touch the storage root
func SetupStorageFlags(cmd *cobra.Command) {
	key := "root"
	cmd.PersistentFlags().String(key, common.DefaultRoot, WrapString("Directory below which lock and counter files are stored. All cooperating processes must use the same root"))

	key = "poll-interval"
	cmd.PersistentFlags().Duration(key, common.DefaultPollInterval, WrapString("Sleep between two checks of polling waits (e.g. lock acquire --timeout)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, common.DefaultLogLevel, WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print metrics in Prometheus text format to stderr before exiting"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("fssync")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetConfig reads the configuration from viper
func GetConfig() common.Config {
	return common.Config{
		Root:         viper.GetString("root"),
		PollInterval: viper.GetDuration("poll-interval"),
		LogLevel:     viper.GetString("log-level"),
		Metrics:      viper.GetBool("metrics"),
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// Setup binds the flags of cmd, validates the configuration and initializes logging.
// It is meant to be used as PersistentPreRunE of the command groups.
func Setup(cmd *cobra.Command) (common.Config, error) {
	if err := BindCommandFlags(cmd); err != nil {
		return common.Config{}, err
	}

	conf := GetConfig()
	if err := conf.Validate(); err != nil {
		return common.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := common.InitLoggers(conf); err != nil {
		return common.Config{}, err
	}
	return conf, nil
}

// NewLockManager creates the lock manager for conf
func NewLockManager(conf common.Config) lockmgr.ILockManager {
	return lockmgr.NewLockManager(
		pathmap.NewPathMapper(conf.Root),
		lockmgr.WithPollInterval(conf.PollInterval),
	)
}

// NewCounterStore creates the counter store for conf
func NewCounterStore(conf common.Config) counter.ICounterStore {
	return counter.NewCounterStore(pathmap.NewPathMapper(conf.Root))
}
