package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	api "git.home.luguber.info/inful/odata4gen/pkg/plugin"
)

// AppenderSetting is the settings key SettingAppender reads.
const AppenderSetting = "testSetting"

// SettingAppender appends the value of AppenderSetting to a generated file.
// The target defaults to <base>.go in the output directory; a first extra
// spec field overrides the file name.
type SettingAppender struct {
	logger *slog.Logger
	cfg    *Config
	target string
}

// NewSettingAppender is the factory registered as "SettingAppender".
func NewSettingAppender(logger *slog.Logger, cfg *Config) (Plugin, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	return &SettingAppender{logger: logger, cfg: cfg, target: cfg.BaseName + ".go"}, nil
}

func (a *SettingAppender) SetArgs(args []string) {
	if len(args) > 0 && args[0] != "" {
		a.target = args[0]
	}
}

func (a *SettingAppender) Execute(ctx context.Context) error {
	a.logger.InfoContext(ctx, "Executing SettingAppender")

	value := a.cfg.Setting(AppenderSetting)
	if value == "" {
		return fmt.Errorf("%s is empty", AppenderSetting)
	}

	path := filepath.Join(a.cfg.OutputDirectory, a.target)
	// #nosec G302,G304 -- path is inside the configured output directory
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(value); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	if err := api.Register("SettingAppender", NewSettingAppender); err != nil {
		panic(err)
	}
}
