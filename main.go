package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"deck-player/app"
	"deck-player/config"
	"deck-player/debug"
)

var rootCmd = &cobra.Command{
	Use:   "deck-player",
	Short: "Play video clips from a Stream Deck or Launchpad",
	Long: "deck-player assigns video files to nine slots and plays them on a\n" +
		"second screen. Slots are triggered from a hardware button deck or\n" +
		"from the terminal control panel; both always show the same state.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringP("config", "C", "", "Path to config.json (default ~/.config/deck-player/config.json)")
	rootCmd.Flags().BoolP("debug", "d", false, "Write a debug log (overrides log.enabled)")
	rootCmd.Flags().StringP("settings", "s", "", "Import a settings export at startup")
	rootCmd.Flags().Bool("write-config", false, "Write the effective config and exit")
}

func run(cmd *cobra.Command, _ []string) error {
	fs := afero.NewOsFs()

	path := lo.Must(cmd.Flags().GetString("config"))
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(fs, path)
	if err != nil {
		return err
	}

	if lo.Must(cmd.Flags().GetBool("write-config")) {
		if err := cfg.Save(fs, path); err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}

	if lo.Must(cmd.Flags().GetBool("debug")) {
		cfg.Log.Enabled = true
	}

	var teaOpts []tea.ProgramOption
	if cfg.Log.Enabled {
		logPath := cfg.LogPath()
		if err := debug.Enable(fs, logPath, cfg.Log.Level); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()

		// stray prints and panics go to the log; the panel keeps the terminal
		term, err := redirectStdIO(logPath)
		if err != nil {
			return fmt.Errorf("redirect output: %w", err)
		}
		teaOpts = append(teaOpts, tea.WithOutput(term))
	}
	teaOpts = append(teaOpts, tea.WithAltScreen())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug.Log("main", "config %s driver=%s", path, cfg.Deck.Driver)
	return app.Run(ctx, app.Options{
		Config:       cfg,
		Fs:           fs,
		SettingsPath: lo.Must(cmd.Flags().GetString("settings")),
		TeaOptions:   teaOpts,
	})
}

func main() {
	cc.Init(&cc.Config{
		RootCmd:       rootCmd,
		Headings:      cc.HiCyan + cc.Bold + cc.Underline,
		Commands:      cc.HiYellow + cc.Bold,
		Example:       cc.Italic,
		ExecName:      cc.Bold,
		Flags:         cc.Bold,
		FlagsDataType: cc.Italic + cc.HiBlue,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
