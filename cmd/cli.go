package main

import (
	"fmt"
	"strings"

	"tomatobar/internal/core/timefmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TOMATOBAR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   appName,
		Short: "Pomodoro and stopwatch timer for a lifeos-pro Obsidian vault",
		Long: `tomatobar runs a pomodoro / stopwatch timer in the system tray and records
finished sessions into a lifeos-pro vault: per-device record files, the
project section of the daily note and the daily habit checkbox.

Without a subcommand it starts the tray app.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(cmd, v)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String(keyVault, "", "Vault root for this run (env TOMATOBAR_VAULT)")
	flags.String(keyLogLevel, "info", "Log level: debug, info, warn, error (env TOMATOBAR_LOG_LEVEL)")
	flags.String(keyConfigDir, "", "Directory holding tomatobar settings and journal (env TOMATOBAR_CONFIG_DIR)")
	_ = flags.MarkHidden(keyConfigDir)
	_ = v.BindPFlags(flags)

	root.AddCommand(
		newVaultCommand(v),
		newConfigCommand(v),
		newProjectsCommand(v),
		newTasksCommand(v),
		newStatsCommand(v),
		newHistoryCommand(v),
		newAutostartCommand(v),
	)
	return root
}

// withEnvironment loads the environment for a subcommand and closes it afterwards.
func withEnvironment(v *viper.Viper, options environmentOptions, run func(*cobra.Command, []string, *environment) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(v, cmd.ErrOrStderr(), options)
		if err != nil {
			return err
		}
		defer env.Close()
		return run(cmd, args, env)
	}
}

func newVaultCommand(v *viper.Viper) *cobra.Command {
	vaultCmd := &cobra.Command{
		Use:   "vault",
		Short: "Show or change the configured vault",
	}

	vaultCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the vault in use",
		Args:  cobra.NoArgs,
		RunE: withEnvironment(v, environmentOptions{}, func(cmd *cobra.Command, args []string, env *environment) error {
			path := env.controller.VaultPath()
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No vault configured.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	})

	vaultCmd.AddCommand(&cobra.Command{
		Use:   "set <path>",
		Short: "Validate and save the vault path",
		Args:  cobra.ExactArgs(1),
		RunE: withEnvironment(v, environmentOptions{}, func(cmd *cobra.Command, args []string, env *environment) error {
			if _, err := env.controller.SetVaultPath(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Vault set to %s\n", env.controller.VaultPath())
			return nil
		}),
	})

	return vaultCmd
}

func newConfigCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the timer configuration read from the vault plugin",
		Args:  cobra.NoArgs,
		RunE: withEnvironment(v, environmentOptions{}, func(cmd *cobra.Command, args []string, env *environment) error {
			config := env.controller.Config()
			out := cmd.OutOrStdout()
			if env.controller.VaultPath() == "" {
				fmt.Fprintln(out, "No vault configured, showing defaults.")
			}
			fmt.Fprintf(out, "pomodoroDuration:   %d\n", config.PomodoroDuration)
			fmt.Fprintf(out, "shortBreakDuration: %d\n", config.ShortBreakDuration)
			fmt.Fprintf(out, "longBreakDuration:  %d\n", config.LongBreakDuration)
			fmt.Fprintf(out, "longBreakInterval:  %d\n", config.LongBreakInterval)
			fmt.Fprintf(out, "autoStartBreak:     %t\n", config.AutoStartBreak)
			fmt.Fprintf(out, "pomodoroSound:      %t\n", config.PomodoroSound)
			return nil
		}),
	}
}

func newProjectsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List vault projects",
		Args:  cobra.NoArgs,
		RunE: withEnvironment(v, environmentOptions{}, func(cmd *cobra.Command, args []string, env *environment) error {
			projects, err := env.controller.ScanProjects()
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			for _, project := range projects {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", project.DisplayName, project.ReadmePath)
			}
			return nil
		}),
	}
}

func newTasksCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List open tasks in the vault",
		Args:  cobra.NoArgs,
		RunE: withEnvironment(v, environmentOptions{}, func(cmd *cobra.Command, args []string, env *environment) error {
			tasks, err := env.controller.ScanTasks()
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No open tasks.")
				return nil
			}
			for _, task := range tasks {
				line := fmt.Sprintf("%s:%d  %s", task.FilePath, task.LineNumber, task.Text)
				if task.ProjectTag != "" {
					line += "  " + task.ProjectTag
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		}),
	}
}

func newStatsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's focus time across all devices",
		Args:  cobra.NoArgs,
		RunE: withEnvironment(v, environmentOptions{}, func(cmd *cobra.Command, args []string, env *environment) error {
			stats, err := env.controller.TodayStats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Today: %s, %d pomodoros\n", timefmt.Format(stats.TotalMinutes), stats.PomodoroCount)
			return nil
		}),
	}
}

func newHistoryCommand(v *viper.Viper) *cobra.Command {
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recently finished sessions from the local journal",
		Args:  cobra.NoArgs,
		RunE: withEnvironment(v, environmentOptions{openJournal: true}, func(cmd *cobra.Command, args []string, env *environment) error {
			sessions, err := env.requireJournal()
			if err != nil {
				return err
			}
			entries, err := sessions.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No sessions recorded.")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(out, "%s  %-9s %-11s %4d min  %s\n",
					entry.EndedAt.Local().Format("2006-01-02 15:04"),
					entry.Mode,
					entry.Status,
					entry.Minutes,
					entry.ProjectPath)
				if entry.SyncError != "" {
					fmt.Fprintf(out, "    sync error: %s\n", entry.SyncError)
				}
			}
			return nil
		}),
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Number of sessions to show")
	return historyCmd
}

func newAutostartCommand(v *viper.Viper) *cobra.Command {
	autostartCmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage starting tomatobar at login",
	}

	setter := func(enabled bool, message string) func(*cobra.Command, []string, *environment) error {
		return func(cmd *cobra.Command, args []string, env *environment) error {
			if err := env.controller.SetAutostart(enabled); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		}
	}

	autostartCmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Start tomatobar at login",
			Args:  cobra.NoArgs,
			RunE:  withEnvironment(v, environmentOptions{}, setter(true, "Autostart enabled.")),
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop starting tomatobar at login",
			Args:  cobra.NoArgs,
			RunE:  withEnvironment(v, environmentOptions{}, setter(false, "Autostart disabled.")),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether tomatobar starts at login",
			Args:  cobra.NoArgs,
			RunE: withEnvironment(v, environmentOptions{}, func(cmd *cobra.Command, args []string, env *environment) error {
				enabled, err := env.controller.AutostartEnabled()
				if err != nil {
					return err
				}
				if enabled {
					fmt.Fprintln(cmd.OutOrStdout(), "Autostart is enabled.")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Autostart is disabled.")
				}
				return nil
			}),
		},
	)
	return autostartCmd
}
