package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aliskhannn/quran-assistant-bot/internal/app"
	"github.com/aliskhannn/quran-assistant-bot/internal/config"
	"github.com/aliskhannn/quran-assistant-bot/internal/interpreter"
	"github.com/aliskhannn/quran-assistant-bot/internal/logger"
	"github.com/aliskhannn/quran-assistant-bot/internal/repository"
)

const redacted = "********"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "assistant",
		Short:         "Ask the Quran assistant from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().Bool("verbose", false, "write logs to stderr")
	root.PersistentFlags().String("session", "", "session id (default: a new random id)")

	root.AddCommand(
		newAskCmd(),
		newChatCmd(),
		newCountCmd(),
		newVerseCmd(),
		newCalcCmd(),
		newConfigCmd(),
	)
	return root
}

// loadApp builds the assistant from the configuration. Logs are discarded
// unless --verbose is set.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	lg := zap.NewNop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		if lg, err = logger.New(cfg); err != nil {
			return nil, err
		}
	}

	return app.New(cmd.Context(), cfg, lg)
}

func sessionFlag(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("session")
	if id == "" {
		id = uuid.NewString()
	}
	return id
}

func loadQuran() (*repository.QuranRepository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return repository.NewQuranRepository(cfg.Data.QuranPath)
}

// --- ask ---

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question",
		Long: `Ask a single question and print the answer.

Examples:
  assistant ask "نماز صبح چند رکعت است؟"
  assistant ask --session my-session "آیه ۲ در سوره ۱"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			reply, err := a.Assistant.Ask(cmd.Context(), sessionFlag(cmd), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printTurns(cmd.OutOrStdout(), reply.Turns)
			return nil
		},
	}
}

// --- chat ---

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Start an interactive conversation on stdin.

Type "/reset" to clear the conversation and "exit" to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			session := sessionFlag(cmd)
			printStatus("session", "%s", session)

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, colorize(colorCyan, "> "))
				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
					continue
				case line == "exit" || line == "quit":
					return nil
				case line == "/reset":
					if err := a.Assistant.Reset(ctx, session); err != nil {
						return err
					}
					printSuccess("conversation cleared")
					continue
				case strings.HasPrefix(line, "/"):
					printWarning("unknown command %s", line)
					continue
				}

				reply, err := a.Assistant.Ask(ctx, session, line)
				if err != nil {
					return err
				}
				printTurns(out, reply.Turns)
			}
			return scanner.Err()
		},
	}
}

// --- count ---

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <word>",
		Short: "Count how often a word occurs in the Quran",
		Long: `Count how often a word occurs in the Quran.

The embedded corpus holds a sample of five surahs. Set DATA_QURAN_PATH or
data.quran_path to a full corpus file to count over the whole Quran.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quran, err := loadQuran()
			if err != nil {
				return err
			}

			n := interpreter.NewWordFrequency(quran).Count(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", args[0], n)
			return nil
		},
	}
}

// --- verse ---

func newVerseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verse <surah> <ayah>",
		Short: "Show a verse with its translation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			surah, err := strconv.Atoi(args[0])
			if err != nil || surah < 1 {
				return fmt.Errorf("invalid surah number %q", args[0])
			}
			ayah, err := strconv.Atoi(args[1])
			if err != nil || ayah < 1 {
				return fmt.Errorf("invalid ayah number %q", args[1])
			}

			quran, err := loadQuran()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), interpreter.NewVerseLookup(quran).Lookup(surah, ayah))
			return nil
		},
	}
}

// --- calc ---

func newCalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc <expression>",
		Short: "Evaluate an arithmetic expression or a linear equation",
		Long: `Evaluate an arithmetic expression or a linear equation.

Examples:
  assistant calc "10 - 2 * 3"
  assistant calc "x + 5 = 10"
  assistant calc "۲ به توان ۳"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var calc interpreter.Arithmetic
			expr := strings.Join(args, " ")

			if _, err := calc.Solve(expr); err != nil {
				return fmt.Errorf("calc: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), calc.Answer(expr))
			return nil
		},
	}
}

// --- config ---

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as YAML, secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			shown := *cfg
			if shown.TelegramAPIToken != "" {
				shown.TelegramAPIToken = redacted
			}
			if shown.DB.URL != "" {
				shown.DB.URL = redacted
			}
			if shown.Redis.URL != "" {
				shown.Redis.URL = redacted
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(shown); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	return configCmd
}
