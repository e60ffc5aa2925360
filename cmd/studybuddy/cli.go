package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/studybuddyhq/studybuddy/pkg/config"
	"github.com/studybuddyhq/studybuddy/pkg/service"
)

func executeCLI() error {
	return buildRootCommand().Execute()
}

func buildRootCommand() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "studybuddy",
		Short: "AI study assistant with web search tools and hierarchical conversation memory",
		Long: strings.TrimSpace(`studybuddy is a research assistant for students.

It answers questions with Wikipedia, arXiv, web search, and URL extraction,
remembers the conversation across sessions, and cites its sources.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")

	root.AddCommand(newOnboardCommand())
	root.AddCommand(newChatCommand())
	root.AddCommand(newAskCommand())
	root.AddCommand(newStatsCommand())
	root.AddCommand(newCleanupCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newOnboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "onboard",
		Short:   "Initialize ~/.studybuddy config with defaults",
		Example: "  studybuddy onboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Config already exists at %s\n", path)
				return nil
			}
			if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Printf("Wrote default config to %s\n", path)
			fmt.Println("Set your provider API key, e.g. STUDYBUDDY_PROVIDERS_GROQ_API_KEY or edit the config file.")
			return nil
		},
	}
}

func newAskCommand() *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:     "ask [message]",
		Short:   "Send a one-shot question and print the answer",
		Args:    cobra.MinimumNArgs(1),
		Example: "  studybuddy ask \"What is the Pythagorean theorem?\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := service.New(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			result := svc.Search(cmd.Context(), service.SearchRequest{
				Message:        strings.Join(args, " "),
				ConversationID: conversationID,
			})
			printSearchResult(result)
			if result.Status != "success" {
				return fmt.Errorf("search failed: %s", result.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Continue an existing conversation")
	return cmd
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "stats [conversation-id]",
		Short:   "Show memory statistics for a conversation",
		Args:    cobra.ExactArgs(1),
		Example: "  studybuddy stats 3f6c9a1e-...",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := service.New(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			stats, err := svc.GetMemoryStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newCleanupCommand() *cobra.Command {
	var maxAgeHours int

	cmd := &cobra.Command{
		Use:     "cleanup",
		Short:   "Delete stored memories older than the age limit",
		Example: "  studybuddy cleanup --max-age-hours 24",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := service.New(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			hours := maxAgeHours
			if hours <= 0 {
				hours = cfg.Memory.MaxAgeHours
			}
			removed, err := svc.CleanupOldMemories(cmd.Context(), time.Duration(hours)*time.Hour)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d stored memories older than %dh\n", removed, hours)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxAgeHours, "max-age-hours", 0, "Age limit in hours (defaults to config)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build/version metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion()
			return nil
		},
	}
}

func printSearchResult(result *service.SearchResult) {
	fmt.Println(result.Response)
	if len(result.SearchedWebsites) > 0 {
		fmt.Println("\nSearched websites:")
		for _, url := range result.SearchedWebsites {
			fmt.Println("  -", url)
		}
	}
	fmt.Printf("\n[conversation: %s", result.ConversationID)
	if result.MessageID != "" {
		fmt.Printf("  message: %s", result.MessageID)
	}
	fmt.Println("]")
}
