package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/studybuddyhq/studybuddy/pkg/service"
)

func newChatCommand() *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive study session",
		Long:  "Run an interactive REPL session. The assistant remembers the conversation and cites the websites it consulted.",
		Example: strings.Join([]string{
			"  studybuddy chat",
			"  studybuddy chat --conversation 3f6c9a1e-...",
		}, "\n"),
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			scheduler, err := service.NewCleanupScheduler(svc, cfg.Memory.CleanupCron,
				time.Duration(cfg.Memory.MaxAgeHours)*time.Hour)
			if err != nil {
				return err
			}
			scheduler.Start(ctx)
			defer scheduler.Stop()

			runChat(ctx, svc, conversationID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Continue an existing conversation")
	return cmd
}

func runChat(ctx context.Context, svc *service.Service, conversationID string) {
	fmt.Println("Study Buddy ready. Ask anything, /stats for memory stats, /quit to exit.")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "you> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".studybuddy_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		fmt.Println("Falling back to simple input mode...")
		simpleChatMode(ctx, svc, conversationID)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch {
		case input == "/quit" || input == "/exit":
			fmt.Println("Goodbye!")
			return
		case input == "/stats":
			printStats(ctx, svc, conversationID)
			continue
		}

		result := svc.Search(ctx, service.SearchRequest{
			Message:        input,
			ConversationID: conversationID,
		})
		conversationID = result.ConversationID

		fmt.Println("\nbuddy>", result.Response)
		if len(result.SearchedWebsites) > 0 {
			fmt.Println("\nSearched websites:")
			for _, url := range result.SearchedWebsites {
				fmt.Println("  -", url)
			}
		}
		fmt.Println()
	}
}

func simpleChatMode(ctx context.Context, svc *service.Service, conversationID string) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			fmt.Println("Goodbye!")
			return
		}

		result := svc.Search(ctx, service.SearchRequest{
			Message:        input,
			ConversationID: conversationID,
		})
		conversationID = result.ConversationID
		fmt.Println("\nbuddy>", result.Response)
		fmt.Println()
	}
}

func printStats(ctx context.Context, svc *service.Service, conversationID string) {
	if conversationID == "" {
		fmt.Println("No conversation yet.")
		return
	}
	stats, err := svc.GetMemoryStats(ctx, conversationID)
	if err != nil {
		fmt.Println("Stats unavailable:", err)
		return
	}
	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		fmt.Println("Stats unavailable:", err)
		return
	}
	fmt.Println(string(out))
}
