package concierge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyculture/soco-concierge/pkg/config"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question from the command line",
	Long: `Run one question through the pipeline and print the answer with
its intent, sources, and action flag. Useful for testing the knowledge
base without starting the server.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	index, err := newIndex(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open knowledge store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = index.Close(closeCtx)
	}()

	engine, err := buildEngine(cfg, index, log)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	question := strings.Join(args, " ")
	resp := engine.Process(cmd.Context(), question)

	fmt.Println(resp.Answer)
	fmt.Println()
	fmt.Printf("intent:          %s\n", resp.Intent)
	fmt.Printf("requires_action: %t\n", resp.RequiresAction)
	if len(resp.Sources) > 0 {
		fmt.Printf("sources:         %s\n", strings.Join(resp.Sources, ", "))
	}
	return nil
}
