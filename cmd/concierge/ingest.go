package concierge

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyculture/soco-concierge/pkg/config"
	"github.com/happyculture/soco-concierge/pkg/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file-or-directory...]",
	Short: "Load hotel knowledge into the vector store",
	Long: `Read hotel knowledge JSON files, embed their documents, and write
them to the configured knowledge store. Each file holds an array of
documents:

  [{"id": "rooms-01", "text": "...", "metadata": {"type": "room", "title": "Chambres"}}]

Passing a directory loads every *.json file in it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer emb.Close()

	var docs []ingest.Document
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		var loaded []ingest.Document
		if info.IsDir() {
			loaded, err = ingest.LoadDir(path)
		} else {
			loaded, err = ingest.LoadFile(path)
		}
		if err != nil {
			return err
		}
		docs = append(docs, loaded...)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found in %v", args)
	}

	loader := ingest.NewLoader(emb, index, log)
	n, err := loader.Ingest(cmd.Context(), docs)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d chunks from %d documents\n", n, len(docs))
	return nil
}
