package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hivemind/internal/brain"
	"hivemind/internal/config"
)

var (
	ingestCollection string
	ingestBatchSize  int
)

// ingestCmd loads knowledge files into TheBrain so brainscan queries have
// something to retrieve.
var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest text files into TheBrain knowledge store",
	Long: `Reads .txt and .md files (directories are walked recursively),
splits them into paragraph chunks, and inserts the chunks into the
knowledge store collection used by brainscan queries.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCollection, "collection", "", "Target collection (default from config)")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 50, "Passages per insert batch")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}
	collection := ingestCollection
	if collection == "" {
		collection = cfg.Brain.Collection
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store, err := brain.NewWeaviateStore(ctx, brain.WeaviateConfig{
		BaseURL: cfg.Brain.BaseURL,
		Timeout: config.ParseTimeout(cfg.Brain.Timeout, 30*time.Second),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	var passages []brain.Passage
	for _, root := range args {
		collected, err := collectPassages(root)
		if err != nil {
			return err
		}
		passages = append(passages, collected...)
	}
	if len(passages) == 0 {
		return fmt.Errorf("no ingestible content found (looked for .txt and .md files)")
	}

	total := 0
	for start := 0; start < len(passages); start += ingestBatchSize {
		end := start + ingestBatchSize
		if end > len(passages) {
			end = len(passages)
		}
		if err := store.AddPassages(ctx, collection, passages[start:end]); err != nil {
			return fmt.Errorf("ingest failed after %d passage(s): %w", total, err)
		}
		total += end - start
	}

	fmt.Printf("Ingested %d passage(s) into %s\n", total, collection)
	return nil
}

// collectPassages walks a path and chunks every text file by blank-line
// separated paragraph.
func collectPassages(root string) ([]brain.Passage, error) {
	var passages []brain.Passage

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		for _, chunk := range splitParagraphs(string(data)) {
			passages = append(passages, brain.Passage{Text: chunk, Source: path})
		}
		return nil
	})
	return passages, err
}

// splitParagraphs splits text on blank lines, dropping empty chunks.
func splitParagraphs(text string) []string {
	var chunks []string
	for _, part := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks
}
