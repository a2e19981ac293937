package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"kumarajiva/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCmd(owner *int64) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import vocabulary from a JSON map or array of entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			entries, err := decodeEntries(raw)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.vocab.Import(cmd.Context(), a.scope(*owner), entries)
			if err != nil {
				return err
			}

			a.logger.Info("Import finished",
				zap.Int("imported", res.Imported),
				zap.Int("skipped", len(res.Skipped)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", res.Imported, len(res.Skipped))
			for _, w := range res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "  skipped: %s\n", w)
			}
			return nil
		},
	}
}

func newExportCmd(owner *int64) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export vocabulary as a JSON map keyed by word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.vocab.Export(cmd.Context(), a.scope(*owner))
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := encodeEntries(w, entries); err != nil {
				return err
			}

			a.logger.Info("Export finished", zap.Int("words", len(entries)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

// decodeEntries accepts either the export shape (a map keyed by word) or a
// plain array. A map entry without a word takes its key.
func decodeEntries(raw []byte) ([]domain.VocabularyEntry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty import file")
	}

	if raw[0] == '[' {
		var list []domain.VocabularyEntry
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode entries: %w", err)
		}
		return list, nil
	}

	var byWord map[string]domain.VocabularyEntry
	if err := json.Unmarshal(raw, &byWord); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}

	keys := make([]string, 0, len(byWord))
	for k := range byWord {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]domain.VocabularyEntry, 0, len(byWord))
	for _, k := range keys {
		e := byWord[k]
		if e.Word == "" {
			e.Word = k
		}
		list = append(list, e)
	}
	return list, nil
}

func encodeEntries(w io.Writer, entries map[string]domain.VocabularyEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return nil
}
