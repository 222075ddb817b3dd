package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/fretdrill/internal/model"
	"github.com/verte-zerg/fretdrill/internal/music"
)

// exportDoc is the on-disk shape of `fretdrill export`.
type exportDoc struct {
	ExportedAt    time.Time                             `json:"exported_at" yaml:"exported_at"`
	BaselineMs    int64                                 `json:"baseline_ms,omitempty" yaml:"baseline_ms,omitempty"`
	Modes         map[string]map[string]model.ItemStats `json:"modes" yaml:"modes"`
	EnabledGroups map[string][]int                      `json:"enabled_groups,omitempty" yaml:"enabled_groups,omitempty"`
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump stored item stats as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportMode, "mode", "", "quiz mode (default: all)")
	cmd.Flags().StringVar(&exportFormat, "format", defaultExportFormat, "output format: json or yaml")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	if format != "json" && format != "yaml" {
		return fmt.Errorf("--format must be json or yaml")
	}
	names := music.Names()
	if exportMode != "" {
		mode, err := music.Lookup(exportMode, music.Settings{})
		if err != nil {
			return err
		}
		names = []string{mode.Name()}
	}

	logger, closeLog := openLogger(debugLog)
	defer closeLog()
	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	doc := exportDoc{
		ExportedAt: time.Now().UTC(),
		Modes:      map[string]map[string]model.ItemStats{},
	}
	if baseline, ok, err := st.Baseline(ctx); err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	} else if ok {
		doc.BaselineMs = baseline.Milliseconds()
	}
	for _, name := range names {
		ns, err := st.Namespace(ctx, name)
		if err != nil {
			return err
		}
		doc.Modes[name] = ns.All()
		groups, ok, err := st.EnabledGroups(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to load enabled groups: %w", err)
		}
		if ok {
			if doc.EnabledGroups == nil {
				doc.EnabledGroups = map[string][]int{}
			}
			doc.EnabledGroups[name] = groups
		}
	}
	return writeExport(cmd.OutOrStdout(), doc, format)
}

func writeExport(w io.Writer, doc exportDoc, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}
