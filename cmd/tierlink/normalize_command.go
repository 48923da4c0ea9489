package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tierlink/internal/csvio"
	"tierlink/internal/textutil"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var inPath string
	var outPath string
	var columns []string
	var noise []string
	var foldAccents bool
	var nullValues []string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Strip punctuation and noise words from CSV columns",
		Long: "Normalizes the named columns of a CSV file so they can be compared with exact\n" +
			"tiers. Noise words default to normalize.noise_words from the configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			if len(columns) == 0 {
				return errors.New("at least one --column is required")
			}
			if !cmd.Flags().Changed("noise") {
				noise = cfg.Normalize.NoiseWords
			}
			if !cmd.Flags().Changed("fold-accents") {
				foldAccents = cfg.Normalize.FoldAccents
			}

			set, err := csvio.ReadFile(inPath, csvio.Options{NullValues: nullValues})
			if err != nil {
				return err
			}
			normalizer := textutil.NewNormalizer(noise, textutil.WithAccentFolding(foldAccents))
			for _, column := range columns {
				if set, err = normalizer.Column(set, strings.TrimSpace(column)); err != nil {
					return err
				}
			}

			if strings.TrimSpace(outPath) == "" {
				return csvio.Write(cmd.OutOrStdout(), set, csvio.WriteOptions{})
			}
			target := cfg.OutputPath(strings.TrimSpace(outPath))
			if _, err := writeResultFile(cfg, target, set); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Normalized %d rows into %s\n", set.Len(), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "Input CSV file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output CSV file (stdout when empty)")
	cmd.Flags().StringSliceVar(&columns, "column", nil, "Column to normalize (repeatable)")
	cmd.Flags().StringSliceVar(&noise, "noise", nil, "Noise words to remove")
	cmd.Flags().BoolVar(&foldAccents, "fold-accents", false, "Remove accents before comparing")
	cmd.Flags().StringSliceVar(&nullValues, "null", nil, "Cell values read as null")
	return cmd
}
