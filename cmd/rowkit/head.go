package main

import (
	"github.com/spf13/cobra"

	"rowkit/internal/logging"
	"rowkit/internal/spec"
	"rowkit/sink/stdout"
	"rowkit/source"
	_ "rowkit/source/file"
)

type headFlags struct {
	input     string
	rows      int
	sheet     string
	delimiter string
}

func newHeadCmd() *cobra.Command {
	var f headFlags
	cmd := &cobra.Command{
		Use:   "head",
		Short: "Load a file and print its first rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.L().Debug("starting processing", "input", f.input)
			kind, err := source.TypeForPath(f.input)
			if err != nil {
				return err
			}
			src, err := source.NewAdapter(kind)
			if err != nil {
				return err
			}
			defer src.Close()
			if err := src.Configure(spec.SourceSpec{Path: f.input, Sheet: f.sheet, Delimiter: f.delimiter}); err != nil {
				return err
			}
			ds, err := src.Load(cmd.Context())
			if err != nil {
				logging.L().Error("load failed", "input", f.input, "err", err)
				return err
			}
			if err := stdout.New(cmd.OutOrStdout(), f.rows).Write(cmd.Context(), ds); err != nil {
				return err
			}
			logging.L().Debug("finished processing", "rows", ds.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.input, "input", "", "csv, json or xlsx file")
	cmd.Flags().IntVar(&f.rows, "rows", stdout.DefaultMaxRows, "rows to print (negative = all)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "xlsx sheet (default: first)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "csv field delimiter")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
