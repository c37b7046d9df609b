package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tierledger/settle/commission"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		rootID  string
		input   string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Settle a batch of leaf inputs and store the log",
		Long: `Reads a JSON array of leaf inputs, for example

  [{"performerId":"D","amounts":{"casino":100,"slot":0,"losing":0}}]

from --input, or from stdin when --input is "-" or omitted, computes the
commission entries and stores them as a new settlement log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inputs, err := readInputs(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			l, err := a.svc.Run(cmd.Context(), rootID, inputs)
			if err != nil {
				return err
			}
			return printLog(cmd.OutOrStdout(), l, false, verbose)
		},
	}
	cmd.Flags().StringVar(&rootID, "root", "", "grandmaster the batch is settled under (required)")
	cmd.Flags().StringVar(&input, "input", "-", "JSON file of leaf inputs, - for stdin")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every entry with its breakdown")
	_ = cmd.MarkFlagRequired("root")
	return cmd
}

func readInputs(stdin io.Reader, path string) ([]commission.LeafInput, error) {
	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var inputs []commission.LeafInput
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	for i := range inputs {
		inputs[i].PerformerID = strings.TrimSpace(inputs[i].PerformerID)
	}
	return inputs, nil
}
