package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/oisee/polydist/pkg/polyfile"
	"github.com/spf13/cobra"
)

func newGenPolyCmd() *cobra.Command {
	var builtin bool
	var out string

	cmd := &cobra.Command{
		Use:   "gen-poly",
		Short: "Emit a polynomial set as a --poly-file-compatible JSON-lines file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !builtin {
				return fmt.Errorf("gen-poly: nothing to generate, pass --builtin")
			}
			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			for _, p := range polyfile.Builtin() {
				b, err := json.Marshal(p)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(w, string(b)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&builtin, "builtin", false, "emit the canned self-test polynomial set")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}
