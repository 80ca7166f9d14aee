// Command clinicctl runs the schedule engine on JSON files from the shell.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var policyPath string
	cmd := &cobra.Command{
		Use:          "clinicctl",
		Short:        "Clinic daily schedule engine",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&policyPath, "policy", "", "path to a YAML policy file (defaults when empty)")

	loadPolicy := func() (config.Policy, error) {
		p, err := config.LoadPolicy(policyPath)
		if err != nil {
			return config.Policy{}, fmt.Errorf("load policy: %w", err)
		}
		return p, nil
	}
	cmd.AddCommand(newGenerateCmd(loadPolicy), newSelectCancelCmd(loadPolicy))
	return cmd
}

func readJSON(path string, stdin io.Reader, out any) error {
	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
