// cmd/tools/schedule-cli/workers.go
package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"renovation-workers/pkg/registry"
)

func newWorkersCmd() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List the Zeebe task types and the BPMN errors they throw",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.Default()
			if registryPath != "" {
				reg, err = registry.LoadRegistry(registryPath)
			}
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Task Type", "Category", "Timeout", "Retries", "BPMN Errors"})
			for _, a := range reg.Activities {
				t.AppendRow(table.Row{a.TaskType, a.Category, a.Timeout, a.Retries, strings.Join(a.ErrorCodes, "\n")})
				t.AppendSeparator()
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&registryPath, "registry", "", "Activity registry JSON (defaults to the built-in registry)")
	return cmd
}
