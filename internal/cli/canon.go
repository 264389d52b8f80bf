package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lherron/datasetprep/internal/canon"
	"github.com/lherron/datasetprep/internal/render"
)

var canonCmd = &cobra.Command{
	Use:   "canon",
	Short: "Print the canonical top-level category table",
	Long: `Lists the EASA subject codes and the category id the study app expects
for each. Top-level categories carrying one of these codes are re-keyed by
'prepare --canonicalize-easa-top-level'.`,
	Args: cobra.NoArgs,
	RunE: runCanon,
}

var canonJSON bool

func init() {
	rootCmd.AddCommand(canonCmd)
	canonCmd.Flags().BoolVar(&canonJSON, "json", false, "Output as JSON")
}

func runCanon(cmd *cobra.Command, args []string) error {
	r := render.NewRenderer(cmd.OutOrStdout())
	entries := canon.EASA().Entries()
	if canonJSON {
		return r.RenderJSON(entries)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Code, strconv.FormatInt(e.ID, 10), e.Subject})
	}
	return r.RenderTable([]string{"CODE", "ID", "SUBJECT"}, rows)
}
