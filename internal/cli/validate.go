package cli

import (
	"github.com/spf13/cobra"

	"github.com/lherron/datasetprep/internal/cli/appctx"
	"github.com/lherron/datasetprep/internal/render"
	"github.com/lherron/datasetprep/internal/schema"
	"github.com/lherron/datasetprep/internal/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that a dataset has the required tables and columns",
	Long: `Reads the column sets of questions, categories, attachments and
category_groups and fails on the first table that is missing or lacks a
required column. The database is not modified.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.Options{NeedsDB: true}, runValidate),
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("db", "", "Path to the dataset SQLite file")
	_ = validateCmd.MarkFlagRequired("db")
}

// validateResult is printed on success.
type validateResult struct {
	DB     string         `json:"db" yaml:"db"`
	Valid  bool           `json:"valid" yaml:"valid"`
	Counts map[string]int `json:"counts" yaml:"counts"`
}

func runValidate(app *appctx.App, cmd *cobra.Command, args []string) error {
	if err := schema.Validate(app.DB, schema.Required); err != nil {
		return err
	}
	app.Log.Debug().Str("db", app.DB.Path()).Msg("schema valid")

	counts, err := store.New(app.DB).Counts()
	if err != nil {
		return err
	}
	result := validateResult{DB: app.DB.Path(), Valid: true, Counts: map[string]int{}}
	for _, c := range counts {
		result.Counts[c.Table] = c.Rows
	}

	printSuccess(cmd.ErrOrStderr(), "schema ok: %s", app.DB.Path())
	return render.NewRenderer(cmd.OutOrStdout()).Render(render.Format(app.Config.Output), result)
}
