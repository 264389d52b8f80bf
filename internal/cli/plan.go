package cli

import (
	"fmt"
	"strconv"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/lherron/datasetprep/internal/canon"
	"github.com/lherron/datasetprep/internal/cli/appctx"
	"github.com/lherron/datasetprep/internal/domain"
	"github.com/lherron/datasetprep/internal/render"
	"github.com/lherron/datasetprep/internal/schema"
	"github.com/lherron/datasetprep/internal/store"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the top-level category remap without applying it",
	Long: `Validates the dataset and computes which top-level categories would be
re-keyed to their canonical ids. Prints the remap table and a unified diff
of the top-level categories before and after. Nothing is written.

Fails if a canonical id is already held by an unrelated category.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.Options{NeedsDB: true}, runPlan),
}

var (
	planJSON   bool
	planNoDiff bool
)

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().String("db", "", "Path to the dataset SQLite file")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Output the plan as JSON")
	planCmd.Flags().BoolVar(&planNoDiff, "no-diff", false, "Skip the before/after diff")
	_ = planCmd.MarkFlagRequired("db")
}

func runPlan(app *appctx.App, cmd *cobra.Command, args []string) error {
	if err := schema.Validate(app.DB, schema.Required); err != nil {
		return err
	}

	categories := store.New(app.DB).Categories
	top, err := categories.TopLevel()
	if err != nil {
		return err
	}
	plan, err := canon.Plan(canon.EASA(), categories)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	r := render.NewRenderer(out)
	if planJSON {
		return r.RenderJSON(plan)
	}

	if len(plan) == 0 {
		printSuccess(cmd.ErrOrStderr(), "all top-level categories already canonical")
		return nil
	}

	rows := make([][]string, 0, len(plan))
	for _, p := range plan {
		rows = append(rows, []string{
			strconv.FormatInt(p.OldID, 10), strconv.FormatInt(p.NewID, 10), p.Code, p.Name,
		})
	}
	if err := r.RenderTable([]string{"OLD ID", "NEW ID", "CODE", "NAME"}, rows); err != nil {
		return err
	}

	if planNoDiff {
		return nil
	}
	diff, err := topLevelDiff(top, plan)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, diff)
	return nil
}

// topLevelDiff renders a unified diff of the top-level category listing
// before and after the plan is applied.
func topLevelDiff(top []domain.Category, plan []domain.Remap) (string, error) {
	renamed := make(map[int64]int64, len(plan))
	for _, p := range plan {
		renamed[p.OldID] = p.NewID
	}

	var before, after []string
	for _, c := range top {
		before = append(before, categoryLine(c.ID, c))
		id := c.ID
		if newID, ok := renamed[id]; ok {
			id = newID
		}
		after = append(after, categoryLine(id, c))
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        before,
		B:        after,
		FromFile: "categories (current)",
		ToFile:   "categories (canonical)",
		Context:  1,
	})
}

func categoryLine(id int64, c domain.Category) string {
	return fmt.Sprintf("%d\t%s\t%s\n", id, c.Code, c.Name)
}
