package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lherron/datasetprep/internal/attach"
	"github.com/lherron/datasetprep/internal/canon"
	"github.com/lherron/datasetprep/internal/cli/appctx"
	"github.com/lherron/datasetprep/internal/config"
	"github.com/lherron/datasetprep/internal/domain"
	"github.com/lherron/datasetprep/internal/metrics"
	"github.com/lherron/datasetprep/internal/render"
	"github.com/lherron/datasetprep/internal/report"
	"github.com/lherron/datasetprep/internal/schema"
	"github.com/lherron/datasetprep/internal/source"
	"github.com/lherron/datasetprep/internal/store"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Prepare a dataset and its images for the app bundle",
	Long: `Copies a dataset database and its images into the app's resource
locations and reports what was done.

The source is either an archive (--source-zip, a local path or an
s3://bucket/key uri) that is unpacked into the work dir, or an explicit
--source-db and --source-images-dir. Explicit paths win over what is found
in the archive.

The copied database must have the required schema. With
--canonicalize-easa-top-level, top-level categories are re-keyed to the
app's canonical ids in one transaction; with --create-icon-aliases each
re-keyed category gets <new_id>.png in the output images.`,
	Example: `  datasetprep prepare --source-zip easa.zip \
    --output-db App/Resources/dataset.sqlite \
    --output-images-dir App/Resources/images \
    --canonicalize-easa-top-level --create-icon-aliases \
    --report-json build/dataset-report.json`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.Options{}, runPrepare),
}

type prepareOptions struct {
	SourceZip       string
	SourceDB        string
	SourceImagesDir string
	OutputDB        string
	OutputImagesDir string
	Canonicalize    bool
	IconAliases     bool
	ReportJSON      string
}

var prepareOpts prepareOptions

// s3API builds the client used for s3:// archives.
var s3API = func(ctx context.Context, cfg *config.Config) (source.GetObjectAPI, error) {
	return source.NewS3Client(ctx, source.S3Config{
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		PathStyle:       cfg.S3PathStyle,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	f := prepareCmd.Flags()
	f.StringVar(&prepareOpts.SourceZip, "source-zip", "", "Archive containing the sqlite file and images (path or s3://bucket/key)")
	f.StringVar(&prepareOpts.SourceDB, "source-db", "", "Input sqlite path (if not extracting from an archive)")
	f.StringVar(&prepareOpts.SourceImagesDir, "source-images-dir", "", "Input images directory (if not extracting from an archive)")
	f.String("work-dir", "", "Extraction directory, emptied on each run (default "+config.DefaultWorkDir+")")
	f.StringVar(&prepareOpts.OutputDB, "output-db", "", "Output sqlite path")
	f.StringVar(&prepareOpts.OutputImagesDir, "output-images-dir", "", "Output images directory")
	f.BoolVar(&prepareOpts.Canonicalize, "canonicalize-easa-top-level", false, "Re-key top-level categories by EASA code to canonical app ids")
	f.BoolVar(&prepareOpts.IconAliases, "create-icon-aliases", false, "Create <canonical id>.png aliases in the output images")
	f.StringVar(&prepareOpts.ReportJSON, "report-json", "", "Also write the JSON report to this path")
	f.String("metrics-file", "", "Write run metrics in Prometheus text format to this path")
	_ = prepareCmd.MarkFlagRequired("output-db")
	_ = prepareCmd.MarkFlagRequired("output-images-dir")
}

func runPrepare(app *appctx.App, cmd *cobra.Command, args []string) error {
	rep, err := prepare(cmd.Context(), app, prepareOpts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	data, err := rep.Encode(render.Format(app.Config.Output))
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if prepareOpts.ReportJSON != "" {
		if err := rep.WriteFile(prepareOpts.ReportJSON); err != nil {
			return err
		}
		app.Log.Info().Str("path", prepareOpts.ReportJSON).Msg("report written")
	}
	return nil
}

// prepare runs the pipeline and returns the report. Status lines go to
// status; the report itself is left to the caller.
func prepare(ctx context.Context, app *appctx.App, opts prepareOptions, status io.Writer) (*report.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	rep := report.New(start)
	run := metrics.NewRun()
	log := app.Log.With().Str("run_id", rep.RunID).Logger()

	sourceRoot := ""
	if opts.SourceZip != "" {
		archive, cleanup, err := resolveArchive(ctx, app, opts.SourceZip)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		printStep(status, "extracting %s", opts.SourceZip)
		if err := source.Extract(archive, app.Config.WorkDir); err != nil {
			return nil, err
		}
		sourceRoot = app.Config.WorkDir
		log.Debug().Str("work_dir", sourceRoot).Msg("archive extracted")
	}

	sourceDB := opts.SourceDB
	if sourceDB == "" {
		if sourceRoot == "" {
			return nil, errors.New("provide --source-db or --source-zip")
		}
		candidates, err := source.SQLiteFiles(sourceRoot)
		if err != nil {
			return nil, err
		}
		sourceDB = candidates[0]
		if len(candidates) > 1 {
			log.Warn().Strs("candidates", candidates).Str("using", sourceDB).Msg("multiple sqlite files in archive")
			printWarning(status, "%d sqlite files found, using %s", len(candidates), sourceDB)
		}
	}
	if err := requireExists("source-db", sourceDB); err != nil {
		return nil, err
	}

	sourceImagesDir := opts.SourceImagesDir
	if sourceImagesDir == "" {
		if sourceRoot == "" {
			return nil, errors.New("provide --source-images-dir or --source-zip")
		}
		dir, err := source.ImagesDir(sourceRoot)
		if err != nil {
			return nil, err
		}
		sourceImagesDir = dir
	}
	if err := requireExists("source-images-dir", sourceImagesDir); err != nil {
		return nil, err
	}

	rep.SourceDB = sourceDB
	rep.SourceImagesDir = sourceImagesDir
	rep.OutputDB = opts.OutputDB
	rep.OutputImagesDir = opts.OutputImagesDir

	printStep(status, "copying resources")
	if _, err := attach.CopyDatabase(sourceDB, opts.OutputDB); err != nil {
		return nil, err
	}
	files, err := attach.CopyTree(sourceImagesDir, opts.OutputImagesDir)
	if err != nil {
		return nil, err
	}
	printDetail(status, "database", opts.OutputDB)
	printDetail(status, "images", fmt.Sprintf("%s (%d files)", opts.OutputImagesDir, files))

	database, err := app.OpenDB(opts.OutputDB)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	if err := schema.Validate(database, schema.Required); err != nil {
		return nil, err
	}
	printSuccess(status, "schema ok")

	st := store.New(database)
	plan := []domain.Remap{}
	if opts.Canonicalize {
		plan, err = canon.Plan(canon.EASA(), st.Categories)
		if err != nil {
			return nil, err
		}
		if err := canon.Apply(database, plan); err != nil {
			return nil, err
		}
		for _, r := range plan {
			log.Info().Str("code", r.Code).Int64("old_id", r.OldID).Int64("new_id", r.NewID).Msg("category re-keyed")
		}
		printSuccess(status, "%d top-level categories canonicalized", len(plan))
	}
	rep.SetRemaps(plan)

	if opts.IconAliases {
		rep.IconAliasesCreated, err = attach.EnsureIconAliases(opts.OutputImagesDir, plan)
		if err != nil {
			return nil, err
		}
	}

	rep.GuideHTMLRemoved, err = attach.StripGuide(opts.OutputImagesDir)
	if err != nil {
		return nil, err
	}

	filenames, err := st.Attachments.Filenames()
	if err != nil {
		return nil, err
	}
	missing := attach.MissingFiles(opts.OutputImagesDir, filenames)
	rep.SetMissing(missing)
	if len(missing) > 0 {
		printWarning(status, "%d attachment images missing", len(missing))
	}

	counts, err := st.Counts()
	if err != nil {
		return nil, err
	}
	rep.SetCounts(counts)

	if app.Config.MetricsFile != "" {
		run.SetRemaps(len(plan))
		run.SetIconAliases(rep.IconAliasesCreated)
		run.SetMissingImages(len(missing))
		for _, c := range counts {
			run.SetTableRows(c.Table, c.Rows)
		}
		run.Finish(start, time.Now())
		if err := run.WriteFile(app.Config.MetricsFile); err != nil {
			return nil, err
		}
	}

	log.Info().Dur("elapsed", time.Since(start)).Int("missing_images", len(missing)).Msg("dataset prepared")
	return rep, nil
}

// resolveArchive returns a local path for the archive, downloading s3://
// uris into a temp dir that cleanup removes.
func resolveArchive(ctx context.Context, app *appctx.App, uri string) (path string, cleanup func(), err error) {
	if !source.IsS3URI(uri) {
		if err := requireExists("source-zip", uri); err != nil {
			return "", nil, err
		}
		return uri, func() {}, nil
	}

	api, err := s3API(ctx, app.Config)
	if err != nil {
		return "", nil, err
	}
	dir, err := os.MkdirTemp("", "datasetprep-download-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create download dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	app.Log.Info().Str("uri", uri).Msg("downloading archive")
	path, err = source.Fetch(ctx, api, uri, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func requireExists(flag, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s not found: %s", flag, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return nil
}
