package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/qamine/internal/artifact"
	"github.com/kalambet/qamine/internal/config"
	"github.com/kalambet/qamine/internal/extract"
	"github.com/kalambet/qamine/internal/infer"
	"github.com/kalambet/qamine/internal/ollama"
	"github.com/kalambet/qamine/internal/pipeline"
	"github.com/kalambet/qamine/internal/qa"
	"github.com/kalambet/qamine/internal/storage"
)

// --- process ---

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Extract Q&A pairs from documents into a JSON artifact",
	Long: `Extract Q&A pairs from documents into a JSON artifact.

Documents come from positional arguments, from a YAML sources file
(--sources), or from the configured sources file as a fallback.

Examples:
  qamine process notes.pdf chapter2.txt
  qamine process --sources sources.yaml --out ./dataset
  qamine process --mode generate lecture.pdf
  qamine process --force dry-reference.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sourcesPath, _ := cmd.Flags().GetString("sources")
		outDir, _ := cmd.Flags().GetString("out")
		modeFlag, _ := cmd.Flags().GetString("mode")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)

		if modeFlag == "" {
			modeFlag = cfg.QA.Mode
		}
		mode, err := qa.ParseMode(modeFlag)
		if err != nil {
			return err
		}
		if outDir == "" {
			outDir = cfg.Output.JSONDir
		}

		docs, err := collectDocuments(args, sourcesPath, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		model := buildAnswerer(ctx, cfg, mode)
		if model == nil && mode == qa.ModeGenerate {
			return fmt.Errorf("generate mode needs a QA model; check that Ollama is running")
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		proc := buildProcessor(cfg, mode, model, force)
		saver := func(records []qa.Record, dir string) (string, error) {
			return artifact.Save(records, dir, cfg.QA.MinQuestionLength, cfg.QA.MinAnswerLength)
		}

		runner := pipeline.New(extract.FileSource{}, proc, store, saver, outDir, string(mode), concurrency)

		printStep("Processing %d document(s)...", len(docs))
		res, err := runner.Run(ctx, docs)
		if err != nil {
			return err
		}

		printSuccess("Extracted %d Q&A pairs", len(res.Records))
		printStatus("Run", "%s", res.RunID)
		printStatus("Artifact", "%s", res.ArtifactPath)
		for _, d := range res.Documents {
			if d.Error != "" {
				printWarning("%s: %s", d.Path, d.Error)
			}
		}
		return nil
	},
}

func init() {
	processCmd.Flags().String("sources", "", "YAML sources file listing documents")
	processCmd.Flags().String("out", "", "output directory for the JSON artifact")
	processCmd.Flags().String("mode", "", "processing mode: extract, generate, or auto")
	processCmd.Flags().Int("concurrency", 2, "documents processed in parallel")
	processCmd.Flags().Bool("force", false, "force generation from summary questions, ignoring normal extraction")
}

// collectDocuments resolves the input batch: positional paths win, then an
// explicit sources file, then the configured one.
func collectDocuments(args []string, sourcesPath string, cfg config.Config) ([]config.Document, error) {
	if len(args) > 0 {
		docs := make([]config.Document, len(args))
		for i, path := range args {
			docs[i] = config.Document{Name: filepath.Base(path), Path: path}
		}
		return docs, nil
	}
	if sourcesPath != "" {
		return config.LoadSources(sourcesPath, "")
	}
	return config.LoadSources(cfg.Input.SourcesFile, cfg.Input.DocumentDir)
}

// buildAnswerer readies the Ollama-backed QA model. Extract mode never
// touches the model; otherwise an unreachable Ollama degrades to
// extraction-only with a warning instead of failing the command.
func buildAnswerer(ctx context.Context, cfg config.Config, mode qa.Mode) qa.Answerer {
	if mode == qa.ModeExtract {
		return nil
	}
	client := ollama.New(cfg.Ollama.BaseURL)
	if err := ollama.EnsureReady(ctx, client, cfg.Ollama.QAModel, os.Stderr); err != nil {
		printWarning("QA model unavailable, generation disabled: %v", err)
		return nil
	}
	return infer.New(client, cfg.Ollama.QAModel)
}

func buildProcessor(cfg config.Config, mode qa.Mode, model qa.Answerer, force bool) pipeline.Processor {
	qaCfg := qa.Config{
		MinQuestionLength:   cfg.QA.MinQuestionLength,
		MinAnswerLength:     cfg.QA.MinAnswerLength,
		Mode:                mode,
		ConfidenceThreshold: cfg.QA.ConfidenceThreshold,
	}
	p := qa.New(qaCfg, model)
	if force {
		return forcedProcessor{p: p}
	}
	return p
}

// forcedProcessor routes every document through forced generation.
type forcedProcessor struct {
	p *qa.Pipeline
}

func (f forcedProcessor) Process(ctx context.Context, text string) []qa.Record {
	return f.p.ForceGenerate(ctx, text)
}

// --- runs ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect past extraction runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		runs, err := store.ListRuns(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			printWarning("no runs recorded yet")
			return nil
		}

		for _, r := range runs {
			fmt.Printf("%s  %s  %-9s  %s  docs=%d records=%d\n",
				r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Mode,
				r.DocumentCount, r.RecordCount)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its per-document results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		run, err := store.GetRun(args[0])
		if err != nil {
			return err
		}

		printStatus("Run", "%s", run.ID)
		printStatus("Status", "%s", run.Status)
		printStatus("Mode", "%s", run.Mode)
		printStatus("Started", "%s", run.StartedAt.Local().Format(time.RFC1123))
		if !run.CompletedAt.IsZero() {
			printStatus("Completed", "%s", run.CompletedAt.Local().Format(time.RFC1123))
		}
		printStatus("Documents", "%d", run.DocumentCount)
		printStatus("Records", "%d", run.RecordCount)
		if run.ArtifactPath != "" {
			printStatus("Artifact", "%s", run.ArtifactPath)
		}
		if run.Error != "" {
			printError("%s", run.Error)
		}

		docs, err := store.ListDocumentResults(run.ID)
		if err != nil {
			return err
		}
		for _, d := range docs {
			if d.Error != "" {
				fmt.Printf("  %s  %s\n", d.Path, colorize(colorYellow, d.Error))
				continue
			}
			fmt.Printf("  %s  chars=%d records=%d\n", d.Path, d.TextChars, d.RecordCount)
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		value, err := config.GetKey(cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
