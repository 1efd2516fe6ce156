// Command finextract runs structured extraction of financial metrics from
// normalized 10-K filing texts and, optionally, evaluates the results
// against a reference dataset.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/Abraxas-365/finextract/adapters/aws/bedrock"
	"github.com/Abraxas-365/finextract/adapters/aws/s3/s3source"
	"github.com/Abraxas-365/finextract/adapters/aws/s3/s3storage"
	"github.com/Abraxas-365/finextract/adapters/filedir"
	"github.com/Abraxas-365/finextract/adapters/inmemory"
	"github.com/Abraxas-365/finextract/adapters/localfs"
	"github.com/Abraxas-365/finextract/adapters/ollama"
	"github.com/Abraxas-365/finextract/adapters/openai"
	"github.com/Abraxas-365/finextract/adapters/pgvector"
	"github.com/Abraxas-365/finextract/adapters/web/websource"
	"github.com/Abraxas-365/finextract/config"
	"github.com/Abraxas-365/finextract/datasource"
	"github.com/Abraxas-365/finextract/document"
	"github.com/Abraxas-365/finextract/embedding"
	"github.com/Abraxas-365/finextract/eval"
	"github.com/Abraxas-365/finextract/extract"
	"github.com/Abraxas-365/finextract/llm"
	"github.com/Abraxas-365/finextract/retrieval"
	"github.com/Abraxas-365/finextract/storage"
)

var (
	flagConfig     string
	flagMode       string
	flagFilingsDir string
	flagReference  string
	flagOutput     string
	flagEvaluate   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:          "finextract",
		Short:        "Extract structured financial metrics from 10-K filings",
		SilenceUsage: true,
		RunE:         run,
	}

	root.Flags().StringVar(&flagConfig, "config", "config.yaml", "path to the config file")
	root.Flags().StringVar(&flagMode, "mode", "", "extraction mode: baseline, refined or both")
	root.Flags().StringVar(&flagFilingsDir, "filings-dir", "", "directory of normalized filing texts (overrides config)")
	root.Flags().StringVar(&flagReference, "reference", "", "reference CSV for evaluation (overrides config)")
	root.Flags().StringVar(&flagOutput, "output", "", "local directory for run artifacts (overrides config)")
	root.Flags().BoolVar(&flagEvaluate, "evaluate", false, "evaluate results against the reference dataset")

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	strategies, err := extract.Strategies(cfg.Run.Mode)
	if err != nil {
		return err
	}

	backend, embedder, embedModel, err := buildBackend(ctx, cfg)
	if err != nil {
		return err
	}

	stores, cleanup, err := buildStoreProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	source, err := buildSource(ctx, cfg)
	if err != nil {
		return err
	}

	artifacts, err := buildArtifacts(ctx, cfg)
	if err != nil {
		return err
	}

	filings, err := source.Load(ctx)
	if err != nil {
		return err
	}
	docs := make([]document.Document, 0, len(filings))
	for _, f := range filings {
		docs = append(docs, document.Document{
			Ticker:   f.Ticker,
			FileType: f.FileType,
			Text:     f.Content,
			Metadata: f.Metadata,
		})
	}
	log.Printf("loaded %d filings", len(docs))

	generator := extract.NewGenerator(backend,
		extract.WithMaxTransientRetries(cfg.Run.MaxRetries))

	extractors := make([]*extract.Extractor, 0, len(strategies))
	for _, s := range strategies {
		ex, err := extract.NewExtractor(s, embedder, stores, generator, embedModel)
		if err != nil {
			return err
		}
		extractors = append(extractors, ex)
	}

	runner := extract.NewRunner(extractors, cfg.Run.Workers,
		time.Duration(cfg.Run.TimeoutSecs)*time.Second)

	results, runErr := runner.Run(ctx, docs)
	if errors.Is(runErr, extract.ErrNoDocuments) {
		return runErr
	}

	failed := 0
	for _, r := range results {
		if r.ErrKind != "" {
			failed++
		}
	}
	log.Printf("extraction finished: %d tasks, %d failed", len(results), failed)

	runID := storage.NewRunID()
	if err := storage.WriteJSON(ctx, artifacts, storage.ResultsKey(runID), results.ByTicker()); err != nil {
		return err
	}
	log.Printf("run %s: wrote %s", runID, storage.ResultsKey(runID))

	if flagEvaluate || cfg.Run.ReferenceFile != "" {
		if cfg.Run.ReferenceFile == "" {
			return errors.New("evaluation requested but no reference file configured")
		}
		refs, err := eval.LoadReferenceFile(cfg.Run.ReferenceFile)
		if err != nil {
			return err
		}
		reports := eval.EvaluateResults(results, refs, cfg.Run.ToleranceRatio)
		if err := storage.WriteJSON(ctx, artifacts, storage.EvaluationKey(runID), reports); err != nil {
			return err
		}
		log.Printf("run %s: wrote %s", runID, storage.EvaluationKey(runID))
		for strategy, report := range reports {
			if v, ok := report.Overall.Value(); ok {
				log.Printf("%s: overall accuracy %.3f (%d/%d)", strategy, v, report.Overall.Matches, report.Overall.Compared)
			} else {
				log.Printf("%s: overall accuracy undefined (no comparable fields)", strategy)
			}
		}
	}

	// ErrBackendUnreachable is surfaced after the results artifact is
	// persisted so the failed run still leaves an inspectable trace.
	return runErr
}

func applyFlagOverrides(cfg *config.AppConfig) {
	if flagMode != "" {
		cfg.Run.Mode = flagMode
	}
	if flagFilingsDir != "" {
		cfg.Source.Type = "local"
		cfg.Source.Dir = flagFilingsDir
	}
	if flagReference != "" {
		cfg.Run.ReferenceFile = flagReference
	}
	if flagOutput != "" {
		cfg.Artifacts.Type = "local"
		cfg.Artifacts.Dir = flagOutput
	}
}

func buildBackend(ctx context.Context, cfg *config.AppConfig) (llm.LLM, embedding.Embedder, string, error) {
	switch cfg.Backend.Type {
	case "openai":
		key, err := cfg.Backend.OpenAI.APIKey()
		if err != nil {
			return nil, nil, "", err
		}
		chat := openai.NewOpenAILLM(key, cfg.Backend.OpenAI.ChatModel)
		embedder := openai.NewOpenAIEmbedder(key, embedding.WithModel(cfg.Backend.OpenAI.EmbedModel))
		return chat, embedder, cfg.Backend.OpenAI.EmbedModel, nil

	case "ollama":
		chat := ollama.NewLLM(cfg.Backend.Ollama.BaseURL, cfg.Backend.Ollama.ChatModel)
		embedder := ollama.NewEmbedder(cfg.Backend.Ollama.BaseURL, cfg.Backend.Ollama.EmbedModel)
		return chat, embedder, cfg.Backend.Ollama.EmbedModel, nil

	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Backend.Bedrock.Region))
		if err != nil {
			return nil, nil, "", err
		}
		chat := bedrock.NewBedrockLLM(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMModelID(cfg.Backend.Bedrock.ChatModel))

		// Bedrock serves generation only; embeddings go through the
		// OpenAI endpoint.
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, nil, "", errors.New("bedrock backend needs OPENAI_API_KEY for embeddings")
		}
		embedModel := cfg.Backend.Bedrock.EmbedModel
		if embedModel == "" {
			embedModel = "text-embedding-3-small"
		}
		embedder := openai.NewOpenAIEmbedder(key, embedding.WithModel(embedModel))
		return chat, embedder, embedModel, nil

	default:
		return nil, nil, "", fmt.Errorf("unknown backend type %q", cfg.Backend.Type)
	}
}

func buildStoreProvider(ctx context.Context, cfg *config.AppConfig) (extract.StoreProvider, func(), error) {
	switch cfg.Index.Type {
	case "memory":
		provider := func(document.Document) retrieval.Store {
			return inmemory.NewStore()
		}
		return provider, func() {}, nil

	case "postgres":
		conn, err := cfg.Index.Postgres.ConnString()
		if err != nil {
			return nil, nil, err
		}
		base, err := pgvector.NewStore(ctx, conn, pgvector.Options{
			TableName: cfg.Index.Postgres.Table,
			Dimension: cfg.Index.Postgres.Dimension,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := base.InitDB(ctx, false); err != nil {
			base.Close()
			return nil, nil, err
		}
		provider := func(doc document.Document) retrieval.Store {
			return base.WithNamespace(doc.Ticker)
		}
		return provider, base.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown index type %q", cfg.Index.Type)
	}
}

func buildSource(ctx context.Context, cfg *config.AppConfig) (datasource.DataSource, error) {
	switch cfg.Source.Type {
	case "local":
		return filedir.NewSource(cfg.Source.Dir), nil
	case "s3":
		client, err := s3Client(ctx, cfg.Source.S3.Region)
		if err != nil {
			return nil, err
		}
		return s3source.NewS3Source(client, cfg.Source.S3.Bucket, cfg.Source.S3.Prefix), nil
	case "web":
		return websource.NewWebSource(cfg.Source.URLs, 30*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}

func buildArtifacts(ctx context.Context, cfg *config.AppConfig) (storage.DataStore, error) {
	switch cfg.Artifacts.Type {
	case "local":
		return localfs.NewStore(cfg.Artifacts.Dir)
	case "s3":
		client, err := s3Client(ctx, cfg.Artifacts.S3.Region)
		if err != nil {
			return nil, err
		}
		return s3storage.NewS3Store(client, cfg.Artifacts.S3.Bucket, cfg.Artifacts.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown artifacts type %q", cfg.Artifacts.Type)
	}
}

func s3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg), nil
}
