package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"planforge/adapters/emitter"
	"planforge/adapters/registry"
	"planforge/app"
	"planforge/domain/core"
	"planforge/internal"
	"planforge/internal/config"
	apperrors "planforge/internal/errors"
	"planforge/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const exitCodeInterrupted = 130

func main() {
	// .env is optional; environment wins over defaults, flags win over both.
	_ = godotenv.Load()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Fprintln(os.Stderr, "interrupted")
		os.Exit(exitCodeInterrupted)
	}()

	rootCmd := &cobra.Command{
		Use:   "planforge-cli",
		Short: "Deterministic executor-contract compiler for development plan analysis",
	}

	rootCmd.AddCommand(newGenerateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var assetsDir string
	var outputDir string
	var strict bool
	var verbose bool
	var xlsx bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Compile the full contract batch from the knowledge bases",
		Long: `Compile one executor contract per (question, policy sector) pair from the
three JSON knowledge bases, validate each contract, and write the batch
manifest.

Example: planforge-cli generate --assets ./assets --output ./output/contracts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if assetsDir == "" {
				assetsDir = cfg.Paths.AssetsDir
			}
			if outputDir == "" {
				outputDir = cfg.Paths.OutputDir
			}
			if !cmd.Flags().Changed("strict") {
				strict = cfg.Strict
			}

			level := internal.ParseLogLevel(cfg.LogLevel)
			if verbose {
				level = internal.LogLevelDebug
			}
			log := internal.NewLogger(level)

			return runGenerate(assetsDir, outputDir, strict, xlsx, log)
		},
	}

	cmd.Flags().StringVar(&assetsDir, "assets", "", "directory holding the three input JSON files")
	cmd.Flags().StringVar(&outputDir, "output", "", "directory to write contracts and the manifest")
	cmd.Flags().BoolVar(&strict, "strict", true, "fail the run when any contract is invalid; abort on the first exception")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "also write an XLSX summary workbook")
	return cmd
}

func runGenerate(assetsDir, outputDir string, strict, xlsx bool, log *internal.Logger) error {
	jsonEmitter, err := emitter.NewJSONEmitter(outputDir, log)
	if err != nil {
		return err
	}

	generator := app.NewContractGenerator(
		registry.NewLoader(log),
		jsonEmitter,
		ports.SystemClock{},
		strict,
		log,
	)

	stats, err := generator.Generate(assetsDir)
	if err != nil {
		coded := codedError(err)
		log.Error("batch aborted (%s): %v", apperrors.CodeOf(coded), err)
		return coded
	}

	if xlsx && stats.Manifest != nil {
		if _, err := jsonEmitter.WriteSummaryWorkbook(stats.Manifest); err != nil {
			return apperrors.Wrap(err, "write summary workbook")
		}
	}

	fmt.Printf("generated %d contracts (%d valid, %d invalid, %d emitted)\n",
		stats.Total, stats.Valid, stats.Invalid, stats.Emitted)
	if len(stats.Failures) > 0 {
		fmt.Printf("%d failure(s) recorded in the manifest\n", len(stats.Failures))
	}
	if strict && stats.Invalid > 0 {
		return codedError(fmt.Errorf("%w: %d of %d contract(s)", core.ErrContractInvalid, stats.Invalid, stats.Total))
	}
	return nil
}

// codedError stamps the matching catalog code onto a batch failure so the
// exit path reports INPUT_MISSING, COHERENCE_VIOLATION etc. instead of a
// bare message.
func codedError(err error) error {
	switch {
	case errors.Is(err, core.ErrInputMissing):
		return apperrors.WithCode(apperrors.CodeInputMissing, err)
	case errors.Is(err, core.ErrCoherenceViolation):
		return apperrors.WithCode(apperrors.CodeCoherenceViolation, err)
	case errors.Is(err, core.ErrAssemblyFailed):
		return apperrors.WithCode(apperrors.CodeAssemblyFailed, err)
	case core.IsEmissionRefusal(err):
		return apperrors.WithCode(apperrors.CodeEmitRefused, err)
	case core.IsHardFailure(err):
		return apperrors.WithCode(apperrors.CodeInputMalformed, err)
	default:
		return apperrors.Wrap(err, "generation failed")
	}
}
