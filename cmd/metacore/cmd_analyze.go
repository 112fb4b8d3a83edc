package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"metacore/application/analysis"
	"metacore/domain"
	metaconfig "metacore/infrastructure/config"
	"metacore/internal/artifacts"
)

var (
	analyzeInput        string
	analyzeProfile      string
	analyzeProfilesFile string
	analyzeOutputDir    string
	analyzeTestID       string
	analyzeSeed         int64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the metabolism analysis pipeline over a breath file",
	Long: `Run window selection, filtering, smoothing, trend fitting, and FatMax
and crossover detection over a breath-by-breath JSON input file,
writing a JSON + CSV report.

Example usage:
  metacore analyze --input breaths.json
  metacore analyze --input breaths.json --profile ramp_default --profiles-file profiles.yaml
  metacore analyze --input breaths.json --test-id athlete-042 --output-dir ./out`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "Path to a JSON array of breaths")
	analyzeCmd.Flags().StringVar(&analyzeProfile, "profile", "", "Named protocol-override profile (requires --profiles-file)")
	analyzeCmd.Flags().StringVar(&analyzeProfilesFile, "profiles-file", "", "YAML file of named protocol-override profiles")
	analyzeCmd.Flags().StringVar(&analyzeOutputDir, "output-dir", "artifacts/analysis", "Directory for the JSON+CSV report")
	analyzeCmd.Flags().StringVar(&analyzeTestID, "test-id", "", "Identifier used in report filenames")
	analyzeCmd.Flags().Int64Var(&analyzeSeed, "seed", 1, "PRNG seed for the FatMax bootstrap")

	analyzeCmd.MarkFlagRequired("input")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	breaths, err := loadBreaths(analyzeInput)
	if err != nil {
		return fmt.Errorf("load breaths: %w", err)
	}

	cfg, err := resolveConfig()
	if err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}

	orchestrator := analysis.NewOrchestrator(analyzeSeed, nil)
	result, err := orchestrator.Run(breaths, cfg)
	if err != nil && !domain.IsKind(err, domain.ErrFatMaxUndefined) {
		return fmt.Errorf("analysis failed: %w", err)
	}

	testID := analyzeTestID
	if testID == "" {
		testID = "run"
	}
	writer := artifacts.NewAtomicWriter(analyzeOutputDir)
	if writeErr := writer.WriteAnalysisReport(testID, result); writeErr != nil {
		return fmt.Errorf("write report: %w", writeErr)
	}

	printSummary(result)
	if err != nil {
		log.Warn().Err(err).Msg("analysis completed with a surfaced error")
	}
	return nil
}

func loadBreaths(path string) ([]domain.Breath, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var breaths []domain.Breath
	if err := json.Unmarshal(data, &breaths); err != nil {
		return nil, fmt.Errorf("parse breath JSON: %w", err)
	}
	return breaths, nil
}

func resolveConfig() (domain.Config, error) {
	if analyzeProfile == "" {
		return domain.DefaultConfig(), nil
	}
	if analyzeProfilesFile == "" {
		return domain.Config{}, fmt.Errorf("--profile requires --profiles-file")
	}
	profiles, err := metaconfig.LoadProfiles(analyzeProfilesFile)
	if err != nil {
		return domain.Config{}, err
	}
	return profiles.Resolve(analyzeProfile)
}

func printSummary(result domain.AnalysisResult) {
	fmt.Printf("Metabolism Analysis Summary\n")
	fmt.Printf("============================\n")
	fmt.Printf("Algorithm version: %s\n", result.AlgorithmVersion)
	fmt.Printf("Breaths analyzed:  %d / %d\n", result.Stats.ExerciseDataPoints, result.Stats.TotalDataPoints)
	fmt.Printf("Binned points:     %d\n", result.Stats.BinnedDataPoints)

	if result.FatMax != nil {
		fm := result.FatMax
		fmt.Printf("FatMax:            %d W (MFO %.3f g/min), zone [%d, %d] W\n", fm.PowerW, fm.MFO, fm.ZoneMinW, fm.ZoneMaxW)
		if fm.MFOCILower != nil {
			fmt.Printf("  MFO 95%% CI:      [%.3f, %.3f]\n", *fm.MFOCILower, *fm.MFOCIUpper)
		}
	} else {
		fmt.Printf("FatMax:            undefined\n")
	}

	if result.Crossover.PowerW != nil {
		fmt.Printf("Crossover:         %d W (fat %.3f, cho %.3f)\n", *result.Crossover.PowerW, *result.Crossover.FatValue, *result.Crossover.ChoValue)
	} else {
		fmt.Printf("Crossover:         none detected\n")
	}

	if result.VO2MaxMetrics != nil {
		fmt.Printf("VO2max:            %.0f mL/min at %.0fs (HRmax %.0f)\n", result.VO2MaxMetrics.VO2Max, result.VO2MaxMetrics.TimeSec, result.VO2MaxMetrics.HRMax)
	}

	if len(result.ProcessingWarnings) > 0 {
		fmt.Printf("Warnings:          %v\n", result.ProcessingWarnings)
	}
}
