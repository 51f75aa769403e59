package main

import (
	"fmt"
	"os"
	"time"

	"field_study_ops/internal/app"
	"field_study_ops/internal/infra/config"
	"field_study_ops/internal/infra/export"
	"field_study_ops/internal/infra/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	studyFile string
	outputDir string
	seed      int64
	startDate string
	checkOnly bool
)

var rootCmd = &cobra.Command{
	Use:           "schedule",
	Short:         "Generate balanced transaction schedules for confederates",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.Flags().StringVarP(&studyFile, "study", "s", "", "study design file (default $STUDY_FILE or study.yaml)")
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory (default $SCHEDULE_OUTPUT_DIR or schedules)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "override the seed from the study file")
	rootCmd.Flags().StringVar(&startDate, "start", "", "override the study start Monday (YYYY-MM-DD)")
	rootCmd.Flags().BoolVar(&checkOnly, "check", false, "generate and validate without writing files")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.WithError(err).Fatal("Schedule generation failed")
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg.LogLevel, cfg.Environment)

	if studyFile == "" {
		studyFile = cfg.StudyFile
	}
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	design, err := config.LoadStudy(studyFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		design.Seed = seed
	}
	if startDate != "" {
		design.StudyStart = startDate
	}
	start, err := design.Start()
	if err != nil {
		return err
	}

	gen, err := app.NewScheduleGenerator(app.GeneratorOptions{
		Seed:       design.Seed,
		StudyStart: start,
	}, logger.Component("generator"))
	if err != nil {
		return err
	}

	began := time.Now()
	study, err := gen.Generate(design.Confederates)
	if err != nil {
		return err
	}
	log := logger.Log.WithFields(logrus.Fields{
		"confederates": len(study.Schedules),
		"seed":         study.Seed,
		"elapsed":      time.Since(began).Round(time.Millisecond),
	})

	if checkOnly {
		log.Info("All schedules passed validation")
		return nil
	}

	written, err := export.WriteStudy(outputDir, study)
	if err != nil {
		return err
	}
	log.WithField("files", len(written)).WithField("dir", outputDir).Info("Schedules written")
	for _, p := range written {
		fmt.Fprintln(os.Stdout, p)
	}
	return nil
}
