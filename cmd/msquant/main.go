// Command msquant estimates the relative abundance of two molecular species
// (typically a peptide and its deamidated isomer) from directories of mass
// spectra, using pure-species reference spectra and diagnostic m/z windows.
//
// Usage:
//
//	msquant analyze --ref-a pure_D.txt --ref-b pure_N.txt \
//	    --windows 2005.7:2010.4,2021.6:2026.3 \
//	    --samples day0/ --samples day7/ [--html report.html] [--db runs.db]
//	msquant extract --windows 2005.7:2010.4 sample.txt
package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cwbudde/algo-msquant/peaks"
	"github.com/cwbudde/algo-msquant/pipeline"
	"github.com/cwbudde/algo-msquant/report"
	"github.com/cwbudde/algo-msquant/spectrum"
	"github.com/cwbudde/algo-msquant/store"
)

func main() {
	var (
		refA, refB     string
		labelA, labelB string
		windowSpec     string
		windowFile     string
		htmlPath       string
		dbPath         string
		concurrency    int
		failFast       bool
	)

	windowFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "windows",
			Aliases:     []string{"w"},
			Usage:       "diagnostic windows as low:high,low:high,...",
			Destination: &windowSpec,
		},
		&cli.StringFlag{
			Name:        "windows-file",
			Usage:       "JSON file with [{\"low\":...,\"high\":...}] windows",
			Destination: &windowFile,
		},
	}

	app := &cli.App{
		Name:                 "msquant",
		Usage:                "Quantify two-species mixtures from mass spectra",
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:    "analyze",
				Aliases: []string{"a"},
				Usage:   "Run the full deconvolution pipeline over sample groups",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:        "ref-a",
						Usage:       "pure-species reference spectrum (column 1)",
						Destination: &refA,
						Required:    true,
					},
					&cli.StringFlag{
						Name:        "ref-b",
						Usage:       "pure-species reference spectrum (column 2)",
						Destination: &refB,
						Required:    true,
					},
					&cli.StringFlag{
						Name:        "label-a",
						Usage:       "name of the first species (defaults to the ref-a file name)",
						Destination: &labelA,
					},
					&cli.StringFlag{
						Name:        "label-b",
						Usage:       "name of the second species (defaults to the ref-b file name)",
						Destination: &labelB,
					},
					&cli.StringSliceFlag{
						Name:     "samples",
						Aliases:  []string{"s"},
						Usage:    "directory of replicate spectra, one group per flag (repeatable)",
						Required: true,
					},
					&cli.IntFlag{
						Name:        "concurrency",
						Aliases:     []string{"j"},
						Usage:       "parallel row solves (0 = all cores)",
						Destination: &concurrency,
					},
					&cli.BoolFlag{
						Name:        "fail-fast",
						Usage:       "abort on the first sample that fails to solve",
						Destination: &failFast,
					},
					&cli.StringFlag{
						Name:        "html",
						Usage:       "write an HTML chart report to this path",
						Destination: &htmlPath,
					},
					&cli.StringFlag{
						Name:        "db",
						Usage:       "append results to this SQLite database",
						Destination: &dbPath,
					},
				}, windowFlags...),
				Action: func(cCtx *cli.Context) error {
					windows, err := resolveWindows(windowSpec, windowFile)
					if err != nil {
						return err
					}

					policy := pipeline.CollectErrors
					if failFast {
						policy = pipeline.FailFast
					}

					started := time.Now()

					rep, err := pipeline.Run(pipeline.Config{
						ReferenceA:  refA,
						ReferenceB:  refB,
						LabelA:      labelA,
						LabelB:      labelB,
						SampleDirs:  cCtx.StringSlice("samples"),
						Windows:     windows,
						Concurrency: concurrency,
						Policy:      policy,
					})
					if err != nil {
						return err
					}

					if err := report.WriteText(os.Stdout, rep); err != nil {
						return err
					}

					if htmlPath != "" {
						if err := report.WriteHTML(htmlPath, rep); err != nil {
							return err
						}

						log.WithField("path", htmlPath).Info("HTML report written")
					}

					if dbPath != "" {
						if err := saveRun(dbPath, started, rep); err != nil {
							return err
						}
					}

					return nil
				},
			},
			{
				Name:    "extract",
				Aliases: []string{"x"},
				Usage:   "Print window maxima for a single spectrum file",
				Flags:   windowFlags,
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() != 1 {
						return fmt.Errorf("extract: expected exactly one spectrum file")
					}

					windows, err := resolveWindows(windowSpec, windowFile)
					if err != nil {
						return err
					}

					spec, err := spectrum.LoadFile(cCtx.Args().First())
					if err != nil {
						return err
					}

					maxima, err := peaks.MaxIntensities(spec, windows)
					if err != nil {
						return err
					}

					for i, w := range windows {
						fmt.Printf("window %d (%g, %g): %g\n", i, w.Low, w.High, maxima[i])
					}

					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func resolveWindows(inline, file string) (peaks.WindowSet, error) {
	switch {
	case inline != "" && file != "":
		return nil, fmt.Errorf("use either --windows or --windows-file, not both")
	case inline != "":
		return peaks.ParseWindows(inline)
	case file != "":
		return peaks.LoadWindows(file)
	default:
		return nil, fmt.Errorf("no diagnostic windows configured")
	}
}

func saveRun(dbPath string, started time.Time, rep *pipeline.Report) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.SaveReport(started, rep)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"db": dbPath, "run": runID}).Info("results stored")

	return nil
}
