package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/starford/odl/internal"
	"github.com/starford/odl/pkg/astro"
	"github.com/starford/odl/pkg/odl"
	"github.com/starford/odl/pkg/target"
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write to `FILE` instead of stdout",
	}
}

func resolveFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "resolve",
		Usage: "Look up missing target coordinates with the Sesame name resolver",
	}
}

// setup loads the config and installs the logger.
func setup(cmd *cli.Command) (*internal.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	setupLogger(cfg)
	return cfg, nil
}

// readDocument parses the FILE argument.
func readDocument(cmd *cli.Command) (*odl.Document, error) {
	if cmd.Args().Len() != 1 {
		return nil, fmt.Errorf("%s needs exactly one FILE argument", cmd.Name)
	}
	return odl.ReadFile(cmd.Args().First(), odl.DefaultRegistry())
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// writeOutput sends data to --output atomically, or to stdout.
func writeOutput(cmd *cli.Command, data []byte) error {
	if p := cmd.String("output"); p != "" {
		return odl.WriteAtomic(p, data)
	}
	_, err := stdout(cmd).Write(data)
	return err
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Parse a program and validate every definition",
		ArgsUsage: "FILE",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if _, err := setup(cmd); err != nil {
				return err
			}
			doc, err := readDocument(cmd)
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout(cmd), "%s: %d definitions, %d blocks ok\n",
				cmd.Args().First(), doc.Len(), len(doc.ObservingBlocks))
			return err
		},
	}
}

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:      "estimate",
		Usage:     "Print shutter-open and wall-clock time of a program's blocks",
		ArgsUsage: "FILE",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if _, err := setup(cmd); err != nil {
				return err
			}
			doc, err := readDocument(cmd)
			if err != nil {
				return err
			}
			w := stdout(cmd)
			if len(doc.ObservingBlocks) > 0 {
				if err := doc.ObservingBlocks.Table(w); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(w, doc.ObservingBlocks.EstimateTime())
			return err
		},
	}
}

func calsCommand() *cli.Command {
	return &cli.Command{
		Name:      "cals",
		Usage:     "Print the calibration blocks a program needs",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Also write the calibration blocks as a program to `FILE`",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if _, err := setup(cmd); err != nil {
				return err
			}
			doc, err := readDocument(cmd)
			if err != nil {
				return err
			}
			cals, err := doc.ObservingBlocks.Cals()
			if err != nil {
				return err
			}
			if len(cals) == 0 {
				_, err = fmt.Fprintln(stdout(cmd), "no calibrations needed")
				return err
			}
			if err := cals.Table(stdout(cmd)); err != nil {
				return err
			}
			if p := cmd.String("output"); p != "" {
				return odl.WriteFile(p, &odl.Document{ObservingBlocks: cals})
			}
			return nil
		},
	}
}

func starlistCommand() *cli.Command {
	return &cli.Command{
		Name:      "starlist",
		Usage:     "Render a program's targets as a star list",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{outputFlag(), resolveFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := setup(cmd); err != nil {
				return err
			}
			doc, err := readDocument(cmd)
			if err != nil {
				return err
			}
			targets := programTargets(doc)
			if cmd.Bool("resolve") {
				if err := targets.Resolve(ctx, target.NewSesameResolver()); err != nil {
					return err
				}
			}
			lines, err := targets.Starlist()
			if err != nil {
				return err
			}
			return writeOutput(cmd, []byte(lines))
		},
	}
}

func targetsCommand() *cli.Command {
	return &cli.Command{
		Name:      "targets",
		Usage:     "Tabulate altitude, azimuth and Moon distance of a program's targets",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			resolveFlag(),
			&cli.StringFlag{
				Name:  "at",
				Usage: "Observation time, RFC 3339 (default now)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			doc, err := readDocument(cmd)
			if err != nil {
				return err
			}
			targets := programTargets(doc)
			if cmd.Bool("resolve") {
				if err := targets.Resolve(ctx, target.NewSesameResolver()); err != nil {
					return err
				}
			}
			if at := cmd.String("at"); at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				targets.SetObsTime(t)
			}
			return targetTable(stdout(cmd), targets, cfg.Site)
		},
	}
}

func targetTable(w io.Writer, targets target.List, site astro.Site) error {
	table := tablewriter.NewWriter(w)
	table.Header("Target", "Alt", "Az", "Moon")
	for _, t := range targets {
		if t.IsCalPosition() {
			continue
		}
		h, err := t.AltAz(site)
		if err != nil {
			return err
		}
		moon := "down"
		if sep, up, err := t.MoonSeparation(site); err != nil {
			return err
		} else if up {
			moon = strconv.FormatFloat(sep, 'f', 1, 64)
		}
		row := []string{
			t.Name,
			strconv.FormatFloat(h.Alt, 'f', 1, 64),
			strconv.FormatFloat(h.Az, 'f', 1, 64),
			moon,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// programTargets returns the loose targets followed by the block targets,
// skipping repeated names.
func programTargets(doc *odl.Document) target.List {
	seen := make(map[string]bool)
	var out target.List
	add := func(t *target.Target) {
		if t == nil || seen[t.Name] {
			return
		}
		seen[t.Name] = true
		out = append(out, t)
	}
	for _, t := range doc.Targets {
		add(t)
	}
	for _, b := range doc.ObservingBlocks {
		if b != nil {
			add(b.Target)
		}
	}
	return out
}

func headerCommand() *cli.Command {
	return &cli.Command{
		Name:      "header",
		Usage:     "Write the FITS header cards of one block to a header-only FITS file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "FITS `FILE` to write",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "block",
				Usage: "Index of the observing block",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if _, err := setup(cmd); err != nil {
				return err
			}
			doc, err := readDocument(cmd)
			if err != nil {
				return err
			}
			cards, err := doc.BlockHeader(int(cmd.Int("block")))
			if err != nil {
				return err
			}
			f, err := os.Create(cmd.String("output"))
			if err != nil {
				return err
			}
			if err := odl.WriteHeader(f, cards); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
}

func newClient(cfg *internal.Config) *odl.Client {
	return odl.NewClient(cfg.Database.ClientOptions()...)
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Send a program to the observatory database",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			doc, err := readDocument(cmd)
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return err
			}
			ok, err := newClient(cfg).Upload(ctx, doc)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("upload rejected by database")
			}
			_, err = fmt.Fprintf(stdout(cmd), "uploaded %d definitions\n", doc.Len())
			return err
		},
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Fetch definitions from the observatory database as a program",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "col",
				Usage:    "Collection: Targets, OffsetPatterns, InstrumentConfigs, DetectorConfigs or ObservingBlocks",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Definition name or block id",
			},
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			doc, err := newClient(cfg).Download(ctx, cmd.String("col"), cmd.String("name"))
			if err != nil {
				return err
			}
			data, err := odl.Marshal(doc)
			if err != nil {
				return err
			}
			return writeOutput(cmd, data)
		},
	}
}

func pingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the observatory database answers",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := newClient(cfg).Ping(ctx); err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout(cmd), "%s: ok\n", cfg.Database.UploadURL)
			return err
		},
	}
}
