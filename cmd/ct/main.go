package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/condtour/internal/datasource"
	"github.com/vanderheijden86/condtour/pkg/config"
	"github.com/vanderheijden86/condtour/pkg/debug"
	"github.com/vanderheijden86/condtour/pkg/export"
	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/kernel"
	"github.com/vanderheijden86/condtour/pkg/predict"
	"github.com/vanderheijden86/condtour/pkg/seriate"
	"github.com/vanderheijden86/condtour/pkg/tour"
	"github.com/vanderheijden86/condtour/pkg/ui"
	"github.com/vanderheijden86/condtour/pkg/version"
	"github.com/vanderheijden86/condtour/pkg/watch"
)

func main() {
	dataPath := flag.String("data", "", "Dataset file (.csv, .json, .db/.sqlite)")
	tableName := flag.String("table", "", "Table name for SQLite sources")
	response := flag.String("response", "", "Response variable")
	section := flag.String("section", "", "Section variable(s), comma separated, max 2")
	centroids := flag.Int("centroids", 0, "Number of path centroids (default from config)")
	interp := flag.Int("interp", -1, "Interpolated steps between centroids (default from config)")
	bandwidth := flag.Float64("bandwidth", 0, "Initial similarity bandwidth (default from config)")
	metric := flag.String("metric", "", "Distance metric: euclidean or maxnorm")
	lambda := flag.Float64("lambda", 0, "Factor mismatch penalty; 0 keeps the hard category filter")
	arrange := flag.String("arrange", "", "Condition grouping: association or alphabetical")
	seed := flag.Int64("seed", 1, "Clustering seed")
	snapshot := flag.String("snapshot", "", "Write one snapshot to this path and exit (headless)")
	watchFlag := flag.Bool("watch", false, "Reload the tour when the dataset file changes")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *help {
		fmt.Println("Usage: ct -data file -response y -section x [options]")
		fmt.Println("\nAn interactive conditional visualization tour.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		if version.Commit != "" {
			fmt.Printf("ct %s (%s)\n", version.Version, version.Commit)
		} else {
			fmt.Printf("ct %s\n", version.Version)
		}
		os.Exit(0)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fatal("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fatal("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if *dataPath == "" || *response == "" || *section == "" {
		fatal("-data, -response and -section are required (see ct -help)")
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		cfg = config.DefaultConfig()
	}
	applyFlags(&cfg, *centroids, *interp, *bandwidth, *metric, *lambda, *arrange)
	debug.Dump("effective config", cfg)

	sess, err := buildSession(*dataPath, *tableName, *response, *section, *seed, cfg)
	if err != nil {
		fatal("%v", err)
	}

	cfg.RememberDataset(*dataPath)
	_ = config.Save(cfg)

	if *snapshot != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		out := *snapshot
		if out == "" {
			out = "condtour-snapshot.svg"
		}
		if err := headlessSnapshot(sess, out); err != nil {
			fatal("snapshot: %v", err)
		}
		fmt.Println(out)
		return
	}

	opts := ui.Options{
		Config:      cfg,
		SnapshotDir: config.StateDir(),
	}
	if *watchFlag {
		opts.Reload = func() (ui.Session, error) {
			return buildSession(*dataPath, *tableName, *response, *section, *seed, cfg)
		}
	}
	m := ui.New(sess, opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithoutSignalHandler())

	if *watchFlag {
		w, err := watch.New(*dataPath, watch.WithOnChange(func() {
			p.Send(ui.FileChangedMsg{})
		}))
		if err == nil && w.Start() == nil {
			defer w.Stop()
		}
	}

	if err := runProgram(p); err != nil {
		fatal("running tour: %v", err)
	}
}

// applyFlags overlays explicitly set flags on the loaded config.
func applyFlags(cfg *config.Config, centroids, interp int, bandwidth float64, metric string, lambda float64, arrange string) {
	if centroids > 0 {
		cfg.Tour.Centroids = centroids
	}
	if interp >= 0 {
		cfg.Tour.Interpolation = interp
	}
	if bandwidth > 0 {
		cfg.Tour.Bandwidth = bandwidth
	}
	if metric != "" {
		cfg.Tour.Metric = metric
	}
	if lambda > 0 {
		cfg.Tour.Lambda = lambda
	}
	if arrange != "" {
		cfg.Tour.ArrangeMethod = arrange
	}
}

// buildSession loads the dataset and assembles the full tour pipeline:
// partition, path, controller, condition groups, and a linear reference
// model when the predictors allow one.
func buildSession(dataPath, tableName, response, section string, seed int64, cfg config.Config) (ui.Session, error) {
	src, err := datasource.Detect(dataPath, tableName)
	if err != nil {
		return ui.Session{}, err
	}
	tab, err := datasource.Load(src)
	if err != nil {
		return ui.Session{}, fmt.Errorf("loading %s: %w", dataPath, err)
	}

	secVars := splitList(section)
	part, err := frame.NewPartition(tab, response, secVars...)
	if err != nil {
		return ui.Session{}, err
	}

	kind, err := kernel.ParseDistanceKind(cfg.Tour.Metric)
	if err != nil {
		return ui.Session{}, err
	}
	scales := tab.Scales()
	kopts := kernel.Options{Kind: kind, Scales: scales, Lambda: cfg.Tour.Lambda}

	path, err := tour.BuildPath(context.Background(), tab, part.Condition, tour.PathOptions{
		NCentroids: cfg.Tour.Centroids,
		NInterp:    cfg.Tour.Interpolation,
		Seed:       seed,
		Scales:     scales,
	})
	if err != nil {
		return ui.Session{}, err
	}

	ctrl, err := tour.NewController(context.Background(), tab, part.Condition, path, cfg.Tour.Bandwidth, kopts)
	if err != nil {
		return ui.Session{}, err
	}

	groups, err := seriate.Arrange(tab, part.Condition, cfg.Tour.ArrangeMethod)
	if err != nil {
		return ui.Session{}, err
	}

	sess := ui.Session{
		Table:      tab,
		Partition:  part,
		Controller: ctrl,
		Groups:     groups,
		Dataset:    dataPath,
	}
	predictors := append(append([]string(nil), part.Section...), part.Condition...)
	if model, err := predict.FitLinear(tab, response, predictors); err == nil {
		sess.Model = model
	}
	return sess, nil
}

func headlessSnapshot(sess ui.Session, out string) error {
	defer sess.Controller.End()
	return export.SaveSectionSnapshot(export.SectionSnapshotOptions{
		Path:     out,
		Title:    sess.Dataset,
		Table:    sess.Table,
		Response: sess.Partition.Response,
		Section:  sess.Partition.Section[0],
		Snap:     sess.Controller.Snapshot(),
		Model:    sess.Model,
		CondCols: sess.Partition.Condition,
	})
}

func runProgram(p *tea.Program) error {
	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
