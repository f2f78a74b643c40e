package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spboyer/loadout/internal/dataset"
	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/orchestration"
	"github.com/spboyer/loadout/internal/projectconfig"
	"github.com/spboyer/loadout/internal/reporting"
	"github.com/spboyer/loadout/internal/solver"
)

// Menu actions, in display order.
const (
	actionLoad    = "Load data"
	actionRun     = "Run algorithm"
	actionDisplay = "Display results"
	actionSave    = "Save results"
	actionExit    = "Exit"

	allAlgorithms = "All algorithms"
)

func newMenuCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu: load data, run algorithms, display and save results",
		Long: `Start an interactive session that loads a pallets file and a truck, runs
one or all algorithms, displays the results and saves them to a file.

When standard input is not a terminal the menu switches to plain prompts, so
it can be scripted.`,
		Args: cobra.NoArgs,
		RunE: menuCommandE,
	}
}

func menuCommandE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	p := newHuhPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	m := newMenuSession(p, cmd.OutOrStdout(), cfg)
	return m.run(cmd.Context())
}

// prompter asks the user for one value at a time.
type prompter interface {
	Select(title string, options []string) (string, error)
	Input(title, placeholder string) (string, error)
}

type huhPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

func newHuhPrompter(in io.Reader, out io.Writer) *huhPrompter {
	p := &huhPrompter{in: in, out: out}
	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		p.accessible = true
	}
	return p
}

func (p *huhPrompter) form(field huh.Field) *huh.Form {
	return huh.NewForm(huh.NewGroup(field)).
		WithInput(p.in).
		WithOutput(p.out).
		WithAccessible(p.accessible)
}

func (p *huhPrompter) Select(title string, options []string) (string, error) {
	var choice string
	err := p.form(huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&choice)).Run()
	return choice, err
}

func (p *huhPrompter) Input(title, placeholder string) (string, error) {
	var value string
	err := p.form(huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)).Run()
	return strings.TrimSpace(value), err
}

// menuSession holds the state of one interactive session.
type menuSession struct {
	p         prompter
	out       io.Writer
	cfg       *projectconfig.ProjectConfig
	runner    *orchestration.Runner
	source    string
	items     []models.Item
	container *models.Container
	outcomes  []orchestration.Outcome
}

func newMenuSession(p prompter, out io.Writer, cfg *projectconfig.ProjectConfig) *menuSession {
	return &menuSession{
		p:      p,
		out:    out,
		cfg:    cfg,
		runner: newRunner(cfg, nil, 0, 0),
	}
}

// run loops until the user exits. Errors from an action are printed and the
// menu is shown again; only prompt failures end the session.
func (m *menuSession) run(ctx context.Context) error {
	for {
		action, err := m.p.Select("What would you like to do?",
			[]string{actionLoad, actionRun, actionDisplay, actionSave, actionExit})
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch action {
		case actionLoad:
			err = m.load()
		case actionRun:
			err = m.solve(ctx)
		case actionDisplay:
			m.display()
		case actionSave:
			err = m.save()
		case actionExit:
			return nil
		default:
			err = fmt.Errorf("unknown action %q", action)
		}
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			fmt.Fprintf(m.out, "Error: %v\n\n", err) //nolint:errcheck
		}
	}
}

func (m *menuSession) load() error {
	itemsPath, err := m.p.Input("Pallets CSV file", "pallets.csv")
	if err != nil {
		return err
	}
	items, err := dataset.LoadItems(itemsPath)
	if err != nil {
		return err
	}

	trucksPath, err := m.p.Input("Trucks CSV file (leave empty to enter a capacity)", "trucks.csv")
	if err != nil {
		return err
	}

	var c models.Container
	if trucksPath != "" {
		if c, err = m.pickTruck(trucksPath); err != nil {
			return err
		}
	} else {
		if c, err = m.askTruck(); err != nil {
			return err
		}
	}

	m.source = itemsPath
	m.items = items
	m.container = &c
	m.outcomes = nil
	fmt.Fprintf(m.out, "Loaded %d pallets; truck #%d capacity %g, pallet limit %s\n\n", //nolint:errcheck
		len(items), c.ID, c.Capacity, limitString(c))
	return nil
}

func (m *menuSession) pickTruck(path string) (models.Container, error) {
	trucks, err := dataset.LoadContainers(path)
	if err != nil {
		return models.Container{}, err
	}
	if len(trucks) == 0 {
		return models.Container{}, fmt.Errorf("%s contains no trucks", path)
	}
	if len(trucks) == 1 {
		return trucks[0], nil
	}
	raw, err := m.p.Input(fmt.Sprintf("Truck id (%d trucks loaded)", len(trucks)), strconv.Itoa(trucks[0].ID))
	if err != nil {
		return models.Container{}, err
	}
	if raw == "" {
		return trucks[0], nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return models.Container{}, fmt.Errorf("truck id %q: %w", raw, err)
	}
	return dataset.FindContainer(trucks, id)
}

func (m *menuSession) askTruck() (models.Container, error) {
	raw, err := m.p.Input("Truck capacity", "100")
	if err != nil {
		return models.Container{}, err
	}
	capacity, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.Container{}, fmt.Errorf("capacity %q: %w", raw, err)
	}
	c := models.Unlimited(capacity)

	raw, err = m.p.Input("Maximum pallets (leave empty for no limit)", "")
	if err != nil {
		return models.Container{}, err
	}
	if raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil {
			return models.Container{}, fmt.Errorf("maximum pallets %q: %w", raw, err)
		}
		c = models.WithMaxItems(capacity, k)
	}
	return c, models.ValidateContainer(c)
}

func (m *menuSession) solve(ctx context.Context) error {
	if m.container == nil {
		return errors.New("no data loaded; choose \"" + actionLoad + "\" first")
	}

	options := []string{allAlgorithms}
	for _, a := range solver.Algorithms() {
		options = append(options, a.DisplayName())
	}
	choice, err := m.p.Select("Algorithm", options)
	if err != nil {
		return err
	}

	algs := solver.Algorithms()
	if choice != allAlgorithms {
		alg, err := solver.ParseAlgorithm(choice)
		if err != nil {
			return err
		}
		algs = []solver.Algorithm{alg}
	}

	m.outcomes = m.runner.Run(ctx, m.items, *m.container, algs)
	reporting.WriteComparison(m.out, *m.container, m.outcomes)
	return nil
}

func (m *menuSession) display() {
	if len(m.outcomes) == 0 {
		fmt.Fprintln(m.out, "No results yet.") //nolint:errcheck
		fmt.Fprintln(m.out)                    //nolint:errcheck
		return
	}
	for _, o := range m.outcomes {
		if o.Err != nil {
			fmt.Fprintf(m.out, "%s failed: %v\n\n", o.Algorithm.DisplayName(), o.Err) //nolint:errcheck
			continue
		}
		reporting.WriteSolution(m.out, o.Solution)
		fmt.Fprintln(m.out) //nolint:errcheck
	}
	if len(m.outcomes) > 1 {
		reporting.WriteVerification(m.out, orchestration.Verify(m.outcomes, m.cfg.Defaults.Tolerance))
		fmt.Fprintln(m.out) //nolint:errcheck
	}
}

func (m *menuSession) save() error {
	if len(m.outcomes) == 0 {
		return errors.New("no results to save")
	}
	r := reporting.NewResults(m.source, m.items, *m.container, m.outcomes)
	if len(m.outcomes) > 1 {
		r.Verification = orchestration.Verify(m.outcomes, m.cfg.Defaults.Tolerance)
	}

	defaultPath := filepath.Join(m.cfg.Paths.Results, r.RunID+".json")
	path, err := m.p.Input("Save results to", defaultPath)
	if err != nil {
		return err
	}
	if path == "" {
		path = defaultPath
	}
	if err := reporting.SaveJSON(path, r); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Results saved to %s\n\n", path) //nolint:errcheck
	return nil
}

func limitString(c models.Container) string {
	if !c.HasMaxItems() {
		return "unlimited"
	}
	return strconv.Itoa(*c.MaxItems)
}
