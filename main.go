package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"github.com/mcncl/sidmtools/internal/config"
	"github.com/mcncl/sidmtools/internal/errors"
	"github.com/mcncl/sidmtools/internal/fileset"
	"github.com/mcncl/sidmtools/internal/flatten"
	"github.com/mcncl/sidmtools/internal/geom"
	"github.com/mcncl/sidmtools/internal/listutil"
	"github.com/mcncl/sidmtools/internal/models"
	"github.com/mcncl/sidmtools/internal/parser"
	"github.com/mcncl/sidmtools/internal/plot"
)

// CLI defines the command-line interface
var CLI struct {
	Config  string `help:"Path to a .sidmtools.yml config file. Searched for in parent directories if not given." short:"c" type:"path"`
	Debug   bool   `help:"Enable debug logging." short:"d"`
	NoColor bool   `help:"Disable colored output."`

	Flatten   FlattenCmd   `cmd:"" help:"Print the leaf values of a nested YAML document, one per line."`
	Partition PartitionCmd `cmd:"" help:"Split values into those that pass and fail a condition."`
	Fileset   FilesetCmd   `cmd:"" help:"Resolve samples to file paths from a location config."`
	DR        DRCmd        `cmd:"" name:"dr" help:"Distance in (eta, phi) to the nearest candidate."`
	Plot      PlotCmd      `cmd:"" help:"Draw 1-D or 2-D histograms from a YAML file."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func (c *Context) debugf(name string, val any) {
	listutil.PrintDebug(c.Stderr, "debug: "+name, val, c.Debug)
}

func main() {
	parser := kong.Must(&CLI,
		kong.Name("sidmtools"),
		kong.Description("Helpers for the SIDM analysis: flatten, partition, filesets, dR and plots"),
		kong.UsageOnError(),
	)

	kctx, err := parser.Parse(os.Args[1:])
	// Prints usage and exits on bad arguments
	parser.FatalIfErrorf(err)

	ctx, err := newContext()
	if err == nil {
		err = kctx.Run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: sidmtools --help\n")
		os.Exit(1)
	}
}

// newContext loads configuration and applies the global flags
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides := config.Overrides{
		Debug:   CLI.Debug,
		NoColor: CLI.NoColor || !isatty.IsTerminal(os.Stdout.Fd()),
	}
	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, errors.NewInputError("failed to load configuration", err)
	}

	ctx := &Context{
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	ctx.debugf("config", configPath)
	return ctx, nil
}

// readDocument parses YAML from a file, or from stdin when path is empty or "-"
func (c *Context) readDocument(path string) (models.Value, error) {
	if path != "" && path != "-" {
		return parser.ParseFile(path)
	}

	if f, ok := c.Stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return nil, errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return nil, errors.NewInputError("no input provided: pass a file or pipe YAML to stdin", nil)
		}
	}
	return parser.Parse(c.Stdin)
}

// FlattenCmd prints the leaves of a document
type FlattenCmd struct {
	File  string `arg:"" optional:"" help:"YAML or JSON file to flatten. Reads stdin if omitted or \"-\"."`
	Count bool   `help:"Print the number of leaves and the nesting depth instead of the leaves." short:"n"`
}

// Run executes the flatten command
func (f *FlattenCmd) Run(ctx *Context) error {
	doc, err := ctx.readDocument(f.File)
	if flatten.IsCycle(err) {
		return errors.NewInputError("document contains itself through an alias and cannot be flattened", err)
	}
	if err != nil {
		return err
	}
	ctx.debugf("root", models.Kind(doc))

	if f.Count {
		_, err := fmt.Fprintf(ctx.Stdout, "leaves: %d\ndepth: %d\n", flatten.CountLeaves(doc), flatten.Depth(doc))
		if err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
		return nil
	}

	leaves := flatten.Strings(doc)
	ctx.debugf("leaves", len(leaves))
	if len(leaves) == 0 {
		return nil
	}
	if err := listutil.PrintList(ctx.Stdout, leaves); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// PartitionCmd splits values with an expression
type PartitionCmd struct {
	Where  string   `help:"Condition over the current value v, e.g. 'v % 2 == 0'." short:"w" required:""`
	File   string   `help:"Read values from the leaves of a YAML file instead of arguments." short:"f" type:"path"`
	Values []string `arg:"" optional:"" help:"Values to partition. Numbers are parsed as numbers."`
}

// Run executes the partition command
func (p *PartitionCmd) Run(ctx *Context) error {
	cond, err := listutil.CompileCondition(p.Where)
	if err != nil {
		return err
	}

	var values []any
	if p.File != "" {
		doc, err := parser.ParseFile(p.File)
		if err != nil {
			return err
		}
		values = flatten.Flatten(doc)
	} else {
		values = make([]any, len(p.Values))
		for i, s := range p.Values {
			values[i] = scalar(s)
		}
	}
	ctx.debugf("values", len(values))

	passes, fails, err := listutil.PartitionWhere(values, cond)
	if err != nil {
		return errors.NewParsingError(fmt.Sprintf("condition %q failed", cond), err)
	}

	fmt.Fprintln(ctx.Stdout, "passes:")
	for _, v := range passes {
		fmt.Fprintf(ctx.Stdout, "  %v\n", v)
	}
	fmt.Fprintln(ctx.Stdout, "fails:")
	for _, v := range fails {
		fmt.Fprintf(ctx.Stdout, "  %v\n", v)
	}
	return nil
}

// scalar reads a command-line value as an int, a float, a bool or a string
func scalar(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// FilesetCmd resolves samples to files
type FilesetCmd struct {
	Samples        []string `arg:"" optional:"" help:"Sample names. Defaults to fileset.samples from the config."`
	NtupleVersion  string   `name:"ntuple-version" help:"Ntuple version key in the location config." short:"n"`
	LocationConfig string   `help:"Path to the ntuple location config." short:"l" type:"path"`
	Output         string   `help:"Write the fileset to this file instead of stdout." short:"o" type:"path"`
	List           bool     `help:"List the versions, or the samples of --ntuple-version, and exit."`
}

// Run executes the fileset command
func (f *FilesetCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	location := firstNonEmpty(f.LocationConfig, cfg.Fileset.LocationConfig)
	version := firstNonEmpty(f.NtupleVersion, cfg.Fileset.Version)
	samples := f.Samples
	if len(samples) == 0 {
		samples = cfg.Fileset.Samples
	}
	ctx.debugf("location_config", location)
	ctx.debugf("version", version)

	locs, err := fileset.LoadLocations(location)
	if err != nil {
		return err
	}

	if f.List {
		items := locs.Versions()
		if version != "" {
			if items, err = locs.Samples(version); err != nil {
				return err
			}
		}
		return listutil.PrintList(ctx.Stdout, items)
	}

	if version == "" {
		return errors.NewInputError("no ntuple version given: use --ntuple-version or fileset.version", nil)
	}
	if len(samples) == 0 {
		return errors.NewInputError("no samples given", nil)
	}

	fs, err := locs.Fileset(samples, version)
	if err != nil {
		return err
	}
	ctx.debugf("files", fs.NumFiles())

	if f.Output == "" {
		return fs.WriteYAML(ctx.Stdout)
	}
	out, err := os.Create(f.Output)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", f.Output), err)
	}
	defer out.Close()
	if err := fs.WriteYAML(out); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stderr, "Fileset with %d files written to %s\n", fs.NumFiles(), f.Output)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// DRCmd computes the distance to the nearest candidate
type DRCmd struct {
	Eta        float64  `arg:"" help:"Eta of the object."`
	Phi        float64  `arg:"" help:"Phi of the object."`
	Candidates []string `help:"Candidate as eta,phi. Repeat for more." short:"m" name:"candidate" sep:"none"`
	Objects    []string `help:"Further object as eta,phi. Prints one dR per object." short:"o" name:"object" sep:"none"`
}

// Run executes the dr command
func (d *DRCmd) Run(ctx *Context) error {
	others := make([]geom.Candidate, 0, len(d.Candidates))
	for _, c := range d.Candidates {
		cand, err := parseCandidate(c)
		if err != nil {
			return err
		}
		others = append(others, cand)
	}

	obj := geom.Candidate{Eta: d.Eta, Phi: d.Phi}
	if len(d.Objects) == 0 {
		metric, err := geom.DR(obj, others)
		if err != nil {
			return errors.NewInputError("no candidates given: use --candidate eta,phi", err)
		}
		if ctx.Debug {
			match, _, _ := obj.Nearest(others)
			ctx.debugf("nearest", fmt.Sprintf("(%g, %g)", match.Eta, match.Phi))
		}
		_, err = fmt.Fprintf(ctx.Stdout, "%g\n", metric)
		return err
	}

	objs := []geom.Candidate{obj}
	for _, o := range d.Objects {
		cand, err := parseCandidate(o)
		if err != nil {
			return err
		}
		objs = append(objs, cand)
	}
	metrics, err := geom.DRAll(objs, others)
	if err != nil {
		return errors.NewInputError("no candidates given: use --candidate eta,phi", err)
	}
	for _, m := range metrics {
		if _, err := fmt.Fprintf(ctx.Stdout, "%g\n", m); err != nil {
			return errors.NewOutputError("failed to write dR", err)
		}
	}
	return nil
}

func parseCandidate(s string) (geom.Candidate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geom.Candidate{}, errors.NewInputError(fmt.Sprintf("candidate %q is not eta,phi", s), nil)
	}
	eta, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geom.Candidate{}, errors.NewInputError(fmt.Sprintf("candidate %q has an invalid eta", s), err)
	}
	phi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geom.Candidate{}, errors.NewInputError(fmt.Sprintf("candidate %q has an invalid phi", s), err)
	}
	return geom.Candidate{Eta: eta, Phi: phi}, nil
}

// PlotCmd draws histograms as text
type PlotCmd struct {
	File    string   `arg:"" help:"YAML file with histograms." type:"path"`
	Style   string   `help:"Plot style." short:"s"`
	DPI     int      `help:"Figure resolution."`
	Density bool     `help:"Normalize each histogram to unit area."`
	Label   []string `help:"Legend label per histogram."`
}

// Run executes the plot command
func (p *PlotCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	styleName := firstNonEmpty(p.Style, cfg.Plot.Style)
	dpi := cfg.Plot.DPI
	if p.DPI > 0 {
		dpi = p.DPI
	}

	style, err := plot.SetPlotStyle(styleName, dpi)
	if err != nil {
		return err
	}
	hists, err := plot.LoadHistograms(p.File)
	if err != nil {
		return err
	}
	ctx.debugf("histograms", len(hists))

	backend := plot.NewTextBackend(ctx.Stdout, cfg.Plot.Color)
	backend.SetWidth(cfg.Plot.Width)
	return plot.Plot(backend, hists, plot.Options{Style: style, Labels: p.Label, Density: p.Density})
}

// VersionCmd prints the version
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "sidmtools version %s\n", Version)
	return err
}
