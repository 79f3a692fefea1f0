package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"vdjinfer/diagnostics"
	"vdjinfer/generate"
	"vdjinfer/internal/bench"
	"vdjinfer/internal/buildinfo"
	"vdjinfer/model"
	"vdjinfer/vdj"
)

func printHelp() {
	fmt.Println(`vdjinfer - V(D)J recombination inference and generation

Usage:
  vdjinfer <command> [options]

Commands:
  infer     Load a model and optionally plot its marginals (no aligner is
            shipped, so reads are not scored and the command exits with an error)
  generate  Sample synthetic recombination events from a model
  sanity    Validate a model's invariants

Global Flags:
  -h, -help     Show this help message
  -v, -version  Show version information

Benchmarking:
  -benchmark    Must follow a command. Reports wall time and memory usage.
`)
	os.Exit(0)
}

func printVersion() {
	fmt.Println("vdjinfer - Version Information")
	fmt.Printf("  vdjinfer:    %s\n", buildinfo.Main)
	fmt.Printf("  infer:       %s\n", buildinfo.Infer)
	fmt.Printf("  generate:    %s\n", buildinfo.Generate)
	fmt.Printf("  sanity:      %s\n", buildinfo.Sanity)
	fmt.Printf("  diagnostics: %s\n", buildinfo.Diagnostics)
	os.Exit(0)
}

func main() {
	if len(os.Args) < 2 {
		printHelp()
	}
	for _, arg := range os.Args[1:] {
		if arg == "-h" || arg == "-help" {
			printHelp()
		}
		if arg == "-v" || arg == "-version" {
			printVersion()
		}
	}

	command := os.Args[1]
	rest := os.Args[2:]

	benchmarking := false
	var cleaned []string
	for _, arg := range rest {
		if arg == "-benchmark" {
			benchmarking = true
		} else {
			cleaned = append(cleaned, arg)
		}
	}

	run := func() error {
		switch command {
		case "infer":
			return runInfer(cleaned)
		case "generate":
			return runGenerate(cleaned)
		case "sanity":
			return runSanity(cleaned)
		default:
			return fmt.Errorf("unknown command: %s", command)
		}
	}

	var err error
	if benchmarking {
		err = bench.Run(fmt.Sprintf("vdjinfer %s %s", command, strings.Join(cleaned, " ")), run)
	} else {
		err = run()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadModel(dir string) (*model.Model, error) {
	var loader model.AnchorLoader
	return loader.Load(
		dir+"/d_genes.csv",
		dir+"/marginals.txt",
		dir+"/v_genes.csv",
		dir+"/j_genes.csv",
	)
}

func runInfer(args []string) error {
	fs := flag.NewFlagSet("infer", flag.ExitOnError)
	modelDir := fs.String("model", "", "directory containing the model files")
	readsPath := fs.String("reads", "", "FASTA file of reads to score")
	plotDir := fs.String("plot", "", "directory to write marginal diagnostic SVGs to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelDir == "" || *readsPath == "" {
		return fmt.Errorf("-model and -reads are required")
	}

	m, err := loadModel(*modelDir)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	features, err := vdj.New(m)
	if err != nil {
		return fmt.Errorf("build features: %w", err)
	}

	if *plotDir != "" {
		if err := writeDiagnostics(*plotDir, features); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
	}

	return fmt.Errorf("infer: no model.Aligner implementation is shipped (alignment is out of scope); "+
		"wire one in before reads can be scored from %s", *readsPath)
}

func writeDiagnostics(dir string, f *vdj.Features) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	plots := map[string]func() (string, error){
		"v_usage.svg":       func() (string, error) { return diagnostics.VUsageSVG(f) },
		"j_usage.svg":       func() (string, error) { return diagnostics.JUsageSVG(f) },
		"ins_vd_length.svg": func() (string, error) { return diagnostics.InsertionLengthSVG("VD", f.InsVD) },
		"ins_dj_length.svg": func() (string, error) { return diagnostics.InsertionLengthSVG("DJ", f.InsDJ) },
	}
	for name, render := range plots {
		svg, err := render()
		if err != nil {
			return err
		}
		if err := os.WriteFile(dir+"/"+name, []byte(svg), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	modelDir := fs.String("model", "", "directory containing the model files")
	n := fs.Int("n", 1, "number of sequences to generate")
	seed := fs.Int64("seed", 0, "RNG seed (0 means unseeded)")
	functional := fs.Bool("functional", false, "reject non-functional (out-of-frame or stop-containing) CDR3s")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelDir == "" {
		return fmt.Errorf("-model is required")
	}

	m, err := loadModel(*modelDir)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	var seedPtr *int64
	if *seed != 0 {
		seedPtr = seed
	}
	g, err := generate.New(m, seedPtr)
	if err != nil {
		return fmt.Errorf("build generator: %w", err)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for i := 0; i < *n; i++ {
		res, err := g.Generate(*functional)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		aa := ""
		if res.CDR3Aa != nil {
			aa = *res.CDR3Aa
		}
		fmt.Fprintf(w, ">%s %s cdr3_aa=%s\n%s\n", res.VGene, res.JGene, aa, res.CDR3Nt)
	}
	return nil
}

func runSanity(args []string) error {
	fs := flag.NewFlagSet("sanity", flag.ExitOnError)
	modelDir := fs.String("model", "", "directory containing the model files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelDir == "" {
		return fmt.Errorf("-model is required")
	}

	m, err := loadModel(*modelDir)
	if err != nil {
		fmt.Printf("FAIL: %v\n", err)
		os.Exit(1)
	}
	if _, err := vdj.New(m); err != nil {
		fmt.Printf("FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("PASS: model is valid (%s)\n", buildinfo.Main)
	return nil
}
