package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/wippyai/pdfium-bridge/config"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to the pdfium wasm module (overrides config)")
		input       = flag.String("in", "", "Input PDF")
		output      = flag.String("out", "", "Output PDF (default <in>.copy.pdf)")
		password    = flag.String("password", "", "Document password")
		form        = flag.Bool("form", false, "Bind a form-fill environment before saving")
		configFile  = flag.String("config", "", "Config file (.yaml, .toml or .json)")
		schema      = flag.Bool("schema", false, "Print the config JSON schema and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		edits       []fieldEdit
	)
	flag.Func("set", "Set a form field before saving: page:annot:text:<value>, page:annot:select:<n>, page:annot:deselect:<n> or page:annot:check (repeatable)", func(v string) error {
		e, err := parseFieldEdit(v)
		if err != nil {
			return err
		}
		edits = append(edits, e)
		return nil
	})
	flag.Parse()

	if *schema {
		out, err := config.Schema()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: pdfbridge -wasm <pdfium.wasm> -in <doc.pdf> [-out copy.pdf] [-password p] [-form] [-set page:annot:kind[:value]]...")
		fmt.Fprintln(os.Stderr, "       pdfbridge -in <doc.pdf> -config pdfbridge.yaml -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       pdfbridge -schema")
		os.Exit(1)
	}
	if *output == "" {
		*output = *input + ".copy.pdf"
	}

	var opts []config.Option
	if *wasmFile != "" {
		opts = append(opts, func(c *config.Config) { c.Engine.WasmPath = *wasmFile })
	}
	cfg, err := config.Load(*configFile, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg, *input, *output, *password); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *input, *output, *password, *form, edits); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, input, output, password string, form bool, edits []fieldEdit) error {
	ctx := context.Background()

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	s, err := openSession(ctx, cfg, logger, input, output, password)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	if form {
		if err := s.bindForm(ctx); err != nil {
			return fmt.Errorf("bind form: %w", err)
		}
	}
	for _, e := range edits {
		if err := s.setField(ctx, e); err != nil {
			return fmt.Errorf("set field %s: %w", e, err)
		}
	}

	res, err := s.save(ctx)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	fmt.Println(res)

	if err := s.exitForm(ctx); err != nil {
		return fmt.Errorf("exit form: %w", err)
	}
	return s.close(ctx)
}
