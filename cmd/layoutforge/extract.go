package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gnemet/LayoutForge/internal/artifact"
	"github.com/gnemet/LayoutForge/internal/database"
	"github.com/gnemet/LayoutForge/internal/extract"
	"github.com/gnemet/LayoutForge/internal/figma"
)

type extractOptions struct {
	file          string
	url           string
	out           string
	mode          string
	slides        string
	blockTypes    string
	containers    string
	noZIndex      bool
	includeHidden bool
	minArea       float64
	marker        string
	saveDB        bool
	publish       bool
}

func newExtractCmd() *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract slide layouts from a Figma file or an exported JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "Exported Figma JSON file")
	f.StringVarP(&opts.url, "url", "u", "", "Figma file URL or key (default $FIGMA_FILE_ID)")
	f.StringVarP(&opts.out, "out", "o", "-", "Output file, - for stdout")
	f.StringVarP(&opts.mode, "mode", "m", "", "Filter mode: ALL, SPECIFIC_SLIDES, SPECIFIC_BLOCKS, BY_TYPE")
	f.StringVar(&opts.slides, "slides", "", "Comma-separated slide numbers for SPECIFIC_SLIDES")
	f.StringVar(&opts.blockTypes, "block-types", "", "Comma-separated block types for SPECIFIC_BLOCKS")
	f.StringVar(&opts.containers, "containers", "", "Comma-separated container names for BY_TYPE")
	f.BoolVar(&opts.noZIndex, "no-z-index", false, "Do not require the z-index tag")
	f.BoolVar(&opts.includeHidden, "include-hidden", false, "Include nodes with visible=false")
	f.Float64Var(&opts.minArea, "min-area", 0, "Minimum slide frame area")
	f.StringVar(&opts.marker, "marker", "", "Only take nodes whose name contains this marker")
	f.BoolVar(&opts.saveDB, "save-db", false, "Persist the result to PostgreSQL")
	f.BoolVar(&opts.publish, "publish", false, "Publish the result to the S3 artifact store")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	return cmd
}

func runExtract(cmd *cobra.Command, opts *extractOptions) error {
	ctx := cmd.Context()
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	tables, err := loadTables()
	if err != nil {
		return err
	}
	filter, err := buildFilter(cmd, opts)
	if err != nil {
		return err
	}
	engine := extract.New(tables, filter, engineLogger())

	var (
		src    extract.Source
		ref    string
		fileID string
	)
	switch {
	case opts.file != "":
		src = figma.FileSource{}
		ref = opts.file
		fileID = strings.TrimSuffix(filepath.Base(opts.file), filepath.Ext(opts.file))
	default:
		raw := opts.url
		if raw == "" {
			raw = cfg.Figma.FileID
		}
		if raw == "" {
			return fmt.Errorf("one of --file or --url is required")
		}
		key, err := figma.ParseFileKey(raw)
		if err != nil {
			return err
		}
		client, err := figma.NewClient(cfg.Figma.Token, cfg.Figma.CacheSize)
		if err != nil {
			return err
		}
		client.Log = cliLogger{}
		src, ref, fileID = client, key, key
	}

	cyan.Fprintf(os.Stderr, "Extracting %s\n", ref)
	res := engine.Run(ctx, src, fileID, ref)

	if err := writeJSON(opts.out, res); err != nil {
		return err
	}
	if res.Metadata.Error != "" {
		red.Fprintf(os.Stderr, "✗ %s\n", res.Metadata.Error)
		return fmt.Errorf("extraction of %s failed", ref)
	}
	printSummary(res)

	if opts.saveDB || cfg.Application.SaveDB {
		db, err := database.NewConnection(cfg.Database.GetConnectStr())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
		n, err := database.SaveExtraction(ctx, db, fileID, res)
		if err != nil {
			return err
		}
		green.Fprintf(os.Stderr, "✓ Saved %d layouts to the database\n", n)
	}

	if opts.publish || cfg.Application.Publish {
		store, err := newStore()
		if err != nil {
			return err
		}
		key, err := store.PutJSON(ctx, fileID, "layouts.json", res)
		if err != nil {
			return err
		}
		green.Fprintf(os.Stderr, "✓ Published %s\n", key)
	}
	return nil
}

func newStore() (*artifact.S3Store, error) {
	return artifact.NewS3Store(artifact.S3Config{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		UseSSL:    cfg.S3.UseSSL,
	})
}

// buildFilter starts from the configured filter and applies the flags the
// user actually set.
func buildFilter(cmd *cobra.Command, opts *extractOptions) (extract.FilterConfig, error) {
	if opts.mode != "" {
		cfg.Extraction.Mode = opts.mode
	}
	filter, err := cfg.Extraction.Filter()
	if err != nil {
		return filter, err
	}
	flags := cmd.Flags()
	if flags.Changed("no-z-index") {
		filter.RequireZIndex = !opts.noZIndex
	}
	if flags.Changed("include-hidden") {
		filter.ExcludeHidden = !opts.includeHidden
	}
	if flags.Changed("min-area") {
		filter.MinArea = opts.minArea
	}
	if flags.Changed("marker") {
		filter.ReadyToDevMarker = opts.marker
	}
	if opts.slides != "" {
		nums, err := parseInts(opts.slides)
		if err != nil {
			return filter, err
		}
		filter.TargetSlides = make(map[int]bool, len(nums))
		for _, n := range nums {
			filter.TargetSlides[n] = true
		}
	}
	filter.TargetBlockTypes = parseSet(opts.blockTypes)
	filter.TargetContainers = parseSet(opts.containers)
	return filter, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid slide number %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set[part] = true
		}
	}
	return set
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, "💾 Wrote %s\n", path)
	return nil
}

func printSummary(res *extract.Result) {
	sum := res.Metadata.ExtractionSummary
	color.New(color.FgCyan).Fprintln(os.Stderr, "\n📊 Extraction Summary:")
	fmt.Fprintf(os.Stderr, "  • Slides: %d\n", sum.TotalSlides)
	fmt.Fprintf(os.Stderr, "  • Blocks: %d\n", sum.TotalBlocks)
	types := make([]string, 0, len(sum.BlockTypes))
	for t := range sum.BlockTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(os.Stderr, "    - %s: %d\n", t, sum.BlockTypes[t])
	}
}
