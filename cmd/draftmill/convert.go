package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/convert"
	"github.com/draftmill/draftmill/internal/parser"
	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a single Markdown file to DOCX",
		Long: `Convert a single Markdown file to DOCX.

Example:
  draftmill convert -i README.md
  draftmill convert -i notes.md -o out/notes.docx -c style.yaml --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			cfgPath, _ := cmd.Flags().GetString("config")
			prompt, _ := cmd.Flags().GetString("config-prompt")
			showStats, _ := cmd.Flags().GetBool("stats")

			if input == "" {
				return fmt.Errorf("--input flag is required")
			}
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file not found: %s", input)
			}
			if output == "" {
				output = withDocxExt(input)
			}

			cfg, err := loadConversionConfig(cfgPath)
			if err != nil {
				return err
			}
			if prompt != "" {
				fmt.Println("Updating configuration with natural language prompt...")
				cfg, err = applyConfigPrompt(cmd.Context(), cfg, prompt)
				if err != nil {
					return err
				}
				fmt.Println("Configuration updated successfully")
			}

			engine := convert.NewEngine(cfg, log)

			fmt.Printf("Converting: %s -> %s\n", input, output)

			if showStats {
				md, err := os.ReadFile(input)
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				stats, err := engine.Stats(md)
				if err != nil {
					return err
				}
				fmt.Println("Conversion Statistics:")
				fmt.Printf("  %s\n", stats.Summary())
			}

			start := time.Now()
			if err := engine.ConvertFile(cmd.Context(), input, output); err != nil {
				return err
			}

			fmt.Printf("✓ Conversion completed successfully in %.2fs\n", time.Since(start).Seconds())
			fmt.Printf("  Output: %s\n", output)
			if info, err := os.Stat(output); err == nil {
				fmt.Printf("  Size: %d bytes\n", info.Size())
			}
			return nil
		},
	}
	cmd.Flags().StringP("input", "i", "", "input Markdown file path")
	cmd.Flags().StringP("output", "o", "", "output DOCX file path (defaults to the input name with .docx)")
	cmd.Flags().StringP("config", "c", "", "configuration file path (YAML)")
	cmd.Flags().String("config-prompt", "", "natural language prompt to modify configuration before conversion")
	cmd.Flags().Bool("stats", false, "show conversion statistics")
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Convert multiple files (batch processing)",
		Long: `Convert every supported file in a directory to DOCX.

Example:
  draftmill batch -i docs/
  draftmill batch -i docs/ -o build/ --recursive --parallel 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputDir, _ := cmd.Flags().GetString("input-dir")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			cfgPath, _ := cmd.Flags().GetString("config")
			prompt, _ := cmd.Flags().GetString("config-prompt")
			recursive, _ := cmd.Flags().GetBool("recursive")
			parallel, _ := cmd.Flags().GetInt("parallel")
			progress, _ := cmd.Flags().GetBool("progress")

			if inputDir == "" {
				return fmt.Errorf("--input-dir flag is required")
			}
			info, err := os.Stat(inputDir)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("input directory not found: %s", inputDir)
			}
			if outputDir == "" {
				outputDir = inputDir
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			fmt.Printf("Batch conversion: %s -> %s\n", inputDir, outputDir)

			files, err := findSourceFiles(inputDir, recursive)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Printf("No supported files found in %s\n", inputDir)
				return nil
			}
			fmt.Printf("Found %d source files\n", len(files))

			cfg, err := loadConversionConfig(cfgPath)
			if err != nil {
				return err
			}
			if prompt != "" {
				fmt.Println("Updating configuration with natural language prompt...")
				cfg, err = applyConfigPrompt(cmd.Context(), cfg, prompt)
				if err != nil {
					return err
				}
				fmt.Println("Configuration updated successfully")
			}

			engine := convert.NewEngine(cfg, log)

			pairs := make([]convert.FilePair, 0, len(files))
			for _, in := range files {
				rel, err := filepath.Rel(inputDir, in)
				if err != nil {
					rel = filepath.Base(in)
				}
				out := withDocxExt(filepath.Join(outputDir, rel))
				if out == in {
					// A .docx source converting onto itself.
					fmt.Printf("  skipping %s: output would overwrite input\n", in)
					continue
				}
				pairs = append(pairs, convert.FilePair{In: in, Out: out})
			}

			if progress {
				fmt.Printf("Starting conversion of %d files with %d parallel workers...\n", len(pairs), parallel)
			}

			start := time.Now()
			results := engine.ConvertBatch(cmd.Context(), pairs, parallel)

			successful := 0
			for _, res := range results {
				if res.Err == nil {
					successful++
					if progress {
						fmt.Printf("  %s -> %s (%.2fs)\n", res.In, res.Out, res.Duration.Seconds())
					}
				}
			}
			failed := len(results) - successful

			fmt.Printf("\n✓ Batch conversion completed in %.2fs\n", time.Since(start).Seconds())
			fmt.Printf("  Successful: %d\n", successful)
			if failed > 0 {
				fmt.Printf("  Failed: %d\n", failed)
				for _, res := range results {
					if res.Err != nil {
						fmt.Printf("    ✗ %s: %v\n", res.In, res.Err)
					}
				}
				return fmt.Errorf("%d of %d conversions failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringP("input-dir", "i", "", "input directory containing source files")
	cmd.Flags().StringP("output-dir", "o", "", "output directory for DOCX files (defaults to the input directory)")
	cmd.Flags().StringP("config", "c", "", "configuration file path (YAML)")
	cmd.Flags().String("config-prompt", "", "natural language prompt to modify configuration before conversion")
	cmd.Flags().BoolP("recursive", "r", false, "process files recursively in subdirectories")
	cmd.Flags().Int("parallel", 4, "maximum number of parallel conversions")
	cmd.Flags().Bool("progress", false, "show detailed progress information")
	return cmd
}

// loadConversionConfig loads the YAML file at path, or the built-in
// defaults when no path is given.
func loadConversionConfig(path string) (*config.Conversion, error) {
	if path == "" {
		return config.DefaultConversion(), nil
	}
	return config.LoadConversion(path)
}

func withDocxExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".docx"
}

// findSourceFiles lists the convertible files under dir, sorted by path.
func findSourceFiles(dir string, recursive bool) ([]string, error) {
	if recursive {
		var files []string
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && parser.IsSupportedExtension(path) {
				files = append(files, path)
			}
			return nil
		})
		return files, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && parser.IsSupportedExtension(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
