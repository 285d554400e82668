package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brightleaf-health/epi-preprocessor/internal/htmlkit"
	"github.com/brightleaf-health/epi-preprocessor/internal/service/epi/adapters/fhir"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "epitool",
		Short: "Inspect and extract content from ePI document bundles",
		Long: `epitool works offline on FHIR ePI document bundles: it inspects
their make-up, extracts the narrative content of the Composition and its
section tree, lists element links and converts narratives to markdown.

Example:
  epitool inspect bundle.json
  epitool extract bundle.json --output content.json
  epitool links bundle.json --class warning-box
  epitool markdown bundle.json`,
		Version: version,
	}

	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(linksCmd())
	rootCmd.AddCommand(markdownCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadEPI(path string) (*fhir.EPI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fhir.ParseBundle(data)
}

func contentManager(cmd *cobra.Command) *fhir.ContentManager {
	depth, _ := cmd.Flags().GetInt("max-depth")
	return fhir.NewContentManager(htmlkit.New(), depth)
}

func writeResult(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Println(string(out))
		return nil
	}
	return os.WriteFile(output, append(out, '\n'), 0o644)
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <bundle.json>",
		Short: "Summarize an ePI bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			epi, err := loadEPI(args[0])
			if err != nil {
				return err
			}
			comp := epi.Composition()
			fmt.Printf("Bundle:      %s (type %s)\n", epi.Bundle().ID, epi.Bundle().Type)
			fmt.Printf("Composition: %s\n", comp.ID)
			if comp.Title != "" {
				fmt.Printf("Title:       %s\n", comp.Title)
			}
			if comp.Status != "" {
				fmt.Printf("Status:      %s\n", comp.Status)
			}

			counts := epi.ResourceCounts()
			types := make([]string, 0, len(counts))
			for t := range counts {
				types = append(types, t)
			}
			sort.Strings(types)
			fmt.Println("Entries:")
			for _, t := range types {
				fmt.Printf("  %-20s %d\n", t, counts[t])
			}

			report, err := contentManager(cmd).ExtractAll(comp)
			if err != nil {
				return err
			}
			fmt.Printf("Sections:    %d (max nesting %d)\n", report.TotalSections, report.MaxNestingLevel)
			fmt.Printf("Links:       %d\n", len(fhir.NewLinkManager().List(comp)))
			return nil
		},
	}
	cmd.Flags().Int("max-depth", 0, "Maximum section nesting depth (0 = built-in default)")
	return cmd
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <bundle.json>",
		Short: "Extract every narrative of the bundle's Composition",
		Long: `Extract the Composition narrative and the narrative of every
section, pre-order through the section tree, as a JSON content report.

Example:
  epitool extract bundle.json
  epitool extract bundle.json --output content.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			epi, err := loadEPI(args[0])
			if err != nil {
				return err
			}
			report, err := contentManager(cmd).ExtractAll(epi.Composition())
			if err != nil {
				return err
			}
			return writeResult(cmd, report)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().Int("max-depth", 0, "Maximum section nesting depth (0 = built-in default)")
	return cmd
}

func linksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links <bundle.json>",
		Short: "List the element links of the Composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			epi, err := loadEPI(args[0])
			if err != nil {
				return err
			}
			links := fhir.NewLinkManager()
			class, _ := cmd.Flags().GetString("class")
			if class != "" {
				link, err := links.Get(epi.Composition(), class)
				if err != nil {
					return err
				}
				return writeResult(cmd, link)
			}
			return writeResult(cmd, links.List(epi.Composition()))
		},
	}
	cmd.Flags().String("class", "", "Show only the link for this element class")
	cmd.Flags().StringP("output", "o", "", "Write the links to a file instead of stdout")
	return cmd
}

func markdownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markdown <bundle.json>",
		Short: "Convert every narrative of the bundle to markdown",
		Long: `Convert the Composition narrative and every section narrative to
markdown. By default a readable document is printed, section titles
becoming headings by nesting level; --json emits the raw report instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			epi, err := loadEPI(args[0])
			if err != nil {
				return err
			}
			report, err := contentManager(cmd).ExportMarkdown(epi.Composition())
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return writeResult(cmd, report)
			}
			var b strings.Builder
			if report.CompositionMarkdown != "" {
				b.WriteString(report.CompositionMarkdown)
				b.WriteString("\n\n")
			}
			for _, s := range report.Sections {
				b.WriteString(strings.Repeat("#", s.Level+1))
				b.WriteString(" ")
				b.WriteString(s.Title)
				b.WriteString("\n\n")
				b.WriteString(s.Markdown)
				b.WriteString("\n\n")
			}
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				fmt.Print(b.String())
				return nil
			}
			return os.WriteFile(output, []byte(b.String()), 0o644)
		},
	}
	cmd.Flags().Bool("json", false, "Emit the raw markdown report as JSON")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().Int("max-depth", 0, "Maximum section nesting depth (0 = built-in default)")
	return cmd
}
