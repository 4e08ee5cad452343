package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/agentkit/internal/output"
	"github.com/rtmx-ai/agentkit/internal/report"
	"github.com/rtmx-ai/agentkit/internal/validate"
)

var (
	validateSkip   []string
	validateJSON   bool
	validateReport bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the project setup",
	Long: `Check the project tree against the expected agent workflow setup.

Categories: package_manager, rules, dependencies, scripts, agent_system,
documentation, testing. Required checks fail the category, optional
ones only warn. Categories can be skipped with --skip or in the config.

Exit codes:
  0  No required check failed (warnings allowed)
  1  At least one required check failed`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringSliceVar(&validateSkip, "skip", nil, "categories to skip (comma-separated)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output as JSON")
	validateCmd.Flags().BoolVar(&validateReport, "report", false, "also write a markdown validation report")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if unknown := validate.UnknownSkips(validateSkip); len(unknown) > 0 {
		return NewExitError(1, fmt.Sprintf("unknown validation category: %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(validate.Categories(), ", ")))
	}

	opts := proj.cfg.ValidationOptions(proj.layout, validateSkip...)
	result := validate.New(proj.fs, proj.root, opts).Run()

	w := cmd.OutOrStdout()
	if validateJSON {
		if err := displayValidationJSON(w, result); err != nil {
			return err
		}
	} else {
		displayValidation(w, result)
	}

	if validateReport {
		ctx := cmd.Context()
		rc := proj.reportContext(ctx, nil, "")
		rc.Validation = result
		content, err := report.Render(report.KindValidation, nil, rc)
		if err != nil {
			return err
		}
		path, err := proj.writeReport(ctx, report.KindValidation, rc, proj.layout.ValidationDir, "validation", content, proj.layout.LatestValidation)
		if err != nil {
			return err
		}
		if !validateJSON {
			fprintf(w, "Report: %s\n", proj.relative(path))
		}
	}

	if result.HasErrors {
		return NewExitError(1, "")
	}
	return nil
}

func displayValidationJSON(w io.Writer, r *validate.Report) error {
	data, err := json.MarshalIndent(struct {
		*validate.Report
		Summary string `json:"summary"`
	}{r, r.Summary()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal validation result: %w", err)
	}
	fprintf(w, "%s\n", data)
	return nil
}

func displayValidation(w io.Writer, r *validate.Report) {
	width := 70
	fprintln(w, output.Header("Project Validation", width))
	fprintln(w)

	t := output.NewTable("Category", "Status", "Checks", "Issues")
	for _, c := range r.Categories {
		t.AddRow(
			c.Title(),
			output.StatusIcon(string(c.Status))+" "+string(c.Status),
			fmt.Sprint(len(c.Checks)),
			fmt.Sprint(len(c.Issues)),
		)
	}
	t.AlignRight(3, 4)
	_, _ = t.WriteTo(w)

	for _, c := range r.Categories {
		if len(c.Issues) == 0 {
			continue
		}
		fprintln(w)
		fprintf(w, "%s %s\n", output.StatusIcon(string(c.Status)), c.Title())
		for _, issue := range c.Issues {
			fprintf(w, "  - %s\n", issue)
		}
	}

	fprintln(w)
	var color string
	switch {
	case r.HasErrors:
		color = output.BoldRed
	case r.Warnings() > 0:
		color = output.Yellow
	default:
		color = output.BoldGreen
	}
	fprintln(w, output.Color(r.Summary(), color))
}
