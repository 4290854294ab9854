package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/recheck/internal/ledger"
	"github.com/Sumatoshi-tech/recheck/internal/remedy"
	"github.com/Sumatoshi-tech/recheck/internal/scan"
)

// Tool name constants.
const (
	ToolNameScan      = "recheck_scan"
	ToolNameRemediate = "recheck_remediate"
	ToolNameProgress  = "recheck_progress"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyFile indicates the file parameter is empty.
	ErrEmptyFile = errors.New("file parameter is required and must not be empty")
	// ErrFileNotSuppressed indicates the requested file does not carry the directive.
	ErrFileNotSuppressed = errors.New("file does not carry the suppression directive")
)

// ScanInput is the input schema for the recheck_scan tool.
type ScanInput struct {
	File   string `json:"file,omitempty"   jsonschema:"optional substring filter over relative file paths"`
	Module string `json:"module,omitempty" jsonschema:"optional substring filter over module names"`
}

// RemediateInput is the input schema for the recheck_remediate tool.
type RemediateInput struct {
	DryRun bool   `json:"dry_run,omitempty" jsonschema:"compute the outcome without writing any file"`
	File   string `json:"file"              jsonschema:"root-relative path of the suppressed file to remediate"`
}

// ProgressInput is the input schema for the recheck_progress tool.
type ProgressInput struct{}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// scannedFile is one scan result entry.
type scannedFile struct {
	Path   string `json:"path"`
	Module string `json:"module"`
}

// remediationOutcome is the JSON-safe projection of a file result.
type remediationOutcome struct {
	Path              string   `json:"path"`
	Module            string   `json:"module"`
	Outcome           string   `json:"outcome"`
	Patterns          []string `json:"patterns,omitempty"`
	DiagnosticsBefore int      `json:"diagnostics_before"`
	DiagnosticsAfter  int      `json:"diagnostics_after"`
	Error             string   `json:"error,omitempty"`
	Diff              string   `json:"diff,omitempty"`
	DryRun            bool     `json:"dry_run"`
}

// handleScan processes recheck_scan tool calls.
func (s *Server) handleScan(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input ScanInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	items, err := s.scanItems(scan.Filters{Module: input.Module, File: input.File})
	if err != nil {
		return errorResult(fmt.Errorf("scan: %w", err))
	}

	files := make([]scannedFile, len(items))
	for i, item := range items {
		files[i] = scannedFile{Path: item.Path, Module: item.Module}
	}

	return jsonResult(map[string]any{
		"count": len(files),
		"files": files,
	})
}

// handleRemediate processes recheck_remediate tool calls.
func (s *Server) handleRemediate(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input RemediateInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if strings.TrimSpace(input.File) == "" {
		return errorResult(ErrEmptyFile)
	}

	// Full scan: the ledger merge needs suppressed counts for every module,
	// not just the requested file's.
	items, err := s.scanItems(scan.Filters{})
	if err != nil {
		return errorResult(fmt.Errorf("scan: %w", err))
	}

	if s.metrics != nil {
		s.metrics.RecordScanned(ctx, len(items))
	}

	item, found := exactMatch(items, input.File)
	if !found {
		return errorResult(fmt.Errorf("%w: %s", ErrFileNotSuppressed, input.File))
	}

	executor, buildErr := remedy.NewPipeline(s.cfg, remedy.PipelineOptions{
		DryRun:   input.DryRun,
		EmitDiff: input.DryRun,
		Logger:   s.logger,
		Metrics:  s.metrics,
	})
	if buildErr != nil {
		return errorResult(fmt.Errorf("build pipeline: %w", buildErr))
	}

	result := executor.Run(ctx, []scan.WorkItem{item})

	if !input.DryRun {
		mergeErr := s.mergeLedger(items, result)
		if mergeErr != nil {
			return errorResult(fmt.Errorf("update ledger: %w", mergeErr))
		}
	}

	file := result.Files[0]

	outcome := remediationOutcome{
		Path:              file.Path,
		Module:            file.Module,
		Outcome:           string(file.Outcome),
		Patterns:          file.Patterns,
		DiagnosticsBefore: file.DiagnosticsBefore,
		DiagnosticsAfter:  file.DiagnosticsAfter,
		Diff:              file.Diff,
		DryRun:            input.DryRun,
	}
	if file.Err != nil {
		outcome.Error = file.Err.Error()
	}

	return jsonResult(outcome)
}

// handleProgress processes recheck_progress tool calls.
func (s *Server) handleProgress(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	_ ProgressInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	doc, err := ledger.Load(s.ledgerPath())
	if err != nil {
		return errorResult(fmt.Errorf("load ledger: %w", err))
	}

	return jsonResult(doc)
}

// scanItems runs the configured scanner with the given filters.
func (s *Server) scanItems(filters scan.Filters) ([]scan.WorkItem, error) {
	scanner := scan.New(s.cfg.Root, s.cfg.Directive, scan.Options{
		Excludes:   s.cfg.Scan.Excludes,
		Extensions: s.cfg.Scan.Extensions,
		Languages:  s.cfg.Scan.Languages,
		Logger:     s.logger,
	})

	return scanner.Scan(filters)
}

// mergeLedger folds one run into the durable progress ledger.
func (s *Server) mergeLedger(scanned []scan.WorkItem, result remedy.RunResult) error {
	doc, loadErr := ledger.Load(s.ledgerPath())
	if loadErr != nil {
		return loadErr
	}

	suppressed := map[string]int{}
	for _, item := range scanned {
		suppressed[item.Module]++
	}

	doc.Merge(ledger.RunSummary{
		SuppressedByModule: suppressed,
		ResolvedByModule:   result.ResolvedByModule(),
		Notes:              "mcp " + ToolNameRemediate,
	})

	return ledger.Save(s.ledgerPath(), doc)
}

// ledgerPath resolves the configured ledger location under the scan root.
func (s *Server) ledgerPath() string {
	if filepath.IsAbs(s.cfg.Ledger.Path) {
		return s.cfg.Ledger.Path
	}

	return filepath.Join(s.cfg.Root, s.cfg.Ledger.Path)
}

// exactMatch finds the work item whose relative path equals the query.
func exactMatch(items []scan.WorkItem, path string) (scan.WorkItem, bool) {
	for _, item := range items {
		if item.Path == path {
			return item, true
		}
	}

	return scan.WorkItem{}, false
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
