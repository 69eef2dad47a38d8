package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/specio/pkg/specio"
	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// Tool names.
const (
	ToolNameRead     = "spectral_read"
	ToolNameCheck    = "spectral_check"
	ToolNameResample = "spectral_resample"
)

// MaxContentBytes caps inline content (4 MB).
const MaxContentBytes = 4 << 20

const inlineSource = "inline"

// Sentinel errors for tool input validation.
var (
	ErrEmptyContent    = errors.New("content parameter is required and must not be empty")
	ErrContentTooLarge = errors.New("content exceeds maximum size")
	ErrUnknownSeries   = errors.New("no such series")
)

// ReadInput is the input of spectral_read.
type ReadInput struct {
	Content        string `json:"content"                   jsonschema:"full text of the spectral file"`
	Name           string `json:"name,omitempty"            jsonschema:"file name, used to pick the format by extension"`
	Format         string `json:"format,omitempty"          jsonschema:"force a format: ampas, ampas-json or cgats"`
	IncludeSamples bool   `json:"include_samples,omitempty" jsonschema:"include every sample in the result"`
}

// CheckInput is the input of spectral_check.
type CheckInput struct {
	Content string `json:"content"          jsonschema:"full text of the spectral file"`
	Name    string `json:"name,omitempty"   jsonschema:"file name, used to pick the format by extension"`
	Format  string `json:"format,omitempty" jsonschema:"force a format: ampas, ampas-json or cgats"`
}

// ResampleInput is the input of spectral_resample.
type ResampleInput struct {
	Content       string  `json:"content"                 jsonschema:"full text of the spectral file"`
	Name          string  `json:"name,omitempty"          jsonschema:"file name, used to pick the format by extension"`
	Format        string  `json:"format,omitempty"        jsonschema:"force a format: ampas, ampas-json or cgats"`
	Series        string  `json:"series,omitempty"        jsonschema:"series to resample (default: all)"`
	Start         float64 `json:"start"                   jsonschema:"first wavelength of the grid"`
	End           float64 `json:"end"                     jsonschema:"last wavelength of the grid"`
	Step          float64 `json:"step"                    jsonschema:"grid step, positive"`
	Interpolation string  `json:"interpolation,omitempty" jsonschema:"linear (default) or cubic"`
}

// ToolOutput wraps every tool's structured result.
type ToolOutput struct {
	Data any `json:"data"`
}

// Problem is one diagnostic reported by spectral_check.
type Problem struct {
	Line    int    `json:"line,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// CheckResult is the result of spectral_check.
type CheckResult struct {
	Valid    bool              `json:"valid"`
	Summary  *spectral.Summary `json:"summary,omitempty"`
	Problems []Problem         `json:"problems"`
}

// ResampledSeries is one series of a spectral_resample result.
type ResampledSeries struct {
	Name     string            `json:"name"`
	Integral float64           `json:"integral"`
	Samples  []spectral.Sample `json:"samples"`
}

func (s *Server) handleRead(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in ReadInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	ds, err := s.parse(ctx, in.Content, in.Name, in.Format)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(ds.Snapshot(in.IncludeSamples))
}

func (s *Server) handleCheck(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in CheckInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateContent(in.Content); err != nil {
		return errorResult(err)
	}

	if in.Format != "" {
		if err := specio.CheckFormat(in.Format); err != nil {
			return errorResult(err)
		}
	}

	ds, err := s.parse(ctx, in.Content, in.Name, in.Format)
	if err == nil {
		sum := ds.Summary()

		return jsonResult(CheckResult{Valid: true, Summary: &sum, Problems: []Problem{}})
	}

	problems := spectral.Problems(err)
	out := CheckResult{Problems: make([]Problem, len(problems))}

	for i, p := range problems {
		out.Problems[i] = Problem{Line: spectral.Line(p), Kind: spectral.Kind(p), Message: p.Error()}
	}

	return jsonResult(out)
}

func (s *Server) handleResample(
	ctx context.Context, _ *mcpsdk.CallToolRequest, in ResampleInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	mode, err := spectral.ParseInterpolation(in.Interpolation)
	if err != nil {
		return errorResult(err)
	}

	ds, err := s.parse(ctx, in.Content, in.Name, in.Format)
	if err != nil {
		return errorResult(err)
	}

	var out []ResampledSeries

	for name, series := range ds.All() {
		if in.Series != "" && name != in.Series {
			continue
		}

		resampled, rerr := series.Resample(in.Start, in.End, in.Step, mode)
		if rerr != nil {
			return errorResult(fmt.Errorf("series %q: %w", name, rerr))
		}

		out = append(out, ResampledSeries{
			Name:     name,
			Integral: resampled.Integral(),
			Samples:  resampled.Samples(),
		})
	}

	if len(out) == 0 {
		return errorResult(fmt.Errorf("%w: %q", ErrUnknownSeries, in.Series))
	}

	return jsonResult(out)
}

func (s *Server) parse(ctx context.Context, content, name, format string) (*spectral.Dataset, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	if name == "" {
		name = inlineSource
	}

	return s.reader.Parse(ctx, []byte(content), name, format)
}

func validateContent(content string) error {
	if content == "" {
		return ErrEmptyContent
	}

	if len(content) > MaxContentBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrContentTooLarge, len(content), MaxContentBytes)
	}

	return nil
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, ToolOutput{Data: value}, nil
}

const (
	readToolDescription = "Read a spectral data file (AMPAS text, AMPAS JSON or CGATS) " +
		"and return its metadata, per-series statistics and optionally every sample."

	checkToolDescription = "Validate a spectral data file and list every problem with its " +
		"line and kind. A file with problems is reported as valid=false, not as an error."

	resampleToolDescription = "Resample one or all series of a spectral data file onto a " +
		"uniform wavelength grid with linear or cubic interpolation. Never extrapolates."
)
