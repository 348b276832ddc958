package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/cratepatch/pkg/errors"
	"github.com/matzehuels/cratepatch/pkg/pipeline"
)

// Format selects how a plan or result is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
)

// Formats lists every supported format, for flag help and completion.
var Formats = []Format{FormatText, FormatJSON, FormatDOT, FormatSVG}

// ParseFormat converts a user-supplied name to a Format. Empty means text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want text, json, dot, or svg)", s)
}

// WritePlan writes p to w in the given format.
func WritePlan(ctx context.Context, w io.Writer, p *pipeline.Plan, format Format) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, PlanTable(p)+"\n")
		return err
	case FormatJSON:
		return WriteJSON(w, p)
	case FormatDOT:
		_, err := io.WriteString(w, PlanDOT(p))
		return err
	case FormatSVG:
		return writeSVG(ctx, w, PlanDOT(p))
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteResult writes r to w in the given format.
func WriteResult(ctx context.Context, w io.Writer, r *pipeline.Result, format Format) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, ResultTable(r)+"\n")
		return err
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatDOT:
		_, err := io.WriteString(w, ResultDOT(r))
		return err
	case FormatSVG:
		return writeSVG(ctx, w, ResultDOT(r))
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSVG(ctx context.Context, w io.Writer, dot string) error {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	_, err = w.Write(svg)
	return err
}
