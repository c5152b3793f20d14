package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"digital.vasic.outcomes/pkg/capability"
	"digital.vasic.outcomes/pkg/outcome"
	"digital.vasic.outcomes/pkg/outcomedata"
	"digital.vasic.outcomes/pkg/provider"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	pendingColor = color.New(color.FgYellow, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	labelColor   = color.New(color.FgCyan)
	dimColor     = color.New(color.FgHiBlack)
)

func statusColor(s outcome.Status) *color.Color {
	switch s {
	case outcome.StatusSuccess:
		return successColor
	case outcome.StatusProcessing, outcome.StatusUnsupported:
		return pendingColor
	default:
		return failureColor
	}
}

func printResponse(w io.Writer, resp *outcome.Response) {
	statusColor(resp.Status).Fprintf(w, "%s", resp.Status)
	if resp.OperationRef != "" {
		dimColor.Fprintf(w, " (%s)", resp.OperationRef)
	}
	fmt.Fprintln(w)

	if resp.Description != "" {
		labelColor.Fprint(w, "  description: ")
		fmt.Fprintln(w, resp.Description)
	}
	if resp.Score != nil {
		labelColor.Fprint(w, "  score: ")
		fmt.Fprintln(w, outcome.FormatScore(*resp.Score))
	}
	if resp.HTTPStatus != 0 {
		labelColor.Fprint(w, "  http: ")
		fmt.Fprintln(w, resp.HTTPStatus)
	}
}

// tokenForKey maps a result data key onto the capability token
// that advertises it. Both text keys share one token.
func tokenForKey(key string) string {
	switch key {
	case outcomedata.KeyText, outcomedata.KeyCDATAText:
		return capability.TokenText
	case outcomedata.KeyURL:
		return capability.TokenURL
	case outcomedata.KeyNeedsGrading:
		return capability.TokenNeedsGrading
	case outcomedata.KeyDate:
		return capability.TokenDate
	case outcomedata.KeyStatusOfResult:
		return capability.TokenStatusOfResult
	default:
		return ""
	}
}

func warnUnadvertised(w io.Writer, p *provider.ToolProvider, values map[string]string) {
	if len(values) == 0 {
		return
	}
	if !p.AcceptsOutcomeData() {
		pendingColor.Fprintln(w, "warning: consumer did not advertise outcome data; sending anyway")
		return
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if tok := tokenForKey(k); tok != "" && !p.Negotiator.Supports(tok) {
			pendingColor.Fprintf(w, "warning: consumer does not list %q; sending anyway\n", tok)
		}
	}
}
