package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"digital.vasic.outcomes/pkg/capability"
)

// NewCapabilitiesCmd creates the capabilities command.
func NewCapabilitiesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show which result data the consumer advertised",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			n := capability.NewNegotiator(s.cfg.Launch())
			if !n.SupportsAnyOutcomeData() {
				pendingColor.Fprintln(out, "outcome data not advertised")
				return nil
			}

			labelColor.Fprint(out, "advertised: ")
			fmt.Fprintln(out, capability.Encode(n.AcceptedTypes()))
			for _, tok := range capability.KnownTokens {
				if n.Supports(tok) {
					successColor.Fprintf(out, "  + %s\n", tok)
				} else {
					dimColor.Fprintf(out, "  - %s\n", tok)
				}
			}
			return nil
		},
	}
}
