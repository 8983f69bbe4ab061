package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
)

// Ping checks the API's gRPC health endpoint. The call goes through the
// gateway interceptor, so an expired access credential is refreshed first.
func (a *App) Ping(ctx context.Context) error {
	if err := a.pinger(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Server is serving.")
	return nil
}

// Stats prints the session counters and the local records.
func (a *App) Stats(ctx context.Context) error {
	families, err := a.metrics.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(labels)

			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(tw, "%s\t%g\n", name, m.GetCounter().GetValue())
		}
	}
	tw.Flush()

	entries, err := a.local.List(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	tw = tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCAL KEY\tBYTES\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Key, len(e.Value), formatTime(e.UpdatedAt))
	}
	tw.Flush()
	return nil
}
