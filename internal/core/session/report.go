package session

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const reportSeparator = "============================================================"

// RenderReport formats the final statistics as the operator-facing
// text report printed on any terminal transition.
func RenderReport(stats Stats) string {
	var b strings.Builder

	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(reportSeparator)
	line("Task run report")
	line(reportSeparator)
	line("run id:               %s", stats.RunID)
	line("task type:            %s", stats.TaskType)
	line("run mode:             %s", stats.Mode)
	line("started:              %s", stats.StartedAt.Format(time.DateTime))
	line("ended:                %s", stats.EndedAt.Format(time.DateTime))
	line("elapsed:              %s", stats.Elapsed().Round(time.Second))
	line("termination reason:   %s", stats.Reason)
	line(reportSeparator)
	line("submitted:            %d", stats.Submitted)
	line("succeeded:            %d", stats.Succeeded)
	line("failed:               %d", stats.Failed)
	line("success rate:         %.1f%%", stats.SuccessRate()*100)
	line("consecutive failures: %d", stats.ConsecutiveFailures)
	line(reportSeparator)

	if len(stats.AreaUsage) > 0 {
		line("area usage:")
		for _, k := range sortedKeys(stats.AreaUsage) {
			line("  %-20s %d", k, stats.AreaUsage[k])
		}
	}
	if len(stats.StoreUsage) > 0 {
		line("store usage:")
		for _, k := range sortedKeys(stats.StoreUsage) {
			line("  %-20s %d", k, stats.StoreUsage[k])
		}
	}

	if len(stats.Hours) > 0 {
		line(reportSeparator)
		line("hourly breakdown:")
		line("  %-6s %-10s %-10s %-10s", "hour", "submitted", "succeeded", "failed")
		for _, h := range stats.Hours {
			line("  %-6d %-10d %-10d %-10d", h.Hour, h.Submitted, h.Succeeded, h.Failed)
		}
	}

	line(reportSeparator)
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
