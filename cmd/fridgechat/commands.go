package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fridgechat/internal/fridge"
	"fridgechat/internal/usage"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func runPrompt(cmd *cobra.Command, args []string) error {
	kind, err := fridge.ParsePromptKind(args[0])
	if err != nil {
		return err
	}
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	items, err := rt.store.Snapshot(contextOf(cmd))
	if err != nil {
		return err
	}
	prompt, err := rt.bridge.Prompt(kind, items, missingItems)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), prompt)
	return nil
}

func runNotify(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	items, err := rt.store.Snapshot(contextOf(cmd))
	if err != nil {
		return err
	}
	notes := rt.preferences.Filter(rt.bridge.Notifications(items))
	out := cmd.OutOrStdout()
	if len(notes) == 0 {
		fmt.Fprintln(out, "Nothing needs your attention.")
		return nil
	}
	for _, n := range notes {
		fmt.Fprintf(out, "[%s] %s: %s\n", n.Urgency, n.Title, n.Message)
	}
	return nil
}

func runUsage(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	stats := usage.NewTracker(usage.DefaultPath(rt.workspace)).Stats()
	out := cmd.OutOrStdout()
	if stats.Total.Calls == 0 {
		fmt.Fprintln(out, "No replies recorded yet.")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("MODEL", "CALLS", "INPUT", "OUTPUT", "TOTAL")
	models := make([]string, 0, len(stats.ByModel))
	for m := range stats.ByModel {
		models = append(models, m)
	}
	sort.Strings(models)
	for _, m := range models {
		t.Row(usageRow(m, stats.ByModel[m])...)
	}
	t.Row(usageRow("all", stats.Total)...)
	fmt.Fprintln(out, t.String())
	fmt.Fprintf(out, "%d sessions\n", len(stats.BySession))
	return nil
}

func usageRow(name string, tc usage.TokenCounts) []string {
	return []string{
		name,
		strconv.FormatInt(tc.Calls, 10),
		strconv.FormatInt(tc.Input, 10),
		strconv.FormatInt(tc.Output, 10),
		strconv.FormatInt(tc.Total, 10),
	}
}

func runFridgeList(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	items, err := rt.store.Snapshot(contextOf(cmd))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "The fridge is empty.")
		return nil
	}

	now := rt.bridge.Now()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("NAME", "CATEGORY", "QTY", "EXPIRES")
	for _, it := range items {
		t.Row(it.Name, fridge.CategoryOf(it), strconv.Itoa(it.Quantity), describeExpiry(it, now))
	}
	fmt.Fprintln(out, t.String())
	return nil
}

func runFridgeAdd(cmd *cobra.Command, args []string) error {
	it := fridge.Item{
		Name:       strings.TrimSpace(args[0]),
		Category:   strings.TrimSpace(itemCategory),
		ExpiryDate: strings.TrimSpace(itemExpiry),
		Quantity:   itemQuantity,
	}
	if it.ExpiryDate != "" {
		if _, ok := fridge.ParseExpiry(it, time.Local); !ok {
			return fmt.Errorf("invalid expiry date %q, want YYYY-MM-DD", it.ExpiryDate)
		}
	}

	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.store.Add(contextOf(cmd), it); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s.\n", it.Name)
	return nil
}

func runFridgeRemove(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	removed, err := rt.store.Remove(contextOf(cmd), args[0])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%s is not in the fridge", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", args[0])
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func describeExpiry(it fridge.Item, now time.Time) string {
	days, ok := fridge.DaysUntilExpiry(it, now)
	switch {
	case !ok:
		return "-"
	case days < 0:
		return "expired"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
