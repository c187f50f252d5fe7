package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fridgechat",
	Short: "fridgechat - a cooking assistant that knows your fridge",
	Long: `fridgechat is a terminal cooking assistant.

Chat about meals in an embedded panel or fullscreen (ctrl+o). Replies stream in
one paragraph at a time, and the assistant speaks up when food in your fridge
is about to expire.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	RunE:         runInteractiveChat,
}

// promptCmd prints a fridge-aware prompt
var promptCmd = &cobra.Command{
	Use:       "prompt {analysis|recipe|nutrition|storage|shopping}",
	Short:     "Print the assistant prompt built from the current fridge",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"analysis", "recipe", "nutrition", "storage", "shopping"},
	RunE:      runPrompt,
}

// notifyCmd lists the notifications the fridge would raise
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Print the notifications the current fridge would raise",
	RunE:  runNotify,
}

// usageCmd reports reply token usage
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage recorded for assistant replies",
	RunE:  runUsage,
}

// fridgeCmd manages the local inventory
var fridgeCmd = &cobra.Command{
	Use:   "fridge",
	Short: "Manage the local fridge inventory",
}

var fridgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the items in the fridge",
	RunE:  runFridgeList,
}

var fridgeAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add or replace an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runFridgeAdd,
}

var fridgeRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runFridgeRemove,
}

var (
	missingItems []string
	itemCategory string
	itemExpiry   string
	itemQuantity int
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to .fridgechat/logs")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.fridgechat/config.yaml)")

	promptCmd.Flags().StringSliceVar(&missingItems, "missing", nil, "Items to add to the shopping list")

	fridgeAddCmd.Flags().StringVar(&itemCategory, "category", "", "Item category (e.g. dairy)")
	fridgeAddCmd.Flags().StringVar(&itemExpiry, "expires", "", "Expiry date, YYYY-MM-DD")
	fridgeAddCmd.Flags().IntVar(&itemQuantity, "quantity", 1, "Quantity")

	fridgeCmd.AddCommand(fridgeListCmd)
	fridgeCmd.AddCommand(fridgeAddCmd)
	fridgeCmd.AddCommand(fridgeRemoveCmd)

	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(fridgeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
