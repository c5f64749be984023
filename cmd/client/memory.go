package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamikazebr/iskra-desktop/internal/client/memory"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Manage the workspace memory bank (.iskra/memory.json)",
}

var memoryAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Remember a preference, decision, solution or pattern",
	Long: `Add an entry to the memory bank of the current workspace.

Examples:
  iskra memory add "prefer table-driven tests" --type pattern
  iskra memory add "run migrations before seeding" --type solution --context "empty tables"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runMemoryAdd,
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List memory entries",
	Run:   runMemoryList,
}

var memoryRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a memory entry",
	Args:  cobra.ExactArgs(1),
	Run:   runMemoryRm,
}

var memoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the memory bank as it is sent with --memory",
	Run:   runMemoryShow,
}

var (
	memoryWorkspace string
	memoryType      string
	memoryContext   string
)

func init() {
	memoryCmd.PersistentFlags().StringVarP(&memoryWorkspace, "workspace", "w", "", "Workspace folder (defaults to the current directory)")
	memoryAddCmd.Flags().StringVarP(&memoryType, "type", "t", string(memory.Preference), "Entry type: preference, decision, solution or pattern")
	memoryAddCmd.Flags().StringVarP(&memoryContext, "context", "c", "", "Where the entry applies")
	memoryCmd.AddCommand(memoryAddCmd, memoryListCmd, memoryRmCmd, memoryShowCmd)
}

func memoryStore() *memory.Store {
	dir := memoryWorkspace
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fail("Failed to find workspace", err)
		}
		dir = wd
	}
	return memory.NewStore(dir, app.log)
}

func runMemoryAdd(cmd *cobra.Command, args []string) {
	entry, err := memoryStore().Add(memory.EntryType(memoryType), strings.Join(args, " "), memoryContext)
	if err != nil {
		fail("Failed to add entry", err)
	}
	fmt.Printf("✓ Remembered %s (%s)\n", entry.ID, entry.Type)
}

func runMemoryList(cmd *cobra.Command, args []string) {
	entries := memoryStore().List()
	if len(entries) == 0 {
		fmt.Println("No memory entries")
		return
	}

	for _, e := range entries {
		at := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04")
		fmt.Printf("%s  %-10s  %s  %s\n", e.ID, e.Type, at, e.Content)
		if e.Context != "" {
			fmt.Printf("    context: %s\n", e.Context)
		}
	}
}

func runMemoryRm(cmd *cobra.Command, args []string) {
	removed, err := memoryStore().Delete(args[0])
	if err != nil {
		fail("Failed to delete entry", err)
	}
	if !removed {
		fmt.Printf("✗ No entry %s\n", args[0])
		os.Exit(1)
	}
	fmt.Printf("✓ Deleted %s\n", args[0])
}

func runMemoryShow(cmd *cobra.Command, args []string) {
	out := memoryStore().Render()
	if out == "" {
		fmt.Println("No memory entries")
		return
	}
	fmt.Println(out)
}
