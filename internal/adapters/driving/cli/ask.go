package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askShowSources bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question answered from your documents",
	Long: `Searches the project for relevant context and generates an answer
grounded in it. The question and the reply are appended to the
project's chat history.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the project's chat history",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the project's chat history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	askCmd.Flags().BoolVar(&askShowSources, "sources", false, "list the sources behind the answer")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	reply, err := queryService.Ask(cmd.Context(), projectFlag, args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(reply.Content)

	if askShowSources && len(reply.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range reply.Sources {
			cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, src.DocumentName, src.Chunk.Index, src.Score)
		}
	}

	if reply.Usage != nil {
		cmd.Printf("\n(%d tokens, %.4f, %dms, %s)\n",
			reply.Usage.TokensUsed, reply.Usage.Cost, reply.Usage.LatencyMs, reply.Usage.Model)
	}

	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	messages, err := queryService.History(cmd.Context(), projectFlag)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	if len(messages) == 0 {
		cmd.Println("No history.")
		return nil
	}

	for _, msg := range messages {
		cmd.Printf("[%s] %s\n", msg.Role, msg.Content)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	if err := queryService.ClearHistory(cmd.Context(), projectFlag); err != nil {
		return fmt.Errorf("clear history failed: %w", err)
	}
	cmd.Println("History cleared.")
	return nil
}
