package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-finder/internal/pipeline"
	"github.com/jonathan/job-finder/internal/types"
)

// maxChatHistory bounds the turns kept between messages
const maxChatHistory = 20

var exitWords = map[string]bool{"exit": true, "quit": true, "bye": true, "goodbye": true}

// assistant is the part of the orchestrator the chat loop needs
type assistant interface {
	Route(ctx context.Context, query string, history []types.ConversationTurn) types.RouteResult
	Run(ctx context.Context, req pipeline.Request) pipeline.Result
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session",
	Long: `Reads messages from standard input. Job requests are searched, anything else gets a
conversational reply. Type exit, quit, bye or goodbye to leave.`,
	Args: cobra.NoArgs,
	RunE: runChatCmd,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChatCmd(cmd *cobra.Command, _ []string) error {
	o, err := newOrchestrator(cmd.Context())
	if err != nil {
		return err
	}
	defer o.Close() //nolint:errcheck

	return runChat(cmd.Context(), o, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runChat drives the interactive loop until an exit word, EOF or cancellation
func runChat(ctx context.Context, a assistant, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "👋 Hi! Tell me what kind of job you're looking for. Type 'exit' to quit.")

	var history []types.ConversationTurn
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if exitWords[strings.ToLower(message)] {
			fmt.Fprintln(out, "\n👋 Goodbye! Good luck with your job search.")
			return nil
		}

		reply := respond(ctx, a, message, history)
		fmt.Fprintf(out, "\nAssistant:\n%s\n", reply)

		history = append(history,
			types.ConversationTurn{Role: "user", Content: message},
			types.ConversationTurn{Role: "assistant", Content: reply},
		)
		if len(history) > maxChatHistory {
			history = history[len(history)-maxChatHistory:]
		}
	}
}

func respond(ctx context.Context, a assistant, message string, history []types.ConversationTurn) string {
	route := a.Route(ctx, message, history)
	if !route.ShouldSearch {
		if route.Response != nil {
			return *route.Response
		}
		return ""
	}
	return a.Run(ctx, pipeline.Request{Query: message, History: history, SkipRouting: true}).Document
}
