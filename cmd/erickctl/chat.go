package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/erickai/companion/backend/internal/analysis/emotion"
	"github.com/erickai/companion/backend/internal/model/crisis"
	"github.com/erickai/companion/backend/internal/relay"
	"github.com/erickai/companion/backend/internal/service/conversation"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	var (
		relayURL string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to Erick from the terminal through a relay",
		Long: `Starts a terminal conversation. Each line is sent as one message.

Commands: /reset starts over, /close hides the crisis alert, /quit exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if relayURL == "" {
				relayURL = os.Getenv("RELAY_URL")
			}
			if relayURL == "" {
				return fmt.Errorf("--relay-url or RELAY_URL is required")
			}

			client := relay.NewClient(relayURL, timeout, root.logger)
			conv := conversation.New(client, conversation.Config{Logger: root.logger})
			return chatLoop(cmd, conv)
		},
	}

	cmd.Flags().StringVar(&relayURL, "relay-url", "", "relay base URL (defaults to $RELAY_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "relay request timeout")
	return cmd
}

func chatLoop(cmd *cobra.Command, conv *conversation.Conversation) error {
	out := cmd.OutOrStdout()
	state := conv.Snapshot()
	printMessage(out, state.Messages[0].Content)

	alertShown := false
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "/quit":
			return nil
		case "/reset":
			state, _ = conv.Reset()
			alertShown = false
			printMessage(out, state.Messages[0].Content)
			continue
		case "/close":
			state = conv.CloseCrisisAlert()
			alertShown = false
			fmt.Fprintln(out, "(alerta cerrada)")
			continue
		}

		outcome := conv.Submit(cmd.Context(), line)
		if !outcome.Accepted {
			continue
		}
		state = outcome.State

		a := outcome.Analysis
		fmt.Fprintf(out, "  %s %s (%s, %.0f%%)\n", emotion.Emoji(a.Primary), emotion.DisplayName(a.Primary), a.Intensity, a.Confidence*100)
		printMessage(out, outcome.Reply.Content)

		if state.CrisisAlertVisible && !alertShown {
			printHelplines(out)
		}
		alertShown = state.CrisisAlertVisible
	}
}

func printMessage(out io.Writer, content string) {
	fmt.Fprintf(out, "Erick: %s\n", content)
}

func printHelplines(out io.Writer) {
	fmt.Fprintln(out, "\n💙 No estás solo. Si lo necesitas, hay personas disponibles 24/7:")
	for _, line := range crisis.Directory() {
		fmt.Fprintf(out, "  %-10s %-16s %s\n", line.Region, line.Number, line.Name)
	}
	fmt.Fprintln(out, "Escribe /close para ocultar este aviso.")
	fmt.Fprintln(out)
}
