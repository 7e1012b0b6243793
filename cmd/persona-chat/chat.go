package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mike-a-ellis/persona-chat/internal/chat"
	"github.com/mike-a-ellis/persona-chat/internal/llm"
	"github.com/mike-a-ellis/persona-chat/internal/persona"
	"github.com/mike-a-ellis/persona-chat/internal/retrieval"
	"github.com/mike-a-ellis/persona-chat/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session with the persona",
	Long: `Opens a terminal chat session. Responses stream as they are
generated and every exchange is saved to the session store.

In-session commands:
  /help      Show available commands
  /starters  Show suggested conversation openers
  /history   Show the session's turns so far
  /session   Show the current session id
  /reset     Start a fresh session
  /quit      Exit (also /exit or Ctrl+D)`,
	RunE: runChat,
}

var (
	titleColor     = color.New(color.FgCyan, color.Bold)
	promptColor    = color.New(color.FgGreen, color.Bold)
	assistantColor = color.New(color.FgWhite)
	dimColor       = color.New(color.FgHiBlack)
	warnColor      = color.New(color.FgYellow)
)

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	generator := llm.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.MaxResponseTokens)
	sessions := session.NewStore(cfg.SessionStorePath, cfg.MaxConversationHistory)
	sess := sessions.Create("")
	agent := chat.NewAgent(engine, generator, persona.NewExtractor(nil), sessions,
		retrieval.SpeakerFilter(persona.DefaultMatcher()), slog.Default())

	titleColor.Println("Alex Shulga - Persona Chat")
	dimColor.Printf("Session %s, type /help for commands\n\n", sess.SessionID)

	dimColor.Println("Loading conversation index...")
	if err := engine.Initialize(cmd.Context()); err != nil {
		warnColor.Printf("Index unavailable: %v\n", err)
		warnColor.Println("Responses will degrade until 'persona-chat sync' succeeds.")
	} else {
		dimColor.Printf("Index ready (%d chunks)\n\n", engine.Size())
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		promptColor.Print("You: ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if quit := handleCommand(input, sessions); quit {
				break
			}
			continue
		}

		runTurn(cmd.Context(), agent, input)
	}
	dimColor.Println("Goodbye!")
	return scanner.Err()
}

// runTurn streams one response. Ctrl+C interrupts the in-flight turn
// without exiting the session; an interrupted turn is not recorded.
func runTurn(parent context.Context, agent *chat.Agent, input string) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	promptColor.Print("\nAlex: ")
	_, err := agent.RespondStream(ctx, input, func(delta string) error {
		_, err := assistantColor.Print(delta)
		return err
	})
	fmt.Println()
	if errors.Is(err, context.Canceled) {
		warnColor.Println("(interrupted)")
	} else if err != nil {
		warnColor.Printf("turn failed: %v\n", err)
	}
	fmt.Println()
}

// handleCommand executes a slash command and reports whether the REPL
// should exit.
func handleCommand(input string, sessions *session.Store) bool {
	switch strings.ToLower(input) {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /help      Show this help")
		fmt.Println("  /starters  Show suggested conversation openers")
		fmt.Println("  /history   Show the session's turns so far")
		fmt.Println("  /session   Show the current session id")
		fmt.Println("  /reset     Start a fresh session")
		fmt.Println("  /quit      Exit")

	case "/starters":
		fmt.Println("Try asking:")
		for _, starter := range persona.Starters() {
			fmt.Printf("  - %s\n", starter)
		}

	case "/history":
		msgs := sessions.History(0)
		if len(msgs) == 0 {
			dimColor.Println("No turns yet")
			break
		}
		for _, msg := range msgs {
			who := "You"
			if msg.Role == "assistant" {
				who = "Alex"
			}
			fmt.Printf("%s: %s\n", who, msg.Content)
			if msg.Error != "" {
				dimColor.Printf("  (degraded: %s)\n", msg.Error)
			}
		}

	case "/session":
		info := sessions.Summary()
		fmt.Printf("Session %s, %d message(s), started %s\n",
			info.SessionID, info.Messages, info.CreatedAt.Local().Format("2006-01-02 15:04"))

	case "/reset":
		sess := sessions.Reset()
		fmt.Printf("Started fresh session %s\n", sess.SessionID)

	default:
		warnColor.Printf("Unknown command %s, try /help\n", input)
	}
	return false
}
