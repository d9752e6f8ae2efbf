package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/agentportal/agentportal/internal/agentconfig"
	"github.com/agentportal/agentportal/internal/agentconfig/repositoryimpl"
	"github.com/agentportal/agentportal/internal/config"
	"github.com/agentportal/agentportal/internal/foundry"
)

var (
	app        = kingpin.New("jokeagent", "Console comedian backed by the remote agent platform")
	endpoint   = app.Flag("endpoint", "Project endpoint (overrides AGENTPORTAL_PROJECT_ENDPOINT)").String()
	model      = app.Flag("model", "Model deployment to use").String()
	credential = app.Flag("credential", "Credential kind: cli or default").String()

	chatCmd = app.Command("chat", "Chat with the comedian interactively").Default()

	onceCmd     = app.Command("once", "Send a single message and print the reply")
	onceMessage = onceCmd.Arg("message", "Message to send").Required().String()
)

// exitWords end the interactive session when typed on their own.
var exitWords = map[string]bool{
	"exit":  true,
	"quit":  true,
	"salir": true,
	"bye":   true,
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gateway, cfg, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case chatCmd.FullCommand():
		err = runChat(ctx, gateway, cfg)
	case onceCmd.FullCommand():
		err = streamReply(ctx, gateway, cfg, *onceMessage)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup builds the gateway from env plus flag overrides, and registers the
// comedian configuration in an in-memory store.
func setup(ctx context.Context) (*foundry.Gateway, *agentconfig.AgentConfig, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, nil, err
	}
	foundryEnv := config.FoundryEnvFromEnv(env)
	if *endpoint != "" {
		foundryEnv.ProjectEndpoint = *endpoint
	}
	if *model != "" {
		foundryEnv.ModelDeployment = *model
	}
	if *credential != "" {
		foundryEnv.Credential = *credential
	}

	cred, err := foundry.NewCredential(foundryEnv.Credential)
	if err != nil {
		return nil, nil, err
	}
	gateway := foundry.NewGateway(foundryEnv.ProjectEndpoint, foundryEnv.ModelDeployment, foundryEnv.TokenScope, cred)

	svc := agentconfig.NewService(repositoryimpl.NewMemoryRepository())
	cfg, err := svc.Create(ctx, agentconfig.CreateRequest{
		Name:        "Comedian",
		Description: "A stand-up comedian for the terminal",
		Purpose:     "tell short, clever jokes and brighten the user's day",
		Personality: "witty, playful and a little self-deprecating",
		Capabilities: []string{
			"one-liners and puns",
			"observational humor about everyday life",
			"jokes about programming and technology",
		},
		Rules: []string{
			"keep every joke clean and kind",
			"never explain a joke unless asked",
			"one joke per reply",
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return gateway, cfg, nil
}

func runChat(ctx context.Context, gateway *foundry.Gateway, cfg *agentconfig.AgentConfig) error {
	banner := color.New(color.FgYellow, color.Bold)
	banner.Println("Comedian at your service. Type a message, or 'exit' to leave.")

	prompt := color.New(color.FgGreen, color.Bold)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("You: ")
		if !scanner.Scan() {
			// EOF or read error ends the session
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitWords[strings.ToLower(line)] {
			banner.Println("That's my time, folks. Goodnight!")
			return nil
		}
		if err := streamReply(ctx, gateway, cfg, line); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			color.New(color.FgRed).Fprintf(os.Stderr, "stream failed: %v\n", err)
		}
	}
}

// streamReply prints fragments as they arrive so the reply appears
// incrementally, like the agent is typing.
func streamReply(ctx context.Context, gateway *foundry.Gateway, cfg *agentconfig.AgentConfig, message string) error {
	fragments, err := gateway.ChatWithConfig(ctx, cfg, message)
	if err != nil {
		return err
	}

	color.New(color.FgCyan, color.Bold).Print("Comedian: ")
	for f := range fragments {
		if f.Err != nil {
			fmt.Println()
			return f.Err
		}
		fmt.Print(f.Text)
	}
	fmt.Println()
	return nil
}
