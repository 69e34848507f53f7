package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chatwave/client"
	"chatwave/domain"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:12345"`
	Username      string `env:"CHAT_USERNAME"`
	LogLevel      string `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// consoleSink renders inbound messages on stdout. It runs on the
// controller's receive goroutine, which is safe for a terminal.
type consoleSink struct {
	done chan struct{}
}

func (s *consoleSink) OnMessage(m domain.Message) {
	line := fmt.Sprintf("[%s] %s: %s", m.CreatedAt.Local().Format(time.TimeOnly), m.Sender, m.Content)
	switch m.Kind {
	case domain.KindUserJoin:
		color.Green.Println(line)
	case domain.KindUserLeave:
		color.Red.Println(line)
	case domain.KindServerNotice:
		color.Yellow.Println(line)
	case domain.KindFile:
		color.Cyan.Println(line)
	default:
		fmt.Println(line)
	}
}

func (s *consoleSink) OnDisconnected() {
	color.Red.Println("Disconnected from server")
	close(s.done)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	username := config.Username
	if username == "" {
		username = fmt.Sprintf("User%d", time.Now().UnixMilli()%1000)
	}

	sink := &consoleSink{done: make(chan struct{})}
	controller := client.NewController(log, username, sink)
	if err := controller.Connect(config.ServerAddress); err != nil {
		return exitRuntime, err
	}

	color.Bold.Println("=== ChatWave Console Client ===")
	fmt.Println("Connected as:", username)
	fmt.Println("Type your messages and press Enter. Type /help for commands or /leave to quit.")
	fmt.Println("Use /sendfile <path> to share a file.")

	// Reader goroutine: stdin lines are sent until the user leaves or
	// the connection drops.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "":
				continue
			case line == "/leave" || line == "/quit" || line == "/exit":
				controller.Disconnect()
				return
			case strings.HasPrefix(line, "/sendfile "):
				sendFile(controller, sink, strings.TrimSpace(strings.TrimPrefix(line, "/sendfile ")))
			default:
				controller.SendText(line)
			}
		}
		controller.Disconnect()
	}()

	<-sink.done
	fmt.Println("Goodbye!")
	return exitOK, nil
}

// sendFile reads path locally and hands the bytes to the controller,
// which enforces the size limit before any network I/O.
func sendFile(controller *client.Controller, sink *consoleSink, path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		sink.OnMessage(domain.NewNotice(fmt.Sprintf("Cannot read %s: %v", path, err)))
		return
	}
	controller.SendFile(filepath.Base(path), payload)
}
