package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/matty/chattrans/internal/app"
	"github.com/matty/chattrans/progress"
	"github.com/matty/chattrans/translator"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const channelID = "local"

// localChannel is a stand-in for the host chat client: one channel you type
// into, with message ids the service resolves on demand.
type localChannel struct {
	msgs   map[string]app.Message
	order  []string
	nextID int
}

func newLocalChannel() *localChannel {
	return &localChannel{msgs: make(map[string]app.Message)}
}

func (c *localChannel) Message(id string) (app.Message, bool) {
	m, ok := c.msgs[id]
	return m, ok
}

func (c *localChannel) add(author, content string) app.Message {
	c.nextID++
	m := app.Message{
		ID:        fmt.Sprintf("m%d", c.nextID),
		ChannelID: channelID,
		Author:    author,
		Content:   content,
	}
	c.msgs[m.ID] = m
	c.order = append(c.order, m.ID)
	return m
}

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	_ = godotenv.Load()

	slog.Info("starting chattrans", "version", version, "commit", commit, "date", date)

	channel := newLocalChannel()
	svc := app.New(version)
	svc.Init(channel, printEvent)
	defer svc.Shutdown()

	svc.FillCredentials(
		os.Getenv("DEEPL_API_KEY"),
		os.Getenv("OPENROUTER_API_KEY"),
		os.Getenv("OPENROUTER_MODEL"),
	)

	fmt.Println("chattrans demo channel. Type to chat, /help for commands.")
	repl(svc, channel)
}

// printEvent renders service events in the terminal.
func printEvent(name string, data any) {
	switch name {
	case app.EventProgress:
		if st, ok := data.(progress.State); ok && st.Active && st.Total > 0 {
			fmt.Printf("  … %d/%d\n", st.Current, st.Total)
		}
	case app.EventError:
		if e, ok := data.(app.ErrorEvent); ok {
			fmt.Printf("  ! %s: %s\n", e.Operation, e.Message)
		}
	}
}

func repl(svc *app.Service, channel *localChannel) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := command(svc, channel, line); quit {
				return
			}
			continue
		}
		send(svc, channel, line)
	}
}

// send runs the outgoing hook and posts the (possibly translated) text.
func send(svc *app.Service, channel *localChannel, text string) {
	out, err := svc.OnBeforeSend(context.Background(), channelID, text)
	if err != nil {
		out = text
	}
	m := channel.add("you", out)
	fmt.Printf("[%s] you: %s\n", m.ID, m.Content)
	if out != text {
		fmt.Printf("  (sent as translation of %q)\n", text)
	}
}

func command(svc *app.Service, channel *localChannel, line string) (quit bool) {
	ctx := context.Background()
	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "help":
		printHelp()

	case "recv":
		if arg == "" {
			fmt.Println("usage: /recv <text>")
			return false
		}
		m := channel.add("them", arg)
		fmt.Printf("[%s] them: %s\n", m.ID, m.Content)

	case "translate":
		result, err := svc.TranslateMessage(ctx, arg)
		if err != nil {
			fmt.Println("translate failed:", err)
			return false
		}
		fmt.Printf("  → %s (from %s)\n", result.Text, result.SourceLanguage)

	case "select":
		if svc.ToggleSelection() {
			fmt.Println("selection mode on; /pick <id> then /batch")
		} else {
			fmt.Println("selection mode off")
		}

	case "pick":
		if svc.SelectMessage(arg, channelID) {
			fmt.Printf("selected %s (%d total)\n", arg, svc.SelectionCount())
		} else {
			fmt.Printf("deselected %s (%d total)\n", arg, svc.SelectionCount())
		}

	case "batch":
		if err := svc.TranslateSelected(ctx); err != nil {
			fmt.Println("batch failed:", err)
			return false
		}
		printHistory(svc, channel)

	case "history":
		printHistory(svc, channel)

	case "clearhistory":
		if err := svc.ClearTranslations(ctx); err != nil {
			fmt.Println("clear failed:", err)
		}

	case "detect":
		d := svc.DetectLanguage(arg)
		fmt.Printf("%s (%s)\n", d.Name, d.Code)

	case "models":
		models, err := svc.ListModels(ctx)
		if err != nil {
			fmt.Println("list models failed:", err)
			return false
		}
		for _, m := range models {
			fmt.Printf("  %-40s %s\n", m.ID, m.Name)
		}

	case "model":
		if err := svc.SetModel(arg); err != nil {
			fmt.Println("set model failed:", err)
		}

	case "service":
		if err := svc.SetService(arg); err != nil {
			fmt.Println("set service failed:", err)
		}

	case "auto":
		enabled := !svc.GetConfig().AutoTranslate
		if err := svc.SetAutoTranslate(enabled); err != nil {
			fmt.Println("set auto-translate failed:", err)
			return false
		}
		fmt.Println("auto-translate:", enabled)

	case "lang":
		parts := strings.Fields(arg)
		if len(parts) != 3 {
			fmt.Println("usage: /lang <sent|received> <source> <target>")
			return false
		}
		if err := svc.SetLanguagePair(translator.Direction(parts[0]), parts[1], parts[2]); err != nil {
			fmt.Println("set languages failed:", err)
		}

	case "quit", "exit":
		return true

	default:
		fmt.Println("unknown command; /help lists them")
	}
	return false
}

func printHistory(svc *app.Service, channel *localChannel) {
	saved, err := svc.Translations(context.Background())
	if err != nil {
		fmt.Println("history failed:", err)
		return
	}
	if len(saved) == 0 {
		fmt.Println("no stored translations")
		return
	}
	for _, s := range saved {
		original := "(message gone)"
		if m, ok := channel.Message(s.ID); ok {
			original = m.Content
		}
		ts := time.UnixMilli(s.Timestamp).Format("15:04:05")
		fmt.Printf("  %s [%s] %s → %s", ts, s.ID, original, s.Text)
		if s.Model != "" {
			fmt.Printf(" (%s)", s.Model)
		}
		fmt.Println()
	}
}

func printHelp() {
	fmt.Print(`commands:
  /recv <text>                  post a message from the other side
  /translate <id>               translate one received message
  /select                       toggle multi-select mode
  /pick <id>                    add/remove a message from the selection
  /batch                        translate the selection
  /history                      show stored translations
  /clearhistory                 drop stored translations
  /detect <text>                detect the language of a text
  /models                       list chat models (openrouter)
  /model <id>                   choose the chat model
  /service <free|paid|openrouter>
  /auto                         toggle translate-on-send
  /lang <sent|received> <source> <target>
  /quit
`)
}
