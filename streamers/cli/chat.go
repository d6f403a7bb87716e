package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
)

// ChatHandler implements streamers.ChatHandler for terminal I/O
type ChatHandler struct {
	reader       *bufio.Reader
	spinner      *spinner
	answerBuffer strings.Builder
	renderer     *glamour.TermRenderer
}

// NewChatHandler creates a new CLI chat handler
func NewChatHandler() *ChatHandler {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	return &ChatHandler{
		reader:   bufio.NewReader(os.Stdin),
		spinner:  newSpinner(),
		renderer: renderer,
	}
}

func (s *ChatHandler) Welcome(userName string, modelName string) {
	fmt.Printf("%s%sWelcome to Code Wizard, %s%s (model: %s)\n", ColorBold, ColorOrange, userName, ColorReset, modelName)
	fmt.Printf("%sType 'exit' or 'quit' to end the conversation.%s\n", ColorGray, ColorReset)
	fmt.Println()
}

func (s *ChatHandler) AwaitClientAnswer() (string, error) {
	// Show input prompt
	fmt.Printf("%s>  %s", ColorGray, ColorReset)
	input, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input != "" {
		// Move cursor up, clear line, then print the user message in light brown with > prefix and indented
		fmt.Print("\033[1A\033[K")
		fmt.Printf("%s>  %s%s\n\n", ColorGray, ColorLightBrown, input+ColorReset)
	}
	return input, nil
}

// AwaitCode reads lines until a line containing only "EOF" or end of
// input, so multi-line snippets can be pasted as-is.
func (s *ChatHandler) AwaitCode() (string, error) {
	fmt.Printf("%sPaste your code, then type EOF on its own line:%s\n", ColorGray, ColorReset)

	var code strings.Builder
	for {
		line, err := s.reader.ReadString('\n')
		if err == io.EOF {
			code.WriteString(line)
			break
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == "EOF" {
			break
		}
		code.WriteString(line)
	}
	fmt.Println()
	return strings.TrimRight(code.String(), "\n"), nil
}

func (s *ChatHandler) Goodbye() {
	fmt.Printf("%sGoodbye!%s\n", ColorGray, ColorReset)
}

func (s *ChatHandler) Error(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func (s *ChatHandler) Notice(message string) {
	fmt.Printf("%s%s%s\n", ColorGray, message, ColorReset)
}

func (s *ChatHandler) Thinking() {
	s.spinner.Start("", "Thinking...")
}

func (s *ChatHandler) PublishAnswerChunk(chunk string) {
	// Buffer chunks - spinner keeps running
	s.answerBuffer.WriteString(chunk)
}

func (s *ChatHandler) FinishAnswer() {
	s.spinner.Stop()

	content := s.answerBuffer.String()
	if content == "" {
		return
	}

	// Render markdown
	rendered := content
	if s.renderer != nil {
		if out, err := s.renderer.Render(content); err == nil {
			rendered = out
		}
	}

	// Glamour adds leading/trailing newlines - trim them
	rendered = strings.TrimSpace(rendered)
	fmt.Printf("%s•%s %s\n\n", ColorGray, ColorReset, rendered)

	s.answerBuffer.Reset()
}

// spinner handles the loading animation
type spinner struct {
	frames  []string
	stop    chan struct{}
	stopped chan struct{}
	mu      sync.Mutex
	running bool
}

func newSpinner() *spinner {
	return &spinner{
		frames:  []string{"◐", "◓", "◑", "◒"},
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *spinner) Start(prefix string, message string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		i := 0
		for {
			select {
			case <-s.stop:
				fmt.Print("\r\033[K") // Clear line
				return
			default:
				if prefix != "" {
					fmt.Printf("\r%s %s%s%s %s", prefix, ColorOrange, s.frames[i%len(s.frames)], ColorReset, message)
				} else {
					fmt.Printf("\r%s%s%s %s", ColorGray, s.frames[i%len(s.frames)], ColorReset, message)
				}
				i++
				time.Sleep(80 * time.Millisecond)
			}
		}
	}()
}

func (s *spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stop)
	<-s.stopped
}
