package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"hivemind/internal/backend"
	"hivemind/internal/brain"
	"hivemind/internal/config"
	"hivemind/internal/hive"
	"hivemind/internal/lab"
	"hivemind/internal/logging"
	"hivemind/internal/store"
)

// program is set before Run so the session publisher can push live
// transcript snapshots into the update loop from the worker goroutine.
var program *tea.Program

type chatModel struct {
	// UI components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer

	// State
	session   *hive.Session
	cfg       *config.Config
	archive   *store.Archive
	isLoading bool
	err       error
	status    string
	width     int
	height    int
	ready     bool
}

// Messages for tea updates
type (
	replyMsg    string
	snapshotMsg string
	statusMsg   string
	errMsg      error
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	inputStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// sessionOptions wires the session collaborators from config. The same
// option set serves fresh sessions and /load restores.
func sessionOptions(cfg *config.Config, archive *store.Archive) []hive.Option {
	client := backend.NewOllamaClientWithConfig(backend.OllamaConfig{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: config.ParseTimeout(cfg.Backend.Timeout, 10*time.Minute),
	})

	runner := lab.NewDirectRunnerWithConfig(lab.RunnerConfig{
		Interpreter:    cfg.Lab.Interpreter,
		Shell:          cfg.Lab.Shell,
		Timeout:        config.ParseTimeout(cfg.Lab.Timeout, 2*time.Minute),
		MaxOutputBytes: cfg.Lab.MaxOutputBytes,
		WorkDir:        workspace,
	})

	brainFactory := func(ctx context.Context) (brain.Store, error) {
		return brain.NewWeaviateStore(ctx, brain.WeaviateConfig{
			BaseURL: cfg.Brain.BaseURL,
			Timeout: config.ParseTimeout(cfg.Brain.Timeout, 30*time.Second),
		})
	}

	opts := []hive.Option{
		hive.WithBackend(client),
		hive.WithRunner(runner),
		hive.WithBrainFactory(brainFactory),
		hive.WithWorkspaceDir(filepath.Join(workspace, cfg.WorkspaceDir)),
		hive.WithCollection(cfg.Brain.Collection),
		hive.WithTopK(cfg.Brain.TopK),
		hive.WithExecute(execute || cfg.Execute),
		hive.WithStreaming(cfg.Streaming && !noStream),
		hive.WithPublisher(func(snapshot string) {
			if program != nil {
				program.Send(snapshotMsg(snapshot))
			}
		}),
	}
	if archive != nil {
		opts = append(opts, hive.WithArchive(archive))
	}
	return opts
}

// newChatModel builds the session from config and flags and wires the UI.
func newChatModel() (chatModel, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return chatModel{}, err
	}

	var archive *store.Archive
	if cfg.ArchivePath != "" {
		archivePath := cfg.ArchivePath
		if !filepath.IsAbs(archivePath) {
			archivePath = filepath.Join(workspace, archivePath)
		}
		archive, err = store.Open(archivePath)
		if err != nil {
			logging.Chat("Session archive unavailable: %v", err)
			archive = nil
		}
	}

	opts := sessionOptions(cfg, archive)

	var session *hive.Session
	if sessionFile != "" {
		session, err = hive.Load(sessionFile, opts...)
	} else {
		session, err = hive.New(opts...)
	}
	if err != nil {
		return chatModel{}, err
	}

	if swarmFile != "" {
		manifest, err := config.LoadSwarm(swarmFile)
		if err != nil {
			session.Close()
			return chatModel{}, err
		}
		for _, spec := range manifest.Drones {
			if err := session.Directory.Register(spec.Name, spec.Model, spec.Persona, spec.Options); err != nil {
				session.Close()
				return chatModel{}, fmt.Errorf("swarm drone %q: %w", spec.Name, err)
			}
		}
	}

	ti := textinput.New()
	ti.Placeholder = "@drone your message... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(80, 20)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return chatModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		renderer:  renderer,
		session:   session,
		cfg:       cfg,
		archive:   archive,
		status:    "Ready",
	}, nil
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.session.Close()
			return m, tea.Quit

		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			return m.handleSubmit()

		default:
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputHeight := 3
		footerHeight := 2
		headerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}
		m.textinput.Width = msg.Width - 4

		if msg.Width > 8 {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(msg.Width-8),
			)
		}
		m.viewport.SetContent(m.safeRenderMarkdown(m.session.Transcript()))
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, spCmd = m.spinner.Update(msg)
		}

	case snapshotMsg:
		m.viewport.SetContent(m.safeRenderMarkdown(string(msg)))
		m.viewport.GotoBottom()

	case replyMsg:
		m.isLoading = false
		m.err = nil
		m.status = "Ready"
		m.viewport.SetContent(m.safeRenderMarkdown(m.session.Transcript()))
		m.viewport.GotoBottom()

	case statusMsg:
		m.isLoading = false
		m.status = string(msg)
		m.viewport.SetContent(m.safeRenderMarkdown(m.session.Transcript()))
		m.viewport.GotoBottom()

	case errMsg:
		m.isLoading = false
		m.err = msg
		m.status = "Ready"
		m.viewport.SetContent(m.safeRenderMarkdown(m.session.Transcript()))
		m.viewport.GotoBottom()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.textinput.Reset()
	m.isLoading = true
	m.err = nil
	m.status = "Thinking"

	return m, tea.Batch(
		m.spinner.Tick,
		m.ask(input),
	)
}

// ask directs the message to its addressed drone on a worker goroutine.
// Streaming snapshots arrive as snapshotMsg via the session publisher.
func (m chatModel) ask(prompt string) tea.Cmd {
	session := m.session
	timeout := config.ParseTimeout(m.cfg.Backend.Timeout, 10*time.Minute)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		reply, err := session.Ask(ctx, prompt)
		if err != nil {
			return errMsg(err)
		}
		return replyMsg(reply)
	}
}

// brainscan runs a knowledge-store query for a drone on a worker goroutine.
func (m chatModel) brainscan(droneName, query string) tea.Cmd {
	session := m.session
	timeout := config.ParseTimeout(m.cfg.Backend.Timeout, 10*time.Minute)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		reply, err := session.Brainscan(ctx, droneName, query, 0)
		if err != nil {
			return errMsg(err)
		}
		return replyMsg(reply)
	}
}

func (m chatModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	command := parts[0]

	m.textinput.Reset()
	m.err = nil

	switch command {
	case "/quit", "/exit", "/q":
		m.session.Close()
		return m, tea.Quit

	case "/help":
		m.status = "Commands: /add <name> <model> [persona] | /drones | /brainscan <name> <query> | /save [file] | /load <file> | /transcript [file] | /execute | /quit"
		return m, nil

	case "/add":
		if len(parts) < 3 {
			m.err = fmt.Errorf("usage: /add <name> <model> [persona]")
			return m, nil
		}
		persona := ""
		if len(parts) > 3 {
			persona = strings.Join(parts[3:], " ")
		}
		if err := m.session.Directory.Register(parts[1], parts[2], persona, nil); err != nil {
			m.err = err
			return m, nil
		}
		m.status = fmt.Sprintf("Drone %s registered (%s)", parts[1], parts[2])
		return m, nil

	case "/drones":
		drones := m.session.Directory.List()
		if len(drones) == 0 {
			m.status = "No drones registered. Use /add <name> <model> [persona]."
			return m, nil
		}
		names := make([]string, 0, len(drones))
		for _, d := range drones {
			names = append(names, fmt.Sprintf("%s (%s)", d.Name, d.Model))
		}
		m.status = "Drones: " + strings.Join(names, ", ")
		return m, nil

	case "/brainscan":
		if len(parts) < 3 {
			m.err = fmt.Errorf("usage: /brainscan <drone> <query>")
			return m, nil
		}
		droneName := strings.TrimPrefix(parts[1], "@")
		query := strings.Join(parts[2:], " ")
		m.isLoading = true
		m.status = "Scanning TheBrain"
		return m, tea.Batch(
			m.spinner.Tick,
			m.brainscan(droneName, query),
		)

	case "/save":
		path := filepath.Join(workspace, "session.json")
		if len(parts) > 1 {
			path = parts[1]
		}
		if err := m.session.Save(path); err != nil {
			m.err = err
			return m, nil
		}
		m.status = "Session saved to " + path
		return m, nil

	case "/load":
		if len(parts) != 2 {
			m.err = fmt.Errorf("usage: /load <session.json>")
			return m, nil
		}
		restored, err := hive.Load(parts[1], sessionOptions(m.cfg, m.archive)...)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.session.Close()
		m.session = restored
		m.status = fmt.Sprintf("Session %s restored (%d turns)", restored.ID, restored.Log.Len())
		m.viewport.SetContent(m.safeRenderMarkdown(m.session.Transcript()))
		m.viewport.GotoBottom()
		return m, nil

	case "/transcript":
		path := filepath.Join(workspace, "transcript.md")
		if len(parts) > 1 {
			path = parts[1]
		}
		if err := os.WriteFile(path, []byte(m.session.Transcript()), 0o644); err != nil {
			m.err = err
			return m, nil
		}
		m.status = "Transcript written to " + path
		return m, nil

	case "/execute":
		m.session.Execute = !m.session.Execute
		if m.session.Execute {
			m.status = "Code execution enabled"
		} else {
			m.status = "Code execution disabled"
		}
		return m, nil

	default:
		m.err = fmt.Errorf("unknown command %s (try /help)", command)
		return m, nil
	}
}

// safeRenderMarkdown renders markdown with panic recovery
func (m chatModel) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := headerStyle.Render(" HiveMind ") + statusStyle.Render(fmt.Sprintf(" %d drones • %s", m.session.Directory.Len(), workspace))

	chatView := m.viewport.View()
	if m.isLoading {
		chatView += "\n" + m.spinner.View() + " " + m.status + "..."
	}
	if m.err != nil {
		chatView += "\n" + errorStyle.Render("Error: "+m.err.Error())
	}

	inputArea := inputStyle.Render(m.textinput.View())

	footer := statusStyle.Render(m.status + " • Enter: send • /help: commands • Ctrl+C: exit")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

// runInteractiveChat starts the interactive chat interface
func runInteractiveChat() error {
	model, err := newChatModel()
	if err != nil {
		return err
	}

	program = tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = program.Run()
	return err
}
