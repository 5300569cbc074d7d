package ui

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
)

type applyMsg struct {
	fn func(*Root)
}

type clockMsg time.Time
type animateMsg time.Time

type scoutKeyMap struct {
	Home   key.Binding
	Script key.Binding
	Video  key.Binding
	Learn  key.Binding
	Quit   key.Binding
}

func (k scoutKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Home, k.Script, k.Video, k.Learn, k.Quit}
}

func (k scoutKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Home, k.Script, k.Video}, {k.Learn, k.Quit}}
}

const (
	onboardSteps = 4
	scriptLimit  = 2000
)

type Root struct {
	theme        Theme
	ascii        bool
	debug        bool
	ctrl         Controller
	styleVariant string
	motionLevel  string

	mu      sync.Mutex
	program *tea.Program
	running bool

	screen Screen
	layout LayoutMode
	cols   int
	rows   int

	niches []string
	goals  []string

	home   HomeState
	script ScriptState
	video  VideoState
	learn  LearnState

	lesson     LessonDetail
	lessonOpen bool

	toast       XPToast
	statusFlash string

	obStep      int
	obNicheIdx  int
	obGoalIdx   int
	learnIndex  int
	nameInput   textinput.Model
	scriptArea  textarea.Model
	pathInput   textinput.Model

	help     help.Model
	keymap   scoutKeyMap
	levelBar progress.Model
	pendSpin spinner.Model
	markdown *glamour.TermRenderer
	logger   *clog.Logger

	overlayPos float64
	overlayVel float64
	spring     harmonica.Spring

	lastInputEvent string
}

type Options struct {
	ASCIIOnly    bool
	Debug        bool
	StyleVariant string
	MotionLevel  string
}

func New(opts Options) *Root {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "scout-ui", Level: clog.WarnLevel})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(64),
	)
	if err != nil {
		renderer = nil
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()
	motionLevel := normalizeMotionLevel(opts.MotionLevel)
	styleVariant := normalizeStyleVariant(opts.StyleVariant)
	theme := ThemeForVariant(styleVariant)
	spring := harmonica.NewSpring(harmonica.FPS(60), 10.0, 0.8)
	switch motionLevel {
	case "reduced":
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 0.92)
	case "off":
		spring = harmonica.NewSpring(harmonica.FPS(60), 1000.0, 1.0)
	}
	levelBar := progress.New(
		progress.WithWidth(24),
		progress.WithColors(lipgloss.Color("#B388FF"), lipgloss.Color("#58D68A"), lipgloss.Color("#FFD84D")),
		progress.WithScaled(true),
	)
	if motionLevel == "off" {
		levelBar.SetSpringOptions(1000.0, 1.0)
	}
	pendSpin := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(theme.Accent),
	)

	nameInput := textinput.New()
	nameInput.Placeholder = "Your creator name"
	nameInput.CharLimit = 40
	nameInput.Focus()

	scriptArea := textarea.New()
	scriptArea.Placeholder = "Paste your reel script here..."
	scriptArea.CharLimit = scriptLimit
	scriptArea.ShowLineNumbers = false
	scriptArea.SetHeight(8)
	scriptArea.Focus()

	pathInput := textinput.New()
	pathInput.Placeholder = "/path/to/clip.mp4"
	pathInput.CharLimit = 300
	pathInput.Focus()

	r := &Root{
		theme:        theme,
		ascii:        opts.ASCIIOnly,
		debug:        opts.Debug,
		styleVariant: styleVariant,
		motionLevel:  motionLevel,
		screen:       ScreenOnboarding,
		layout:       LayoutWide,
		cols:         100,
		rows:         30,
		help:         h,
		levelBar:     levelBar,
		pendSpin:     pendSpin,
		nameInput:    nameInput,
		scriptArea:   scriptArea,
		pathInput:    pathInput,
		markdown:     renderer,
		logger:       logger,
		spring:       spring,
	}
	r.keymap = scoutKeyMap{
		Home:   key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "Home")),
		Script: key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "Script Doctor")),
		Video:  key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "Video Roast")),
		Learn:  key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "Viral School")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("Ctrl+Q", "Quit")),
	}
	return r
}

func (r *Root) Init() tea.Cmd {
	return tea.Batch(clockTickCmd(), animateTickCmd(), spinnerTickCmd(r.pendSpin))
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		r.scriptArea.SetWidth(max(20, min(76, r.cols-8)))
		r.dispatchController(func(c Controller) { c.OnResize(msg.Width, msg.Height) })
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.animateIfNeeded()
	case clockMsg:
		return r, clockTickCmd()
	case animateMsg:
		target := 0.0
		if r.toast.Visible {
			target = 1.0
		}
		r.overlayPos, r.overlayVel = r.spring.Update(r.overlayPos, r.overlayVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		if target == 0 {
			r.overlayPos = 0
			r.overlayVel = 0
		} else {
			r.overlayPos = 1
			r.overlayVel = 0
		}
		return r, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.pendSpin, cmd = r.pendSpin.Update(msg)
		return r, cmd
	case tea.PasteMsg:
		return r.forwardToInput(msg)
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			msg := "UI recovered from a rendering panic. Check logs."
			if r.statusFlash == "" {
				r.statusFlash = "Recovered UI panic"
			}
			view = tea.NewView(r.theme.Bad.Width(width).Render(trimForWidth(msg, max(1, width-1))))
		}
	}()

	if r.cols < 1 {
		r.cols = 100
	}
	if r.rows < 1 {
		r.rows = 30
	}
	r.layout = DetermineLayoutMode(r.cols, r.rows)

	var base string
	if r.layout == LayoutTooSmall {
		base = r.renderTooSmall()
	} else {
		switch r.screen {
		case ScreenOnboarding:
			base = r.renderOnboarding()
		case ScreenHome:
			base = r.renderHome()
		case ScreenScript:
			base = r.renderScript()
		case ScreenVideo:
			base = r.renderVideo()
		default:
			base = r.renderLearn()
		}
	}

	if r.lessonOpen {
		base = composeOverlay(base, r.renderLessonOverlay(), r.cols, r.rows)
	}
	if toast := r.renderToast(); toast != "" {
		base = composeOverlayAt(base, toast, r.cols, r.rows, 1, max(0, r.cols-toastWidth(toast)-2))
	}

	v := tea.NewView(base)
	v.AltScreen = true
	return v
}

func toastWidth(toast string) int {
	w := 0
	for _, line := range strings.Split(toast, "\n") {
		if lw := len([]rune(ansi.Strip(line))); lw > w {
			w = lw
		}
	}
	return w
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

func (r *Root) SetScreen(screen Screen) {
	r.apply(func(m *Root) {
		m.screen = screen
	})
}

func (r *Root) SetCatalogs(niches, goals []string) {
	r.apply(func(m *Root) {
		m.niches = append([]string(nil), niches...)
		m.goals = append([]string(nil), goals...)
		m.obNicheIdx = wrapIndex(m.obNicheIdx, len(m.niches))
		m.obGoalIdx = wrapIndex(m.obGoalIdx, len(m.goals))
	})
}

func (r *Root) SetHomeState(state HomeState) {
	r.apply(func(m *Root) {
		m.home = state
	})
}

func (r *Root) SetScriptState(state ScriptState) {
	r.apply(func(m *Root) {
		m.script = state
	})
}

func (r *Root) SetVideoState(state VideoState) {
	r.apply(func(m *Root) {
		m.video = state
		if !state.Selected {
			m.pathInput.SetValue("")
		}
	})
}

func (r *Root) SetLearnState(state LearnState) {
	r.apply(func(m *Root) {
		m.learn = state
		if m.learnIndex >= len(state.Rows) {
			m.learnIndex = max(0, len(state.Rows)-1)
		}
	})
}

func (r *Root) SetLessonOpen(detail LessonDetail, open bool) {
	r.apply(func(m *Root) {
		m.lesson = detail
		m.lessonOpen = open
	})
}

func (r *Root) SetXPToast(toast XPToast) {
	r.apply(func(m *Root) {
		m.toast = toast
		if m.motionLevel == "off" {
			if toast.Visible {
				m.overlayPos = 1
			} else {
				m.overlayPos = 0
			}
			m.overlayVel = 0
		}
	})
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(m *Root) {
		m.statusFlash = msg
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) dispatchController(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	ctrl := r.ctrl
	go fn(ctrl)
}

func (r *Root) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case r.screen == ScreenOnboarding && r.obStep == 0:
		r.nameInput, cmd = r.nameInput.Update(msg)
	case r.screen == ScreenScript && !r.script.Pending && r.script.Result == nil:
		r.scriptArea, cmd = r.scriptArea.Update(msg)
	case r.screen == ScreenVideo && !r.video.Selected:
		r.pathInput, cmd = r.pathInput.Update(msg)
	}
	return r, cmd
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(fmt.Sprintf("key:%v mod:%v text:%q", msg.Code, msg.Mod, msg.Text))

	if key.Matches(msg, r.keymap.Quit) {
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}

	if r.lessonOpen {
		return r.handleLessonKey(msg)
	}

	if r.screen != ScreenOnboarding {
		switch msg.Code {
		case tea.KeyF1:
			r.dispatchController(func(c Controller) { c.OnNavigate(ScreenHome) })
			return r, nil
		case tea.KeyF2:
			r.dispatchController(func(c Controller) { c.OnNavigate(ScreenScript) })
			return r, nil
		case tea.KeyF3:
			r.dispatchController(func(c Controller) { c.OnNavigate(ScreenVideo) })
			return r, nil
		case tea.KeyF4:
			r.dispatchController(func(c Controller) { c.OnNavigate(ScreenLearn) })
			return r, nil
		}
	}

	switch r.screen {
	case ScreenOnboarding:
		return r.handleOnboardingKey(msg)
	case ScreenHome:
		return r.handleHomeKey(msg)
	case ScreenScript:
		return r.handleScriptKey(msg)
	case ScreenVideo:
		return r.handleVideoKey(msg)
	default:
		return r.handleLearnKey(msg)
	}
}

func (r *Root) handleOnboardingKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyEsc:
		if r.obStep > 0 {
			r.obStep--
		}
		return r, nil
	case tea.KeyEnter:
		switch r.obStep {
		case 0:
			// Continue stays disabled until a name is typed.
			if strings.TrimSpace(r.nameInput.Value()) == "" {
				r.statusFlash = "Enter a name to continue"
				return r, nil
			}
			r.obStep++
		case 1, 2:
			r.obStep++
		default:
			name := strings.TrimSpace(r.nameInput.Value())
			niche := r.selectedNiche()
			goal := r.selectedGoal()
			r.dispatchController(func(c Controller) { c.OnCompleteOnboarding(name, niche, goal) })
		}
		return r, nil
	}

	switch r.obStep {
	case 0:
		var cmd tea.Cmd
		r.nameInput, cmd = r.nameInput.Update(msg)
		return r, cmd
	case 1:
		switch msg.Code {
		case tea.KeyUp:
			r.obNicheIdx = wrapIndex(r.obNicheIdx-1, len(r.niches))
		case tea.KeyDown, tea.KeyTab:
			r.obNicheIdx = wrapIndex(r.obNicheIdx+1, len(r.niches))
		}
	case 2:
		switch msg.Code {
		case tea.KeyUp:
			r.obGoalIdx = wrapIndex(r.obGoalIdx-1, len(r.goals))
		case tea.KeyDown, tea.KeyTab:
			r.obGoalIdx = wrapIndex(r.obGoalIdx+1, len(r.goals))
		}
	}
	return r, nil
}

func (r *Root) handleHomeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.Mod != 0 {
		return r, nil
	}
	switch msg.Code {
	case 's', 'S':
		r.dispatchController(func(c Controller) { c.OnNavigate(ScreenScript) })
	case 'v', 'V':
		r.dispatchController(func(c Controller) { c.OnNavigate(ScreenVideo) })
	case 'l', 'L':
		r.dispatchController(func(c Controller) { c.OnNavigate(ScreenLearn) })
	}
	return r, nil
}

func (r *Root) handleScriptKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if r.script.Pending {
		return r, nil
	}
	if r.script.Result != nil {
		if msg.Mod != 0 {
			return r, nil
		}
		switch msg.Code {
		case 'a', 'A':
			r.scriptArea.SetValue("")
			r.dispatchController(func(c Controller) { c.OnResetScript() })
		case 'c', 'C':
			hook := r.script.Result.ImprovedHook
			if strings.TrimSpace(hook) == "" {
				return r, nil
			}
			r.statusFlash = "Copied hook"
			return r, tea.SetClipboard(hook)
		}
		return r, nil
	}

	if (msg.Code == 's' || msg.Code == 'S') && msg.Mod&tea.ModCtrl != 0 {
		script := r.scriptArea.Value()
		r.dispatchController(func(c Controller) { c.OnAnalyzeScript(script) })
		return r, nil
	}
	if (msg.Code == 'l' || msg.Code == 'L') && msg.Mod&tea.ModCtrl != 0 {
		r.scriptArea.SetValue("")
		return r, nil
	}

	var cmd tea.Cmd
	r.scriptArea, cmd = r.scriptArea.Update(msg)
	return r, cmd
}

func (r *Root) handleVideoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if r.video.Pending {
		return r, nil
	}
	if r.video.Selected {
		switch msg.Code {
		case tea.KeyEnter:
			if r.video.Result == nil {
				r.dispatchController(func(c Controller) { c.OnAnalyzeVideo() })
			}
		case 'x', 'X':
			if msg.Mod == 0 {
				r.dispatchController(func(c Controller) { c.OnClearVideo() })
			}
		}
		return r, nil
	}

	if msg.Code == tea.KeyEnter {
		path := strings.TrimSpace(r.pathInput.Value())
		if path == "" {
			r.statusFlash = "Enter a video path"
			return r, nil
		}
		r.dispatchController(func(c Controller) { c.OnSelectVideo(path) })
		return r, nil
	}

	var cmd tea.Cmd
	r.pathInput, cmd = r.pathInput.Update(msg)
	return r, cmd
}

func (r *Root) handleLearnKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyUp:
		r.learnIndex = wrapIndex(r.learnIndex-1, len(r.learn.Rows))
	case tea.KeyDown, tea.KeyTab:
		r.learnIndex = wrapIndex(r.learnIndex+1, len(r.learn.Rows))
	case tea.KeyEnter:
		if len(r.learn.Rows) == 0 {
			return r, nil
		}
		row := r.learn.Rows[wrapIndex(r.learnIndex, len(r.learn.Rows))]
		r.dispatchController(func(c Controller) { c.OnOpenLesson(row.ID) })
	}
	return r, nil
}

func (r *Root) handleLessonKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyEsc:
		r.dispatchController(func(c Controller) { c.OnCloseLesson() })
	case tea.KeyEnter:
		if r.lesson.Completed {
			return r, nil
		}
		id := r.lesson.ID
		r.dispatchController(func(c Controller) { c.OnCompleteLesson(id) })
	}
	return r, nil
}

func (r *Root) renderTooSmall() string {
	msg := []string{
		"Terminal too small",
		fmt.Sprintf("Current: %dx%d", r.cols, r.rows),
		"Minimum: 70x20",
		"Resize the terminal to continue.",
	}
	panel := r.drawPanel("Resize Required", msg, min(50, r.cols), min(10, r.rows))
	return lipgloss.Place(r.cols, r.rows, lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderOnboarding() string {
	w, h := r.cols, r.rows
	header := r.theme.Header.Width(max(1, w)).Render("Scout - Creator Setup")

	var lines []string
	lines = append(lines, fmt.Sprintf("Step %d of %d", r.obStep+1, onboardSteps))
	lines = append(lines, r.levelBar.ViewAs(float64(r.obStep+1)/float64(onboardSteps)))
	lines = append(lines, "")

	switch r.obStep {
	case 0:
		lines = append(lines, "What should we call you?", "")
		lines = append(lines, r.nameInput.View())
		lines = append(lines, "", "Enter: Continue")
	case 1:
		lines = append(lines, "Pick your niche:", "")
		for i, niche := range r.niches {
			prefix := "  "
			if i == r.obNicheIdx {
				prefix = "> "
			}
			lines = append(lines, prefix+niche)
		}
		lines = append(lines, "", "Enter: Continue    Esc: Back")
	case 2:
		lines = append(lines, "What is your goal?", "")
		for i, goal := range r.goals {
			prefix := "  "
			if i == r.obGoalIdx {
				prefix = "> "
			}
			lines = append(lines, prefix+goal)
		}
		lines = append(lines, "", "Enter: Continue    Esc: Back")
	default:
		lines = append(lines,
			"Ready to go viral?",
			"",
			"Name:  "+strings.TrimSpace(r.nameInput.Value()),
			"Niche: "+r.selectedNiche(),
			"Goal:  "+r.selectedGoal(),
			"",
			"Enter: Start    Esc: Back",
		)
	}

	panel := r.drawPanel("Welcome to Scout", lines, min(64, max(40, w/2)), min(max(12, len(lines)+2), h-3))
	body := lipgloss.Place(w, max(3, h-2), lipgloss.Center, lipgloss.Center, panel)
	return header + "\n" + body + "\n" + r.statusText()
}

func (r *Root) renderHome() string {
	w, h := r.cols, r.rows
	header := r.headerText("Home")

	var profile []string
	profile = append(profile, fmt.Sprintf("Namaste, %s! 👋", firstNonEmptyStr(r.home.Name, "Creator")))
	if r.ascii {
		profile[0] = fmt.Sprintf("Namaste, %s!", firstNonEmptyStr(r.home.Name, "Creator"))
	}
	profile = append(profile, "")
	profile = append(profile, fmt.Sprintf("Level %d", r.home.Level))
	profile = append(profile, r.levelBar.ViewAs(float64(r.home.XPIntoLevel)/100.0))
	profile = append(profile, fmt.Sprintf("%d XP total  |  %d/100 into level", r.home.XP, r.home.XPIntoLevel))
	profile = append(profile, fmt.Sprintf("Streak: %d day(s)", r.home.Streak))
	if r.home.Niche != "" {
		profile = append(profile, "", "Niche: "+r.home.Niche, "Goal:  "+r.home.Goal)
	}
	if len(r.home.Badges) > 0 {
		profile = append(profile, "", "Badges: "+strings.Join(r.home.Badges, " "))
	}

	var stats []string
	stats = append(stats, fmt.Sprintf("Analyses: %d", r.home.Runs))
	if r.home.Runs > 0 {
		stats = append(stats, fmt.Sprintf("Best score: %s", r.theme.Score(r.home.BestScore).Render(fmt.Sprintf("%d", r.home.BestScore))))
		stats = append(stats, fmt.Sprintf("Average:    %d", r.home.AvgScore))
	} else {
		stats = append(stats, "No analyses yet.")
	}
	stats = append(stats, "")
	if r.home.Latest != nil {
		stats = append(stats, "Latest analysis:")
		stats = append(stats, "  "+r.home.Latest.Snippet)
		stats = append(stats, fmt.Sprintf("  Score %s  (%s)", r.theme.Score(r.home.Latest.Score).Render(fmt.Sprintf("%d", r.home.Latest.Score)), r.home.Latest.Date))
	}
	stats = append(stats, "", "s: Script Doctor    v: Video Roast    l: Viral School")

	bodyH := max(6, h-2)
	var body string
	if r.layout == LayoutWide {
		leftW := min(46, max(32, w/2))
		left := r.drawPanel("Creator", profile, leftW, bodyH)
		right := r.drawPanel("Session", stats, max(24, w-leftW), bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	} else {
		halfH := max(4, bodyH/2)
		top := r.drawPanel("Creator", profile, w, halfH)
		bottom := r.drawPanel("Session", stats, w, max(4, bodyH-halfH))
		body = top + "\n" + bottom
	}
	return header + "\n" + body + "\n" + r.statusText()
}

func (r *Root) renderScript() string {
	w, h := r.cols, r.rows
	header := r.headerText("Script Doctor")
	bodyH := max(6, h-2)

	var lines []string
	switch {
	case r.script.Pending:
		lines = append(lines, "", strings.TrimSpace(r.pendSpin.View())+" AI Coach is thinking...")
	case r.script.Result != nil:
		lines = r.scriptResultLines()
	default:
		lines = append(lines, "Paste your script and press Ctrl+S to analyze.")
		lines = append(lines, "")
		lines = append(lines, strings.Split(r.scriptArea.View(), "\n")...)
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("%d/%d chars", len([]rune(r.scriptArea.Value())), scriptLimit))
		lines = append(lines, "Ctrl+S: Analyze    Ctrl+L: Clear")
	}

	if len(r.script.History) > 0 {
		lines = append(lines, "", "Recent analyses:")
		for _, row := range r.script.History {
			lines = append(lines, fmt.Sprintf("  %s %s  (%s)",
				r.theme.Score(row.Score).Render(fmt.Sprintf("%3d", row.Score)), row.Snippet, row.Date))
		}
	}

	body := r.drawPanel("Script Doctor", lines, w, bodyH)
	return header + "\n" + body + "\n" + r.statusText()
}

func (r *Root) scriptResultLines() []string {
	res := r.script.Result
	var lines []string
	label := "Viral Score"
	if res.Fallback {
		label = "Viral Score (offline estimate)"
	}
	lines = append(lines, fmt.Sprintf("%s: %s / 100", label, r.theme.Score(res.OverallScore).Render(fmt.Sprintf("%d", res.OverallScore))))
	lines = append(lines, "")
	for _, m := range res.Metrics {
		lines = append(lines, r.metricBarLine(m.Name, m.Score))
	}
	lines = append(lines, "")
	lines = append(lines, "Weakest area: "+r.theme.Bad.Render(res.WeakestArea))
	lines = append(lines, "Coach says:   "+res.Suggestion)
	lines = append(lines, "")
	lines = append(lines, "Improved hook:")
	lines = append(lines, "  "+r.theme.Accent.Render(res.ImprovedHook))
	lines = append(lines, "")
	lines = append(lines, "a: Analyze another    c: Copy hook")
	return lines
}

func (r *Root) metricBarLine(name string, score int) string {
	const barWidth = 20
	filled := score * barWidth / 100
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	fill := "█"
	rest := "░"
	if r.ascii {
		fill = "#"
		rest = "-"
	}
	bar := r.theme.Score(score).Render(strings.Repeat(fill, filled)) + r.theme.Muted.Render(strings.Repeat(rest, barWidth-filled))
	return fmt.Sprintf("%-13s %s %3d", name, bar, score)
}

func (r *Root) renderVideo() string {
	w, h := r.cols, r.rows
	header := r.headerText("Video Roast")
	bodyH := max(6, h-2)

	var lines []string
	switch {
	case r.video.Pending:
		lines = append(lines, "", strings.TrimSpace(r.pendSpin.View())+" Roasting your video...")
	case r.video.Result != nil:
		lines = r.videoResultLines()
	case r.video.Selected:
		lines = append(lines, "Selected clip:")
		lines = append(lines, "  "+r.video.Path)
		lines = append(lines, fmt.Sprintf("  %s  (%s)", r.video.SizeLabel, r.video.MimeType))
		lines = append(lines, "")
		lines = append(lines, "Enter: Analyze    x: Clear")
	default:
		lines = append(lines, "Pick a clip to roast (max 20 MiB):", "")
		lines = append(lines, r.pathInput.View())
		lines = append(lines, "", "Enter: Select")
	}

	body := r.drawPanel("Video Roast", lines, w, bodyH)
	return header + "\n" + body + "\n" + r.statusText()
}

func (r *Root) videoResultLines() []string {
	res := r.video.Result
	var lines []string
	if res.Failed {
		lines = append(lines, r.theme.Bad.Render("Analysis failed"))
	} else {
		lines = append(lines, fmt.Sprintf("Verdict: %s / 100", r.theme.Score(res.OverallScore).Render(fmt.Sprintf("%d", res.OverallScore))))
	}
	lines = append(lines, "")
	lines = append(lines, r.metricBarLine("Visuals", res.VisualScore))
	lines = append(lines, r.metricBarLine("Pacing", res.PacingScore))
	lines = append(lines, r.metricBarLine("Hook", res.HookScore))
	lines = append(lines, "")
	lines = append(lines, "Prediction: "+r.theme.Accent.Render(res.Prediction))
	lines = append(lines, "")
	lines = append(lines, res.Feedback)
	lines = append(lines, "")
	lines = append(lines, "x: Clear and pick another")
	return lines
}

func (r *Root) renderLearn() string {
	w, h := r.cols, r.rows
	header := r.headerText("Viral School")
	bodyH := max(6, h-2)

	var lines []string
	lines = append(lines, fmt.Sprintf("Your level: %d", r.learn.Level), "")
	if len(r.learn.Rows) == 0 {
		lines = append(lines, "No lessons available.")
	}
	for i, row := range r.learn.Rows {
		prefix := "  "
		if i == wrapIndex(r.learnIndex, len(r.learn.Rows)) {
			prefix = "> "
		}
		marker := " "
		switch {
		case row.Completed:
			marker = "✓"
			if r.ascii {
				marker = "v"
			}
		case row.Locked:
			marker = "🔒"
			if r.ascii {
				marker = "*"
			}
		}
		icon := row.Icon
		if r.ascii {
			icon = ""
		}
		title := strings.TrimSpace(icon + " " + row.Title)
		line := fmt.Sprintf("%s%s %s  +%dXP  %s", prefix, marker, title, row.XPReward, row.Duration)
		if row.Locked {
			line += fmt.Sprintf("  (unlocks at level %d)", row.MinLevel)
			line = r.theme.Muted.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", "Enter: Open lesson")

	body := r.drawPanel("Viral School", lines, w, bodyH)
	return header + "\n" + body + "\n" + r.statusText()
}

func (r *Root) renderLessonOverlay() string {
	title := strings.TrimSpace(r.lesson.Icon + " " + r.lesson.Title)
	if r.ascii {
		title = r.lesson.Title
	}

	content := strings.TrimSpace(r.lesson.ContentMD)
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(content); err == nil {
			content = strings.TrimSpace(ansi.Strip(rendered))
		}
	}
	lines := strings.Split(content, "\n")
	lines = append(lines, "")
	if r.lesson.Completed {
		lines = append(lines, "Completed ✓")
		if r.ascii {
			lines[len(lines)-1] = "Completed"
		}
		lines = append(lines, "Esc: Close")
	} else {
		lines = append(lines, fmt.Sprintf("Enter: Complete (+%d XP)    Esc: Close", r.lesson.XPReward))
	}

	w := min(max(56, r.cols-12), r.cols)
	h := min(len(lines)+2, max(8, r.rows-4))
	return r.drawPanel(title, lines, w, h)
}

func (r *Root) renderToast() string {
	if !r.toast.Visible && r.overlayPos < 0.05 {
		return ""
	}
	pos := r.overlayPos
	if r.toast.Visible && pos < 0.2 {
		pos = 0.2
	}
	text := fmt.Sprintf("+%d XP", r.toast.Amount)
	if r.toast.LeveledUp {
		text = fmt.Sprintf("LEVEL UP! Lv %d  (+%d XP)", r.toast.Level, r.toast.Amount)
	}
	if !r.ascii {
		text = "✨ " + text
	}
	full := len([]rune(text)) + 4
	drawW := int(float64(full) * maxFloat(pos, 0))
	if drawW < 6 {
		return ""
	}
	return r.drawPanel("", []string{trimForWidth(text, max(1, drawW-2))}, drawW, 3)
}

func (r *Root) headerText(screenName string) string {
	width := max(1, r.cols-1)
	parts := []string{"Scout", screenName, fmt.Sprintf("Lv %d", r.home.Level)}
	txt := strings.Join(parts, " | ")
	txt = trimForWidth(txt, width)
	if r.debug {
		txt = fmt.Sprintf("%s | %dx%d %v", txt, r.cols, r.rows, r.layout)
		txt = trimForWidth(txt, width)
	}
	return r.theme.Header.Width(max(1, r.cols)).Render(txt)
}

func (r *Root) statusText() string {
	keys := r.help.View(r.keymap)
	if keys == "" {
		keys = "F1 Home  F2 Script  F3 Video  F4 Learn  Ctrl+Q Quit"
	}
	if r.script.Pending || r.video.Pending {
		keys += " | " + r.theme.Accent.Render(strings.TrimSpace(r.pendSpin.View())+" Working...")
	}
	if r.statusFlash != "" {
		keys += " | " + r.statusFlash
	}
	keys = trimForWidth(keys, max(1, r.cols-1))
	return r.theme.Status.Width(max(1, r.cols)).Render(keys)
}

func (r *Root) selectedNiche() string {
	if len(r.niches) == 0 {
		return ""
	}
	return r.niches[wrapIndex(r.obNicheIdx, len(r.niches))]
}

func (r *Root) selectedGoal() string {
	if len(r.goals) == 0 {
		return ""
	}
	return r.goals[wrapIndex(r.obGoalIdx, len(r.goals))]
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h := "─"
	v := "│"
	tl := "┌"
	tr := "┐"
	bl := "└"
	br := "┘"
	if r.ascii {
		h = "-"
		v = "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		t := " " + title + " "
		runes := []rune(top)
		start := 1
		for i, ch := range []rune(t) {
			pos := start + i
			if pos >= len(runes)-1 {
				break
			}
			runes[pos] = ch
		}
		top = string(runes)
	}

	out := make([]string, 0, height)
	out = append(out, r.theme.PanelBorder.Render(top))
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		line = padRune(line, innerW)
		out = append(out, r.theme.PanelBorder.Render(v)+r.theme.PanelBody.Render(line)+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func (r *Root) animateIfNeeded() tea.Cmd {
	target := 0.0
	if r.toast.Visible {
		target = 1.0
	}
	if r.shouldAnimate(target) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if r.motionLevel == "off" {
		return false
	}
	if target > 0 {
		return r.overlayPos < 0.999 || abs(r.overlayVel) > 0.001
	}
	return r.overlayPos > 0.001 || abs(r.overlayVel) > 0.001
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func firstNonEmptyStr(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}
	return i
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

func composeOverlay(base, overlay string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	overlayLines := strings.Split(strings.TrimRight(ansi.Strip(overlay), "\n"), "\n")
	if len(overlayLines) == 0 {
		return base
	}
	ow := 1
	for _, line := range overlayLines {
		if lw := len([]rune(line)); lw > ow {
			ow = lw
		}
	}
	if ow > cols {
		ow = cols
	}
	oh := min(len(overlayLines), rows)
	return composeOverlayAt(base, overlay, cols, rows, (rows-oh)/2, max(0, (cols-ow)/2))
}

func composeOverlayAt(base, overlay string, cols, rows, startRow, startCol int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	base = ansi.Strip(base)
	overlay = ansi.Strip(overlay)
	baseLines := strings.Split(base, "\n")
	if len(baseLines) < rows {
		pad := make([]string, rows-len(baseLines))
		baseLines = append(baseLines, pad...)
	}
	for i := 0; i < rows; i++ {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(overlay, "\n"), "\n")
	if len(overlayLines) == 0 {
		return strings.Join(baseLines[:rows], "\n")
	}
	ow := 1
	for _, line := range overlayLines {
		lw := len([]rune(line))
		if lw > ow {
			ow = lw
		}
	}
	if ow > cols {
		ow = cols
	}
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	for i, line := range overlayLines {
		row := startRow + i
		if row < 0 || row >= rows {
			continue
		}
		dst := []rune(baseLines[row])
		src := []rune(line)
		if len(src) > ow {
			src = src[:ow]
		}
		for j := 0; j < ow && startCol+j < len(dst); j++ {
			dst[startCol+j] = ' '
		}
		for j := 0; j < len(src) && startCol+j < len(dst); j++ {
			dst[startCol+j] = src[j]
		}
		baseLines[row] = string(dst)
	}
	return strings.Join(baseLines[:rows], "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func normalizeStyleVariant(v string) string {
	switch strings.TrimSpace(v) {
	case "cozy_clean", "retro_terminal", "modern_arcade":
		return strings.TrimSpace(v)
	default:
		return "modern_arcade"
	}
}

func normalizeMotionLevel(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "reduced", "full":
		return strings.TrimSpace(v)
	default:
		return "full"
	}
}

func (r *Root) recordInputEvent(event string) {
	r.lastInputEvent = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.statusFlash = "Recovered UI panic"
	}

	message := fmt.Sprintf("%v", recovered)
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered", map[string]any{
		"where":       where,
		"panic":       message,
		"messageType": msgType,
		"screen":      r.screen,
		"layout":      r.layout,
		"cols":        r.cols,
		"rows":        r.rows,
		"last_input":  r.lastInputEvent,
		"stack":       string(debug.Stack()),
	})
}

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)
