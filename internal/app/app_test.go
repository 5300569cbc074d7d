package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"scout/internal/coach"
	"scout/internal/lessons"
	"scout/internal/progress"
	"scout/internal/state"
	"scout/internal/telemetry"
	"scout/internal/ui"
)

type fakeView struct {
	mu      sync.Mutex
	screen  ui.Screen
	home    ui.HomeState
	script  ui.ScriptState
	video   ui.VideoState
	learn   ui.LearnState
	lesson  ui.LessonDetail
	open    bool
	toast   ui.XPToast
	flashes []string
	stopped bool
}

func (f *fakeView) Run() error { return nil }
func (f *fakeView) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}
func (f *fakeView) SetController(ui.Controller) {}
func (f *fakeView) SetScreen(screen ui.Screen) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screen = screen
}
func (f *fakeView) SetCatalogs(niches, goals []string) {}
func (f *fakeView) SetHomeState(state ui.HomeState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.home = state
}
func (f *fakeView) SetScriptState(state ui.ScriptState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = state
}
func (f *fakeView) SetVideoState(state ui.VideoState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.video = state
}
func (f *fakeView) SetLearnState(state ui.LearnState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.learn = state
}
func (f *fakeView) SetLessonOpen(detail ui.LessonDetail, open bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lesson = detail
	f.open = open
}
func (f *fakeView) SetXPToast(toast ui.XPToast) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toast = toast
}
func (f *fakeView) FlashStatus(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flashes = append(f.flashes, msg)
}

func (f *fakeView) lastFlash() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.flashes) == 0 {
		return ""
	}
	return f.flashes[len(f.flashes)-1]
}

func (f *fakeView) toastState() ui.XPToast {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.toast
}

func (f *fakeView) snapshot() (ui.HomeState, ui.ScriptState, ui.VideoState, ui.LearnState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.home, f.script, f.video, f.learn
}

type fakeAnalyzer struct {
	scriptResult coach.ScriptAnalysis
	scriptErr    error
	videoResult  coach.VideoAnalysis
	videoErr     error
	block        chan struct{}
	scriptCalls  int
	videoCalls   int
	mu           sync.Mutex
}

func (f *fakeAnalyzer) AnalyzeScript(ctx context.Context, req coach.ScriptRequest) (coach.ScriptAnalysis, error) {
	f.mu.Lock()
	f.scriptCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.scriptResult, f.scriptErr
}

func (f *fakeAnalyzer) AnalyzeVideo(ctx context.Context, payload []byte, mimeType string) (coach.VideoAnalysis, error) {
	f.mu.Lock()
	f.videoCalls++
	f.mu.Unlock()
	return f.videoResult, f.videoErr
}

func goodScriptResult() coach.ScriptAnalysis {
	return coach.ScriptAnalysis{
		OverallScore: 82,
		Metrics: []coach.Metric{
			{Name: "Hook", Score: 90},
			{Name: "Value", Score: 75},
		},
		WeakestArea:  "Value",
		Suggestion:   "Add one concrete example.",
		ImprovedHook: "This one trick saved me 3 hours a day",
	}
}

func newTestApp(t *testing.T, analyzer coach.Analyzer) (*App, *fakeView) {
	t.Helper()
	store, err := state.NewSession()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	logger, _ := telemetry.NewJSONLogger("")
	view := &fakeView{}
	a := &App{
		cfg:       DefaultConfig(),
		logger:    logger,
		store:     store,
		coach:     analyzer,
		view:      view,
		progress:  progress.NewManager(),
		catalog:   lessons.Builtin(),
		sessionID: "test-session",
		screen:    ui.ScreenOnboarding,
	}
	a.cfg.XPToastDuration = 100 * time.Millisecond
	return a, view
}

func onboard(t *testing.T, a *App) {
	t.Helper()
	a.OnCompleteOnboarding("Rhea", "Comedy", "Consistency")
	if !a.progress.Profile().Onboarded {
		t.Fatalf("onboarding did not complete")
	}
}

func TestOnboardingRejectsUnknownNiche(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	a.OnCompleteOnboarding("Rhea", "Gardening", "Consistency")
	if a.progress.Profile().Onboarded {
		t.Fatalf("onboarded with unknown niche")
	}
	if !strings.Contains(view.lastFlash(), "Onboarding failed") {
		t.Fatalf("flash = %q", view.lastFlash())
	}
}

func TestNavigationGatedUntilOnboarded(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	a.OnNavigate(ui.ScreenScript)
	if view.screen != ui.ScreenOnboarding {
		t.Fatalf("screen = %v before onboarding", view.screen)
	}
	onboard(t, a)
	a.OnNavigate(ui.ScreenScript)
	if view.screen != ui.ScreenScript {
		t.Fatalf("screen = %v", view.screen)
	}
	a.OnNavigate(ui.ScreenOnboarding)
	if view.screen != ui.ScreenHome {
		t.Fatalf("wizard reachable after onboarding, screen = %v", view.screen)
	}
}

func TestNavigateUnknownScreenLandsHome(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	onboard(t, a)
	a.OnNavigate(ui.Screen(99))
	if view.screen != ui.ScreenHome {
		t.Fatalf("screen = %v", view.screen)
	}
}

func TestAnalyzeScriptSuccessAwardsXPAndHistory(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{scriptResult: goodScriptResult()})
	onboard(t, a)

	a.OnAnalyzeScript("Stop scrolling. Here is how I edit reels twice as fast.")

	home, script, _, _ := view.snapshot()
	if script.Result == nil || script.Result.OverallScore != 82 {
		t.Fatalf("script result = %+v", script.Result)
	}
	if script.Result.Fallback {
		t.Fatalf("successful analysis flagged as fallback")
	}
	if home.XP != 20 {
		t.Fatalf("xp = %d", home.XP)
	}
	if home.Runs != 1 || home.BestScore != 82 {
		t.Fatalf("home summary = %+v", home)
	}
	if len(script.History) != 1 {
		t.Fatalf("history rows = %d", len(script.History))
	}
	if toast := view.toastState(); toast.Amount != 20 || !toast.Visible {
		t.Fatalf("toast = %+v", toast)
	}
}

func TestAnalyzeScriptFallbackOnError(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{scriptErr: errors.New("network down")})
	onboard(t, a)

	a.OnAnalyzeScript("Hello guys welcome to my channel today we talk about saving money")

	home, script, _, _ := view.snapshot()
	if script.Result == nil || !script.Result.Fallback {
		t.Fatalf("expected fallback result, got %+v", script.Result)
	}
	if script.Result.OverallScore != 45 {
		t.Fatalf("fallback score = %d", script.Result.OverallScore)
	}
	if script.Result.ImprovedHook != "Stop scrolling if you want to save money today!" {
		t.Fatalf("fallback hook = %q", script.Result.ImprovedHook)
	}
	// The offline estimate still counts as a run.
	if home.XP != 20 || home.Runs != 1 {
		t.Fatalf("xp = %d runs = %d", home.XP, home.Runs)
	}
	if len(script.History) != 1 || script.History[0].Snippet != "Hello guys welcome to my chann..." {
		t.Fatalf("history = %+v", script.History)
	}
}

func TestAnalyzeScriptIgnoresBlankInput(t *testing.T) {
	analyzer := &fakeAnalyzer{scriptResult: goodScriptResult()}
	a, view := newTestApp(t, analyzer)
	onboard(t, a)

	a.OnAnalyzeScript("   \n\t ")

	if analyzer.scriptCalls != 0 {
		t.Fatalf("analyzer called for blank input")
	}
	home, _, _, _ := view.snapshot()
	if home.XP != 0 {
		t.Fatalf("blank input awarded xp: %d", home.XP)
	}
}

func TestAnalyzeScriptRejectsConcurrentRun(t *testing.T) {
	analyzer := &fakeAnalyzer{scriptResult: goodScriptResult(), block: make(chan struct{})}
	a, view := newTestApp(t, analyzer)
	onboard(t, a)

	done := make(chan struct{})
	go func() {
		a.OnAnalyzeScript("first script")
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for {
		a.mu.Lock()
		pending := a.scriptPending
		a.mu.Unlock()
		if pending || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	a.OnAnalyzeScript("second script")
	if view.lastFlash() != "Analysis already running" {
		t.Fatalf("flash = %q", view.lastFlash())
	}

	close(analyzer.block)
	<-done
	if analyzer.scriptCalls != 1 {
		t.Fatalf("analyzer calls = %d", analyzer.scriptCalls)
	}
}

func TestLevelUpAfterFiveRuns(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{scriptResult: goodScriptResult()})
	onboard(t, a)

	for i := 0; i < 5; i++ {
		a.OnAnalyzeScript("script number " + string(rune('a'+i)))
	}

	home, _, _, _ := view.snapshot()
	if home.XP != 100 || home.Level != 2 {
		t.Fatalf("xp = %d level = %d", home.XP, home.Level)
	}
	if toast := view.toastState(); !toast.LeveledUp {
		t.Fatalf("level-up toast not shown: %+v", toast)
	}
}

func TestSelectVideoRejectsOversized(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	onboard(t, a)

	path := filepath.Join(t.TempDir(), "big.mp4")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.Truncate(coach.MaxVideoBytes + 1); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	_ = f.Close()

	a.OnSelectVideo(path)
	if view.video.Selected {
		t.Fatalf("oversized video selected")
	}
	if !strings.Contains(view.lastFlash(), "too large") {
		t.Fatalf("flash = %q", view.lastFlash())
	}
}

func TestSelectVideoAcceptsAtSizeCap(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	onboard(t, a)

	path := filepath.Join(t.TempDir(), "clip.mov")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.Truncate(coach.MaxVideoBytes); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	_ = f.Close()

	a.OnSelectVideo(path)
	_, _, video, _ := view.snapshot()
	if !video.Selected {
		t.Fatalf("video at exact cap rejected")
	}
	if video.MimeType != "video/quicktime" {
		t.Fatalf("mime = %q", video.MimeType)
	}
	if video.SizeLabel != "20 MiB" {
		t.Fatalf("size label = %q", video.SizeLabel)
	}
}

func TestAnalyzeVideoFailureEarnsNothing(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{videoErr: errors.New("timeout")})
	onboard(t, a)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("not a real video"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	a.OnSelectVideo(path)
	a.OnAnalyzeVideo()

	home, _, video, _ := view.snapshot()
	if video.Result == nil || !video.Result.Failed {
		t.Fatalf("expected failed verdict, got %+v", video.Result)
	}
	if video.Result.OverallScore != 0 || video.Result.Prediction != "Unknown" {
		t.Fatalf("failed verdict = %+v", video.Result)
	}
	if home.XP != 0 || home.Runs != 0 {
		t.Fatalf("failed video changed progress: xp=%d runs=%d", home.XP, home.Runs)
	}
}

func TestAnalyzeVideoSuccess(t *testing.T) {
	analyzer := &fakeAnalyzer{videoResult: coach.VideoAnalysis{
		OverallScore: 71,
		Feedback:     "Pacing thoda slow hai, cuts tighten karo.",
		PacingScore:  60,
		VisualScore:  80,
		HookScore:    70,
		Prediction:   "20k views",
	}}
	a, view := newTestApp(t, analyzer)
	onboard(t, a)

	path := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	a.OnSelectVideo(path)
	a.OnAnalyzeVideo()

	home, _, video, _ := view.snapshot()
	if video.Result == nil || video.Result.Failed {
		t.Fatalf("video result = %+v", video.Result)
	}
	if video.Result.Prediction != "20k views" {
		t.Fatalf("prediction = %q", video.Result.Prediction)
	}
	// Video roasts never award XP or touch the ledger.
	if home.XP != 0 || home.Runs != 0 {
		t.Fatalf("video analysis changed progress: xp=%d runs=%d", home.XP, home.Runs)
	}
}

func TestAnalyzeVideoWithoutSelection(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	a, view := newTestApp(t, analyzer)
	onboard(t, a)

	a.OnAnalyzeVideo()
	if view.lastFlash() != "Pick a video first" {
		t.Fatalf("flash = %q", view.lastFlash())
	}
	if analyzer.videoCalls != 0 {
		t.Fatalf("analyzer called without selection")
	}
}

func TestCompleteLessonAwardsOnce(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	onboard(t, a)

	a.OnCompleteLesson("l1")
	home, _, _, learn := view.snapshot()
	if home.XP != 50 {
		t.Fatalf("xp = %d", home.XP)
	}
	if !view.lesson.Completed || !view.open {
		t.Fatalf("lesson overlay = %+v open=%v", view.lesson, view.open)
	}
	if !learn.Rows[0].Completed {
		t.Fatalf("learn row not marked completed")
	}

	a.OnCompleteLesson("l1")
	home, _, _, _ = view.snapshot()
	if home.XP != 50 {
		t.Fatalf("repeat completion changed xp: %d", home.XP)
	}
	if view.lastFlash() != "Lesson already completed" {
		t.Fatalf("flash = %q", view.lastFlash())
	}
}

func TestOpenLockedLessonFlashes(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	onboard(t, a)

	a.OnOpenLesson("l3")
	if view.open {
		t.Fatalf("locked lesson opened")
	}
	if !strings.Contains(view.lastFlash(), "Reach level 5") {
		t.Fatalf("flash = %q", view.lastFlash())
	}
}

func TestCompleteLockedLessonRejected(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	onboard(t, a)

	a.OnCompleteLesson("l3")
	home, _, _, _ := view.snapshot()
	if home.XP != 0 {
		t.Fatalf("locked lesson awarded xp: %d", home.XP)
	}
	if !strings.Contains(view.lastFlash(), "Cannot complete lesson") {
		t.Fatalf("flash = %q", view.lastFlash())
	}
}

func TestLessonUnlocksAfterLeveling(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	onboard(t, a)

	a.mu.Lock()
	a.progress.AwardXP(400)
	a.mu.Unlock()
	a.pushLearn()

	_, _, _, learn := view.snapshot()
	for _, row := range learn.Rows {
		if row.ID == "l3" && row.Locked {
			t.Fatalf("l3 still locked at level %d", learn.Level)
		}
	}
	a.OnCompleteLesson("l3")
	home, _, _, _ := view.snapshot()
	if home.XP != 500 {
		t.Fatalf("xp = %d", home.XP)
	}
}

func TestToastReplacedByNewerAward(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{scriptResult: goodScriptResult()})
	onboard(t, a)

	a.OnAnalyzeScript("first")
	a.OnCompleteLesson("l1")
	if toast := view.toastState(); toast.Amount != 50 {
		t.Fatalf("toast = %+v", toast)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for view.toastState().Visible && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if view.toastState().Visible {
		t.Fatalf("toast never dismissed")
	}
}

func TestQuitStopsView(t *testing.T) {
	a, view := newTestApp(t, &fakeAnalyzer{})
	a.OnQuit()
	if !view.stopped {
		t.Fatalf("view not stopped")
	}
}

func TestLoadCatalogMergesUserLessons(t *testing.T) {
	dir := t.TempDir()
	catalogYAML := `kind: catalog
schema_version: 1
name: Extra
lessons:
  - lesson_id: custom-1
    title: Caption Writing
    xp_reward: 25
  - lesson_id: l1
    title: Shadowing Builtin
    xp_reward: 999
`
	if err := os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(catalogYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	catalog, err := loadCatalog(context.Background(), dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	custom, ok := lessons.Find(catalog, "custom-1")
	if !ok {
		t.Fatalf("custom lesson not merged")
	}
	if custom.Title != "Caption Writing" {
		t.Fatalf("title = %q", custom.Title)
	}
	builtin, _ := lessons.Find(catalog, "l1")
	if builtin.XPReward == 999 {
		t.Fatalf("user catalog shadowed built-in lesson")
	}
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Model != "gemini-3-flash-preview" {
		t.Fatalf("model = %q", cfg.Model)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.RequestTimeout)
	}
	if cfg.UI.StyleVariant != "modern_arcade" || cfg.UI.MotionLevel != "full" {
		t.Fatalf("ui config = %+v", cfg.UI)
	}
}

func TestConfigValidateRejectsBadVariant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI.StyleVariant = "vaporwave"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("accepted unknown style variant")
	}
}
