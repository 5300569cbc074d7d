package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"scout/internal/coach"
	"scout/internal/lessons"
	"scout/internal/progress"
	"scout/internal/state"
	"scout/internal/telemetry"
	"scout/internal/ui"
)

const scriptXPReward = 20

// App wires the coach client, session store, progression tracker, and
// lesson catalog behind the view's Controller interface. View callbacks
// arrive on their own goroutines, so all session state is guarded by mu.
type App struct {
	cfg       Config
	logger    *telemetry.JSONLogger
	store     state.Store
	coach     coach.Analyzer
	view      ui.View
	progress  *progress.Manager
	catalog   []lessons.Lesson
	sessionID string

	mu            sync.Mutex
	screen        ui.Screen
	scriptPending bool
	scriptResult  *coach.ScriptAnalysis
	videoPending  bool
	videoResult   *coach.VideoAnalysis
	videoPath     string
	videoMime     string
	videoSize     int64
	videoSelected bool
	toastGen      int
}

func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := telemetry.NewJSONLogger(cfg.LogPath)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	sessionID := uuid.NewString()
	logger.SetBase(map[string]any{"app": "scout", "session_id": sessionID})

	store, err := state.NewSession()
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	catalog, err := loadCatalog(ctx, cfg.LessonsDir)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	view := ui.New(ui.Options{
		ASCIIOnly:    cfg.ASCIIOnly,
		Debug:        cfg.DebugLayout,
		StyleVariant: cfg.UI.StyleVariant,
		MotionLevel:  cfg.UI.MotionLevel,
	})

	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		coach:     coach.NewGeminiClient(cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.RequestTimeout),
		view:      view,
		progress:  progress.NewManager(),
		catalog:   catalog,
		sessionID: sessionID,
		screen:    ui.ScreenOnboarding,
	}
	view.SetController(a)
	view.SetCatalogs(progress.Niches, progress.Goals)
	return a, nil
}

// loadCatalog merges user catalogs from dir over the built-in lessons.
// Built-in lessons win on id collisions.
func loadCatalog(ctx context.Context, dir string) ([]lessons.Lesson, error) {
	catalog := lessons.Builtin()
	if dir == "" {
		return catalog, nil
	}
	loaded, err := lessons.NewLoader().LoadCatalogs(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}
	for _, lesson := range lessons.Flatten(loaded) {
		if _, exists := lessons.Find(catalog, lesson.ID); !exists {
			catalog = append(catalog, lesson)
		}
	}
	return catalog, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app.start", map[string]any{
		"model":   a.cfg.Model,
		"lessons": len(a.catalog),
	})
	a.pushHome()
	a.pushLearn()
	a.view.SetScreen(ui.ScreenOnboarding)
	return a.view.Run()
}

func (a *App) Close() error {
	a.view.Stop()
	err := a.store.Close()
	a.logger.Info("app.stop", nil)
	if cerr := a.logger.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) OnCompleteOnboarding(name, niche, goal string) {
	a.mu.Lock()
	err := a.progress.CompleteOnboarding(name, niche, goal)
	a.mu.Unlock()
	if err != nil {
		a.logger.Error("onboarding.rejected", map[string]any{"error": err.Error()})
		a.view.FlashStatus("Onboarding failed: " + err.Error())
		return
	}
	a.logger.Info("onboarding.complete", map[string]any{"niche": niche, "goal": goal})
	a.goTo(ui.ScreenHome)
}

func (a *App) OnNavigate(screen ui.Screen) {
	a.goTo(screen)
}

// goTo is the single screen-switch path. Navigation before onboarding
// always lands on the wizard, and the wizard is unreachable afterwards.
func (a *App) goTo(target ui.Screen) {
	a.mu.Lock()
	onboarded := a.progress.Profile().Onboarded
	a.mu.Unlock()

	if !onboarded {
		target = ui.ScreenOnboarding
	} else if target == ui.ScreenOnboarding {
		target = ui.ScreenHome
	}
	switch target {
	case ui.ScreenOnboarding, ui.ScreenHome, ui.ScreenScript, ui.ScreenVideo, ui.ScreenLearn:
	default:
		target = ui.ScreenHome
	}

	switch target {
	case ui.ScreenHome:
		a.pushHome()
	case ui.ScreenScript:
		a.pushScript()
	case ui.ScreenVideo:
		a.pushVideo()
	case ui.ScreenLearn:
		a.pushLearn()
	}

	a.mu.Lock()
	a.screen = target
	a.mu.Unlock()
	a.view.SetScreen(target)
}

func (a *App) OnAnalyzeScript(script string) {
	if strings.TrimSpace(script) == "" {
		return
	}
	a.mu.Lock()
	if a.scriptPending {
		a.mu.Unlock()
		a.view.FlashStatus("Analysis already running")
		return
	}
	a.scriptPending = true
	a.scriptResult = nil
	prof := a.progress.Profile()
	a.mu.Unlock()
	a.pushScript()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	result, err := a.coach.AnalyzeScript(ctx, coach.ScriptRequest{
		Script: script,
		Niche:  prof.Niche,
		Goal:   prof.Goal,
	})
	cancel()
	if err != nil {
		a.logger.Error("script.analyze_failed", map[string]any{"error": err.Error()})
		result = coach.FallbackScriptAnalysis()
	}

	storeCtx, storeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	appendErr := a.store.AppendScript(storeCtx, state.ScriptHistoryItem{
		ID:       uuid.NewString(),
		Date:     time.Now().UTC(),
		Snippet:  coach.Snippet(script),
		Score:    result.OverallScore,
		Hook:     result.ImprovedHook,
		Fallback: result.Fallback,
	})
	storeCancel()
	if appendErr != nil {
		a.logger.Error("script.history_append_failed", map[string]any{"error": appendErr.Error()})
	}

	a.mu.Lock()
	a.scriptPending = false
	a.scriptResult = &result
	award := a.progress.AwardXP(scriptXPReward)
	a.mu.Unlock()

	a.logger.Info("script.analyzed", map[string]any{
		"score":    result.OverallScore,
		"fallback": result.Fallback,
		"xp":       award.XP,
	})
	a.pushScript()
	a.pushHome()
	a.showXPToast(award)
}

func (a *App) OnResetScript() {
	a.mu.Lock()
	a.scriptResult = nil
	a.mu.Unlock()
	a.pushScript()
}

func (a *App) OnSelectVideo(path string) {
	info, err := os.Stat(path)
	if err != nil {
		a.view.FlashStatus("Cannot read video: " + err.Error())
		return
	}
	if info.IsDir() {
		a.view.FlashStatus("Path is a directory, not a video")
		return
	}
	if info.Size() > coach.MaxVideoBytes {
		a.logger.Info("video.rejected_size", map[string]any{"bytes": info.Size()})
		a.view.FlashStatus("Video is too large (max 20 MiB)")
		return
	}

	a.mu.Lock()
	a.videoPath = path
	a.videoMime = mimeForVideo(path)
	a.videoSize = info.Size()
	a.videoSelected = true
	a.videoResult = nil
	a.mu.Unlock()
	a.pushVideo()
}

func (a *App) OnClearVideo() {
	a.mu.Lock()
	a.videoPath = ""
	a.videoMime = ""
	a.videoSize = 0
	a.videoSelected = false
	a.videoResult = nil
	a.mu.Unlock()
	a.pushVideo()
}

func (a *App) OnAnalyzeVideo() {
	a.mu.Lock()
	if !a.videoSelected {
		a.mu.Unlock()
		a.view.FlashStatus("Pick a video first")
		return
	}
	if a.videoPending {
		a.mu.Unlock()
		a.view.FlashStatus("Analysis already running")
		return
	}
	a.videoPending = true
	a.videoResult = nil
	path := a.videoPath
	mime := a.videoMime
	a.mu.Unlock()
	a.pushVideo()

	result := a.runVideoAnalysis(path, mime)

	a.mu.Lock()
	a.videoPending = false
	a.videoResult = &result
	a.mu.Unlock()

	a.logger.Info("video.analyzed", map[string]any{
		"score":  result.OverallScore,
		"failed": result.Failed,
	})
	a.pushVideo()
}

// runVideoAnalysis never surfaces an error. Any failure, from a
// disappeared file to a bad response, collapses into the failed verdict.
// Failed analyses earn no XP and leave no history.
func (a *App) runVideoAnalysis(path, mime string) coach.VideoAnalysis {
	payload, err := os.ReadFile(path)
	if err != nil {
		a.logger.Error("video.read_failed", map[string]any{"error": err.Error()})
		return coach.FailedVideoAnalysis()
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()
	result, err := a.coach.AnalyzeVideo(ctx, payload, mime)
	if err != nil {
		a.logger.Error("video.analyze_failed", map[string]any{"error": err.Error()})
		return coach.FailedVideoAnalysis()
	}
	return result
}

func (a *App) OnOpenLesson(lessonID string) {
	lesson, ok := lessons.Find(a.catalog, lessonID)
	if !ok {
		a.view.FlashStatus("Lesson not found")
		return
	}
	a.mu.Lock()
	locked := a.progress.Locked(lesson.MinLevel)
	_, completed := a.progress.Profile().CompletedLessons[lesson.ID]
	a.mu.Unlock()
	if locked {
		a.view.FlashStatus(fmt.Sprintf("Reach level %d to unlock %s", lesson.MinLevel, lesson.Title))
		return
	}
	a.view.SetLessonOpen(lessonDetail(lesson, completed), true)
}

func (a *App) OnCloseLesson() {
	a.view.SetLessonOpen(ui.LessonDetail{}, false)
}

func (a *App) OnCompleteLesson(lessonID string) {
	lesson, ok := lessons.Find(a.catalog, lessonID)
	if !ok {
		a.view.FlashStatus("Lesson not found")
		return
	}
	a.mu.Lock()
	award, first, err := a.progress.CompleteLesson(lesson.ID, lesson.MinLevel, lesson.XPReward)
	a.mu.Unlock()
	if err != nil {
		a.view.FlashStatus("Cannot complete lesson: " + err.Error())
		return
	}
	if !first {
		a.view.FlashStatus("Lesson already completed")
		return
	}
	a.logger.Info("lesson.completed", map[string]any{"lesson": lesson.ID, "xp": award.XP})
	a.view.SetLessonOpen(lessonDetail(lesson, true), true)
	a.pushLearn()
	a.pushHome()
	a.showXPToast(award)
}

func (a *App) OnQuit() {
	a.logger.Info("app.quit", nil)
	a.view.Stop()
}

func (a *App) OnResize(cols, rows int) {
	if a.cfg.DebugLayout {
		a.logger.Info("ui.resize", map[string]any{"cols": cols, "rows": rows})
	}
}

// showXPToast replaces whatever toast is on screen and schedules its
// dismissal. A newer award cancels the older timer's dismissal.
func (a *App) showXPToast(award progress.Award) {
	if award.Amount <= 0 {
		return
	}
	a.mu.Lock()
	a.toastGen++
	gen := a.toastGen
	a.mu.Unlock()
	a.view.SetXPToast(ui.XPToast{
		Visible:   true,
		Amount:    award.Amount,
		Level:     award.Level,
		LeveledUp: award.LeveledUp,
	})
	time.AfterFunc(a.cfg.XPToastDuration, func() {
		a.mu.Lock()
		current := a.toastGen
		a.mu.Unlock()
		if current == gen {
			a.view.SetXPToast(ui.XPToast{})
		}
	})
}

func (a *App) pushHome() {
	a.mu.Lock()
	prof := a.progress.Profile()
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	summary, err := a.store.GetSummary(ctx)
	if err != nil {
		a.logger.Error("home.summary_failed", map[string]any{"error": err.Error()})
	}
	var latest *ui.HistoryRow
	if recent, err := a.store.RecentScripts(ctx, 1); err == nil && len(recent) > 0 {
		row := historyRow(recent[0])
		latest = &row
	}

	a.view.SetHomeState(ui.HomeState{
		Name:        prof.Name,
		Niche:       prof.Niche,
		Goal:        prof.Goal,
		Level:       prof.Level,
		XP:          prof.XP,
		XPIntoLevel: prof.XP % progress.XPPerLevel,
		Streak:      prof.Streak,
		Badges:      prof.Badges,
		Runs:        summary.Runs,
		BestScore:   summary.BestScore,
		AvgScore:    summary.AvgScore,
		Latest:      latest,
	})
}

func (a *App) pushScript() {
	a.mu.Lock()
	pending := a.scriptPending
	result := scriptResultRow(a.scriptResult)
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var history []ui.HistoryRow
	if recent, err := a.store.RecentScripts(ctx, 3); err == nil {
		for _, item := range recent {
			history = append(history, historyRow(item))
		}
	}

	a.view.SetScriptState(ui.ScriptState{
		Pending: pending,
		Result:  result,
		History: history,
	})
}

func (a *App) pushVideo() {
	a.mu.Lock()
	vs := ui.VideoState{
		Path:     a.videoPath,
		MimeType: a.videoMime,
		Selected: a.videoSelected,
		Pending:  a.videoPending,
		Result:   videoResultRow(a.videoResult),
	}
	if a.videoSelected {
		vs.SizeLabel = humanize.IBytes(uint64(a.videoSize))
	}
	a.mu.Unlock()
	a.view.SetVideoState(vs)
}

func (a *App) pushLearn() {
	a.mu.Lock()
	prof := a.progress.Profile()
	rows := make([]ui.LessonRow, 0, len(a.catalog))
	for _, lesson := range a.catalog {
		_, completed := prof.CompletedLessons[lesson.ID]
		rows = append(rows, ui.LessonRow{
			ID:        lesson.ID,
			Title:     lesson.Title,
			Icon:      lesson.Icon,
			Duration:  lesson.Duration,
			XPReward:  lesson.XPReward,
			MinLevel:  lesson.MinLevel,
			Locked:    prof.Level < lesson.MinLevel,
			Completed: completed,
		})
	}
	a.mu.Unlock()

	a.view.SetLearnState(ui.LearnState{Level: prof.Level, Rows: rows})
}

func historyRow(item state.ScriptHistoryItem) ui.HistoryRow {
	return ui.HistoryRow{
		Date:    humanize.Time(item.Date),
		Snippet: item.Snippet,
		Score:   item.Score,
	}
}

func scriptResultRow(result *coach.ScriptAnalysis) *ui.ScriptResult {
	if result == nil {
		return nil
	}
	metrics := make([]ui.MetricRow, 0, len(result.Metrics))
	for _, m := range result.Metrics {
		metrics = append(metrics, ui.MetricRow{Name: m.Name, Score: m.Score})
	}
	return &ui.ScriptResult{
		OverallScore: result.OverallScore,
		WeakestArea:  result.WeakestArea,
		Suggestion:   result.Suggestion,
		ImprovedHook: result.ImprovedHook,
		Metrics:      metrics,
		Fallback:     result.Fallback,
	}
}

func videoResultRow(result *coach.VideoAnalysis) *ui.VideoResult {
	if result == nil {
		return nil
	}
	return &ui.VideoResult{
		OverallScore: result.OverallScore,
		PacingScore:  result.PacingScore,
		VisualScore:  result.VisualScore,
		HookScore:    result.HookScore,
		Feedback:     result.Feedback,
		Prediction:   result.Prediction,
		Failed:       result.Failed,
	}
}

func lessonDetail(lesson lessons.Lesson, completed bool) ui.LessonDetail {
	return ui.LessonDetail{
		ID:        lesson.ID,
		Title:     lesson.Title,
		Icon:      lesson.Icon,
		ContentMD: lesson.ContentMD,
		XPReward:  lesson.XPReward,
		Completed: completed,
	}
}

func mimeForVideo(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".avi":
		return "video/x-msvideo"
	case ".3gp":
		return "video/3gpp"
	default:
		return "video/mp4"
	}
}

var _ ui.Controller = (*App)(nil)
