package ui

type Controller interface {
	OnCompleteOnboarding(name, niche, goal string)
	OnNavigate(screen Screen)
	OnAnalyzeScript(script string)
	OnResetScript()
	OnSelectVideo(path string)
	OnClearVideo()
	OnAnalyzeVideo()
	OnOpenLesson(lessonID string)
	OnCloseLesson()
	OnCompleteLesson(lessonID string)
	OnQuit()
	OnResize(cols, rows int)
}

type View interface {
	Run() error
	Stop()
	SetController(Controller)
	SetScreen(screen Screen)
	SetCatalogs(niches, goals []string)
	SetHomeState(state HomeState)
	SetScriptState(state ScriptState)
	SetVideoState(state VideoState)
	SetLearnState(state LearnState)
	SetLessonOpen(detail LessonDetail, open bool)
	SetXPToast(toast XPToast)
	FlashStatus(msg string)
}

type Screen int

const (
	ScreenOnboarding Screen = iota
	ScreenHome
	ScreenScript
	ScreenVideo
	ScreenLearn
)

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutCompact
	LayoutTooSmall
)

type HomeState struct {
	Name        string
	Niche       string
	Goal        string
	Level       int
	XP          int
	XPIntoLevel int
	Streak      int
	Badges      []string
	Runs        int
	BestScore   int
	AvgScore    int
	Latest      *HistoryRow
}

type HistoryRow struct {
	Date    string
	Snippet string
	Score   int
}

type ScriptState struct {
	Pending bool
	Result  *ScriptResult
	History []HistoryRow
}

type ScriptResult struct {
	OverallScore int
	WeakestArea  string
	Suggestion   string
	ImprovedHook string
	Metrics      []MetricRow
	Fallback     bool
}

type MetricRow struct {
	Name  string
	Score int
}

type VideoState struct {
	Path      string
	SizeLabel string
	MimeType  string
	Selected  bool
	Pending   bool
	Result    *VideoResult
}

type VideoResult struct {
	OverallScore int
	PacingScore  int
	VisualScore  int
	HookScore    int
	Feedback     string
	Prediction   string
	Failed       bool
}

type LearnState struct {
	Level int
	Rows  []LessonRow
}

type LessonRow struct {
	ID        string
	Title     string
	Icon      string
	Duration  string
	XPReward  int
	MinLevel  int
	Locked    bool
	Completed bool
}

type LessonDetail struct {
	ID        string
	Title     string
	Icon      string
	ContentMD string
	XPReward  int
	Completed bool
}

// XPToast is the single-slot XP notice. A new award replaces any toast
// still on screen.
type XPToast struct {
	Visible   bool
	Amount    int
	Level     int
	LeveledUp bool
}
