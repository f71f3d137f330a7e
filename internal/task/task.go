package task

import (
	"maps"
	"slices"
	"sync"
	"time"
)

type Type string

const (
	TypeTool Type = "tool"
	TypeFile Type = "file"
)

func (t Type) Valid() bool {
	return t == TypeTool || t == TypeFile
}

type State int

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type ResultStatus string

const (
	StatusOK      ResultStatus = "ok"
	StatusError   ResultStatus = "error"
	StatusIgnored ResultStatus = "ignored"
)

const MessagePathNotExist = "Path does not exist"

type Action struct {
	Name       string     `json:"name"`
	Parameters Parameters `json:"parameters"`
}

type Status struct {
	Running         bool `json:"running"`
	ResultRead      bool `json:"result_read"`
	ResultReadTimes int  `json:"result_read_times"`
}

type Progress struct {
	// Value is nil until the function reports progress
	Value   *int   `json:"value"`
	Message string `json:"message"`
}

type Counter struct {
	PathNotExist int `json:"path_not_exist"`
	Dir          int `json:"dir"`
	File         int `json:"file"`
	DirOK        int `json:"dir_ok"`
	FileOK       int `json:"file_ok"`
	DirError     int `json:"dir_error"`
	FileError    int `json:"file_error"`
	FileIgnored  int `json:"file_ignored"`
}

type WalkCounter struct {
	PathIndex int `json:"path_index"`
	PathTotal int `json:"path_total"`
}

type PathResult struct {
	Status       ResultStatus `json:"status"`
	SrcPath      string       `json:"src_path,omitempty"`
	SrcPaths     []string     `json:"src_paths,omitempty"`
	DestPaths    []string     `json:"dest_paths"`
	Output       any          `json:"output"`
	Message      string       `json:"message"`
	RelSrcPath   string       `json:"rel_src_path,omitempty"`
	RelDestPaths []string     `json:"rel_dest_paths,omitempty"`
}

func (r PathResult) clone() PathResult {
	r.SrcPaths = slices.Clone(r.SrcPaths)
	r.DestPaths = slices.Clone(r.DestPaths)
	r.RelDestPaths = slices.Clone(r.RelDestPaths)
	return r
}

type DisplayStatus struct {
	IsError      bool   `json:"is_error"`
	IsOK         bool   `json:"is_ok"`
	ErrorMessage string `json:"error_message"`
}

type Result struct {
	Status      ResultStatus   `json:"status"`
	Message     string         `json:"message"`
	Output      any            `json:"output"`
	PathResults []PathResult   `json:"path_results,omitempty"`
	Counter     Counter        `json:"counter"`
	Display     *DisplayStatus `json:"display_status,omitempty"`
}

func (r Result) clone() Result {
	if r.PathResults != nil {
		results := make([]PathResult, len(r.PathResults))
		for i, pr := range r.PathResults {
			results[i] = pr.clone()
		}
		r.PathResults = results
	}

	if r.Display != nil {
		display := *r.Display
		r.Display = &display
	}

	return r
}

// NewResult returns a fresh result template for the given task type.
func NewResult(taskType Type) Result {
	result := Result{
		Status: StatusOK,
	}

	if taskType == TypeFile {
		result.PathResults = make([]PathResult, 0)
	}

	return result
}

// ResultWriter is the part of a task result a function is allowed to modify.
type ResultWriter interface {
	SetOutput(output any)
	AppendPathResult(result PathResult)
	RecordPathResult(result PathResult)
	UpdateCounter(fn func(c *Counter))
}

// Task is the record of one function invocation.
type Task struct {
	mu sync.RWMutex

	id         string
	taskType   Type
	definition *Definition
	action     Action

	state    State
	status   Status
	progress Progress
	result   Result
	walk     WalkCounter

	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time

	done     chan struct{}
	doneOnce sync.Once
}

func New(id string, taskType Type, definition *Definition, action Action) *Task {
	if action.Parameters == nil {
		action.Parameters = Parameters{}
	}

	return &Task{
		id:         id,
		taskType:   taskType,
		definition: definition,
		action:     action,
		state:      StatePending,
		result:     NewResult(taskType),
		createdAt:  time.Now(),
		done:       make(chan struct{}),
	}
}

func (t *Task) ID() string {
	return t.id
}

func (t *Task) Type() Type {
	return t.taskType
}

func (t *Task) Definition() *Definition {
	return t.definition
}

func (t *Task) Action() Action {
	return Action{
		Name:       t.action.Name,
		Parameters: maps.Clone(t.action.Parameters),
	}
}

func (t *Task) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.Running = running

	if running {
		t.state = StateRunning
		t.startedAt = time.Now()
		return
	}

	t.finishedAt = time.Now()
	if t.result.Status == StatusError {
		t.state = StateFailed
	} else {
		t.state = StateSucceeded
	}
}

func (t *Task) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.status.Running
}

func (t *Task) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.state
}

func (t *Task) SetProgress(value int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress = Progress{Value: &value, Message: message}
}

func (t *Task) SetOutput(output any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.result.Output = output
}

// AppendPathResult appends the result without touching the counters.
func (t *Task) AppendPathResult(result PathResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.appendPathResult(result)
}

// RecordPathResult appends the result and increments the file counter
// matching its status.
func (t *Task) RecordPathResult(result PathResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.appendPathResult(result)

	switch result.Status {
	case StatusOK:
		t.result.Counter.FileOK++
	case StatusError:
		t.result.Counter.FileError++
	case StatusIgnored:
		t.result.Counter.FileIgnored++
	}
}

func (t *Task) appendPathResult(result PathResult) {
	if result.DestPaths == nil {
		result.DestPaths = []string{}
	}

	t.result.PathResults = append(t.result.PathResults, result.clone())
}

// RecordPathNotExist records an ignored entry for a path that does not exist.
func (t *Task) RecordPathNotExist(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.result.Counter.PathNotExist++
	t.appendPathResult(PathResult{
		Status:  StatusIgnored,
		SrcPath: path,
		Message: MessagePathNotExist,
	})
}

func (t *Task) UpdateCounter(fn func(c *Counter)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn(&t.result.Counter)
}

// Fail marks the whole task result as failed.
func (t *Task) Fail(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.result.Status = StatusError
	t.result.Message = message
}

func (t *Task) SetDisplay(display DisplayStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.result.Display = &display
}

// SetRelativePaths sets the display paths of the path result at the given index.
func (t *Task) SetRelativePaths(index int, relSrcPath string, relDestPaths []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.result.PathResults) {
		return
	}

	pr := &t.result.PathResults[index]
	if relSrcPath != "" {
		pr.RelSrcPath = relSrcPath
	}
	if relDestPaths != nil {
		pr.RelDestPaths = slices.Clone(relDestPaths)
	}
}

func (t *Task) MarkResultRead() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.ResultReadTimes++
	t.status.ResultRead = true
}

func (t *Task) WalkCounter() WalkCounter {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.walk
}

func (t *Task) IncPathIndex() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.walk.PathIndex++
}

func (t *Task) AddPathTotal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.walk.PathTotal += n
}

func (t *Task) SetPathTotal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.walk.PathTotal = n
}

// Finish closes the Done channel. Subsequent calls are no-op.
func (t *Task) Finish() {
	t.doneOnce.Do(func() {
		close(t.done)
	})
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

type Snapshot struct {
	ID         string      `json:"task_id"`
	Type       Type        `json:"task_type"`
	Function   string      `json:"function_name"`
	Action     Action      `json:"action"`
	State      string      `json:"state"`
	Status     Status      `json:"status"`
	Progress   Progress    `json:"progress"`
	Result     Result      `json:"result"`
	Walk       WalkCounter `json:"walk"`
	CreatedAt  time.Time   `json:"created_at"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// Snapshot returns a deep copy of the task state.
func (t *Task) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := Snapshot{
		ID:         t.id,
		Type:       t.taskType,
		Action:     t.Action(),
		State:      t.state.String(),
		Status:     t.status,
		Progress:   t.progress,
		Result:     t.result.clone(),
		Walk:       t.walk,
		CreatedAt:  t.createdAt,
		StartedAt:  t.startedAt,
		FinishedAt: t.finishedAt,
	}

	if t.definition != nil {
		snapshot.Function = t.definition.Name
	}

	if t.progress.Value != nil {
		value := *t.progress.Value
		snapshot.Progress.Value = &value
	}

	return snapshot
}

var _ ResultWriter = &Task{}
