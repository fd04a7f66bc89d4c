package session

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"quizzy-service/internal/domain"
)

// TimeLimitSeconds is the countdown budget for one quiz attempt.
const TimeLimitSeconds = 300

// State identifies where a quiz attempt is in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateComplete   State = "complete"
	StateError      State = "error"
)

var (
	// ErrEmptyName is returned when the name is blank after trimming.
	ErrEmptyName = errors.New("please enter your name")
	// ErrNameTooShort is returned when the trimmed name is under 2 characters.
	ErrNameTooShort = errors.New("name must be at least 2 characters")
	// ErrNameInvalid is returned when the name contains anything besides letters and spaces.
	ErrNameInvalid = errors.New("name can only contain letters and spaces")
	// ErrEmptySample is returned when the server hands back zero questions.
	ErrEmptySample = errors.New("question sample is empty")
	// ErrNotAnswered is returned when advancing past an unanswered question.
	ErrNotAnswered = errors.New("current question not answered")
	// ErrBadTransition is returned when an event arrives in a state that does not accept it.
	ErrBadTransition = errors.New("not allowed in current state")
)

var namePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// ValidateName applies the client-side name rule: non-empty after trimming,
// at least 2 characters, letters and whitespace only.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return ErrEmptyName
	case len(trimmed) < 2:
		return ErrNameTooShort
	case !namePattern.MatchString(trimmed):
		return ErrNameInvalid
	}
	return nil
}

// Controller drives a single quiz attempt from start to finish: it fetches no
// data itself, but sequences the states, owns the answer set, and enforces the
// time budget. Execution is cooperative; callers deliver ticks and user input
// from one logical thread of control, so no locking is needed.
type Controller struct {
	now func() time.Time

	state     State
	name      string
	questions []domain.QuestionSummary
	index     int
	answers   map[int64]string
	remaining int
	startedAt time.Time
	result    domain.GradeResult
	lastErr   error
}

// New returns a Controller in the Idle state.
func New() *Controller {
	return NewWithClock(time.Now)
}

// NewWithClock allows deterministic timestamps in tests.
func NewWithClock(now func() time.Time) *Controller {
	return &Controller{now: now, state: StateIdle, answers: make(map[int64]string)}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Name returns the validated display name for this attempt.
func (c *Controller) Name() string { return c.name }

// Err returns the failure that moved the controller into the Error state.
func (c *Controller) Err() error { return c.lastErr }

// Start validates the name and moves Idle -> Loading. A validation failure
// keeps the controller Idle and surfaces the field-level error.
func (c *Controller) Start(name string) error {
	if c.state != StateIdle {
		return ErrBadTransition
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	c.name = strings.TrimSpace(name)
	c.state = StateLoading
	return nil
}

// BeginQuiz moves Loading -> InProgress with a fresh answer set and a full
// time budget. A sample smaller than the usual size is accepted as-is; an
// empty one is a load failure.
func (c *Controller) BeginQuiz(questions []domain.QuestionSummary) error {
	if c.state != StateLoading {
		return ErrBadTransition
	}
	if len(questions) == 0 {
		c.fail(ErrEmptySample)
		return ErrEmptySample
	}
	c.questions = questions
	c.index = 0
	c.answers = make(map[int64]string)
	c.remaining = TimeLimitSeconds
	c.startedAt = c.now()
	c.state = StateInProgress
	return nil
}

// FailLoad records a fetch failure, Loading -> Error.
func (c *Controller) FailLoad(err error) {
	if c.state != StateLoading {
		return
	}
	c.fail(err)
}

// CurrentQuestion returns the question awaiting an answer.
func (c *Controller) CurrentQuestion() (domain.QuestionSummary, bool) {
	if c.state != StateInProgress || c.index >= len(c.questions) {
		return domain.QuestionSummary{}, false
	}
	return c.questions[c.index], true
}

// Progress reports the 1-based position and the actual sample size.
func (c *Controller) Progress() (current, total int) {
	return c.index + 1, len(c.questions)
}

// Select records (or overwrites) the answer for the current question.
func (c *Controller) Select(label string) error {
	if c.state != StateInProgress {
		return ErrBadTransition
	}
	if !domain.ValidLabel(label) {
		return errors.New("unknown option label: " + label)
	}
	c.answers[c.questions[c.index].ID] = label
	return nil
}

// Answered reports whether the current question has a recorded answer, which
// gates advancement.
func (c *Controller) Answered() bool {
	if c.state != StateInProgress {
		return false
	}
	_, ok := c.answers[c.questions[c.index].ID]
	return ok
}

// Advance moves to the next question, or to Submitting after the last one.
// It reports whether the caller should now submit the answer set.
func (c *Controller) Advance() (submit bool, err error) {
	if c.state != StateInProgress {
		return false, ErrBadTransition
	}
	if !c.Answered() {
		return false, ErrNotAnswered
	}
	if c.index+1 < len(c.questions) {
		c.index++
		return false, nil
	}
	c.state = StateSubmitting
	return true, nil
}

// Tick consumes one second of the budget. Hitting zero forces exactly one
// transition to Submitting, answered or not; once Submitting, further ticks
// are no-ops, which is the double-submit guard.
func (c *Controller) Tick() (submit bool) {
	if c.state != StateInProgress {
		return false
	}
	c.remaining--
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.state = StateSubmitting
	return true
}

// Remaining returns the seconds left on the countdown.
func (c *Controller) Remaining() int { return c.remaining }

// ElapsedSeconds is the rounded wall-clock time since the quiz began.
func (c *Controller) ElapsedSeconds() int {
	if c.startedAt.IsZero() {
		return 0
	}
	return int(math.Round(c.now().Sub(c.startedAt).Seconds()))
}

// Answers returns the answer set in wire form (question id -> option label).
func (c *Controller) Answers() map[string]string {
	out := make(map[string]string, len(c.answers))
	for id, label := range c.answers {
		out[strconv.FormatInt(id, 10)] = label
	}
	return out
}

// Complete records the graded outcome, Submitting -> Complete.
func (c *Controller) Complete(result domain.GradeResult) error {
	if c.state != StateSubmitting {
		return ErrBadTransition
	}
	c.result = result
	c.state = StateComplete
	return nil
}

// FailSubmit records a submission failure, Submitting -> Error. No automatic
// retry happens at this layer; the transport client retries once before
// calling this.
func (c *Controller) FailSubmit(err error) {
	if c.state != StateSubmitting {
		return
	}
	c.fail(err)
}

// Result returns the graded outcome once Complete.
func (c *Controller) Result() (domain.GradeResult, bool) {
	if c.state != StateComplete {
		return domain.GradeResult{}, false
	}
	return c.result, true
}

// Restart clears all per-attempt state and returns to Idle. Valid from
// Complete and Error (the retry path).
func (c *Controller) Restart() error {
	if c.state != StateComplete && c.state != StateError {
		return ErrBadTransition
	}
	c.questions = nil
	c.index = 0
	c.answers = make(map[int64]string)
	c.remaining = 0
	c.startedAt = time.Time{}
	c.result = domain.GradeResult{}
	c.lastErr = nil
	c.state = StateIdle
	return nil
}

func (c *Controller) fail(err error) {
	c.lastErr = err
	c.state = StateError
}

// FormatClock renders seconds as mm:ss for countdown and elapsed displays.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	m := seconds / 60
	s := seconds % 60
	return pad2(m) + ":" + pad2(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
