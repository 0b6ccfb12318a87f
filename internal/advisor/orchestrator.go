// This file contains the turn orchestrator: the single entry point that
// takes one client message plus session state and produces the reply,
// running intercepts, profile inference, generation, and output
// post-processing in a fixed order.
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Killzin1000/quality-eco/internal/config"
	apperrors "github.com/Killzin1000/quality-eco/internal/errors"
	"github.com/Killzin1000/quality-eco/internal/genai"
	"github.com/Killzin1000/quality-eco/internal/logger"
	"github.com/Killzin1000/quality-eco/internal/metrics"
	"github.com/Killzin1000/quality-eco/internal/prompt"
	"github.com/Killzin1000/quality-eco/internal/storage"
)

// StartSentinel is sent by the chat widget when it opens. It runs through
// the generator like any other turn but is never recorded as a client
// message.
const StartSentinel = "...start..."

// Advisor orchestrates conversation turns.
type Advisor struct {
	courses  storage.CourseRepository
	sink     storage.MessageSink
	gen      genai.Generator
	prompts  *prompt.Cache
	builder  *prompt.Builder
	searcher *Searcher
	metrics  *metrics.Metrics
	log      *logger.Logger

	transcriptWindow int
}

// Options carries the collaborators an Advisor needs. Generator and
// metrics may be nil; the advisor degrades to intercept-only replies
// without a generator.
type Options struct {
	Courses          storage.CourseRepository
	Sink             storage.MessageSink
	Generator        genai.Generator
	Prompts          *prompt.Cache
	Metrics          *metrics.Metrics
	Logger           *logger.Logger
	TranscriptWindow int
	MaxSearchResults int
}

// New creates a turn orchestrator.
func New(opts Options) *Advisor {
	if opts.TranscriptWindow <= 0 {
		opts.TranscriptWindow = 10
	}
	return &Advisor{
		courses:          opts.Courses,
		sink:             opts.Sink,
		gen:              opts.Generator,
		prompts:          opts.Prompts,
		builder:          prompt.NewBuilder(opts.Prompts),
		searcher:         NewSearcher(opts.Courses, opts.Logger, opts.MaxSearchResults),
		metrics:          opts.Metrics,
		log:              opts.Logger.WithModule("advisor"),
		transcriptWindow: opts.TranscriptWindow,
	}
}

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	Reply      string
	Session    *Session
	NavigateTo string
}

// HandleTurn processes one client message against the session state and
// returns the reply with the updated session. Failures after the client
// message was recorded degrade to an apology reply rather than an error,
// so the conversation survives transient faults.
func (a *Advisor) HandleTurn(ctx context.Context, sess *Session, rawMessage string) (*TurnResult, error) {
	start := time.Now()
	if sess == nil {
		sess = NewSession()
	}
	if sess.ClientName == "" {
		sess.ClientName = DefaultClientName
	}

	message := strings.TrimSpace(rawMessage)
	if message == "" {
		return nil, apperrors.NewValidationError("message", "must not be empty")
	}

	// The prompt store gates every turn. With no modules loaded (or no
	// generator wired) the assistant is offline and nothing is recorded
	// except the offline notice itself.
	if a.gen == nil || a.prompts == nil || !a.prompts.Ensure(ctx) {
		reply := OfflineReply
		sess.Append(RoleAssistant, reply)
		a.persist(ctx, sess.Key(), RoleAssistant, reply)
		a.recordTurn("offline", start)
		return &TurnResult{Reply: reply, Session: sess}, nil
	}

	isStart := message == StartSentinel
	if !isStart {
		sess.Append(RoleUser, message)
		a.persist(ctx, sess.Key(), RoleUser, message)

		if strings.TrimSpace(sess.CourseContext) != "" {
			if kind := MatchFieldIntercept(message); kind != InterceptNone {
				if reply, ok := a.answerFieldQuestion(ctx, sess, kind); ok {
					a.finishIntercept(ctx, sess, kind, reply, false)
					a.recordTurn("intercepted", start)
					return &TurnResult{Reply: reply, Session: sess}, nil
				}
				// A lookup miss during an intercept falls through to the
				// generator. Context is only invalidated by the refresh
				// step on the generation path.
			}
		}

		if n, ok := MatchSelection(message); ok {
			if menu := sess.LastMenu(); menu != nil {
				reply, resolved := a.answerSelection(ctx, sess, menu, n)
				a.finishIntercept(ctx, sess, InterceptSelection, reply, !resolved)
				a.recordTurn("intercepted", start)
				return &TurnResult{Reply: reply, Session: sess}, nil
			}
			// A bare number with no menu on the table is an ordinary message.
		}
	}

	return a.generateTurn(ctx, sess, message, isStart, start)
}

// refreshCourseContext re-resolves the course in context and returns its
// fresh data block for prompt injection. A context naming a course the
// store no longer knows is cleared here; a transient store error keeps it.
func (a *Advisor) refreshCourseContext(ctx context.Context, sess *Session) string {
	name := strings.TrimSpace(sess.CourseContext)
	if name == "" {
		return ""
	}

	course, err := a.lookupCourse(ctx, name, true)
	if err != nil {
		a.log.WithError(err).WithField("course", name).Warn("course context refresh failed")
		return ""
	}
	if course == nil {
		a.log.WithField("course", name).Warn("course context names unknown course")
		sess.CourseContext = ""
		return ""
	}
	return CourseDataBlock(course)
}

// answerFieldQuestion resolves a duration, thesis, or syllabus question
// against the course in context. A reply is produced only when the course
// resolves and carries the asked-for field; otherwise the intercept
// declines and the turn continues to the generator.
func (a *Advisor) answerFieldQuestion(ctx context.Context, sess *Session, kind InterceptKind) (string, bool) {
	name := strings.TrimSpace(sess.CourseContext)
	course, err := a.lookupCourse(ctx, name, true)
	if err != nil || course == nil {
		if err != nil {
			a.log.WithError(err).WithField("course", name).Error("field intercept lookup failed")
		}
		return "", false
	}

	switch kind {
	case InterceptDuration:
		if course.TotalHours == "" && course.Duration == "" {
			return "", false
		}
		return ComposeDurationReply(course), true
	case InterceptThesis:
		return ComposeThesisReply(course), true
	case InterceptSyllabus:
		if course.SyllabusURL == "" {
			return "", false
		}
		return ComposeSyllabusReply(course), true
	default:
		return "", false
	}
}

// answerSelection resolves a numbered menu pick to a detailed course
// presentation. The second return is false for retry replies, which are
// recorded as system errors rather than regular assistant turns.
func (a *Advisor) answerSelection(ctx context.Context, sess *Session, menu map[int]string, n int) (string, bool) {
	label, ok := menu[n]
	if !ok {
		return ComposeSelectionRetry(len(menu)), false
	}

	course, err := a.lookupCourse(ctx, label, true)
	if err != nil || course == nil {
		if err != nil {
			a.log.WithError(err).WithField("course", label).Error("selection lookup failed")
		} else {
			a.log.WithField("course", label).Warn("menu option names unknown course")
		}
		return ComposeSelectionRetry(len(menu)), false
	}

	a.adoptCourse(ctx, sess, course)
	return ComposeSelectionReply(course, sess.PriorEducation), true
}

// adoptCourse makes a course the conversation's subject: context is set and
// the hidden data block is appended unless already present.
func (a *Advisor) adoptCourse(ctx context.Context, sess *Session, course *storage.Course) {
	sess.CourseContext = course.Name
	if sess.CourseDataFor(course.Name) {
		return
	}
	block := CourseDataBlock(course)
	sess.AppendHidden(RoleAssistant, block)
	a.persist(ctx, sess.Key(), RoleAssistant, block)
}

// generateTurn runs the generator path: context refresh, profile update,
// prompt assembly, generation, leakage guard, and control tag handling.
func (a *Advisor) generateTurn(ctx context.Context, sess *Session, message string, isStart bool, start time.Time) (*TurnResult, error) {
	dataBlock := a.refreshCourseContext(ctx, sess)
	if !isStart {
		UpdateProfile(sess, message)
	}
	if dataBlock == "" {
		dataBlock = sess.LastCourseData()
	}

	fields := prompt.ProfileFields{
		ClientName:     sess.ClientName,
		PriorEducation: sess.PriorEducation,
		EducationKind:  sess.EducationKind,
		PreferredArea:  sess.PreferredArea,
		CourseContext:  sess.CourseContext,
	}
	transcript := a.transcriptWithData(sess, dataBlock)
	turnPrompt := a.builder.BuildTurn(fields, transcript, message)

	genCtx, cancel := context.WithTimeout(ctx, config.GeneratorRequest)
	raw, err := a.gen.Generate(genCtx, turnPrompt, genai.DefaultSampling)
	cancel()
	if err != nil {
		a.log.WithError(err).Error("reply generation failed")
		reply := ComposeGenerationFailure(err)
		sess.Append(RoleAssistant, reply)
		a.persist(ctx, sess.Key(), RoleSystemError, err.Error())
		a.recordTurn("error", start)
		return &TurnResult{Reply: reply, Session: sess}, nil
	}

	if LeaksPrompt(raw) {
		a.log.WithField("output_length", len(raw)).Warn("generator output leaked prompt structure")
		reply := ErrorReply
		sess.Append(RoleAssistant, reply)
		a.persist(ctx, sess.Key(), RoleAssistant, reply)
		a.recordTurn("error", start)
		return &TurnResult{Reply: reply, Session: sess}, nil
	}

	out := ClassifyOutput(raw)
	switch out.Kind {
	case OutputNavigate:
		result := a.handleNavigation(ctx, sess, out, dataBlock)
		a.recordTurn("generated", start)
		return result, nil
	case OutputSearch:
		reply := a.handleSearch(ctx, sess, out.Visible, out.Query)
		sess.Append(RoleAssistant, reply)
		a.persist(ctx, sess.Key(), RoleAssistant, reply)
		a.recordTurn("generated", start)
		return &TurnResult{Reply: reply, Session: sess}, nil
	default:
		sess.Append(RoleAssistant, out.Visible)
		a.persist(ctx, sess.Key(), RoleAssistant, out.Visible)
		a.recordTurn("generated", start)
		return &TurnResult{Reply: out.Visible, Session: sess}, nil
	}
}

// handleNavigation resolves the navigation target from the course in
// context, falling back to the course named by the newest data block.
// Without a resolvable course the tag is dropped and the visible text
// stands alone.
func (a *Advisor) handleNavigation(ctx context.Context, sess *Session, out ClassifiedOutput, dataBlock string) *TurnResult {
	reply := out.Visible
	if reply == "" {
		reply = "Taking you to the course page now."
	}

	name := strings.TrimSpace(sess.CourseContext)
	if name == "" {
		name = courseDataBlockName(dataBlock)
	}

	var target string
	if name != "" {
		course, err := a.lookupCourse(ctx, name, false)
		if err != nil {
			a.log.WithError(err).WithField("course", name).Error("navigation lookup failed")
		} else if course != nil {
			target = fmt.Sprintf("/course/%d", course.ID)
		}
	}
	if target == "" {
		a.log.WithField("course_context", sess.CourseContext).Warn("navigation requested without resolvable course")
	}

	sess.Append(RoleAssistant, reply)
	a.persist(ctx, sess.Key(), RoleAssistant, reply)
	return &TurnResult{Reply: reply, Session: sess, NavigateTo: target}
}

// handleSearch runs a course search emitted by the generator and shapes the
// zero, one, or many result replies around the model's visible text. A
// search phrase already covered by the course in context is redundant: the
// lookup is skipped entirely and the context kept.
func (a *Advisor) handleSearch(ctx context.Context, sess *Session, visible, query string) string {
	redundant := query != "" && sess.CourseContext != "" &&
		strings.Contains(strings.ToLower(sess.CourseContext), strings.ToLower(query))

	var results []*storage.Course
	if query != "" && !redundant {
		results = a.searcher.RelevantCourses(ctx, query, sess.PreferredArea)
	}

	switch len(results) {
	case 0:
		if query != "" && !redundant {
			a.recordLookup("search", "miss")
		}
		if sess.CourseContext != "" {
			return visible
		}
		return joinReply(visible, ComposeNoResults())
	case 1:
		a.recordLookup("search", "hit")
		course := results[0]
		if sess.CourseDataFor(course.Name) {
			sess.CourseContext = course.Name
			return joinReply(visible, ComposeCourseReply(course, true))
		}
		a.adoptCourse(ctx, sess, course)
		return joinReply(visible, ComposeCourseReply(course, false))
	default:
		a.recordLookup("search", "hit")
		return joinReply(visible, ComposeMenu(results))
	}
}

// transcriptWithData renders the prompt transcript: the recent visible
// window preceded by the freshest course data block so the generator can
// answer fact questions.
func (a *Advisor) transcriptWithData(sess *Session, dataBlock string) []string {
	lines := sess.Transcript(a.transcriptWindow)
	if dataBlock != "" {
		lines = append([]string{"Course data on record:", dataBlock, ""}, lines...)
	}
	return lines
}

func (a *Advisor) lookupCourse(ctx context.Context, name string, full bool) (*storage.Course, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, config.StoreQuery)
	defer cancel()
	course, err := a.courses.GetCourseByName(lookupCtx, name, full)
	if err != nil {
		a.recordLookup("by_name", "error")
		return nil, err
	}
	if course == nil {
		a.recordLookup("by_name", "miss")
		return nil, nil
	}
	a.recordLookup("by_name", "hit")
	return course, nil
}

// finishIntercept records an intercept reply in the session, sink, and
// metrics. Retry and lookup-failure replies are mirrored to the sink as
// system errors so they stand out in the message log.
func (a *Advisor) finishIntercept(ctx context.Context, sess *Session, kind InterceptKind, reply string, failed bool) {
	sess.Append(RoleAssistant, reply)
	role := RoleAssistant
	if failed {
		role = RoleSystemError
	}
	a.persist(ctx, sess.Key(), role, reply)
	if a.metrics != nil {
		a.metrics.InterceptsTotal.WithLabelValues(string(kind)).Inc()
	}
}

// persist mirrors a conversation entry to the message sink. Sink failures
// are logged and never fail the turn.
func (a *Advisor) persist(ctx context.Context, sessionKey, role, content string) {
	if a.sink == nil {
		return
	}
	if err := a.sink.AppendMessage(ctx, sessionKey, role, content); err != nil {
		a.log.WithError(err).WithField("session", sessionKey).Warn("failed to persist message")
	}
}

func (a *Advisor) recordTurn(outcome string, start time.Time) {
	if a.metrics == nil {
		return
	}
	a.metrics.TurnsTotal.WithLabelValues(outcome).Inc()
	a.metrics.TurnDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (a *Advisor) recordLookup(kind, status string) {
	if a.metrics != nil {
		a.metrics.CourseLookupsTotal.WithLabelValues(kind, status).Inc()
	}
}
