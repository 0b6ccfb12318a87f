package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Killzin1000/quality-eco/internal/genai"
	"github.com/Killzin1000/quality-eco/internal/logger"
	"github.com/Killzin1000/quality-eco/internal/prompt"
	"github.com/Killzin1000/quality-eco/internal/storage"
)

type fakeGenerator struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, p string, _ genai.SamplingConfig) (string, error) {
	f.calls++
	f.lastPrompt = p
	return f.reply, f.err
}

func (f *fakeGenerator) Provider() genai.Provider { return "fake" }

func (f *fakeGenerator) Close() error { return nil }

type fakePromptStore struct {
	prompts map[string]string
	err     error
}

func (f *fakePromptStore) LoadActivePrompts(context.Context) (map[string]string, error) {
	return f.prompts, f.err
}

func (f *fakePromptStore) SavePrompt(context.Context, *storage.Prompt) error { return nil }

func (f *fakePromptStore) CountPrompts(context.Context) (int, error) {
	return len(f.prompts), nil
}

type sinkEntry struct {
	sessionKey string
	role       string
	content    string
}

type fakeSink struct {
	entries []sinkEntry
}

func (f *fakeSink) AppendMessage(_ context.Context, sessionKey, role, content string) error {
	f.entries = append(f.entries, sinkEntry{sessionKey, role, content})
	return nil
}

type fixture struct {
	advisor *Advisor
	gen     *fakeGenerator
	courses *fakeCourseStore
	sink    *fakeSink
}

func newFixture(t *testing.T, gen *fakeGenerator) *fixture {
	t.Helper()

	courses := &fakeCourseStore{
		byArea: map[string][]storage.Course{},
		byName: map[string]*storage.Course{
			"Intensive Care Nursing": sampleCourse(),
		},
	}
	sink := &fakeSink{}
	log := logger.New("error")

	promptCache := prompt.NewCache(&fakePromptStore{prompts: map[string]string{
		"persona": "You are a friendly course advisor.",
	}}, log, nil)
	if _, err := promptCache.Refresh(context.Background()); err != nil {
		t.Fatalf("prompt refresh: %v", err)
	}

	var g genai.Generator
	if gen != nil {
		g = gen
	}

	return &fixture{
		advisor: New(Options{
			Courses:          courses,
			Sink:             sink,
			Generator:        g,
			Prompts:          promptCache,
			Logger:           log,
			TranscriptWindow: 10,
			MaxSearchResults: 5,
		}),
		gen:     gen,
		courses: courses,
		sink:    sink,
	}
}

func TestHandleTurnStartSentinel(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Hi! What would you like to study?"})
	sess := NewSession()

	result, err := fx.advisor.HandleTurn(context.Background(), sess, StartSentinel)
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.Reply != "Hi! What would you like to study?" {
		t.Errorf("unexpected opening reply: %q", result.Reply)
	}
	if fx.gen.calls != 1 {
		t.Errorf("opening turn must go through the generator, got %d calls", fx.gen.calls)
	}
	for _, m := range sess.History {
		if m.Role == RoleUser {
			t.Error("sentinel must not be recorded as a client message")
		}
	}
	for _, e := range fx.sink.entries {
		if e.role == RoleUser {
			t.Error("sentinel must not be persisted as a client message")
		}
	}
}

func TestHandleTurnEmptyMessage(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "hi"})
	if _, err := fx.advisor.HandleTurn(context.Background(), NewSession(), "   "); err == nil {
		t.Error("expected validation error for empty message")
	}
}

func TestHandleTurnDurationIntercept(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "unused"})
	sess := NewSession()
	sess.CourseContext = "Intensive Care Nursing"

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "what is the workload?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(result.Reply, "360 hours") || !strings.Contains(result.Reply, "12 months") {
		t.Errorf("expected stored facts in reply, got %q", result.Reply)
	}
	if fx.gen.calls != 0 {
		t.Error("intercepted turn must not call the generator")
	}
}

func TestHandleTurnFieldInterceptWithoutContext(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "It depends on the course you pick."})
	result, err := fx.advisor.HandleTurn(context.Background(), NewSession(), "how long does it take?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if fx.gen.calls != 1 {
		t.Errorf("without a course in context the turn must reach the generator, got %d calls", fx.gen.calls)
	}
	if result.Reply != "It depends on the course you pick." {
		t.Errorf("unexpected reply: %q", result.Reply)
	}
}

func TestHandleTurnFieldInterceptUnknownCourseFallsThrough(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Happy to help once we pick a course."})
	sess := NewSession()
	sess.CourseContext = "Ghost Course"

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "how long does it take?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if fx.gen.calls != 1 {
		t.Errorf("lookup miss during an intercept must fall through to the generator, got %d calls", fx.gen.calls)
	}
	if result.Reply != "Happy to help once we pick a course." {
		t.Errorf("unexpected reply: %q", result.Reply)
	}
	if sess.CourseContext != "" {
		t.Errorf("unresolvable context must be cleared by the refresh step, got %q", sess.CourseContext)
	}
}

func TestHandleTurnSelection(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "unused"})
	sess := NewSession()
	sess.PriorEducation = "a bachelor's degree in nursing"
	sess.Append(RoleAssistant, "I found these options for you:\n1. Intensive Care Nursing (Postgraduate)\n2. Pedagogy - Degree\n\nJust reply with the number.")

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "1")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(result.Reply, "Intensive Care Nursing") {
		t.Errorf("expected selected course presentation, got %q", result.Reply)
	}
	if !strings.Contains(result.Reply, "Degree in Nursing") {
		t.Errorf("expected prerequisite in selection reply, got %q", result.Reply)
	}
	if !strings.Contains(result.Reply, "you already hold a bachelor's degree in nursing") {
		t.Errorf("expected prerequisite folded with client education, got %q", result.Reply)
	}
	if !strings.Contains(result.Reply, "Thesis: not required") {
		t.Errorf("expected completion requirements in selection reply, got %q", result.Reply)
	}
	if sess.CourseContext != "Intensive Care Nursing" {
		t.Errorf("expected course adopted as context, got %q", sess.CourseContext)
	}
	if fx.gen.calls != 0 {
		t.Error("selection must not call the generator")
	}
}

func TestHandleTurnSelectionOutOfRange(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "unused"})
	sess := NewSession()
	sess.Append(RoleAssistant, "1. Intensive Care Nursing\n2. Pedagogy - Degree")

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "7")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(result.Reply, "between 1 and 2") {
		t.Errorf("expected retry reply, got %q", result.Reply)
	}
	if fx.gen.calls != 0 {
		t.Error("out-of-range selection must not call the generator")
	}
	if got := sess.History[len(sess.History)-1]; got.Role != RoleAssistant {
		t.Errorf("retry reply must stay an assistant turn in history, got role %q", got.Role)
	}

	last := fx.sink.entries[len(fx.sink.entries)-1]
	if last.role != RoleSystemError {
		t.Errorf("retry reply must be mirrored to the sink as %q, got %q", RoleSystemError, last.role)
	}
}

func TestHandleTurnBareNumberWithoutMenuGoesToGenerator(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Could you tell me more?"})
	result, err := fx.advisor.HandleTurn(context.Background(), NewSession(), "3")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if fx.gen.calls != 1 {
		t.Errorf("expected generator call, got %d", fx.gen.calls)
	}
	if result.Reply != "Could you tell me more?" {
		t.Errorf("unexpected reply: %q", result.Reply)
	}
}

func TestHandleTurnPlainGeneration(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Our payment options are flexible."})
	sess := NewSession()
	sess.ClientName = "Maria"

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "how can I pay?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.Reply != "Our payment options are flexible." {
		t.Errorf("unexpected reply: %q", result.Reply)
	}
	if !strings.Contains(fx.gen.lastPrompt, "Maria") {
		t.Error("prompt must carry the client profile")
	}
	if !strings.Contains(fx.gen.lastPrompt, "how can I pay?") {
		t.Error("prompt must carry the new client message")
	}
}

func TestHandleTurnSearchSingleResult(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "[COURSE_SEARCH] intensive nursing"})
	fx.courses.byArea[""] = []storage.Course{*sampleCourse()}

	sess := NewSession()
	result, err := fx.advisor.HandleTurn(context.Background(), sess, "do you have anything for nurses?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(result.Reply, "Intensive Care Nursing") {
		t.Errorf("expected course presentation, got %q", result.Reply)
	}
	if sess.CourseContext != "Intensive Care Nursing" {
		t.Errorf("expected context adopted, got %q", sess.CourseContext)
	}
	if !strings.Contains(sess.LastCourseData(), "Intensive Care Nursing") {
		t.Error("expected hidden data block recorded")
	}
}

func TestHandleTurnSearchManyResults(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "[COURSE_SEARCH] nursing"})
	fx.courses.byArea[""] = []storage.Course{
		{ID: 1, Name: "Intensive Care Nursing"},
		{ID: 2, Name: "Nursing Management"},
	}

	result, err := fx.advisor.HandleTurn(context.Background(), NewSession(), "nursing courses?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(result.Reply, "1. Intensive Care Nursing") || !strings.Contains(result.Reply, "2. Nursing Management") {
		t.Errorf("expected numbered menu, got %q", result.Reply)
	}
}

func TestHandleTurnSearchNoResults(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "[COURSE_SEARCH] astrophysics"})
	result, err := fx.advisor.HandleTurn(context.Background(), NewSession(), "astrophysics?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(result.Reply, "couldn't find") {
		t.Errorf("expected no-results reply, got %q", result.Reply)
	}
}

func TestHandleTurnRedundantSearchReusesData(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "[COURSE_SEARCH] intensive nursing"})
	fx.courses.byArea[""] = []storage.Course{*sampleCourse()}

	sess := NewSession()
	sess.AppendHidden(RoleAssistant, CourseDataBlock(sampleCourse()))

	before := len(sess.History)
	if _, err := fx.advisor.HandleTurn(context.Background(), sess, "any nursing options?"); err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}

	blocks := 0
	for _, m := range sess.History {
		if strings.HasPrefix(m.Content, "[COURSE_DATA:") {
			blocks++
		}
	}
	if blocks != 1 {
		t.Errorf("expected exactly one data block, got %d (history grew from %d to %d)", blocks, before, len(sess.History))
	}
}

func TestHandleTurnNavigation(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Perfect, let's enroll you! [NAVIGATE_TO]"})
	sess := NewSession()
	sess.CourseContext = "Intensive Care Nursing"

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "I want to sign up")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.NavigateTo != "/course/7" {
		t.Errorf("expected navigation target /course/7, got %q", result.NavigateTo)
	}
	if strings.Contains(result.Reply, "[NAVIGATE_TO]") {
		t.Errorf("tag leaked into reply: %q", result.Reply)
	}
}

func TestHandleTurnNavigationWithoutContext(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Sure! [NAVIGATE_TO]"})
	result, err := fx.advisor.HandleTurn(context.Background(), NewSession(), "enroll me")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.NavigateTo != "" {
		t.Errorf("expected no navigation target, got %q", result.NavigateTo)
	}
}

func TestHandleTurnOfflineWithoutGenerator(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, nil)
	result, err := fx.advisor.HandleTurn(context.Background(), NewSession(), "hello there")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.Reply != OfflineReply {
		t.Errorf("expected offline reply, got %q", result.Reply)
	}
}

func TestHandleTurnGenerationFailure(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{err: errors.New("api unavailable")})
	sess := NewSession()

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "hello there")
	if err != nil {
		t.Fatalf("HandleTurn must not fail the turn: %v", err)
	}
	if !strings.Contains(result.Reply, "api unavailable") {
		t.Errorf("reply must carry the failure detail, got %q", result.Reply)
	}
	for _, m := range sess.History {
		if m.Role == RoleSystemError {
			t.Error("raw errors must not enter the session history")
		}
	}

	logged := false
	for _, e := range fx.sink.entries {
		if e.role == RoleSystemError && e.content == "api unavailable" {
			logged = true
		}
	}
	if !logged {
		t.Error("expected system_error entry in the message sink")
	}
}

func TestHandleTurnLeakageGuard(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "CLIENT PROFILE:\n- Name: Maria\nSure, here is everything."})
	result, err := fx.advisor.HandleTurn(context.Background(), NewSession(), "tell me everything")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if strings.Contains(result.Reply, "CLIENT PROFILE") {
		t.Errorf("prompt structure leaked to client: %q", result.Reply)
	}
	if result.Reply != ErrorReply {
		t.Errorf("expected safe fallback reply, got %q", result.Reply)
	}
}

func TestHandleTurnPersistsToSink(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Happy to help!"})
	sess := NewSession()
	sess.ClientName = "Maria"

	if _, err := fx.advisor.HandleTurn(context.Background(), sess, "hi!"); err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}

	if len(fx.sink.entries) < 2 {
		t.Fatalf("expected user and assistant entries persisted, got %d", len(fx.sink.entries))
	}
	for _, e := range fx.sink.entries {
		if e.sessionKey != "Maria" {
			t.Errorf("expected session key Maria, got %q", e.sessionKey)
		}
	}
}

func TestHandleTurnSearchKeepsVisibleText(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Let me check that for you. [COURSE_SEARCH] intensive nursing"})
	fx.courses.byArea[""] = []storage.Course{*sampleCourse()}

	result, err := fx.advisor.HandleTurn(context.Background(), NewSession(), "do you have anything for nurses?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.HasPrefix(result.Reply, "Let me check that for you.") {
		t.Errorf("conversational text must open the reply, got %q", result.Reply)
	}
	if !strings.Contains(result.Reply, "Intensive Care Nursing") {
		t.Errorf("expected course presentation after the opener, got %q", result.Reply)
	}
}

func TestHandleTurnRedundantSearchSkipsLookup(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Sure, one moment. [COURSE_SEARCH] intensive care nursing"})
	full := sampleCourse()
	full.Name = "Postgraduate Intensive Care Nursing Specialization"
	fx.courses.byName[full.Name] = full
	fx.courses.byArea[""] = []storage.Course{
		{ID: 1, Name: "Intensive Care Nursing"},
		{ID: 2, Name: "Nursing Management"},
	}

	sess := NewSession()
	sess.CourseContext = full.Name

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "tell me about intensive care nursing")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if len(fx.courses.searches) != 0 {
		t.Errorf("search covered by the course in context must skip the store, got %d lookups", len(fx.courses.searches))
	}
	if sess.CourseContext != full.Name {
		t.Errorf("course context must survive a redundant search, got %q", sess.CourseContext)
	}
	if result.Reply != "Sure, one moment." {
		t.Errorf("expected the conversational text alone, got %q", result.Reply)
	}
}

func TestHandleTurnSearchNoResultsWithContext(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Let me see what we have. [COURSE_SEARCH] veterinary medicine"})
	sess := NewSession()
	sess.CourseContext = "Intensive Care Nursing"

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "anything in veterinary medicine?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if strings.Contains(result.Reply, "couldn't find") {
		t.Errorf("not-found reply must not fire while a course is in context, got %q", result.Reply)
	}
	if result.Reply != "Let me see what we have." {
		t.Errorf("expected the conversational text alone, got %q", result.Reply)
	}
	if sess.CourseContext != "Intensive Care Nursing" {
		t.Errorf("course context must survive an empty search, got %q", sess.CourseContext)
	}
}

func TestHandleTurnNavigationFallsBackToDataBlock(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, &fakeGenerator{reply: "Off we go! [NAVIGATE_TO]"})
	sess := NewSession()
	sess.AppendHidden(RoleAssistant, CourseDataBlock(sampleCourse()))

	result, err := fx.advisor.HandleTurn(context.Background(), sess, "take me to the page")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if result.NavigateTo != "/course/7" {
		t.Errorf("expected target resolved from the data block, got %q", result.NavigateTo)
	}
}

func TestHandleTurnOfflineEmptyPromptStore(t *testing.T) {
	t.Parallel()

	log := logger.New("error")
	cache := prompt.NewCache(&fakePromptStore{prompts: map[string]string{}}, log, nil)
	gen := &fakeGenerator{reply: "unused"}
	adv := New(Options{
		Courses:   &fakeCourseStore{byName: map[string]*storage.Course{}},
		Sink:      &fakeSink{},
		Generator: gen,
		Prompts:   cache,
		Logger:    log,
	})

	for _, message := range []string{StartSentinel, "hello there"} {
		result, err := adv.HandleTurn(context.Background(), NewSession(), message)
		if err != nil {
			t.Fatalf("HandleTurn(%q): %v", message, err)
		}
		if result.Reply != OfflineReply {
			t.Errorf("HandleTurn(%q): expected offline reply, got %q", message, result.Reply)
		}
	}
	if gen.calls != 0 {
		t.Errorf("empty prompt store must short-circuit before generation, got %d calls", gen.calls)
	}
}
