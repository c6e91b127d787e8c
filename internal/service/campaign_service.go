package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/queue"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
)

// CampaignTaskTitlePrefix starts the title of every task a run creates.
const CampaignTaskTitlePrefix = "Seguimiento campaña: "

var (
	ErrEmptySegment = appErrors.NewValidation("segment", "no members in the selected segment")
	ErrEmptyMessage = appErrors.NewValidation("message", "draft a message before recording the campaign")
)

// CampaignService records campaign runs.
type CampaignService struct {
	Repos   *repository.Repositories
	Members repository.MemberRepositoryInterface
	Queue   queue.Queue
	Log     *logger.Logger
	Now     Clock
	NewID   IDGenerator
}

// ExecuteCampaignCommand asks to record one run of a template with an
// already drafted message.
type ExecuteCampaignCommand struct {
	TemplateID string
	Message    string
}

// Mutation is one store change produced by a campaign plan.
type Mutation interface {
	Describe() string
	Apply(uow *repository.UnitOfWork) error
}

// CampaignPlan is the resolved, validated outcome of a command. Applying its
// mutations in order and committing once records the run.
type CampaignPlan struct {
	Template  model.CampaignTemplate
	Run       model.CampaignRun
	Tasks     map[string]model.FollowUpTask
	Mutations []Mutation
}

type ExecuteCampaignResult struct {
	Run               model.CampaignRun `json:"run"`
	TasksCreated      int               `json:"tasks_created"`
	SchedulesAdvanced int               `json:"schedules_advanced"`
}

type AppendRun struct {
	Run model.CampaignRun
}

func (m *AppendRun) Describe() string { return "append run " + m.Run.ID }

func (m *AppendRun) Apply(uow *repository.UnitOfWork) error {
	runs, err := uow.Runs()
	if err != nil {
		return err
	}
	uow.PutRuns(append(runs, m.Run))
	return nil
}

type AppendMessageLogs struct {
	Entries []model.MessageLogEntry
}

func (m *AppendMessageLogs) Describe() string {
	return fmt.Sprintf("append %d message log entries", len(m.Entries))
}

func (m *AppendMessageLogs) Apply(uow *repository.UnitOfWork) error {
	logs, err := uow.MessageLogs()
	if err != nil {
		return err
	}
	for _, e := range m.Entries {
		logs[e.MemberID] = append(logs[e.MemberID], e)
	}
	uow.PutMessageLogs(logs)
	return nil
}

type AppendFollowUpTask struct {
	MemberID string
	Task     model.FollowUpTask
}

func (m *AppendFollowUpTask) Describe() string { return "append task for member " + m.MemberID }

func (m *AppendFollowUpTask) Apply(uow *repository.UnitOfWork) error {
	return appendTask(uow, m.MemberID, m.Task, m.Task.CreatedAt)
}

type MarkTemplateUsed struct {
	TemplateID string
	At         time.Time
}

func (m *MarkTemplateUsed) Describe() string { return "mark template used " + m.TemplateID }

func (m *MarkTemplateUsed) Apply(uow *repository.UnitOfWork) error {
	ok, err := markTemplateUsed(uow, m.TemplateID, m.At)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.NewTemplateNotFound(m.TemplateID)
	}
	return nil
}

type AdvanceTemplateSchedules struct {
	TemplateID string
	ExecutedAt time.Time
	Log        *logger.Logger
	Advanced   int
}

func (m *AdvanceTemplateSchedules) Describe() string {
	return "advance active schedules of template " + m.TemplateID
}

func (m *AdvanceTemplateSchedules) Apply(uow *repository.UnitOfWork) error {
	n, err := advanceAllForTemplate(uow, m.TemplateID, m.ExecutedAt, m.ExecutedAt, m.Log)
	m.Advanced = n
	return err
}

// Plan validates cmd against the current stores and builds the mutations of
// the run without writing anything.
func (s *CampaignService) Plan(ctx context.Context, cmd ExecuteCampaignCommand) (*CampaignPlan, error) {
	template, err := s.Repos.Templates.GetByID(ctx, cmd.TemplateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, appErrors.NewTemplateNotFound(cmd.TemplateID)
	}

	now := s.Now.now()
	members, err := s.Members.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	targets := FilterBySegment(members, template.Segment, now)
	if len(targets) == 0 {
		return nil, ErrEmptySegment
	}

	message := strings.TrimSpace(cmd.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	run := model.CampaignRun{
		ID:         s.NewID.next(),
		TemplateID: template.ID,
		Segment:    template.Segment,
		ExecutedAt: now,
		MemberIDs:  make([]string, 0, len(targets)),
	}
	logs := &AppendMessageLogs{}
	plan := &CampaignPlan{Template: *template, Tasks: make(map[string]model.FollowUpTask, len(targets))}
	taskMutations := make([]Mutation, 0, len(targets))
	for _, m := range targets {
		run.MemberIDs = append(run.MemberIDs, m.ID)
		logs.Entries = append(logs.Entries, model.MessageLogEntry{
			ID:          s.NewID.next(),
			MemberID:    m.ID,
			TemplateID:  template.ID,
			GeneratedAt: now,
			Message:     message,
		})
		task := model.FollowUpTask{
			ID:        s.NewID.next(),
			Title:     CampaignTaskTitlePrefix + template.Name,
			CreatedAt: now,
		}
		plan.Tasks[m.ID] = task
		taskMutations = append(taskMutations, &AppendFollowUpTask{MemberID: m.ID, Task: task})
	}
	plan.Run = run

	plan.Mutations = append(plan.Mutations, &AppendRun{Run: run}, logs)
	plan.Mutations = append(plan.Mutations, taskMutations...)
	plan.Mutations = append(plan.Mutations,
		&MarkTemplateUsed{TemplateID: template.ID, At: now},
		&AdvanceTemplateSchedules{TemplateID: template.ID, ExecutedAt: now, Log: s.Log},
	)
	return plan, nil
}

// Execute records a campaign run: the run itself, one message log entry and
// one follow-up task per member, the template's lastUsedAt and the template's
// active schedules. Either all of it is stored or none of it.
func (s *CampaignService) Execute(ctx context.Context, cmd ExecuteCampaignCommand) (*ExecuteCampaignResult, error) {
	plan, err := s.Plan(ctx, cmd)
	if err != nil {
		return nil, err
	}

	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	result := &ExecuteCampaignResult{Run: plan.Run, TasksCreated: len(plan.Tasks)}
	for _, m := range plan.Mutations {
		if err := m.Apply(uow); err != nil {
			return nil, fmt.Errorf("%s: %w", m.Describe(), err)
		}
		if adv, ok := m.(*AdvanceTemplateSchedules); ok {
			result.SchedulesAdvanced = adv.Advanced
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit campaign run: %w", err)
	}

	s.Log.Info("campaign run recorded",
		"run_id", plan.Run.ID,
		"template_id", plan.Template.ID,
		"members", len(plan.Run.MemberIDs),
		"schedules_advanced", result.SchedulesAdvanced)
	s.publish(model.TopicCampaignExecuted, model.CampaignExecutedEvent{
		RunID:        plan.Run.ID,
		TemplateID:   plan.Template.ID,
		TemplateName: plan.Template.Name,
		Segment:      plan.Run.Segment,
		MemberCount:  len(plan.Run.MemberIDs),
		ExecutedAt:   plan.Run.ExecutedAt,
	})
	return result, nil
}

func (s *CampaignService) publish(topic string, payload any) {
	if s.Queue == nil {
		return
	}
	if err := s.Queue.Publish(topic, payload); err != nil {
		s.Log.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// RunView is a run with its template label resolved.
type RunView struct {
	model.CampaignRun
	TemplateName string `json:"template_name"`
}

// ListRuns returns the most recent runs first, at most limit when limit > 0.
func (s *CampaignService) ListRuns(ctx context.Context, limit int) ([]RunView, error) {
	runs, err := s.Repos.Runs.List(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := s.Repos.Templates.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]RunView, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		views = append(views, RunView{CampaignRun: runs[i], TemplateName: templateLabel(templates, runs[i].TemplateID)})
		if limit > 0 && len(views) == limit {
			break
		}
	}
	return views, nil
}

// SegmentMembers returns the members a template of segment would reach now.
func (s *CampaignService) SegmentMembers(ctx context.Context, segment model.Segment) ([]model.Member, error) {
	if !segment.Valid() {
		return nil, appErrors.NewValidation("segment", "unknown segment "+string(segment))
	}
	members, err := s.Members.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterBySegment(members, segment, s.Now.now()), nil
}

// LogMemberMessage stores a drafted personal message in the member's log.
func (s *CampaignService) LogMemberMessage(ctx context.Context, memberID, templateID, message string) (*model.MessageLogEntry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, appErrors.NewValidation("message", "message cannot be empty")
	}
	member, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, appErrors.NewMemberNotFound(memberID)
	}
	entry := model.MessageLogEntry{
		ID:          s.NewID.next(),
		MemberID:    memberID,
		TemplateID:  templateID,
		GeneratedAt: s.Now.now(),
		Message:     message,
	}
	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	if err := (&AppendMessageLogs{Entries: []model.MessageLogEntry{entry}}).Apply(uow); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *CampaignService) MemberMessages(ctx context.Context, memberID string) ([]model.MessageLogEntry, error) {
	entries, err := s.Repos.MessageLogs.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]model.MessageLogEntry, len(entries))
	for i := range entries {
		out[len(entries)-1-i] = entries[i]
	}
	return out, nil
}
