package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/access"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type memTicketRepo struct {
	byID   map[string]*domain.Ticket
	shares struct {
		users []string
		depts []string
	}
	nextID int
}

func newMemTicketRepo(tickets ...*domain.Ticket) *memTicketRepo {
	r := &memTicketRepo{byID: map[string]*domain.Ticket{}}
	for _, t := range tickets {
		r.byID[t.ID] = t
	}
	return r
}

func (r *memTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	r.nextID++
	if t.ID == "" {
		t.ID = "t" + string(rune('0'+r.nextID))
	}
	copied := *t
	r.byID[t.ID] = &copied
	return nil
}

func (r *memTicketRepo) Update(ctx context.Context, t *domain.Ticket) error {
	if _, ok := r.byID[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *t
	r.byID[t.ID] = &copied
	return nil
}

func (r *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (r *memTicketRepo) ListWithFilter(ctx context.Context, f repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.byID {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTicketRepo) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	return nil, nil
}

func (r *memTicketRepo) ApplyEscalation(ctx context.Context, t *domain.Ticket) error {
	return r.Update(ctx, t)
}

func (r *memTicketRepo) ShareWithUsers(ctx context.Context, ticketID string, userIDs []string) error {
	r.shares.users = append(r.shares.users, userIDs...)
	return nil
}

func (r *memTicketRepo) ShareWithDepartments(ctx context.Context, ticketID string, departmentIDs []string) error {
	r.shares.depts = append(r.shares.depts, departmentIDs...)
	return nil
}

type memCommentRepo struct {
	byTicket map[string][]domain.Comment
	nextID   int
}

func (r *memCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	if r.byTicket == nil {
		r.byTicket = map[string][]domain.Comment{}
	}
	r.nextID++
	c.ID = "c" + string(rune('0'+r.nextID))
	r.byTicket[c.TicketID] = append(r.byTicket[c.TicketID], *c)
	return nil
}

func (r *memCommentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	return r.byTicket[ticketID], nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

type memDeptRepo struct {
	byID map[string]*domain.Department
}

func (r *memDeptRepo) Create(ctx context.Context, d *domain.Department) error { return nil }
func (r *memDeptRepo) Update(ctx context.Context, d *domain.Department) error { return nil }
func (r *memDeptRepo) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}
func (r *memDeptRepo) List(ctx context.Context) ([]domain.Department, error) { return nil, nil }

type memUserRepo struct {
	byID map[string]*domain.User
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }
func (r *memUserRepo) Update(ctx context.Context, u *domain.User) error { return nil }
func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}
func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *memUserRepo) ListByDepartment(ctx context.Context, departmentID string) ([]domain.User, error) {
	return nil, nil
}
func (r *memUserRepo) SecondaryDepartments(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

type memConfigRepo struct {
	cfg *domain.GeneralConfig
}

func (r *memConfigRepo) Get(ctx context.Context) (*domain.GeneralConfig, error) { return r.cfg, nil }
func (r *memConfigRepo) Upsert(ctx context.Context, cfg *domain.GeneralConfig) error {
	r.cfg = cfg
	return nil
}

func strptr(s string) *string { return &s }

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func fixture(cfg *domain.GeneralConfig, tickets ...*domain.Ticket) (*TicketService, *memTicketRepo) {
	svc, ticketRepo, _, _ := commentFixture(cfg, tickets...)
	return svc, ticketRepo
}

func commentFixture(cfg *domain.GeneralConfig, tickets ...*domain.Ticket) (*TicketService, *memTicketRepo, *memCommentRepo, *recordingDispatcher) {
	ticketRepo := newMemTicketRepo(tickets...)
	commentRepo := &memCommentRepo{}
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		DepartmentRepo: &memDeptRepo{byID: map[string]*domain.Department{
			"d1": {ID: "d1", Name: "Support", ManagerID: strptr("mgr")},
			"d2": {ID: "d2", Name: "Infra"},
		}},
		UserRepo: &memUserRepo{byID: map[string]*domain.User{
			"agent":    {ID: "agent", Active: true},
			"inactive": {ID: "inactive", Active: false},
		}},
		ConfigRepo: &memConfigRepo{cfg: cfg},
		Dispatcher: dispatcher,
	})
	return svc, ticketRepo, commentRepo, dispatcher
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, _ := fixture(nil)
	creator := &domain.User{ID: "u1", Role: domain.RoleUser, Active: true}

	ticket, err := svc.CreateTicket(context.Background(), creator, TicketCreateInput{
		DepartmentID: "d1",
		Title:        "  printer on fire  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Title != "printer on fire" {
		t.Fatalf("title = %q", ticket.Title)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %s, want OPEN", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("priority = %s, want MEDIUM", ticket.Priority)
	}
	if ticket.Visibility != domain.VisibilityDepartment {
		t.Fatalf("visibility = %s, want DEPARTMENT", ticket.Visibility)
	}
}

func TestCreateTicketUnknownDepartment(t *testing.T) {
	svc, _ := fixture(nil)
	creator := &domain.User{ID: "u1", Role: domain.RoleUser, Active: true}

	_, err := svc.CreateTicket(context.Background(), creator, TicketCreateInput{
		DepartmentID: "nope",
		Title:        "x",
	})
	if code := apperrors.ToDomainError(err).Code; code != "NOT_FOUND" {
		t.Fatalf("code = %s, want NOT_FOUND", code)
	}
}

func TestCreateTicketTriageRouting(t *testing.T) {
	cfg := &domain.GeneralConfig{WorkflowEnabled: true, TriageUserID: strptr("agent")}
	svc, _ := fixture(cfg)
	creator := &domain.User{ID: "u1", Role: domain.RoleUser, Active: true}

	ticket, err := svc.CreateTicket(context.Background(), creator, TicketCreateInput{
		DepartmentID: "d1",
		Title:        "vpn broken",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.AssigneeID == nil || *ticket.AssigneeID != "agent" {
		t.Fatalf("assignee = %v, want triage user", ticket.AssigneeID)
	}

	// Department triage reroutes instead of assigning.
	deptCfg := &domain.GeneralConfig{WorkflowEnabled: true, TriageDepartmentID: strptr("d2")}
	svc2, _ := fixture(deptCfg)
	ticket2, err := svc2.CreateTicket(context.Background(), creator, TicketCreateInput{
		DepartmentID: "d1",
		Title:        "vpn broken",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket2.DepartmentID != "d2" {
		t.Fatalf("department = %s, want triage department d2", ticket2.DepartmentID)
	}
}

func TestGetTicketForbiddenForOutsider(t *testing.T) {
	ticket := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusOpen, Visibility: domain.VisibilityDepartment,
	}
	svc, _ := fixture(nil, ticket)
	outsider := &domain.User{ID: "x", Role: domain.RoleUser, DepartmentID: strptr("d2"), Active: true}

	_, err := svc.GetTicket(context.Background(), outsider, "t1")
	if code := apperrors.ToDomainError(err).Code; code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}
}

func TestListTicketsFiltersPerRow(t *testing.T) {
	mine := &domain.Ticket{ID: "t1", CreatorID: "me", DepartmentID: "d1",
		Status: domain.TicketStatusOpen, Visibility: domain.VisibilityDepartment}
	private := &domain.Ticket{ID: "t2", CreatorID: "other", DepartmentID: "d1",
		Status: domain.TicketStatusOpen}
	private.SetVisibility(domain.VisibilityPrivate)

	svc, _ := fixture(nil, mine, private)
	me := &domain.User{ID: "me", Role: domain.RoleUser, DepartmentID: strptr("d9"), Active: true}

	visible, err := svc.ListTickets(context.Background(), me, repository.TicketFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != "t1" {
		t.Fatalf("visible = %+v, want only t1", visible)
	}
}

func TestUpdateTicketOpenLock(t *testing.T) {
	ticket := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusOpen, Visibility: domain.VisibilityDepartment,
	}
	svc, _ := fixture(nil, ticket)
	creator := &domain.User{ID: "creator", Role: domain.RoleUser, Active: true}

	// Content edits are locked while the ticket is still OPEN.
	title := "edited"
	_, err := svc.UpdateTicket(context.Background(), creator, "t1", access.TicketChange{Title: &title})
	if code := apperrors.ToDomainError(err).Code; code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}

	// A pure status transition passes, and unlocks subsequent edits.
	updated, err := svc.UpdateTicket(context.Background(), creator, "t1",
		access.TicketChange{Status: statusPtr(domain.TicketStatusInProgress)})
	if err != nil {
		t.Fatalf("status transition: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("status = %s", updated.Status)
	}
	if _, err := svc.UpdateTicket(context.Background(), creator, "t1", access.TicketChange{Title: &title}); err != nil {
		t.Fatalf("edit after pickup: %v", err)
	}
}

func TestUpdateTicketClosedLock(t *testing.T) {
	ticket := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusClosed, Visibility: domain.VisibilityDepartment,
	}
	svc, _ := fixture(nil, ticket)

	creator := &domain.User{ID: "creator", Role: domain.RoleUser, Active: true}
	_, err := svc.UpdateTicket(context.Background(), creator, "t1",
		access.TicketChange{Status: statusPtr(domain.TicketStatusOpen)})
	if code := apperrors.ToDomainError(err).Code; code != "FORBIDDEN" {
		t.Fatalf("creator reopen: code = %s, want FORBIDDEN", code)
	}

	admin := &domain.User{ID: "root", Role: domain.RoleSystemAdmin, Active: true}
	updated, err := svc.UpdateTicket(context.Background(), admin, "t1",
		access.TicketChange{Status: statusPtr(domain.TicketStatusOpen)})
	if err != nil {
		t.Fatalf("admin reopen: %v", err)
	}
	if updated.Status != domain.TicketStatusOpen || updated.ClosedAt != nil {
		t.Fatalf("reopened ticket = status %s, closed_at %v", updated.Status, updated.ClosedAt)
	}
}

func TestUpdateTicketClosingStampsClosedAt(t *testing.T) {
	ticket := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusInProgress, Visibility: domain.VisibilityDepartment,
	}
	svc, _ := fixture(nil, ticket)
	creator := &domain.User{ID: "creator", Role: domain.RoleUser, Active: true}

	updated, err := svc.UpdateTicket(context.Background(), creator, "t1",
		access.TicketChange{Status: statusPtr(domain.TicketStatusClosed)})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if updated.ClosedAt == nil {
		t.Fatal("closed_at not stamped")
	}
}

func TestUpdateTicketRejectsInactiveAssignee(t *testing.T) {
	ticket := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusInProgress, Visibility: domain.VisibilityDepartment,
	}
	svc, _ := fixture(nil, ticket)
	creator := &domain.User{ID: "creator", Role: domain.RoleUser, Active: true}

	_, err := svc.UpdateTicket(context.Background(), creator, "t1",
		access.TicketChange{AssigneeID: strptr("inactive")})
	if code := apperrors.ToDomainError(err).Code; code != "CONFLICT" {
		t.Fatalf("code = %s, want CONFLICT", code)
	}
}

func TestShareTicket(t *testing.T) {
	general := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusOpen, Visibility: domain.VisibilityDepartment,
	}
	private := &domain.Ticket{ID: "t2", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusOpen}
	private.SetVisibility(domain.VisibilityPrivate)

	svc, repo := fixture(nil, general, private)
	creator := &domain.User{ID: "creator", Role: domain.RoleUser, Active: true}

	if err := svc.ShareTicket(context.Background(), creator, "t1", []string{"agent"}, []string{"d2"}); err != nil {
		t.Fatalf("share: %v", err)
	}
	if len(repo.shares.users) != 1 || len(repo.shares.depts) != 1 {
		t.Fatalf("shares = %+v", repo.shares)
	}

	err := svc.ShareTicket(context.Background(), creator, "t2", []string{"agent"}, nil)
	if code := apperrors.ToDomainError(err).Code; code != "FORBIDDEN" {
		t.Fatalf("private share: code = %s, want FORBIDDEN", code)
	}
}

func TestAddComment(t *testing.T) {
	ticket := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		AssigneeID: strptr("agent"),
		Status:     domain.TicketStatusOpen, Visibility: domain.VisibilityDepartment,
	}
	svc, _, commentRepo, dispatcher := commentFixture(nil, ticket)
	author := &domain.User{ID: "creator", Username: "jdoe", FullName: "Jane Doe", Role: domain.RoleUser, Active: true}

	comment, err := svc.AddComment(context.Background(), author, "t1", "  have you tried turning it off and on again  ")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if comment.Body != "have you tried turning it off and on again" {
		t.Fatalf("body = %q, want trimmed", comment.Body)
	}
	if got := commentRepo.byTicket["t1"]; len(got) != 1 {
		t.Fatalf("stored comments = %d, want 1", len(got))
	}

	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventTicketCommented {
		t.Fatalf("published = %+v, want one ticket_commented event", dispatcher.published)
	}
	payload, ok := dispatcher.published[0].Payload.(events.TicketCommentedPayload)
	if !ok {
		t.Fatalf("payload type = %T", dispatcher.published[0].Payload)
	}
	if payload.AuthorName != "Jane Doe" {
		t.Fatalf("author name = %q", payload.AuthorName)
	}
	if payload.Preview != "have you tried turning it off ..." {
		t.Fatalf("preview = %q", payload.Preview)
	}
	if payload.AssigneeID == nil || *payload.AssigneeID != "agent" {
		t.Fatalf("assignee = %v", payload.AssigneeID)
	}
}

func TestAddCommentEmptyBody(t *testing.T) {
	ticket := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusOpen, Visibility: domain.VisibilityDepartment,
	}
	svc, _ := fixture(nil, ticket)
	author := &domain.User{ID: "creator", Role: domain.RoleUser, Active: true}

	_, err := svc.AddComment(context.Background(), author, "t1", "   ")
	if code := apperrors.ToDomainError(err).Code; code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}
}

func TestCommentsRequireViewGrant(t *testing.T) {
	ticket := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusOpen, Visibility: domain.VisibilityDepartment,
	}
	svc, _ := fixture(nil, ticket)
	outsider := &domain.User{ID: "x", Role: domain.RoleUser, DepartmentID: strptr("d2"), Active: true}

	_, err := svc.AddComment(context.Background(), outsider, "t1", "drive-by")
	if code := apperrors.ToDomainError(err).Code; code != "FORBIDDEN" {
		t.Fatalf("add: code = %s, want FORBIDDEN", code)
	}
	_, err = svc.ListComments(context.Background(), outsider, "t1")
	if code := apperrors.ToDomainError(err).Code; code != "FORBIDDEN" {
		t.Fatalf("list: code = %s, want FORBIDDEN", code)
	}
}

func TestListCommentsOrdered(t *testing.T) {
	ticket := &domain.Ticket{
		ID: "t1", CreatorID: "creator", DepartmentID: "d1",
		Status: domain.TicketStatusOpen, Visibility: domain.VisibilityDepartment,
	}
	svc, _, _, _ := commentFixture(nil, ticket)
	author := &domain.User{ID: "creator", Username: "jdoe", Role: domain.RoleUser, Active: true}

	for _, body := range []string{"first", "second"} {
		if _, err := svc.AddComment(context.Background(), author, "t1", body); err != nil {
			t.Fatalf("add %q: %v", body, err)
		}
	}
	comments, err := svc.ListComments(context.Background(), author, "t1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 2 || comments[0].Body != "first" || comments[1].Body != "second" {
		t.Fatalf("comments = %+v, want first then second", comments)
	}
}

func TestCommentPreviewTruncation(t *testing.T) {
	if got := commentPreview("short"); got != "short" {
		t.Fatalf("short preview = %q", got)
	}
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaab" // 31 runes
	if got := commentPreview(long); got != long[:30]+"..." {
		t.Fatalf("long preview = %q", got)
	}
}
