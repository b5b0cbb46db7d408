package identity

import (
	"context"
	"io"
	"log/slog"
	"time"

	"sharecast/internal/domain"
	models "sharecast/internal/domain/models/identity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// key builds the (principal, partition) map key the fakes index by.
func key(principalID, partitionID string) string {
	return principalID + "/" + partitionID
}

// fakeRoleRepo is an in-memory RoleAssignmentRepository.
type fakeRoleRepo struct {
	roles        map[string]models.RoleSet // principal id -> roles
	err          error
	createErr    error
	createCalls  int
	hasRoleCalls int
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[string]models.RoleSet)}
}

func (f *fakeRoleRepo) grant(principalID string, role models.Role) {
	if f.roles[principalID] == nil {
		f.roles[principalID] = models.RoleSet{}
	}
	f.roles[principalID][role] = true
}

func (f *fakeRoleRepo) HasRole(ctx context.Context, principalID string, role models.Role) (bool, error) {
	f.hasRoleCalls++
	if f.err != nil {
		return false, f.err
	}
	return f.roles[principalID].Has(role), nil
}

func (f *fakeRoleRepo) ListRoles(ctx context.Context, principalID string) (models.RoleSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	set := models.RoleSet{}
	for role := range f.roles[principalID] {
		set[role] = true
	}
	return set, nil
}

func (f *fakeRoleRepo) CreateIfAbsent(ctx context.Context, assignment *models.RoleAssignment) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.grant(assignment.PrincipalID, assignment.Role)
	return nil
}

// fakeSharerRepo is an in-memory SharerProfileRepository.
type fakeSharerRepo struct {
	byOwner   map[string]*models.SharerProfile // owner principal id -> profile
	err       error
	getCalls  int
	ownsCalls int
}

func newFakeSharerRepo() *fakeSharerRepo {
	return &fakeSharerRepo{byOwner: make(map[string]*models.SharerProfile)}
}

func (f *fakeSharerRepo) GetByOwner(ctx context.Context, principalID string) (*models.SharerProfile, error) {
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	profile, ok := f.byOwner[principalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

func (f *fakeSharerRepo) Owns(ctx context.Context, principalID, partitionID string) (bool, error) {
	f.ownsCalls++
	if f.err != nil {
		return false, f.err
	}
	profile, ok := f.byOwner[principalID]
	return ok && profile.PartitionID == partitionID, nil
}

func (f *fakeSharerRepo) Create(ctx context.Context, profile *models.SharerProfile) error {
	if f.err != nil {
		return f.err
	}
	f.byOwner[profile.OwnerPrincipalID] = profile
	return nil
}

// fakeExecutorRepo is an in-memory ExecutorLinkRepository. Links are
// returned from ListForPrincipal in insertion order; tests that care about
// the ordering contract insert in the expected order.
type fakeExecutorRepo struct {
	links       map[string][]models.ExecutorLink // principal id -> links
	err         error
	createErr   error
	listCalls   int
	createCalls int
}

func newFakeExecutorRepo() *fakeExecutorRepo {
	return &fakeExecutorRepo{links: make(map[string][]models.ExecutorLink)}
}

func (f *fakeExecutorRepo) ListForPrincipal(ctx context.Context, principalID string) ([]models.ExecutorLink, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.links[principalID], nil
}

func (f *fakeExecutorRepo) Exists(ctx context.Context, principalID, partitionID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, link := range f.links[principalID] {
		if link.PartitionID == partitionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeExecutorRepo) CreateIfAbsent(ctx context.Context, link *models.ExecutorLink) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.links[link.PrincipalID] {
		if existing.PartitionID == link.PartitionID {
			return nil
		}
	}
	f.links[link.PrincipalID] = append(f.links[link.PrincipalID], *link)
	return nil
}

// fakeListenerRepo is an in-memory ListenerLinkRepository.
type fakeListenerRepo struct {
	links       map[string]*models.ListenerLink // principal/partition -> link
	err         error
	createErr   error
	createCalls int
}

func newFakeListenerRepo() *fakeListenerRepo {
	return &fakeListenerRepo{links: make(map[string]*models.ListenerLink)}
}

func (f *fakeListenerRepo) Get(ctx context.Context, principalID, partitionID string) (*models.ListenerLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	link, ok := f.links[key(principalID, partitionID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return link, nil
}

func (f *fakeListenerRepo) CreateIfAbsent(ctx context.Context, link *models.ListenerLink) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	k := key(link.PrincipalID, link.PartitionID)
	if _, ok := f.links[k]; !ok {
		f.links[k] = link
	}
	return nil
}

func (f *fakeListenerRepo) SetAccess(ctx context.Context, principalID, partitionID string, hasAccess bool) error {
	if f.err != nil {
		return f.err
	}
	link, ok := f.links[key(principalID, partitionID)]
	if !ok {
		return domain.ErrNotFound
	}
	link.HasAccess = hasAccess
	return nil
}

// fakeProfileRepo is an in-memory ProfileRepository.
type fakeProfileRepo struct {
	profiles    map[string]*models.Profile
	createErr   error
	createCalls int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (f *fakeProfileRepo) GetByPrincipal(ctx context.Context, principalID string) (*models.Profile, error) {
	profile, ok := f.profiles[principalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) CreateIfAbsent(ctx context.Context, profile *models.Profile) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.profiles[profile.PrincipalID]; !ok {
		f.profiles[profile.PrincipalID] = profile
	}
	return nil
}

// fakeInvitationRepo is an in-memory InvitationRepository with the guarded
// transition semantics of the real one.
type fakeInvitationRepo struct {
	invitations map[string]*models.Invitation
	getErr      error
	createErr   error
	markErr     error
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[string]*models.Invitation)}
}

func (f *fakeInvitationRepo) add(inv *models.Invitation) {
	f.invitations[inv.ID] = inv
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	inv, ok := f.invitations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInvitationRepo) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, inv := range f.invitations {
		if inv.Token == token {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) Create(ctx context.Context, invitation *models.Invitation) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.invitations[invitation.ID]; ok {
		return domain.ErrConflict
	}
	copied := *invitation
	f.invitations[invitation.ID] = &copied
	return nil
}

func (f *fakeInvitationRepo) MarkAccepted(ctx context.Context, id string, acceptedAt time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	inv, ok := f.invitations[id]
	if !ok || inv.Status != models.InvitationPending {
		return domain.ErrNotFound
	}
	inv.Status = models.InvitationAccepted
	inv.AcceptedAt = &acceptedAt
	return nil
}

func (f *fakeInvitationRepo) MarkRevoked(ctx context.Context, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	inv, ok := f.invitations[id]
	if !ok || inv.Status != models.InvitationPending {
		return domain.ErrNotFound
	}
	inv.Status = models.InvitationRevoked
	return nil
}

// fakeBypassReader is an in-memory privileged read path.
type fakeBypassReader struct {
	sharerProfiles map[string]*models.SharerProfile
	executorLinks  map[string][]models.ExecutorLink
	sharerErr      error
	executorErr    error
	sharerCalls    int
	executorCalls  int
}

func newFakeBypassReader() *fakeBypassReader {
	return &fakeBypassReader{
		sharerProfiles: make(map[string]*models.SharerProfile),
		executorLinks:  make(map[string][]models.ExecutorLink),
	}
}

func (f *fakeBypassReader) SharerProfileByOwner(ctx context.Context, principalID string) (*models.SharerProfile, error) {
	f.sharerCalls++
	if f.sharerErr != nil {
		return nil, f.sharerErr
	}
	profile, ok := f.sharerProfiles[principalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

func (f *fakeBypassReader) ExecutorLinksFor(ctx context.Context, principalID string) ([]models.ExecutorLink, error) {
	f.executorCalls++
	if f.executorErr != nil {
		return nil, f.executorErr
	}
	return f.executorLinks[principalID], nil
}

// fakeGate is a canned AccessGate keyed by (principal, partition).
type fakeGate struct {
	allowed map[string]bool
	calls   int
}

func newFakeGate() *fakeGate {
	return &fakeGate{allowed: make(map[string]bool)}
}

func (f *fakeGate) allow(principalID, partitionID string) {
	f.allowed[key(principalID, partitionID)] = true
}

func (f *fakeGate) HasAccess(ctx context.Context, principal models.Principal, partitionID string) bool {
	f.calls++
	return f.allowed[key(principal.ID, partitionID)]
}

// fakeProcedures is an in-memory ProvisioningProcedures. Each procedure can
// be forced to fail so fallback behavior is observable.
type fakeProcedures struct {
	profileErr  error
	roleErr     error
	executorErr error
	listenerErr error
	acceptErr   error

	profileCalls  int
	roleCalls     int
	executorCalls int
	listenerCalls int
	acceptCalls   int

	acceptedIDs []string
}

func (f *fakeProcedures) EnsureProfile(ctx context.Context, profile *models.Profile) error {
	f.profileCalls++
	return f.profileErr
}

func (f *fakeProcedures) AssignRole(ctx context.Context, principalID string, role models.Role) error {
	f.roleCalls++
	return f.roleErr
}

func (f *fakeProcedures) GrantExecutorLink(ctx context.Context, principalID, partitionID string) error {
	f.executorCalls++
	return f.executorErr
}

func (f *fakeProcedures) GrantListenerLink(ctx context.Context, principalID, partitionID string) error {
	f.listenerCalls++
	return f.listenerErr
}

func (f *fakeProcedures) AcceptInvitation(ctx context.Context, id string, acceptedAt time.Time) error {
	f.acceptCalls++
	if f.acceptErr != nil {
		return f.acceptErr
	}
	f.acceptedIDs = append(f.acceptedIDs, id)
	return nil
}
