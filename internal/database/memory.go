package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"shoot-workflow-backend/internal/models"
)

type folderKey struct {
	shootID  uuid.UUID
	kind     models.FolderType
	category models.ServiceCategory
}

type memState struct {
	services   map[uuid.UUID]models.Service
	shoots     map[uuid.UUID]models.Shoot
	shootOrder []uuid.UUID
	files      map[uuid.UUID]models.ShootFile
	fileOrder  []uuid.UUID
	folders    map[folderKey]models.FolderMapping
	logs       []models.WorkflowLog
	tokens     map[string]models.OAuthToken
}

func newMemState() *memState {
	return &memState{
		services: make(map[uuid.UUID]models.Service),
		shoots:   make(map[uuid.UUID]models.Shoot),
		files:    make(map[uuid.UUID]models.ShootFile),
		folders:  make(map[folderKey]models.FolderMapping),
		tokens:   make(map[string]models.OAuthToken),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.services {
		c.services[k] = v
	}
	for k, v := range s.shoots {
		c.shoots[k] = v
	}
	for k, v := range s.files {
		c.files[k] = v
	}
	for k, v := range s.folders {
		c.folders[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	c.shootOrder = append([]uuid.UUID(nil), s.shootOrder...)
	c.fileOrder = append([]uuid.UUID(nil), s.fileOrder...)
	c.logs = append([]models.WorkflowLog(nil), s.logs...)
	return c
}

// MemoryStore is an in-process Store used when no database is configured and
// in tests. A transaction holds the store mutex for its whole duration, which
// serializes every unit of work, and restores a snapshot if it fails.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState(), now: time.Now}
}

// AddService seeds the service catalogue.
func (m *MemoryStore) AddService(svc models.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.services[svc.ID] = svc
}

func (m *MemoryStore) repo() *memRepo {
	return &memRepo{state: m.state, now: m.now}
}

func (m *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := m.state.clone()
	if err := fn(ctx, m.repo()); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().GetService(ctx, id)
}

func (m *MemoryStore) CreateShoot(ctx context.Context, s *models.Shoot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().CreateShoot(ctx, s)
}

func (m *MemoryStore) GetShoot(ctx context.Context, id uuid.UUID) (*models.Shoot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().GetShoot(ctx, id)
}

func (m *MemoryStore) LockShoot(ctx context.Context, id uuid.UUID) (*models.Shoot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().LockShoot(ctx, id)
}

func (m *MemoryStore) ListShoots(ctx context.Context, filter ShootFilter) ([]models.Shoot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().ListShoots(ctx, filter)
}

func (m *MemoryStore) UpdateShootWorkflow(ctx context.Context, s *models.Shoot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().UpdateShootWorkflow(ctx, s)
}

func (m *MemoryStore) UpdateShootNotes(ctx context.Context, id uuid.UUID, notes map[models.NoteField]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().UpdateShootNotes(ctx, id, notes)
}

func (m *MemoryStore) CreateFile(ctx context.Context, f *models.ShootFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().CreateFile(ctx, f)
}

func (m *MemoryStore) GetFile(ctx context.Context, shootID, fileID uuid.UUID) (*models.ShootFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().GetFile(ctx, shootID, fileID)
}

func (m *MemoryStore) ListFiles(ctx context.Context, shootID uuid.UUID) ([]models.ShootFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().ListFiles(ctx, shootID)
}

func (m *MemoryStore) UpdateFile(ctx context.Context, f *models.ShootFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().UpdateFile(ctx, f)
}

func (m *MemoryStore) CountFilesByStage(ctx context.Context, shootID uuid.UUID) (models.StageCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().CountFilesByStage(ctx, shootID)
}

func (m *MemoryStore) GetFolder(ctx context.Context, shootID uuid.UUID, folderType models.FolderType, category models.ServiceCategory) (*models.FolderMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().GetFolder(ctx, shootID, folderType, category)
}

func (m *MemoryStore) ListFolders(ctx context.Context, shootID uuid.UUID) ([]models.FolderMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().ListFolders(ctx, shootID)
}

func (m *MemoryStore) CreateFolder(ctx context.Context, f *models.FolderMapping) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().CreateFolder(ctx, f)
}

func (m *MemoryStore) AppendLog(ctx context.Context, entry *models.WorkflowLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().AppendLog(ctx, entry)
}

func (m *MemoryStore) ListLogs(ctx context.Context, shootID uuid.UUID, limit int) ([]models.WorkflowLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().ListLogs(ctx, shootID, limit)
}

func (m *MemoryStore) GetOAuthToken(ctx context.Context, provider string) (*models.OAuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().GetOAuthToken(ctx, provider)
}

func (m *MemoryStore) SaveOAuthToken(ctx context.Context, tok *models.OAuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo().SaveOAuthToken(ctx, tok)
}

// memRepo runs queries against the state without locking; the caller holds
// the store mutex.
type memRepo struct {
	state *memState
	now   func() time.Time
}

func (r *memRepo) GetService(_ context.Context, id uuid.UUID) (*models.Service, error) {
	svc, ok := r.state.services[id]
	if !ok {
		return nil, fmt.Errorf("service: %w", ErrNotFound)
	}
	return &svc, nil
}

func (r *memRepo) CreateShoot(_ context.Context, s *models.Shoot) error {
	if _, exists := r.state.shoots[s.ID]; exists {
		return fmt.Errorf("failed to create shoot: duplicate id %s", s.ID)
	}
	if _, ok := r.state.services[s.ServiceID]; !ok {
		return fmt.Errorf("failed to create shoot: unknown service %s", s.ServiceID)
	}
	now := r.now()
	s.CreatedAt, s.UpdatedAt = now, now
	r.state.shoots[s.ID] = *s
	r.state.shootOrder = append(r.state.shootOrder, s.ID)
	return nil
}

func (r *memRepo) withServiceName(s models.Shoot) *models.Shoot {
	if svc, ok := r.state.services[s.ServiceID]; ok {
		s.ServiceName = svc.Name
	}
	return &s
}

func (r *memRepo) GetShoot(_ context.Context, id uuid.UUID) (*models.Shoot, error) {
	s, ok := r.state.shoots[id]
	if !ok {
		return nil, fmt.Errorf("shoot: %w", ErrNotFound)
	}
	return r.withServiceName(s), nil
}

func (r *memRepo) LockShoot(ctx context.Context, id uuid.UUID) (*models.Shoot, error) {
	return r.GetShoot(ctx, id)
}

func (r *memRepo) ListShoots(_ context.Context, filter ShootFilter) ([]models.Shoot, error) {
	var out []models.Shoot
	for i := len(r.state.shootOrder) - 1; i >= 0; i-- {
		s := r.state.shoots[r.state.shootOrder[i]]
		if filter.WorkflowStatus != "" && s.WorkflowStatus != filter.WorkflowStatus {
			continue
		}
		if filter.ClientID.Valid && s.ClientID != filter.ClientID.UUID {
			continue
		}
		out = append(out, *r.withServiceName(s))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) UpdateShootWorkflow(_ context.Context, s *models.Shoot) error {
	cur, ok := r.state.shoots[s.ID]
	if !ok {
		return fmt.Errorf("shoot: %w", ErrNotFound)
	}
	cur.WorkflowStatus = s.WorkflowStatus
	cur.PhotosUploadedAt = s.PhotosUploadedAt
	cur.EditingCompletedAt = s.EditingCompletedAt
	cur.AdminVerifiedAt = s.AdminVerifiedAt
	cur.VerifiedBy = s.VerifiedBy
	cur.UpdatedAt = r.now()
	s.UpdatedAt = cur.UpdatedAt
	r.state.shoots[s.ID] = cur
	return nil
}

func (r *memRepo) UpdateShootNotes(_ context.Context, id uuid.UUID, notes map[models.NoteField]string) error {
	cur, ok := r.state.shoots[id]
	if !ok {
		return fmt.Errorf("shoot: %w", ErrNotFound)
	}
	for field, value := range notes {
		v := models.NullString(value)
		switch field {
		case models.NoteShoot:
			cur.ShootNotes = v
		case models.NoteCompany:
			cur.CompanyNotes = v
		case models.NotePhotographer:
			cur.PhotographerNotes = v
		case models.NoteEditor:
			cur.EditorNotes = v
		default:
			return fmt.Errorf("unknown note field %q", field)
		}
	}
	cur.UpdatedAt = r.now()
	r.state.shoots[id] = cur
	return nil
}

func (r *memRepo) CreateFile(_ context.Context, f *models.ShootFile) error {
	if _, ok := r.state.shoots[f.ShootID]; !ok {
		return fmt.Errorf("failed to create file: shoot %s: %w", f.ShootID, ErrNotFound)
	}
	if _, exists := r.state.files[f.ID]; exists {
		return fmt.Errorf("failed to create file: duplicate id %s", f.ID)
	}
	now := r.now()
	f.CreatedAt, f.UpdatedAt = now, now
	r.state.files[f.ID] = *f
	r.state.fileOrder = append(r.state.fileOrder, f.ID)
	return nil
}

func (r *memRepo) GetFile(_ context.Context, shootID, fileID uuid.UUID) (*models.ShootFile, error) {
	f, ok := r.state.files[fileID]
	if !ok || f.ShootID != shootID {
		return nil, fmt.Errorf("file: %w", ErrNotFound)
	}
	return &f, nil
}

func (r *memRepo) ListFiles(_ context.Context, shootID uuid.UUID) ([]models.ShootFile, error) {
	var out []models.ShootFile
	for _, id := range r.state.fileOrder {
		if f := r.state.files[id]; f.ShootID == shootID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateFile(_ context.Context, f *models.ShootFile) error {
	cur, ok := r.state.files[f.ID]
	if !ok {
		return fmt.Errorf("file: %w", ErrNotFound)
	}
	cur.LocalPath = f.LocalPath
	cur.RemotePath = f.RemotePath
	cur.RemoteID = f.RemoteID
	cur.WorkflowStage = f.WorkflowStage
	cur.MovedToCompletedAt = f.MovedToCompletedAt
	cur.VerifiedAt = f.VerifiedAt
	cur.VerifiedBy = f.VerifiedBy
	cur.VerificationNotes = f.VerificationNotes
	cur.UpdatedAt = r.now()
	f.UpdatedAt = cur.UpdatedAt
	r.state.files[f.ID] = cur
	return nil
}

func (r *memRepo) CountFilesByStage(_ context.Context, shootID uuid.UUID) (models.StageCounts, error) {
	counts := make(models.StageCounts)
	for _, f := range r.state.files {
		if f.ShootID == shootID {
			counts[f.WorkflowStage]++
		}
	}
	return counts, nil
}

func (r *memRepo) GetFolder(_ context.Context, shootID uuid.UUID, folderType models.FolderType, category models.ServiceCategory) (*models.FolderMapping, error) {
	m, ok := r.state.folders[folderKey{shootID, folderType, category}]
	if !ok {
		return nil, fmt.Errorf("folder: %w", ErrNotFound)
	}
	return &m, nil
}

func (r *memRepo) ListFolders(_ context.Context, shootID uuid.UUID) ([]models.FolderMapping, error) {
	var out []models.FolderMapping
	for k, m := range r.state.folders {
		if k.shootID == shootID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceCategory != out[j].ServiceCategory {
			return out[i].ServiceCategory < out[j].ServiceCategory
		}
		return out[i].FolderType < out[j].FolderType
	})
	return out, nil
}

func (r *memRepo) CreateFolder(_ context.Context, m *models.FolderMapping) (bool, error) {
	if _, ok := r.state.shoots[m.ShootID]; !ok {
		return false, fmt.Errorf("failed to create folder mapping: shoot %s: %w", m.ShootID, ErrNotFound)
	}
	key := folderKey{m.ShootID, m.FolderType, m.ServiceCategory}
	if _, exists := r.state.folders[key]; exists {
		return false, nil
	}
	m.CreatedAt = r.now()
	r.state.folders[key] = *m
	return true, nil
}

func (r *memRepo) AppendLog(_ context.Context, entry *models.WorkflowLog) error {
	if _, ok := r.state.shoots[entry.ShootID]; !ok {
		return fmt.Errorf("failed to append workflow log: shoot %s: %w", entry.ShootID, ErrNotFound)
	}
	entry.CreatedAt = r.now()
	r.state.logs = append(r.state.logs, *entry)
	return nil
}

func (r *memRepo) ListLogs(_ context.Context, shootID uuid.UUID, limit int) ([]models.WorkflowLog, error) {
	var out []models.WorkflowLog
	for i := len(r.state.logs) - 1; i >= 0; i-- {
		if r.state.logs[i].ShootID != shootID {
			continue
		}
		out = append(out, r.state.logs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) GetOAuthToken(_ context.Context, provider string) (*models.OAuthToken, error) {
	tok, ok := r.state.tokens[provider]
	if !ok {
		return nil, fmt.Errorf("oauth token: %w", ErrNotFound)
	}
	return &tok, nil
}

func (r *memRepo) SaveOAuthToken(_ context.Context, tok *models.OAuthToken) error {
	saved := *tok
	if saved.RefreshToken == "" {
		if prev, ok := r.state.tokens[tok.Provider]; ok {
			saved.RefreshToken = prev.RefreshToken
		}
	}
	saved.UpdatedAt = r.now()
	tok.UpdatedAt = saved.UpdatedAt
	r.state.tokens[tok.Provider] = saved
	return nil
}
