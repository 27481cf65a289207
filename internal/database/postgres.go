package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"shoot-workflow-backend/internal/models"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DatabaseClient is the Postgres Store. Inside InTx it is re-bound to the
// open transaction so the same query code serves both paths.
type DatabaseClient struct {
	db *sql.DB
	q  querier
	tx bool
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db, q: db}, nil
}

// DB exposes the pool for the migrator.
func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	if d.tx {
		return fn(ctx, d)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, &DatabaseClient{db: d.db, q: tx, tx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func (d *DatabaseClient) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	err := d.q.QueryRowContext(ctx, `SELECT id, name FROM services WHERE id = $1`, id).
		Scan(&svc.ID, &svc.Name)
	if err != nil {
		return nil, notFound(err, "service")
	}
	return &svc, nil
}

const shootSelect = `
	SELECT s.id, s.client_id, s.photographer_id, s.service_id, COALESCE(sv.name, ''),
		s.service_category, s.address, s.city, s.state, s.zip,
		s.scheduled_date, s.scheduled_time,
		s.base_quote, s.tax_amount, s.total_quote, s.payment_status,
		s.status, s.workflow_status,
		s.shoot_notes, s.company_notes, s.photographer_notes, s.editor_notes,
		s.photos_uploaded_at, s.editing_completed_at, s.admin_verified_at, s.verified_by,
		s.created_by, s.created_at, s.updated_at
	FROM shoots s
	LEFT JOIN services sv ON sv.id = s.service_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShoot(row rowScanner) (*models.Shoot, error) {
	var s models.Shoot
	err := row.Scan(
		&s.ID, &s.ClientID, &s.PhotographerID, &s.ServiceID, &s.ServiceName,
		&s.ServiceCategory, &s.Address, &s.City, &s.State, &s.Zip,
		&s.ScheduledDate, &s.ScheduledTime,
		&s.BaseQuote, &s.TaxAmount, &s.TotalQuote, &s.PaymentStatus,
		&s.Status, &s.WorkflowStatus,
		&s.ShootNotes, &s.CompanyNotes, &s.PhotographerNotes, &s.EditorNotes,
		&s.PhotosUploadedAt, &s.EditingCompletedAt, &s.AdminVerifiedAt, &s.VerifiedBy,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *DatabaseClient) CreateShoot(ctx context.Context, s *models.Shoot) error {
	err := d.q.QueryRowContext(ctx, `
		INSERT INTO shoots (
			id, client_id, photographer_id, service_id, service_category,
			address, city, state, zip, scheduled_date, scheduled_time,
			base_quote, tax_amount, total_quote, payment_status,
			status, workflow_status, shoot_notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at
	`, s.ID, s.ClientID, s.PhotographerID, s.ServiceID, s.ServiceCategory,
		s.Address, s.City, s.State, s.Zip, s.ScheduledDate, s.ScheduledTime,
		s.BaseQuote, s.TaxAmount, s.TotalQuote, s.PaymentStatus,
		s.Status, string(s.WorkflowStatus), s.ShootNotes, s.CreatedBy,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shoot: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetShoot(ctx context.Context, id uuid.UUID) (*models.Shoot, error) {
	s, err := scanShoot(d.q.QueryRowContext(ctx, shootSelect+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "shoot")
	}
	return s, nil
}

func (d *DatabaseClient) LockShoot(ctx context.Context, id uuid.UUID) (*models.Shoot, error) {
	s, err := scanShoot(d.q.QueryRowContext(ctx, shootSelect+` WHERE s.id = $1 FOR UPDATE OF s`, id))
	if err != nil {
		return nil, notFound(err, "shoot")
	}
	return s, nil
}

func (d *DatabaseClient) ListShoots(ctx context.Context, filter ShootFilter) ([]models.Shoot, error) {
	var (
		conds []string
		args  []any
	)
	if filter.WorkflowStatus != "" {
		args = append(args, string(filter.WorkflowStatus))
		conds = append(conds, fmt.Sprintf("s.workflow_status = $%d", len(args)))
	}
	if filter.ClientID.Valid {
		args = append(args, filter.ClientID.UUID)
		conds = append(conds, fmt.Sprintf("s.client_id = $%d", len(args)))
	}

	query := shootSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shoots: %w", err)
	}
	defer rows.Close()

	var shoots []models.Shoot
	for rows.Next() {
		s, err := scanShoot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shoot: %w", err)
		}
		shoots = append(shoots, *s)
	}
	return shoots, rows.Err()
}

func (d *DatabaseClient) UpdateShootWorkflow(ctx context.Context, s *models.Shoot) error {
	err := d.q.QueryRowContext(ctx, `
		UPDATE shoots
		SET workflow_status = $1, photos_uploaded_at = $2, editing_completed_at = $3,
			admin_verified_at = $4, verified_by = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`, string(s.WorkflowStatus), s.PhotosUploadedAt, s.EditingCompletedAt,
		s.AdminVerifiedAt, s.VerifiedBy, s.ID).Scan(&s.UpdatedAt)
	if err != nil {
		return notFound(err, "shoot")
	}
	return nil
}

func (d *DatabaseClient) UpdateShootNotes(ctx context.Context, id uuid.UUID, notes map[models.NoteField]string) error {
	if len(notes) == 0 {
		return nil
	}

	fields := make([]string, 0, len(notes))
	for f := range notes {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		switch models.NoteField(f) {
		case models.NoteShoot, models.NoteCompany, models.NotePhotographer, models.NoteEditor:
		default:
			return fmt.Errorf("unknown note field %q", f)
		}
		args = append(args, notes[models.NoteField(f)])
		sets = append(sets, fmt.Sprintf("%s = $%d", f, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	res, err := d.q.ExecContext(ctx,
		fmt.Sprintf("UPDATE shoots SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update notes: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("shoot: %w", ErrNotFound)
	}
	return nil
}

const fileSelect = `
	SELECT id, shoot_id, filename, stored_filename, local_path, remote_path, remote_id,
		service_category, mime_type, file_size, uploaded_by, workflow_stage,
		moved_to_completed_at, verified_at, verified_by, verification_notes,
		created_at, updated_at
	FROM shoot_files`

func scanFile(row rowScanner) (*models.ShootFile, error) {
	var f models.ShootFile
	err := row.Scan(
		&f.ID, &f.ShootID, &f.Filename, &f.StoredFilename, &f.LocalPath, &f.RemotePath, &f.RemoteID,
		&f.ServiceCategory, &f.MimeType, &f.FileSize, &f.UploadedBy, &f.WorkflowStage,
		&f.MovedToCompletedAt, &f.VerifiedAt, &f.VerifiedBy, &f.VerificationNotes,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (d *DatabaseClient) CreateFile(ctx context.Context, f *models.ShootFile) error {
	err := d.q.QueryRowContext(ctx, `
		INSERT INTO shoot_files (
			id, shoot_id, filename, stored_filename, local_path, remote_path, remote_id,
			service_category, mime_type, file_size, uploaded_by, workflow_stage, moved_to_completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`, f.ID, f.ShootID, f.Filename, f.StoredFilename, f.LocalPath, f.RemotePath, f.RemoteID,
		string(f.ServiceCategory), f.MimeType, f.FileSize, f.UploadedBy, string(f.WorkflowStage),
		f.MovedToCompletedAt,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetFile(ctx context.Context, shootID, fileID uuid.UUID) (*models.ShootFile, error) {
	f, err := scanFile(d.q.QueryRowContext(ctx, fileSelect+` WHERE id = $1 AND shoot_id = $2`, fileID, shootID))
	if err != nil {
		return nil, notFound(err, "file")
	}
	return f, nil
}

func (d *DatabaseClient) ListFiles(ctx context.Context, shootID uuid.UUID) ([]models.ShootFile, error) {
	rows, err := d.q.QueryContext(ctx, fileSelect+` WHERE shoot_id = $1 ORDER BY created_at`, shootID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []models.ShootFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

func (d *DatabaseClient) UpdateFile(ctx context.Context, f *models.ShootFile) error {
	err := d.q.QueryRowContext(ctx, `
		UPDATE shoot_files
		SET local_path = $1, remote_path = $2, remote_id = $3, workflow_stage = $4,
			moved_to_completed_at = $5, verified_at = $6, verified_by = $7,
			verification_notes = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`, f.LocalPath, f.RemotePath, f.RemoteID, string(f.WorkflowStage),
		f.MovedToCompletedAt, f.VerifiedAt, f.VerifiedBy, f.VerificationNotes, f.ID,
	).Scan(&f.UpdatedAt)
	if err != nil {
		return notFound(err, "file")
	}
	return nil
}

func (d *DatabaseClient) CountFilesByStage(ctx context.Context, shootID uuid.UUID) (models.StageCounts, error) {
	rows, err := d.q.QueryContext(ctx, `
		SELECT workflow_stage, COUNT(*)
		FROM shoot_files
		WHERE shoot_id = $1
		GROUP BY workflow_stage
	`, shootID)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	defer rows.Close()

	counts := make(models.StageCounts)
	for rows.Next() {
		var (
			stage models.FileStage
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, fmt.Errorf("failed to scan file count: %w", err)
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}

const folderSelect = `SELECT id, shoot_id, folder_type, service_category, remote_path, created_at FROM dropbox_folders`

func scanFolder(row rowScanner) (*models.FolderMapping, error) {
	var m models.FolderMapping
	if err := row.Scan(&m.ID, &m.ShootID, &m.FolderType, &m.ServiceCategory, &m.RemotePath, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *DatabaseClient) GetFolder(ctx context.Context, shootID uuid.UUID, folderType models.FolderType, category models.ServiceCategory) (*models.FolderMapping, error) {
	m, err := scanFolder(d.q.QueryRowContext(ctx,
		folderSelect+` WHERE shoot_id = $1 AND folder_type = $2 AND service_category = $3`,
		shootID, string(folderType), string(category),
	))
	if err != nil {
		return nil, notFound(err, "folder")
	}
	return m, nil
}

func (d *DatabaseClient) ListFolders(ctx context.Context, shootID uuid.UUID) ([]models.FolderMapping, error) {
	rows, err := d.q.QueryContext(ctx, folderSelect+` WHERE shoot_id = $1 ORDER BY service_category, folder_type`, shootID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.FolderMapping
	for rows.Next() {
		m, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, *m)
	}
	return folders, rows.Err()
}

func (d *DatabaseClient) CreateFolder(ctx context.Context, m *models.FolderMapping) (bool, error) {
	res, err := d.q.ExecContext(ctx, `
		INSERT INTO dropbox_folders (id, shoot_id, folder_type, service_category, remote_path)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (shoot_id, folder_type, service_category) DO NOTHING
	`, m.ID, m.ShootID, string(m.FolderType), string(m.ServiceCategory), m.RemotePath)
	if err != nil {
		return false, fmt.Errorf("failed to create folder mapping: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *DatabaseClient) AppendLog(ctx context.Context, entry *models.WorkflowLog) error {
	metadata := "{}"
	if len(entry.Metadata) > 0 {
		metadata = string(entry.Metadata)
	}
	err := d.q.QueryRowContext(ctx, `
		INSERT INTO workflow_logs (id, shoot_id, user_id, action, details, metadata)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		RETURNING created_at
	`, entry.ID, entry.ShootID, entry.UserID, entry.Action, entry.Details, metadata).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append workflow log: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListLogs(ctx context.Context, shootID uuid.UUID, limit int) ([]models.WorkflowLog, error) {
	query := `
		SELECT id, shoot_id, user_id, action, COALESCE(details, ''), metadata, created_at
		FROM workflow_logs
		WHERE shoot_id = $1
		ORDER BY created_at DESC, seq DESC`
	args := []any{shootID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := d.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow logs: %w", err)
	}
	defer rows.Close()

	var logs []models.WorkflowLog
	for rows.Next() {
		var (
			entry    models.WorkflowLog
			metadata []byte
		)
		if err := rows.Scan(&entry.ID, &entry.ShootID, &entry.UserID, &entry.Action, &entry.Details, &metadata, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow log: %w", err)
		}
		entry.Metadata = metadata
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (d *DatabaseClient) GetOAuthToken(ctx context.Context, provider string) (*models.OAuthToken, error) {
	var (
		tok       models.OAuthToken
		expiresAt sql.NullTime
	)
	err := d.q.QueryRowContext(ctx, `
		SELECT provider, access_token, refresh_token, expires_at, updated_at
		FROM oauth_tokens
		WHERE provider = $1
	`, provider).Scan(&tok.Provider, &tok.AccessToken, &tok.RefreshToken, &expiresAt, &tok.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "oauth token")
	}
	if expiresAt.Valid {
		tok.ExpiresAt = &expiresAt.Time
	}
	return &tok, nil
}

func (d *DatabaseClient) SaveOAuthToken(ctx context.Context, tok *models.OAuthToken) error {
	var expiresAt sql.NullTime
	if tok.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *tok.ExpiresAt, Valid: true}
	}
	err := d.q.QueryRowContext(ctx, `
		INSERT INTO oauth_tokens (provider, access_token, refresh_token, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (provider) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			refresh_token = CASE WHEN EXCLUDED.refresh_token = '' THEN oauth_tokens.refresh_token ELSE EXCLUDED.refresh_token END,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING updated_at
	`, tok.Provider, tok.AccessToken, tok.RefreshToken, expiresAt).Scan(&tok.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save oauth token: %w", err)
	}
	return nil
}
