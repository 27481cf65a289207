package workflow

import (
	"context"
	"errors"
	"log"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"shoot-workflow-backend/internal/blobstore"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/metrics"
	"shoot-workflow-backend/internal/models"
)

const (
	DefaultFolderRoot = "/RealEstatePhotos"
	maxSlugLength     = 100
	folderDateLayout  = "2006-01-02"
)

var (
	slugDisallowed = regexp.MustCompile(`[^A-Za-z0-9\s-]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugDashes     = regexp.MustCompile(`-+`)

	errNoScheduledDate = errors.New("shoot has no scheduled date")
)

// DeriveAddressSlug builds the address part of a shoot folder name, e.g.
// "123-Main-St-Austin-TX".
func DeriveAddressSlug(shoot *models.Shoot) string {
	var parts []string
	for _, p := range []string{shoot.Address, shoot.City, shoot.State} {
		p = strings.TrimSpace(slugDisallowed.ReplaceAllString(p, ""))
		p = slugSpaces.ReplaceAllString(p, "-")
		if p != "" {
			parts = append(parts, p)
		}
	}

	slug := slugDashes.ReplaceAllString(strings.Join(parts, "-"), "-")
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return strings.Trim(slug, "-")
}

// ResolveServiceCategories returns the categories folders are provisioned
// for. It is never empty.
func ResolveServiceCategories(shoot *models.Shoot) []models.ServiceCategory {
	if shoot.ServiceCategory.Valid {
		if c, ok := models.ParseServiceCategory(shoot.ServiceCategory.String); ok {
			return []models.ServiceCategory{c}
		}
	}

	name := strings.ToLower(shoot.ServiceName)
	switch {
	case strings.Contains(name, "iguide"):
		return []models.ServiceCategory{models.CategoryIGuide}
	case strings.Contains(name, "video"):
		return []models.ServiceCategory{models.CategoryVideo}
	}
	return []models.ServiceCategory{models.CategoryPhoto}
}

// Provisioner creates the ToDo and Completed folders of a shoot in the blob
// store and records them as folder mappings.
type Provisioner struct {
	blobs blobOps
	root  string
}

func NewProvisioner(store blobstore.Store, root string, timeout time.Duration, m *metrics.Metrics) *Provisioner {
	if root == "" {
		root = DefaultFolderRoot
	}
	return &Provisioner{
		blobs: newBlobOps(store, timeout, m),
		root:  "/" + strings.Trim(root, "/"),
	}
}

// FolderPath is {root}/{ToDo|Completed}/{date}/{prefix}-{slug}.
func (p *Provisioner) FolderPath(shoot *models.Shoot, folderType models.FolderType, category models.ServiceCategory) (string, error) {
	if !shoot.ScheduledDate.Valid {
		return "", errNoScheduledDate
	}

	top := "ToDo"
	if folderType == models.FolderCompleted {
		top = "Completed"
	}
	date := shoot.ScheduledDate.Time.Format(folderDateLayout)
	return path.Join(p.root, top, date, category.Prefix()+"-"+DeriveAddressSlug(shoot)), nil
}

// EnsureShootFolders provisions every folder of the shoot that has no
// mapping yet. A failure for one folder does not stop the others; the
// mappings that exist afterwards are returned together with the joined
// errors.
func (p *Provisioner) EnsureShootFolders(ctx context.Context, repo database.Repository, shoot *models.Shoot) ([]models.FolderMapping, error) {
	var (
		mappings []models.FolderMapping
		errs     []error
	)
	for _, category := range ResolveServiceCategories(shoot) {
		for _, folderType := range []models.FolderType{models.FolderTodo, models.FolderCompleted} {
			m, err := p.ensure(ctx, repo, shoot, folderType, category)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			mappings = append(mappings, *m)
		}
	}
	return mappings, errors.Join(errs...)
}

// ResolveFolder returns the mapping for the folder, provisioning it when it
// is missing.
func (p *Provisioner) ResolveFolder(ctx context.Context, repo database.Repository, shoot *models.Shoot, folderType models.FolderType, category models.ServiceCategory) (*models.FolderMapping, error) {
	m, err := repo.GetFolder(ctx, shoot.ID, folderType, category)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, persistErr("get folder mapping", err)
	}

	log.Printf("workflow: folder mapping missing, provisioning shoot_id=%s type=%s category=%s", shoot.ID, folderType, category)
	return p.ensure(ctx, repo, shoot, folderType, category)
}

func (p *Provisioner) ensure(ctx context.Context, repo database.Repository, shoot *models.Shoot, folderType models.FolderType, category models.ServiceCategory) (*models.FolderMapping, error) {
	existing, err := repo.GetFolder(ctx, shoot.ID, folderType, category)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, persistErr("get folder mapping", err)
	}

	fail := func(err error) error {
		return &FolderResolutionError{ShootID: shoot.ID, FolderType: folderType, Category: category, Err: err}
	}

	folderPath, err := p.FolderPath(shoot, folderType, category)
	if err != nil {
		return nil, fail(err)
	}

	res, err := p.blobs.createFolder(ctx, folderPath)
	if err != nil {
		return nil, fail(err)
	}
	log.Printf("workflow: folder %s path=%s", res, folderPath)

	m := &models.FolderMapping{
		ID:              uuid.New(),
		ShootID:         shoot.ID,
		FolderType:      folderType,
		ServiceCategory: category,
		RemotePath:      folderPath,
	}
	created, err := repo.CreateFolder(ctx, m)
	if err != nil {
		return nil, fail(err)
	}
	if !created {
		// Another request recorded the same folder first.
		return repo.GetFolder(ctx, shoot.ID, folderType, category)
	}
	return m, nil
}
