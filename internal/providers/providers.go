package providers

import (
	"context"

	"canvas-sync/internal/domain"
)

// Catalog is the remote learning-management catalog the synchronizer walks.
// Implementations return typed values or an error; they never retry on their own.
type Catalog interface {
	ListCourses(ctx context.Context, onlyFavorites bool) ([]domain.Course, error)
	ListFolders(ctx context.Context, courseID int64) ([]domain.Folder, error)
	ListModules(ctx context.Context, courseID int64) ([]domain.Module, error)
	ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]domain.ModuleItem, error)
	GetFile(ctx context.Context, courseID, fileID int64) (domain.FileRecord, error)
	GetFolder(ctx context.Context, courseID, folderID int64) (domain.Folder, error)
	ListFilesInFolder(ctx context.Context, folderID int64) ([]domain.FileRecord, error)
}
