// Package sync mirrors a remote course catalog into a local directory tree.
package sync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"canvas-sync/internal/concurrency"
	"canvas-sync/internal/domain"
	"canvas-sync/internal/download"
	"canvas-sync/internal/links"
	"canvas-sync/internal/logging"
	"canvas-sync/internal/providers"
	"canvas-sync/internal/report"
	"canvas-sync/internal/slug"
)

// Fetcher downloads one file. *download.Engine implements it.
type Fetcher interface {
	Fetch(ctx context.Context, req download.Request, rep report.Reporter) domain.Outcome
}

// Replicator copies a freshly downloaded file somewhere else (e.g. SFTP).
// rel is the slash-separated path below the output root.
type Replicator interface {
	Replicate(ctx context.Context, localPath, rel string) error
}

// LinkResolver turns an external module link into a direct-download URL.
type LinkResolver interface {
	Resolve(raw string) (string, error)
}

// OutcomeFunc observes every file outcome, e.g. to build a manifest.
type OutcomeFunc func(course domain.Course, source Source, o domain.Outcome)

type Options struct {
	OutDir     string
	Mode       Mode
	AllCourses bool
	Workers    int
}

// Synchronizer walks courses through the catalog and hands every file to the Fetcher.
type Synchronizer struct {
	Catalog    providers.Catalog
	Fetcher    Fetcher
	Links      LinkResolver
	Reporter   report.Reporter
	Log        logging.Logger
	Replicator Replicator
	OnOutcome  OutcomeFunc
	Opts       Options
}

func New(catalog providers.Catalog, fetcher Fetcher, opts Options) *Synchronizer {
	return &Synchronizer{
		Catalog:  catalog,
		Fetcher:  fetcher,
		Links:    links.Default(),
		Reporter: report.Nop,
		Log:      logging.Discard(),
		Opts:     opts,
	}
}

// Run syncs every selected course. Only a failure to list courses is returned as an error;
// everything below that is recovered and counted in Stats.
func (s *Synchronizer) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	stats := Stats{}

	courses, err := s.Catalog.ListCourses(ctx, !s.Opts.AllCourses)
	if err != nil {
		s.Reporter.Report(report.Event{Kind: report.Error, Message: errorMessage(err)})
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("list courses: %w", err)
	}
	s.Log.Info(ctx, "courses listed", "count", len(courses), "mode", string(s.mode()), "all", s.Opts.AllCourses)

	perCourse, _ := concurrency.ProcessParallel(ctx, courses, concurrency.ParallelOptions{MaxWorkers: s.workers()},
		func(ctx context.Context, _ int, c domain.Course) (Stats, error) {
			return s.syncCourse(ctx, c), nil
		})
	for _, cs := range perCourse {
		stats.add(cs)
	}

	stats.Duration = time.Since(start)
	s.Log.Info(ctx, "sync finished", "stats", stats.String())
	return stats, ctx.Err()
}

// courseRun carries the per-course state so parallel courses never share counters.
type courseRun struct {
	course domain.Course
	rep    report.Reporter
	log    logging.Logger
	stats  Stats
}

func (s *Synchronizer) syncCourse(ctx context.Context, c domain.Course) Stats {
	run := &courseRun{
		course: c,
		rep:    report.WithCourse(s.Reporter, c.Code),
		log:    s.Log.With("course", c.Code, "course_id", c.ID),
		stats:  Stats{Courses: 1},
	}
	run.rep.Report(report.Event{Kind: report.GroupStarted})

	switch s.mode() {
	case ModeBoth:
		ferr := s.syncFolders(ctx, run)
		merr := s.syncModules(ctx, run)
		if ferr != nil && merr != nil {
			run.stats.CourseErrors++
		}
	case ModeFolders:
		s.withFallback(ctx, run, s.syncFolders, s.syncModules, ModeModules)
	default:
		s.withFallback(ctx, run, s.syncModules, s.syncFolders, ModeFolders)
	}
	return run.stats
}

type walkFunc func(ctx context.Context, run *courseRun) error

func (s *Synchronizer) withFallback(ctx context.Context, run *courseRun, primary, fallback walkFunc, fallbackMode Mode) {
	err := primary(ctx, run)
	if err == nil || ctx.Err() != nil {
		return
	}
	run.log.Info(ctx, "falling back", "to", string(fallbackMode), "err", err)
	if err := fallback(ctx, run); err != nil {
		run.stats.CourseErrors++
	}
}

// syncFolders walks the folder taxonomy. A catalog error aborts the walk for this course.
func (s *Synchronizer) syncFolders(ctx context.Context, run *courseRun) error {
	folders, err := s.Catalog.ListFolders(ctx, run.course.ID)
	if err != nil {
		return s.catalogError(ctx, run, "folders", err)
	}

	for _, f := range folders {
		if f.FilesCount == 0 {
			continue
		}
		files, err := s.Catalog.ListFilesInFolder(ctx, f.ID)
		if err != nil {
			return s.catalogError(ctx, run, "folder files", err)
		}

		run.rep.Report(report.Event{Kind: report.ItemFound, ItemKind: string(SourceFolder), Name: f.FullName})
		path := folderPath(run.course, f)

		for _, file := range files {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if file.URL == "" {
				run.log.Debug(ctx, "file has no url", "file", file.DisplayName, "file_id", file.ID)
				continue
			}
			s.fetch(ctx, run, SourceFolder, path, file.URL, file.DisplayName)
		}
	}
	return nil
}

// syncModules walks the module taxonomy. File items land in their owning folder
// when it can be resolved, otherwise under the module name.
func (s *Synchronizer) syncModules(ctx context.Context, run *courseRun) error {
	modules, err := s.Catalog.ListModules(ctx, run.course.ID)
	if err != nil {
		return s.catalogError(ctx, run, "modules", err)
	}

	for _, m := range modules {
		if m.ItemsCount == 0 {
			continue
		}
		items, err := s.Catalog.ListModuleItems(ctx, run.course.ID, m.ID)
		if err != nil {
			return s.catalogError(ctx, run, "module items", err)
		}

		run.rep.Report(report.Event{Kind: report.ItemFound, ItemKind: string(SourceModule), Name: m.Name})
		base := modulePath(run.course, m)

		for _, item := range items {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			switch item.Kind {
			case domain.ItemFile:
				s.syncFileItem(ctx, run, base, item)
			case domain.ItemExternalURL:
				direct, err := s.Links.Resolve(item.ExternalURL)
				if err != nil {
					run.log.Debug(ctx, "external link skipped", "url", item.ExternalURL, "err", err)
					continue
				}
				s.fetch(ctx, run, SourceModule, base, direct, "")
			}
		}
	}
	return nil
}

func (s *Synchronizer) syncFileItem(ctx context.Context, run *courseRun, base domain.LocalPath, item domain.ModuleItem) {
	file, err := s.Catalog.GetFile(ctx, run.course.ID, item.ContentID)
	if err != nil {
		run.log.Warn(ctx, "file lookup failed", "item", item.Title, "content_id", item.ContentID, "err", err)
		s.record(run, SourceModule, domain.Failed(item.Title, "", domain.ReasonCatalog, err))
		run.rep.Report(report.Event{Kind: report.Error, Name: item.Title, Message: errorMessage(err)})
		return
	}

	path := base
	if file.FolderID != 0 {
		folder, err := s.Catalog.GetFolder(ctx, run.course.ID, file.FolderID)
		if err == nil && folder.FullName != "" {
			path = folderPath(run.course, folder)
		} else if err != nil {
			run.log.Debug(ctx, "owning folder unknown, using module path", "file", file.DisplayName, "folder_id", file.FolderID, "err", err)
		}
	}

	if file.URL == "" {
		run.log.Debug(ctx, "file has no url", "file", file.DisplayName, "file_id", file.ID)
		return
	}
	s.fetch(ctx, run, SourceModule, path, file.URL, file.DisplayName)
}

func (s *Synchronizer) fetch(ctx context.Context, run *courseRun, src Source, path domain.LocalPath, url, name string) {
	out := s.Fetcher.Fetch(ctx, download.Request{URL: url, Dir: path.Join(s.Opts.OutDir), Name: name}, run.rep)
	s.record(run, src, out)

	if out.Status == domain.StatusDownloaded && s.Replicator != nil {
		rel, err := filepath.Rel(s.Opts.OutDir, out.Path)
		if err == nil {
			err = s.Replicator.Replicate(ctx, out.Path, filepath.ToSlash(rel))
		}
		if err != nil {
			run.log.Warn(ctx, "replication failed", "path", out.Path, "err", err)
			run.rep.Report(report.Event{Kind: report.Error, Name: out.Name, Message: "replication failed"})
		}
	}
}

func (s *Synchronizer) record(run *courseRun, src Source, o domain.Outcome) {
	switch o.Status {
	case domain.StatusDownloaded:
		run.stats.Downloaded++
		run.stats.Bytes += o.Bytes
	case domain.StatusSkipped:
		run.stats.Skipped++
	case domain.StatusFailed:
		run.stats.Failed++
	}
	if s.OnOutcome != nil {
		s.OnOutcome(run.course, src, o)
	}
}

func (s *Synchronizer) catalogError(ctx context.Context, run *courseRun, what string, err error) error {
	run.log.Warn(ctx, "catalog listing failed", "what", what, "err", err)
	run.rep.Report(report.Event{Kind: report.Error, Message: what + ": " + errorMessage(err)})
	return fmt.Errorf("%s: %w", what, err)
}

func (s *Synchronizer) mode() Mode {
	if s.Opts.Mode == "" {
		return ModeBoth
	}
	return s.Opts.Mode
}

func (s *Synchronizer) workers() int {
	if s.Opts.Workers <= 0 {
		return 1
	}
	return s.Opts.Workers
}

// folderPath is [course code] + folder segments below the root label, each slugged.
func folderPath(c domain.Course, f domain.Folder) domain.LocalPath {
	p := domain.LocalPath{slug.Segment(c.Code)}
	for _, seg := range f.Segments() {
		p = append(p, slug.Segment(seg))
	}
	return p
}

// modulePath is [course code, module name]. A '/' in the name must not nest directories.
func modulePath(c domain.Course, m domain.Module) domain.LocalPath {
	name := strings.ReplaceAll(strings.TrimSpace(m.Name), "/", "-")
	return domain.LocalPath{slug.Segment(c.Code), slug.Segment(name)}
}

type messager interface{ Message() string }

func errorMessage(err error) string {
	var m messager
	if errors.As(err, &m) {
		return m.Message()
	}
	return err.Error()
}
