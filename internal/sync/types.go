package sync

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which catalog taxonomy is walked for every course.
type Mode string

const (
	ModeModules Mode = "modules"
	ModeFolders Mode = "folders"
	ModeBoth    Mode = "both"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeModules, ModeFolders, ModeBoth:
		return m, nil
	case "":
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("unknown traversal mode %q (want modules, folders or both)", s)
	}
}

// Source names the taxonomy a file was reached through.
type Source string

const (
	SourceFolder Source = "folder"
	SourceModule Source = "module"
)

// Stats summarizes one run.
type Stats struct {
	Courses      int
	CourseErrors int // courses where every attempted taxonomy failed
	Downloaded   int
	Skipped      int
	Failed       int
	Bytes        int64
	Duration     time.Duration
}

func (s *Stats) add(o Stats) {
	s.Courses += o.Courses
	s.CourseErrors += o.CourseErrors
	s.Downloaded += o.Downloaded
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Bytes += o.Bytes
}

func (s Stats) String() string {
	return fmt.Sprintf("courses=%d downloaded=%d skipped=%d failed=%d bytes=%d course_errors=%d took=%s",
		s.Courses, s.Downloaded, s.Skipped, s.Failed, s.Bytes, s.CourseErrors, s.Duration.Round(time.Millisecond))
}
