package canvas

import (
	"encoding/json"
	"sort"
	"strings"
)

/* -------- Wire payloads -------- */

type courseJSON struct {
	ID         int64  `json:"id"`
	CourseCode string `json:"course_code"`
	Name       string `json:"name"`
}

type folderJSON struct {
	ID         int64  `json:"id"`
	FullName   string `json:"full_name"`
	FilesCount int    `json:"files_count"`
}

type moduleJSON struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ItemsCount int    `json:"items_count"`
}

type moduleItemJSON struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	ContentID   int64  `json:"content_id"`
	ExternalURL string `json:"external_url"`
}

type fileJSON struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	FolderID    int64  `json:"folder_id"`
	Size        int64  `json:"size"`
}

// ErrorMessages is the "errors" marker Canvas puts in place of the expected payload.
// It may come as:
// - [{"message": "..."}] (most endpoints)
// - {"base": "..."} / {"field": [{"message": "..."}]} (validation style)
// - "..." (rare)
type ErrorMessages []string

func (e *ErrorMessages) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*e = nil
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = ErrorMessages{s}
		return nil

	case '[':
		var objs []struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(b, &objs); err == nil {
			out := make(ErrorMessages, 0, len(objs))
			for _, o := range objs {
				out = append(out, o.Message)
			}
			*e = out
			return nil
		}
		var strs []string
		if err := json.Unmarshal(b, &strs); err != nil {
			return err
		}
		*e = strs
		return nil

	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := ErrorMessages{}
		for _, k := range keys {
			raw := m[k]
			var nested ErrorMessages
			if err := nested.UnmarshalJSON(raw); err != nil || len(nested) == 0 {
				out = append(out, k)
				continue
			}
			for _, msg := range nested {
				out = append(out, k+": "+msg)
			}
		}
		*e = out
		return nil
	}

	*e = ErrorMessages{strings.TrimSpace(string(b))}
	return nil
}

// errorMarker reports whether body is an object carrying an "errors" key.
func errorMarker(body []byte) (ErrorMessages, bool) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return nil, false
	}
	raw, ok := env["errors"]
	if !ok {
		return nil, false
	}
	var msgs ErrorMessages
	if err := json.Unmarshal(raw, &msgs); err != nil || len(msgs) == 0 {
		msgs = ErrorMessages{"unspecified error"}
	}
	return msgs, true
}
