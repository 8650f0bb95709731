package report

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCourseStampsEvents(t *testing.T) {
	var got []Event
	r := WithCourse(Func(func(e Event) { got = append(got, e) }), "MATH101")

	r.Report(Event{Kind: Skipped, Name: "a.pdf"})
	r.Report(Event{Kind: Skipped, Name: "b.pdf", Course: "BIO200"})

	require.Len(t, got, 2)
	assert.Equal(t, "MATH101", got[0].Course)
	assert.Equal(t, "BIO200", got[1].Course)
}

func TestChanAndMulti(t *testing.T) {
	ch := make(chan Event, 4)
	var mu sync.Mutex
	count := 0
	counter := Func(func(Event) { mu.Lock(); count++; mu.Unlock() })

	r := Multi(Chan(ch), counter, nil)
	r.Report(Event{Kind: Complete, Name: "x"})
	close(ch)

	var seen []Event
	for e := range ch {
		seen = append(seen, e)
	}
	assert.Len(t, seen, 1)
	assert.Equal(t, 1, count)
}

func TestConsolePlain(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false, false)

	c.Report(Event{Kind: GroupStarted, Course: "MATH101"})
	c.Report(Event{Kind: ItemFound, ItemKind: "folder", Name: "course files/unit1"})
	c.Report(Event{Kind: Progress, Name: "notes.pdf", Percent: 50})
	c.Report(Event{Kind: Complete, Name: "notes.pdf", Bytes: 2048})
	c.Report(Event{Kind: Skipped, Name: "old.pdf"})
	c.Report(Event{Kind: Error, Name: "bad.pdf", Message: "invalid path"})

	want := strings.Join([]string{
		"MATH101",
		" [F] course files/unit1",
		"  100% | notes.pdf (2.0 KiB)",
		"  old.pdf",
		"  error: invalid path | bad.pdf",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestConsoleLiveProgress(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true, true)

	c.Report(Event{Kind: Progress, Name: "n.pdf", Percent: 40})
	c.Report(Event{Kind: Progress, Name: "n.pdf", Percent: Indeterminate})
	c.Report(Event{Kind: Complete, Name: "n.pdf", Bytes: 10})

	out := buf.String()
	assert.Contains(t, out, "\r"+ansiGreen+"   40% | n.pdf")
	assert.Contains(t, out, " ... | n.pdf")
	assert.True(t, strings.HasSuffix(out, "100% | n.pdf (10 B)"+ansiReset+"\n"))
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KiB",
		1536:        "1.5 KiB",
		5 * 1 << 20: "5.0 MiB",
	}
	for in, want := range cases {
		assert.Equal(t, want, HumanBytes(in), "HumanBytes(%d)", in)
	}
}
