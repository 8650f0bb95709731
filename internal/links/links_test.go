package links

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := Default()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"drive file view", "https://drive.google.com/file/d/ABC123/view", "https://docs.google.com/uc?export=download&id=ABC123"},
		{"drive file view with query", "https://drive.google.com/file/d/1a-B_c/view?usp=sharing", "https://docs.google.com/uc?export=download&id=1a-B_c"},
		{"drive open", "https://drive.google.com/open?id=XYZ_9", "https://docs.google.com/uc?export=download&id=XYZ_9"},
		{"docs uc", "https://docs.google.com/uc?id=Q1&export=view", "https://docs.google.com/uc?export=download&id=Q1"},
		{"dropbox", "https://www.dropbox.com/s/abc/notes.pdf?dl=0", "https://www.dropbox.com/s/abc/notes.pdf?dl=1"},
		{"surrounding space", "  https://drive.google.com/file/d/ABC123/view ", "https://docs.google.com/uc?export=download&id=ABC123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveUnrecognized(t *testing.T) {
	r := Default()

	for _, in := range []string{
		"https://example.com/x",
		"https://drive.google.com/drive/folders/abc",
		"https://drive.google.com/open?id=",
		"not a url",
	} {
		_, err := r.Resolve(in)
		assert.True(t, errors.Is(err, ErrUnrecognized), "expected ErrUnrecognized for %q, got %v", in, err)
	}
}

type fixed struct {
	name, out string
}

func (f fixed) Name() string { return f.name }
func (f fixed) Match(string) (string, bool) {
	return f.out, f.out != ""
}

func TestResolveFirstMatchWins(t *testing.T) {
	r := New(fixed{"none", ""}, fixed{"first", "one"}, fixed{"second", "two"})

	got, err := r.Resolve("anything")
	require.NoError(t, err)
	assert.Equal(t, "one", got)
}
