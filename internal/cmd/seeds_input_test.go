package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSeedsPositional(t *testing.T) {
	seeds, err := resolveSeeds([]string{"web design", " web design ", ""}, "")
	require.NoError(t, err)
	require.Equal(t, []string{"web design"}, seeds)
}

func TestResolveSeedsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	content := "web design\n# comment\n\nwebsite builder\nweb design\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	seeds, err := resolveSeeds(nil, path)
	require.NoError(t, err)
	require.Equal(t, []string{"web design", "website builder"}, seeds)
}

func TestResolveSeedsRejectsMixedInput(t *testing.T) {
	_, err := resolveSeeds([]string{"seed"}, "seeds.txt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot combine")
}

func TestReadSeeds(t *testing.T) {
	seeds, err := readSeeds(strings.NewReader("a\nb\n a \n"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, seeds)
}
