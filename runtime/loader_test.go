package runtime

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestCensoredLoader_LoadAll_MergesLanguages(t *testing.T) {
	fsys := fstest.MapFS{
		"censored/en.txt": {Data: []byte("troll\nidiot\n")},
		"censored/fr.txt": {Data: []byte("abruti\r\ntroll\r\n")},
	}

	data, err := NewCensoredLoader(fsys).LoadAll("censored")
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"en", "fr"}, data.Languages)
	// "troll" appears in both files but is kept once
	require.ElementsMatch(t, []string{"troll", "idiot", "abruti"}, data.Words)
}

func TestCensoredLoader_LoadAll_SkipsBlankLinesAndNonTxt(t *testing.T) {
	fsys := fstest.MapFS{
		"censored/en.txt":    {Data: []byte("\n\ntroll\n  \n")},
		"censored/README.md": {Data: []byte("not a word list")},
	}

	data, err := NewCensoredLoader(fsys).LoadAll("censored")
	require.NoError(t, err)

	require.Equal(t, []string{"en"}, data.Languages)
	require.Equal(t, []string{"troll"}, data.Words)
}

func TestCensoredLoader_LoadAll_EmptyDirectoryIsValid(t *testing.T) {
	fsys := fstest.MapFS{
		"censored/.keep": {Data: nil},
	}

	data, err := NewCensoredLoader(fsys).LoadAll("censored")
	require.NoError(t, err)
	require.Empty(t, data.Words)
}

func TestEmbeddedWordListsLoad(t *testing.T) {
	m, err := NewEmbeddedModerator(testLogger(), '*')
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "you ***** you", m.Censor("you troll you"))
}
