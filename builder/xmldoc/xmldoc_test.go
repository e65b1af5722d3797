package xmldoc

import (
	"encoding/xml"
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	XMLName xml.Name  `xml:"gameList"`
	Extra   []Element `xml:",any"`
}

// renameFailFs refuses every rename.
type renameFailFs struct {
	afero.Fs
}

var errRename = errors.New("rename refused")

func (renameFailFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: errRename}
}

func TestMarshal_RoundTripsElements(t *testing.T) {
	in := `<gameList><folder id="7" hidden="true"><path>./sub</path><!-- note --><name>Sub &amp; more</name></folder></gameList>`
	var d doc
	require.NoError(t, xml.Unmarshal([]byte(in), &d))
	require.Len(t, d.Extra, 1)
	assert.Equal(t, "folder", d.Extra[0].XMLName.Local)
	require.Len(t, d.Extra[0].Attrs, 2)

	out, err := Marshal(&d)
	require.NoError(t, err)
	assert.True(t, len(out) > len(xml.Header))
	assert.Equal(t, xml.Header, string(out[:len(xml.Header)]))
	assert.Contains(t, string(out), `<folder id="7" hidden="true">`)
	assert.Contains(t, string(out), `<path>./sub</path><!-- note --><name>Sub &amp; more</name>`)

	var back doc
	require.NoError(t, xml.Unmarshal(out, &back))
	again, err := Marshal(&back)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again))
}

func TestElement_CloneIsDeep(t *testing.T) {
	e := Element{
		XMLName: xml.Name{Local: "image"},
		Attrs:   []xml.Attr{{Name: xml.Name{Local: "w"}, Value: "1"}},
		Inner:   []byte("./a.png"),
	}
	c := e.Clone()
	c.Attrs[0].Value = "2"
	c.Inner[0] = 'X'
	assert.Equal(t, "1", e.Attrs[0].Value)
	assert.Equal(t, "./a.png", string(e.Inner))
	assert.Nil(t, CloneAll(nil))
}

func TestRead_Missing(t *testing.T) {
	var d doc
	found, err := Read(afero.NewMemMapFs(), "/nope.xml", &d)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWrite_ReplacesTargetAndCleansUp(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/gl/gba/gamelist.xml", []byte("<gameList></gameList>"), 0o644))

	d := doc{Extra: []Element{{XMLName: xml.Name{Local: "folder"}, Inner: []byte("<path>./a</path>")}}}
	require.NoError(t, Write(fs, "/gl/gba/gamelist.xml", &d))

	data, err := afero.ReadFile(fs, "/gl/gba/gamelist.xml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<path>./a</path>")

	infos, err := afero.ReadDir(fs, "/gl/gba")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "gamelist.xml", infos[0].Name())
}

// TestWrite_RenameFailureKeepsTarget checks that a failed rename leaves the
// existing document untouched and no temporary file behind.
func TestWrite_RenameFailureKeepsTarget(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/gl/gba/gamelist.xml", []byte("original"), 0o644))

	err := Write(renameFailFs{mem}, "/gl/gba/gamelist.xml", &doc{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errRename)

	data, err := afero.ReadFile(mem, "/gl/gba/gamelist.xml")
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	infos, err := afero.ReadDir(mem, "/gl/gba")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "gamelist.xml", infos[0].Name())
}

func TestWrite_ReadOnlyFs(t *testing.T) {
	err := Write(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/gl/gba/gamelist.xml", &doc{})
	require.Error(t, err)
}
