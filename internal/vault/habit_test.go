package vault

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckHabit_TogglesOnce(t *testing.T) {
	root := newVault(t)
	path := writeNote(t, root, noteTemplate)

	checked, err := CheckHabit(root, noteDate)
	require.NoError(t, err)
	require.True(t, checked)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "- [x] 使用番茄钟 ✅ 2026-03-14\n")
	require.NotContains(t, string(raw), "[ ] 使用番茄钟")

	checked, err = CheckHabit(root, noteDate)
	require.NoError(t, err)
	require.False(t, checked)

	again, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(raw), string(again))
}

func TestCheckHabit_AsteriskBullet(t *testing.T) {
	root := newVault(t)
	path := writeNote(t, root, "## 习惯\n* [ ] 冥想\n*  [ ]  使用番茄钟\n")

	checked, err := CheckHabit(root, noteDate)
	require.NoError(t, err)
	require.True(t, checked)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "## 习惯\n* [ ] 冥想\n* [x] 使用番茄钟 ✅ 2026-03-14\n", string(raw))
}

func TestCheckHabit_MissingNote(t *testing.T) {
	checked, err := CheckHabit(newVault(t), noteDate)
	require.NoError(t, err)
	require.False(t, checked)
}
