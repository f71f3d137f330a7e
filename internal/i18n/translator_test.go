package i18n

import (
	"context"
	"testing"

	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/stretchr/testify/require"
)

func TestTranslator(t *testing.T) {
	translator := NewTranslator("en", slogx.NewTestLogger(t))

	ctx := context.Background()
	require.Equal(t, "en", translator.Language(ctx))
	require.Equal(t, "Path does not exist", translator.Translate(ctx, "Path does not exist", nil))

	zh := translator.WithLanguage(ctx, "zh")
	require.Equal(t, "zh", translator.Language(zh))
	require.Equal(t, "路径不存在", translator.Translate(zh, "Path does not exist", nil))
	require.Equal(t, "已删除 3 个文件/文件夹", translator.Translate(zh, "folder_clear.deleted", map[string]any{"count": 3}))

	require.Equal(t, "convert failed: boom", translator.Translate(zh, "convert failed: boom", nil))
	require.Equal(t, "", translator.Translate(zh, "", nil))

	fallback := translator.WithLanguage(ctx, "xx")
	require.Equal(t, "en", translator.Language(fallback))
}
