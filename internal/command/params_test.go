package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamsArgs(t *testing.T) {
	params := Params{
		"arguments": []any{"-resize", float64(50), []any{"-quality", 90, []string{"in.png", "out.jpg"}}},
	}

	args, err := params.Args()
	require.NoError(t, err)
	require.Equal(t, []string{"-resize", "50", "-quality", "90", "in.png", "out.jpg"}, args)

	_, err = Params{"arguments": []any{true}}.Args()
	require.ErrorIs(t, err, ErrInvalidParameter)

	args, err = Params{}.Args()
	require.NoError(t, err)
	require.Empty(t, args)
}

func TestParamsString(t *testing.T) {
	params := Params{
		"input_file": "",
		"input_path": "/a/b.txt",
		"number":     12,
	}

	value, err := params.String("input_file", "input_path")
	require.NoError(t, err)
	require.Equal(t, "/a/b.txt", value)

	_, err = params.String("missing")
	require.ErrorIs(t, err, ErrMissingParameter)

	_, err = params.String("number")
	require.ErrorIs(t, err, ErrInvalidParameter)

	require.Equal(t, "fallback", params.StringOr("fallback", "missing"))
}

func TestParamsDecode(t *testing.T) {
	params := Params{
		"to_format":  "webp",
		"output_dir": "/out",
		"quality":    80,
	}

	var target struct {
		ToFormat  string `json:"to_format"`
		OutputDir string `json:"output_dir"`
		Quality   int    `json:"quality"`
	}

	require.NoError(t, params.Decode(&target))
	require.Equal(t, "webp", target.ToFormat)
	require.Equal(t, "/out", target.OutputDir)
	require.Equal(t, 80, target.Quality)
}

func TestParseExiftoolOutput(t *testing.T) {
	output := []byte(`[{"SourceFile":"/a/photo.jpg","DateTimeOriginal":"2024:03:20 17:49:58"}]`)

	data, err := parseExiftoolOutput(output, []string{ExifDateTimeOriginal})
	require.NoError(t, err)
	require.Equal(t, "2024-03-20 17:49:58", data[ExifDateTimeOriginal])

	_, err = parseExiftoolOutput([]byte(`[{"SourceFile":"/a/photo.jpg"}]`), []string{ExifDateTimeOriginal})
	require.Error(t, err)
}
