package command

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

const (
	ExifDateTimeOriginal = "DateTimeOriginal"
)

var supportedExifTags = map[string]struct{}{
	ExifDateTimeOriginal: {},
}

// fileExifGet reads the requested tags through exiftool JSON output.
// Date values are normalized to the "2006-01-02 15:04:05" layout.
func (h *host) fileExifGet(ctx context.Context, params Params) (*Result, error) {
	path, err := params.String("input_file", "file")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	tags, err := params.Strings("tags")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	args := []string{"-j"}
	for _, t := range tags {
		if _, supported := supportedExifTags[t]; !supported {
			return nil, errors.Wrapf(ErrInvalidParameter, "tag %s not supported", t)
		}
		args = append(args, "-"+t)
	}
	args = append(args, path)

	bin, err := h.lookupTool("exiftool")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	output, err := exec.CommandContext(ctx, bin, args...).Output()
	if err != nil {
		return nil, errors.Wrapf(err, "could not read exif data of '%s'", path)
	}

	data, err := parseExiftoolOutput(output, tags)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewResult(data), nil
}

func parseExiftoolOutput(output []byte, tags []string) (map[string]string, error) {
	var entries []map[string]any
	if err := sonic.Unmarshal(output, &entries); err != nil {
		return nil, errors.Wrap(err, "could not parse exiftool output")
	}

	if len(entries) == 0 {
		return nil, errors.New("no exif data found")
	}

	data := make(map[string]string, len(tags))
	for _, t := range tags {
		raw, exists := entries[0][t]
		if !exists {
			return nil, errors.Errorf("no %s field found", t)
		}

		value := fmt.Sprintf("%v", raw)
		if t == ExifDateTimeOriginal {
			value = normalizeExifDate(value)
		}

		data[t] = value
	}

	return data, nil
}

// normalizeExifDate turns "2024:03:20 17:49:58" into "2024-03-20 17:49:58".
func normalizeExifDate(value string) string {
	date, clock, found := strings.Cut(value, " ")
	if !found {
		return value
	}

	return strings.ReplaceAll(date, ":", "-") + " " + clock
}
