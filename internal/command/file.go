package command

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/bornholm/fileworks/internal/file"
	"github.com/pkg/errors"
)

// FilesCounter is the per path content of the file.count_files command.
type FilesCounter struct {
	DirQuantity         uint64            `json:"dir_quantity"`
	FileQuantity        uint64            `json:"file_quantity"`
	FileQuantityOfTypes map[string]uint64 `json:"file_quantity_of_types"`
	FileSizeSum         uint64            `json:"file_size_sum"`
	FileSizeOfTypes     map[string]uint64 `json:"file_size_of_types"`
	FileTypeQuantity    uint64            `json:"file_type_quantity"`
}

func NewFilesCounter() *FilesCounter {
	return &FilesCounter{
		FileQuantityOfTypes: map[string]uint64{},
		FileSizeOfTypes:     map[string]uint64{},
	}
}

func (c *FilesCounter) Add(other *FilesCounter) {
	c.DirQuantity += other.DirQuantity
	c.FileQuantity += other.FileQuantity
	c.FileSizeSum += other.FileSizeSum

	for ext, n := range other.FileQuantityOfTypes {
		c.FileQuantityOfTypes[ext] += n
	}

	for ext, n := range other.FileSizeOfTypes {
		c.FileSizeOfTypes[ext] += n
	}

	c.FileTypeQuantity = uint64(len(c.FileQuantityOfTypes))
}

const CountFilesTotalKey = "total"

func (h *host) fileRead(ctx context.Context, params Params) (*Result, error) {
	path, err := params.String("input_file", "input_path")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stat, err := os.Stat(path)
	if err != nil || !stat.Mode().IsRegular() {
		return nil, errors.Errorf("file not found: '%s'", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	switch format := params.StringOr("text", "format"); format {
	case "text":
		return NewResult(string(data)), nil
	case "base64":
		return NewResult(base64.StdEncoding.EncodeToString(data)), nil
	case "bytes":
		return NewResult(data), nil
	default:
		return nil, errors.Wrapf(ErrInvalidParameter, "invalid format '%s', must be 'text', 'base64' or 'bytes'", format)
	}
}

func (h *host) fileWrite(ctx context.Context, params Params) (*Result, error) {
	path, err := params.String("output_file", "output_path")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	content, err := params.String("content")
	if err != nil && !errors.Is(err, ErrMissingParameter) {
		return nil, errors.WithStack(err)
	}

	var data []byte

	switch format := params.StringOr("text", "format"); format {
	case "text":
		data = []byte(content)
	case "base64":
		data, err = base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidParameter, err.Error())
		}
	default:
		return nil, errors.Wrapf(ErrInvalidParameter, "invalid format '%s', must be 'text' or 'base64'", format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, errors.WithStack(err)
	}

	return NewResult(nil, path), nil
}

func (h *host) fileRename(ctx context.Context, params Params) (*Result, error) {
	from, to, err := fromTo(params)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := os.Rename(from, to); err != nil {
		h.logger.DebugContext(ctx, "rename failed, falling back to copy", "from", from, "to", to, "error", err)

		if err := copyFile(from, to); err != nil {
			return nil, errors.WithStack(err)
		}

		if err := os.Remove(from); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return NewResult(nil, to), nil
}

func (h *host) fileCopy(ctx context.Context, params Params) (*Result, error) {
	from, to, err := fromTo(params)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := copyFile(from, to); err != nil {
		return nil, errors.WithStack(err)
	}

	return NewResult(nil, to), nil
}

func (h *host) fileHash(ctx context.Context, params Params) (*Result, error) {
	path, err := params.String("input_file", "input_path")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sum, err := HashFile(path, params.StringOr("md5", "hash_type"))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewResult(sum), nil
}

func (h *host) fileInfoBasic(ctx context.Context, params Params) (*Result, error) {
	path, err := params.String("input_file", "input_path")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	info, err := file.GetFileInfo(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return NewResult(info), nil
}

func (h *host) fileCountFiles(ctx context.Context, params Params) (*Result, error) {
	paths, err := params.Strings("input_paths")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	total := NewFilesCounter()
	counters := map[string]*FilesCounter{}

	for _, p := range paths {
		if p == "" {
			continue
		}

		counter := NewFilesCounter()
		if err := countFiles(ctx, p, counter); err != nil {
			return nil, errors.WithStack(err)
		}

		counters[RelativeWithHomeDir(h.opts.HomeDir, p)] = counter
		total.Add(counter)
	}

	counters[CountFilesTotalKey] = total

	return NewResult(counters), nil
}

// HashFile returns the hex encoded checksum of the file using the given
// algorithm (md5, sha1, sha256 or sha512).
func HashFile(path string, algorithm string) (string, error) {
	var hasher hash.Hash

	switch algorithm {
	case "md5":
		hasher = md5.New()
	case "sha1":
		hasher = sha1.New()
	case "sha256":
		hasher = sha256.New()
	case "sha512":
		hasher = sha512.New()
	default:
		return "", errors.Wrapf(ErrInvalidParameter, "invalid hash type '%s'", algorithm)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", errors.WithStack(err)
	}

	defer f.Close()

	if _, err := io.Copy(hasher, f); err != nil {
		return "", errors.WithStack(err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func countFiles(ctx context.Context, path string, counter *FilesCounter) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return errors.WithStack(err)
	}

	if !stat.IsDir() {
		_, _, ext := SplitFilePath(path)
		size := uint64(stat.Size())

		counter.FileQuantity++
		counter.FileSizeSum += size
		counter.FileQuantityOfTypes[ext]++
		counter.FileSizeOfTypes[ext] += size
		counter.FileTypeQuantity = uint64(len(counter.FileQuantityOfTypes))

		return nil
	}

	counter.DirQuantity++

	entries, err := os.ReadDir(path)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, e := range entries {
		if err := countFiles(ctx, filepath.Join(path, e.Name()), counter); err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func fromTo(params Params) (string, string, error) {
	from, err := params.String("input_file", "input_path", "from")
	if err != nil {
		return "", "", errors.WithStack(err)
	}

	to, err := params.String("output_file", "output_path", "to")
	if err != nil {
		return "", "", errors.WithStack(err)
	}

	return from, to, nil
}

func copyFile(from string, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return errors.WithStack(err)
	}

	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return errors.WithStack(err)
	}

	dst, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, stat.Mode().Perm())
	if err != nil {
		return errors.WithStack(err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.WithStack(err)
	}

	if err := dst.Close(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
