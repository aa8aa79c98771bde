// Package codec reads and writes collections and edit scripts as JSON or
// YAML files, optionally zstd-compressed.
//
// The format follows the file name: ".json" or ".yaml"/".yml", with an
// extra ".zst" suffix for compression (e.g. "source.json.zst").
package codec

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/aweris/merklesync"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("codec: unknown file format")

// Format is a serialization syntax.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Options controls encoding.
type Options struct {
	Format   Format
	Compress bool
	// Level is the zstd level: 1 fastest, 2 default, 3 better, 4 best.
	Level int
}

// OptionsForPath derives Options from a file name.
func OptionsForPath(path string) (Options, error) {
	name := strings.ToLower(filepath.Base(path))
	opts := Options{Level: 2}
	if trimmed, ok := strings.CutSuffix(name, ".zst"); ok {
		opts.Compress = true
		name = trimmed
	}
	switch filepath.Ext(name) {
	case ".json":
		opts.Format = JSON
	case ".yaml", ".yml":
		opts.Format = YAML
	default:
		return Options{}, errors.WithHint(
			errors.Wrapf(ErrUnknownFormat, "%s", path),
			"use a .json, .yaml or .yml file, optionally with a .zst suffix")
	}
	return opts, nil
}

// Encode serializes v.
func Encode(v any, opts Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch opts.Format {
	case JSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case YAML:
		data, err = yaml.Marshal(v)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", opts.Format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", opts.Format)
	}

	if !opts.Compress {
		return data, nil
	}
	c, err := NewCompressor(opts.Level)
	if err != nil {
		return nil, errors.Wrap(err, "create compressor")
	}
	defer c.Close()
	return c.Compress(data), nil
}

// Decode deserializes data into v, decompressing when needed.
func Decode(data []byte, format Format, v any) error {
	if IsCompressed(data) {
		c, err := NewCompressor(2)
		if err != nil {
			return errors.Wrap(err, "create decompressor")
		}
		defer c.Close()
		if data, err = c.Decompress(data); err != nil {
			return errors.Wrap(err, "decompress")
		}
	}

	switch format {
	case JSON:
		if err := json.Unmarshal(data, v); err != nil {
			return errors.Wrap(err, "decode json")
		}
	case YAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return errors.Wrap(err, "decode yaml")
		}
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	return nil
}

func readFile(path string, v any) error {
	opts, err := OptionsForPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if err := Decode(data, opts.Format, v); err != nil {
		return errors.Wrapf(err, "%s", path)
	}
	return nil
}

func writeFile(path string, v any) error {
	opts, err := OptionsForPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(v, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// ReadCollection loads a collection file. Records are not validated;
// building a tree does that.
func ReadCollection(path string) (merklesync.Collection, error) {
	var c merklesync.Collection
	if err := readFile(path, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteCollection stores c at path.
func WriteCollection(path string, c merklesync.Collection) error {
	if c == nil {
		c = merklesync.Collection{}
	}
	return writeFile(path, c)
}

// ReadScript loads an edit script file.
func ReadScript(path string) (merklesync.EditScript, error) {
	var s merklesync.EditScript
	if err := readFile(path, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteScript stores s at path.
func WriteScript(path string, s merklesync.EditScript) error {
	if s == nil {
		s = merklesync.EditScript{}
	}
	return writeFile(path, s)
}
