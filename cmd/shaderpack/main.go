// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/vkframe/utility/kar"
)

var (
	author   = flag.String("author", currentUserName(), "Set the author of the package when compressing")
	version  = flag.Int64("version", 1, "Archive version number to create it with")
	extract  = flag.String("e", "", "Extract the given archive into the current directory")
	compress = flag.String("c", "", "Compress the given shader folder")
	dstFile  = flag.String("f", "shaders.kar", "Destination file")
	list     = flag.Bool("l", false, "List the archive contents instead of extracting")
)

func currentUserName() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	return u.Username
}

func main() {
	flag.Parse()

	var err error
	switch {
	case *extract != "" && *compress != "":
		err = errors.New("only one operation at a time")
	case *extract != "" && *list:
		err = listFiles(*extract)
	case *extract != "":
		err = extractFiles(*extract, ".")
	case *compress != "":
		err = compressFiles(*compress, *dstFile)
	default:
		flag.PrintDefaults()
	}
	if err != nil {
		log.WithError(err).Fatal("shaderpack")
	}
}

func compressFiles(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return errors.Errorf("destination %s exists, will not overwrite", dst)
	}

	builder := kar.NewBuilder(kar.Header{
		Author:      *author,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})

	// names keep the shader directory as their first element
	base := filepath.Dir(filepath.Clean(src))
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := builder.Add(filepath.ToSlash(rel), f); err != nil {
			return errors.Wrap(err, path)
		}
		log.WithField("file", rel).Debug("added")
		return nil
	})
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := builder.WriteTo(out)
	if err != nil {
		return errors.Wrapf(err, "write %s", dst)
	}
	log.WithFields(log.Fields{
		"archive": dst,
		"files":   builder.Len(),
		"bytes":   n,
	}).Info("archive written")
	return nil
}

func listFiles(archive string) error {
	ar, err := kar.OpenFile(archive)
	if err != nil {
		return err
	}
	defer ar.Close()

	h := ar.Header()
	log.WithFields(log.Fields{
		"author":  h.Author,
		"version": h.Version,
		"created": time.Unix(h.DateCreated, 0),
	}).Info(archive)
	for _, entry := range h.Index {
		log.WithFields(log.Fields{
			"size":       entry.Size,
			"compressed": entry.CompressedSize,
		}).Info(entry.Name)
	}
	return nil
}

func extractFiles(archive, dst string) error {
	ar, err := kar.OpenFile(archive)
	if err != nil {
		return err
	}
	defer ar.Close()

	for _, name := range ar.Names() {
		data, err := ar.ReadAll(name)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return err
		}
		log.WithField("file", target).Debug("extracted")
	}
	return nil
}
