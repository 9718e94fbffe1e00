package build

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteArchive bundles the named files into a gzip-compressed tarball at
// dest. Entries are stored flat under their base names.
func WriteArchive(dest string, files []string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, file := range files {
		if err := addTarFile(tw, file); err != nil {
			out.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalizing tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalizing gzip stream: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

func addTarFile(tw *tar.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archiving %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("archiving %s: %w", filepath.Base(path), err)
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("archiving %s: %w", filepath.Base(path), err)
	}
	header.Name = filepath.Base(path)

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("archiving %s: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archiving %s: %w", filepath.Base(path), err)
	}
	return nil
}
