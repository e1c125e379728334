package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ProjectsDir is the knowledge base subdirectory holding one document per project.
const ProjectsDir = "projects"

// Document is a single markdown file of the knowledge base.
type Document struct {
	ID           string
	Title        string
	RelativePath string
	Content      string
}

// Store lists the documents of the knowledge base.
type Store interface {
	Documents(ctx context.Context) ([]Document, error)
}

// FileStore reads markdown documents from a root directory and its projects
// subdirectory. Nothing is cached: every call reads the files again.
//
// With no root file names every *.md file of the root is read. With names,
// exactly those root files are read and a missing one is an error.
type FileStore struct {
	root      string
	rootFiles []string
}

func NewFileStore(root string, rootFiles ...string) *FileStore {
	return &FileStore{root: root, rootFiles: rootFiles}
}

// Root returns the directory the store reads from.
func (s *FileStore) Root() string {
	return s.root
}

// Documents returns the root documents followed by the project documents,
// sorted by title.
func (s *FileStore) Documents(ctx context.Context) ([]Document, error) {
	if s.root == "" {
		return nil, fmt.Errorf("knowledge base directory is not configured")
	}

	rootFiles := s.rootFiles
	if len(rootFiles) == 0 {
		var err error
		rootFiles, err = markdownFiles(s.root)
		if err != nil {
			return nil, fmt.Errorf("list knowledge base: %w", err)
		}
	}

	projectFiles, err := markdownFiles(filepath.Join(s.root, ProjectsDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list knowledge base projects: %w", err)
	}

	relPaths := make([]string, 0, len(rootFiles)+len(projectFiles))
	relPaths = append(relPaths, rootFiles...)
	for _, name := range projectFiles {
		relPaths = append(relPaths, filepath.Join(ProjectsDir, name))
	}

	docs := make([]Document, 0, len(relPaths))
	for _, relPath := range relPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := s.readDocument(relPath)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	collator := collate.New(language.English)
	sort.SliceStable(docs, func(i, j int) bool {
		return collator.CompareString(docs[i].Title, docs[j].Title) < 0
	})

	return docs, nil
}

func (s *FileStore) readDocument(relPath string) (Document, error) {
	data, err := os.ReadFile(filepath.Join(s.root, relPath))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", relPath, err)
	}

	content := string(data)
	return Document{
		ID:           DocID(relPath),
		Title:        ExtractTitle(content, filepath.Base(relPath)),
		RelativePath: relPath,
		Content:      content,
	}, nil
}

func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || DetectFormat(entry.Name()) != FormatMarkdown {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

var _ Store = (*FileStore)(nil)
