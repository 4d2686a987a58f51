package tools

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"maru/internal/models"
)

const maxFileReadBytes = 256 * 1024

// FilesHandler lists and reads files confined to a configured workspace
// directory. Paths are resolved against the workspace root and anything
// escaping it is rejected.
type FilesHandler struct {
	root string
}

// NewFilesHandler creates the files capability handler
func NewFilesHandler(workspaceDir string) *FilesHandler {
	return &FilesHandler{root: filepath.Clean(workspaceDir)}
}

// Name implements Handler
func (h *FilesHandler) Name() string { return "files" }

// FileEntry is one entry of a directory listing
type FileEntry struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	IsDir bool   `json:"is_dir"`
}

// Handle implements Handler
func (h *FilesHandler) Handle(ctx context.Context, action string, params map[string]any) models.ActionResult {
	switch action {
	case "list_files":
		return h.listFiles(params)
	case "read_file":
		return h.readFile(params)
	default:
		return errorResult(fmt.Sprintf("파일 기능이 지원하지 않는 동작입니다: %s", action))
	}
}

// resolve joins rel onto the workspace root and rejects traversal out of it
func (h *FilesHandler) resolve(rel string) (string, error) {
	joined := filepath.Join(h.root, filepath.Clean("/"+rel))
	if joined != h.root && !strings.HasPrefix(joined, h.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes workspace: %s", rel)
	}
	return joined, nil
}

func (h *FilesHandler) listFiles(params map[string]any) models.ActionResult {
	dir := stringParam(params, "path")
	if dir == "" {
		dir = stringParam(params, "directory")
	}

	full, err := h.resolve(dir)
	if err != nil {
		return errorResult("허용되지 않는 경로입니다")
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		log.Printf("❌ [FILES] Failed to list %s: %v", full, err)
		return errorResult("폴더를 읽을 수 없습니다")
	}

	var files []FileEntry
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileEntry{Name: e.Name(), Size: info.Size(), IsDir: e.IsDir()})
	}

	return okResult(files, fmt.Sprintf("파일 %d개를 찾았습니다", len(files)))
}

func (h *FilesHandler) readFile(params map[string]any) models.ActionResult {
	rel := stringParam(params, "path")
	if rel == "" {
		rel = stringParam(params, "filename")
	}
	if rel == "" {
		return errorResult("읽을 파일 경로가 없습니다")
	}

	full, err := h.resolve(rel)
	if err != nil {
		return errorResult("허용되지 않는 경로입니다")
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return errorResult("파일을 찾을 수 없습니다")
	}
	if info.Size() > maxFileReadBytes {
		return errorResult("파일이 너무 큽니다")
	}

	data, err := os.ReadFile(full)
	if err != nil {
		log.Printf("❌ [FILES] Failed to read %s: %v", full, err)
		return errorResult("파일을 읽을 수 없습니다")
	}

	return okResult(map[string]any{"path": rel, "content": string(data)}, "파일을 읽었습니다")
}
