package domain

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

const (
	FolderModels    = "models"
	FolderImages    = "images"
	FolderDocuments = "documents"

	// FolderLegacy is the default target of the direct multipart upload.
	FolderLegacy = "uploads"

	MiB = 1 << 20

	maxNameLength = 120
)

const (
	TypeJPEG        = "image/jpeg"
	TypePNG         = "image/png"
	TypeWebP        = "image/webp"
	TypeGLB         = "model/gltf-binary"
	TypeGLTF        = "model/gltf+json"
	TypePDF         = "application/pdf"
	TypeOctetStream = "application/octet-stream"
)

var (
	ErrUnknownFolder   = errors.New("folder must be one of models, images, documents")
	ErrMissingFilename = errors.New("filename is required")
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the size limit for this folder")
	ErrContentType     = errors.New("file type is not allowed in this folder")
	ErrStorageDisabled = errors.New("object storage is not configured")
)

type folderPolicy struct {
	maxSize int64
	types   map[string]struct{}
}

func typeSet(types ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(types))
	for _, t := range types {
		m[t] = struct{}{}
	}
	return m
}

var policies = map[string]folderPolicy{
	FolderModels:    {maxSize: 200 * MiB, types: typeSet(TypeGLB, TypeGLTF, TypeOctetStream)},
	FolderImages:    {maxSize: 20 * MiB, types: typeSet(TypeJPEG, TypePNG, TypeWebP)},
	FolderDocuments: {maxSize: 50 * MiB, types: typeSet(TypePDF)},
	FolderLegacy:    {maxSize: 200 * MiB},
}

var extTypes = map[string]string{
	".jpg":  TypeJPEG,
	".jpeg": TypeJPEG,
	".png":  TypePNG,
	".webp": TypeWebP,
	".glb":  TypeGLB,
	".gltf": TypeGLTF,
	".pdf":  TypePDF,
}

// ContentTypeFor infers a MIME type from the file extension.
func ContentTypeFor(filename string) string {
	if t, ok := extTypes[strings.ToLower(path.Ext(filename))]; ok {
		return t
	}
	return TypeOctetStream
}

// MaxSize returns the byte limit for folder, or 0 when the folder is unknown.
func MaxSize(folder string) int64 {
	return policies[folder].maxSize
}

// UploadRequest describes a file the client wants to store.
type UploadRequest struct {
	Filename    string
	ContentType string
	Folder      string
	Size        int64
}

// Validate normalizes r in place and checks it against the folder policy.
// A nil type set accepts any content type.
func (r *UploadRequest) Validate() error {
	r.Folder = strings.TrimSpace(r.Folder)
	r.Filename = strings.TrimSpace(r.Filename)
	r.ContentType = strings.ToLower(strings.TrimSpace(r.ContentType))

	pol, ok := policies[r.Folder]
	if !ok {
		return ErrUnknownFolder
	}
	if r.Filename == "" {
		return ErrMissingFilename
	}
	if r.Size <= 0 {
		return ErrEmptyFile
	}
	if r.Size > pol.maxSize {
		return fmt.Errorf("%w (%d MiB)", ErrFileTooLarge, pol.maxSize/MiB)
	}
	if r.ContentType == "" {
		r.ContentType = ContentTypeFor(r.Filename)
	}
	if pol.types != nil {
		if _, ok := pol.types[r.ContentType]; !ok {
			return ErrContentType
		}
	}
	return nil
}

var reUnsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename keeps a storage-safe version of the client's file name.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = reUnsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > maxNameLength {
		ext := path.Ext(name)
		if len(ext) >= maxNameLength {
			ext = ""
		}
		name = name[:maxNameLength-len(ext)] + ext
	}
	return name
}

// ObjectKey derives "<folder>/<owner>/<id>-<sanitized name>".
func ObjectKey(folder, ownerID, id, filename string) string {
	return folder + "/" + ownerID + "/" + id + "-" + SanitizeFilename(filename)
}
