package transfer

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/repo"
)

// document is the parsed import shape. Title, type and content are required;
// any id or timestamps in the document are ignored; an imported capsule is
// always treated as newly created.
type document struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        capsule.Type    `json:"type"`
	Content     json.RawMessage `json:"content"`
}

// Import parses an export document, assigns fresh identity, and appends the
// capsule to the repository. Parse failures and missing required fields
// return MalformedDocument with the repository untouched. Content shape is
// not re-validated against the editor's rules.
func Import(doc []byte, r *repo.Repository) (capsule.Capsule, error) {
	var d document
	if err := json.Unmarshal(doc, &d); err != nil {
		return capsule.Capsule{}, errors.NewMalformedDocument(fmt.Sprintf("document does not parse: %v", err))
	}

	if d.Title == "" {
		return capsule.Capsule{}, errors.NewMalformedDocument("document is missing title")
	}
	if d.Type == "" {
		return capsule.Capsule{}, errors.NewMalformedDocument("document is missing type")
	}
	if len(d.Content) == 0 || string(d.Content) == "null" {
		return capsule.Capsule{}, errors.NewMalformedDocument("document is missing content")
	}

	content, err := capsule.DecodeContent(d.Type, d.Content)
	if err != nil {
		return capsule.Capsule{}, errors.NewMalformedDocument(err.Error())
	}

	id, err := generateULID()
	if err != nil {
		return capsule.Capsule{}, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	c := capsule.Capsule{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.Upsert(c); err != nil {
		return capsule.Capsule{}, err
	}
	return c, nil
}

// ReadFile imports a capsule from a document on disk.
func ReadFile(path string, r *repo.Repository) (capsule.Capsule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return capsule.Capsule{}, errors.NewInvalidRequest(fmt.Sprintf("no such file: %s", path))
		}
		return capsule.Capsule{}, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	return Import(data, r)
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
