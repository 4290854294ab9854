package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema validates a loaded ledger before it is trusted. A corrupt
// or hand-edited ledger fails loudly instead of producing nonsense totals.
const documentSchema = `{
  "type": "object",
  "required": ["total_files", "fixed_files", "per_module", "history"],
  "properties": {
    "total_files": {"type": "integer", "minimum": 0},
    "fixed_files": {"type": "integer", "minimum": 0},
    "per_module": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["total", "fixed"],
        "properties": {
          "total": {"type": "integer", "minimum": 0},
          "fixed": {"type": "integer", "minimum": 0}
        }
      }
    },
    "history": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["date", "files_fixed"],
        "properties": {
          "date": {"type": "string"},
          "files_fixed": {"type": "integer", "minimum": 0},
          "notes": {"type": "string"}
        }
      }
    }
  }
}`

// jsonIndent is the indentation for the persisted ledger document.
const jsonIndent = "  "

// Sentinel errors for ledger persistence.
var (
	// ErrLedgerInvalid indicates the ledger file failed schema validation.
	ErrLedgerInvalid = errors.New("ledger document invalid")
)

// Load reads and validates the ledger at path. A missing file initializes a
// fresh document and is not an error.
func Load(path string) (*Document, error) {
	raw, readErr := os.ReadFile(path)
	if readErr != nil {
		if errors.Is(readErr, os.ErrNotExist) {
			return NewDocument(), nil
		}

		return nil, fmt.Errorf("read ledger: %w", readErr)
	}

	validateErr := validate(raw)
	if validateErr != nil {
		return nil, validateErr
	}

	doc := NewDocument()

	unmarshalErr := json.Unmarshal(raw, doc)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("decode ledger: %w", unmarshalErr)
	}

	if doc.PerModule == nil {
		doc.PerModule = map[string]Bucket{}
	}

	return doc, nil
}

// Save persists the document atomically: encode to a temp file in the target
// directory, then rename over the destination. An interrupted save never
// truncates existing state.
func Save(path string, doc *Document) error {
	dir := filepath.Dir(path)

	mkdirErr := os.MkdirAll(dir, 0o755)
	if mkdirErr != nil {
		return fmt.Errorf("create ledger dir: %w", mkdirErr)
	}

	data, marshalErr := json.MarshalIndent(doc, "", jsonIndent)
	if marshalErr != nil {
		return fmt.Errorf("encode ledger: %w", marshalErr)
	}

	data = append(data, '\n')

	tmp, tmpErr := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if tmpErr != nil {
		return fmt.Errorf("create ledger temp: %w", tmpErr)
	}

	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()

	if writeErr != nil || closeErr != nil {
		os.Remove(tmpName)

		if writeErr != nil {
			return fmt.Errorf("write ledger temp: %w", writeErr)
		}

		return fmt.Errorf("close ledger temp: %w", closeErr)
	}

	renameErr := os.Rename(tmpName, path)
	if renameErr != nil {
		os.Remove(tmpName)

		return fmt.Errorf("replace ledger: %w", renameErr)
	}

	return nil
}

// validate checks the raw document against the embedded JSON schema.
func validate(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerInvalid, err)
	}

	if !result.Valid() {
		first := result.Errors()[0]

		return fmt.Errorf("%w: %s", ErrLedgerInvalid, first.String())
	}

	return nil
}
