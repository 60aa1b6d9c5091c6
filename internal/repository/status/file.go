package status

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/particle-injector/internal/api/grpc/supervisor"
	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/domain/pulse"
)

// Repository defines persistence operations for the progress snapshot.
type Repository interface {
	Load(ctx context.Context) (*pulse.Progress, error)
	Save(ctx context.Context, progress *pulse.Progress) error
}

// FileRepository persists the progress snapshot to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) so the file
// matches what the supervisor endpoints return.
type FileRepository struct {
	// path is the filesystem location of the JSON status file.
	path string
	// mu protects concurrent access to the status file.
	mu sync.Mutex
}

// ErrNotFound is returned when the status file does not exist yet.
var ErrNotFound = errors.New("status not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the snapshot from disk.
func (r *FileRepository) Load(_ context.Context) (*pulse.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read status file: %w", err)
	}

	var encoded structpb.Struct
	if err = protojson.Unmarshal(contents, &encoded); err != nil {
		return nil, fmt.Errorf("decode status file: %w", err)
	}

	return supervisor.ProgressFromStruct(&encoded)
}

// Save writes the snapshot to disk, replacing the file atomically.
func (r *FileRepository) Save(_ context.Context, progress *pulse.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	encoded, err := supervisor.ProgressToStruct(progress)
	if err != nil {
		return err
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	// Readers polling the file must never see a half-written snapshot.
	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace status file: %w", err)
	}

	return nil
}
