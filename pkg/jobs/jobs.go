// Package jobs tracks routing jobs submitted to the HTTP service.
//
// A [Job] carries its input, router options and, once finished, the routed
// solution and text output. Jobs live in a [Store]:
//   - [MemoryStore]: in-process, for a single instance and tests
//   - [MongoStore]: MongoDB-backed, so results survive restarts and can be
//     read from any instance
//
// Jobs move queued → running → done or failed. Failed means the input could
// not be processed at all; a job whose nets could not all be routed is still
// done, with the unrouted nets listed as FAILED in its output.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	gridio "github.com/matzehuels/mazeroute/pkg/io"
)

// Sentinel errors for job operations.
var (
	// ErrNotFound is returned when a job does not exist.
	ErrNotFound = errors.New("job not found")
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Finished reports whether the job will not change any more.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusFailed
}

// Options are the router settings of a job.
type Options struct {
	Budget           time.Duration `json:"budget" bson:"budget"`
	MaxRequeues      int           `json:"max_requeues,omitempty" bson:"max_requeues,omitempty"`
	CollisionPenalty int           `json:"collision_penalty,omitempty" bson:"collision_penalty,omitempty"`
}

// Result summarizes a finished job.
type Result struct {
	Cost     int  `json:"cost" bson:"cost"`
	Failed   int  `json:"failed" bson:"failed"`
	Attempts int  `json:"attempts" bson:"attempts"`
	Fallback bool `json:"fallback" bson:"fallback"`
	Cached   bool `json:"cached" bson:"cached"`
}

// Job is one routing request.
type Job struct {
	ID      string  `json:"id" bson:"_id"`
	Status  Status  `json:"status" bson:"status"`
	Source  string  `json:"source,omitempty" bson:"source,omitempty"`
	Options Options `json:"options" bson:"options"`
	Error   string  `json:"error,omitempty" bson:"error,omitempty"`

	Input    []byte           `json:"-" bson:"input"`
	Output   []byte           `json:"-" bson:"output,omitempty"`
	Result   *Result          `json:"result,omitempty" bson:"result,omitempty"`
	Solution *gridio.Solution `json:"solution,omitempty" bson:"solution,omitempty"`

	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	StartedAt  time.Time `json:"started_at,omitzero" bson:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitzero" bson:"finished_at,omitempty"`
}

// New returns a queued job with a fresh id.
func New(source string, input []byte, opts Options) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Source:    source,
		Options:   opts,
		Input:     input,
		CreatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy of j.
func (j *Job) Clone() *Job {
	c := *j
	c.Input = append([]byte(nil), j.Input...)
	c.Output = append([]byte(nil), j.Output...)
	if j.Output == nil {
		c.Output = nil
	}
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	if j.Solution != nil {
		s := *j.Solution
		s.Nets = append([]gridio.SolutionNet(nil), j.Solution.Nets...)
		c.Solution = &s
	}
	return &c
}

// Store persists jobs.
type Store interface {
	// Create inserts a new job.
	Create(ctx context.Context, j *Job) error

	// Get returns the job with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Job, error)

	// Update replaces a stored job. It returns ErrNotFound for unknown ids.
	Update(ctx context.Context, j *Job) error

	// List returns up to limit jobs, newest first.
	List(ctx context.Context, limit int) ([]*Job, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
