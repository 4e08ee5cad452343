package progress

import (
	"fmt"
	"strings"
)

// Bucket is one of the three task groupings.
type Bucket string

const (
	BucketCompleted  Bucket = "completed"
	BucketInProgress Bucket = "in_progress"
	BucketPending    Bucket = "pending"
)

// AllBuckets returns every bucket in display order.
func AllBuckets() []Bucket {
	return []Bucket{BucketCompleted, BucketInProgress, BucketPending}
}

// ParseBucket parses a bucket name, case-insensitive. "in-progress" is
// accepted as an alias.
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed":
		return BucketCompleted, nil
	case "in_progress", "in-progress":
		return BucketInProgress, nil
	case "pending":
		return BucketPending, nil
	default:
		return "", inputError(ErrInvalidStatus, s, bucketNames())
	}
}

// String returns the string representation of the bucket.
func (b Bucket) String() string {
	return string(b)
}

// Title returns a human label such as "In Progress".
func (b Bucket) Title() string {
	words := strings.Split(string(b), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func bucketNames() []string {
	names := make([]string, 0, 3)
	for _, b := range AllBuckets() {
		names = append(names, b.String())
	}
	return names
}

// TaskOutcome describes what AddTask did.
type TaskOutcome int

const (
	TaskAdded TaskOutcome = iota
	TaskMoved
	TaskUnchanged
)

// TaskResult reports the effect of AddTask.
type TaskResult struct {
	Name    string
	Bucket  Bucket
	From    Bucket
	Outcome TaskOutcome
}

func (r TaskResult) String() string {
	switch r.Outcome {
	case TaskMoved:
		return fmt.Sprintf("Moved task '%s' from '%s' to '%s'", r.Name, r.From, r.Bucket)
	case TaskUnchanged:
		return fmt.Sprintf("Task '%s' already exists with status '%s'", r.Name, r.Bucket)
	default:
		return fmt.Sprintf("Added task '%s' with status '%s'", r.Name, r.Bucket)
	}
}

// AddTask places name in the bucket named by status, removing it from the
// other buckets first. A task already in the target bucket keeps its
// position and is never duplicated.
func (t *Tracker) AddTask(s *State, name, status string) (TaskResult, error) {
	bucket, err := ParseBucket(status)
	if err != nil {
		return TaskResult{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return TaskResult{}, inputError(ErrEmptyName, "task", nil)
	}

	result := TaskResult{Name: name, Bucket: bucket, Outcome: TaskAdded}
	for _, other := range AllBuckets() {
		slot := s.Tasks.slot(other)
		kept, removed := without(*slot, name, other == bucket)
		*slot = kept
		if removed {
			result.From = other
			result.Outcome = TaskMoved
		}
	}

	target := s.Tasks.slot(bucket)
	if contains(*target, name) {
		if result.Outcome != TaskMoved {
			result.Outcome = TaskUnchanged
		}
	} else {
		*target = append(*target, name)
	}
	t.stamp(s)
	return result, nil
}

// without drops every occurrence of name. When keepFirst is set, the first
// occurrence survives so the task keeps its position.
func without(items []string, name string, keepFirst bool) ([]string, bool) {
	out := make([]string, 0, len(items))
	removed := false
	seen := false
	for _, item := range items {
		if item != name {
			out = append(out, item)
			continue
		}
		if keepFirst && !seen {
			seen = true
			out = append(out, item)
			continue
		}
		if !keepFirst {
			removed = true
		}
	}
	return out, removed
}

func contains(items []string, name string) bool {
	for _, item := range items {
		if item == name {
			return true
		}
	}
	return false
}
